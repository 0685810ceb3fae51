package openlyrics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/FocuswithJustin/SongBridge/core/plugins"
	"github.com/FocuswithJustin/SongBridge/core/song"
	"github.com/FocuswithJustin/SongBridge/core/xml"
)

var fixedOpts = plugins.ExportOptions{
	Application: "Test 1.0",
	Modified:    time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
}

func amazingGrace() *song.Song {
	return &song.Song{
		Title:      "Amazing Grace",
		Authors:    []song.Author{{Name: "John Newton"}},
		Copyright:  "Public Domain",
		CCLINumber: "22025",
		Comments:   "Classic",
		SongBook:   "Hymns",
		SongNumber: "12",
		Topics:     []string{"Grace"},
		VerseOrder: "V1 C1 V1",
		Verses: []song.Verse{
			{Def: "v1", Text: "Amazing grace"},
			{Def: "c1", Text: "Praise"},
		},
	}
}

func TestRender(t *testing.T) {
	out, err := Render(amazingGrace(), fixedOpts)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		`<song xmlns="http://openlyrics.info/namespace/2009/song" version="0.8" createdIn="Test 1.0" modifiedIn="Test 1.0" modifiedDate="2024-05-01T12:30:00">` +
		`<properties><titles><title>Amazing Grace</title></titles>` +
		`<comments><comment>Classic</comment></comments>` +
		`<copyright>Public Domain</copyright>` +
		`<verseOrder>v1 c1 v1</verseOrder>` +
		`<ccliNo>22025</ccliNo>` +
		`<authors><author type="words">John Newton</author></authors>` +
		`<songbooks><songbook name="Hymns" entry="12"/></songbooks>` +
		`<themes><theme>Grace</theme></themes></properties>` +
		`<lyrics><verse name="v1"><lines>Amazing grace</lines></verse><verse name="c1"><lines>Praise</lines></verse></lyrics>` +
		"</song>\n"
	if string(out) != want {
		t.Errorf("Render() =\n%s\nwant\n%s", out, want)
	}
}

func TestRenderMinimal(t *testing.T) {
	s := &song.Song{Title: "Bare", AlternateTitle: "Also Bare", Verses: []song.Verse{{Def: "v1", Text: "x"}}}
	out, err := Render(s, fixedOpts)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	got := string(out)
	if !strings.Contains(got, "<titles><title>Bare</title><title>Also Bare</title></titles></properties>") {
		t.Errorf("Render() properties wrong:\n%s", got)
	}
	for _, absent := range []string{"<authors>", "<themes>", "<songbooks>", "<verseOrder>", "<format>"} {
		if strings.Contains(got, absent) {
			t.Errorf("Render() wrote %s for an empty field", absent)
		}
	}
}

func TestVerseNames(t *testing.T) {
	verses := []song.Verse{{Def: "v1"}, {Def: "c1"}, {Def: "v1"}, {Def: "v2"}, {Def: "v1"}}
	got := strings.Join(verseNames(verses), " ")
	if want := "v1a c1 v1b v2 v1c"; got != want {
		t.Errorf("verseNames() = %q, want %q", got, want)
	}

	many := make([]song.Verse, 28)
	for i := range many {
		many[i].Def = "o1"
	}
	names := verseNames(many)
	if names[25] != "o1z" || names[26] != "o1a" || names[27] != "o1b" {
		t.Errorf("suffix does not wrap: %v", names[24:])
	}
}

func TestLyricsMarkup(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			"escape, breaks and chords",
			"Amazing [G]grace & \"love\"\nline two[--}{--]page",
			`<lines>Amazing <chord name="G"/>grace &amp; &quot;love&quot;<br/>line two<p style="page-break-after: always;"/>page</lines>`,
		},
		{
			"optional splits",
			"first\n[---]\nsecond\n[---]\nthird",
			`<lines break="optional">first</lines><lines break="optional">second</lines><lines>third</lines>`,
		},
		{
			"tags carried across a split",
			"{st}{r}Red\n[---]\nmore{/r}{/st}",
			`<lines break="optional"><tag name="st"><tag name="r">Red</tag></tag></lines>` +
				`<lines><tag name="st"><tag name="r">more</tag></tag></lines>`,
		},
		{
			"start-only tag",
			"one{br}two",
			`<lines>one<tag name="br"/>two</lines>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			(&lyricsWriter{}).lines(&b, tt.text)
			if got := b.String(); got != tt.want {
				t.Errorf("lines() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestMissingTags(t *testing.T) {
	reopen, closing := missingTags("{st}{r}Red text")
	if reopen != "{st}{r}" || closing != "{/r}{/st}" {
		t.Errorf("missingTags() = %q, %q", reopen, closing)
	}
	reopen, closing = missingTags("{it}done{/it}")
	if reopen != "" || closing != "" {
		t.Errorf("missingTags(balanced) = %q, %q", reopen, closing)
	}
}

func TestRenderFormatBlock(t *testing.T) {
	s := &song.Song{Title: "Tags", Verses: []song.Verse{
		{Def: "v1", Text: "{r}Red{/r} and {x}odd{/x}"},
		{Def: "v2", Text: "{r}again{/r}"},
	}}
	out, err := Render(s, fixedOpts)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := `<format><tags application="OpenLP">` +
		`<tag name="r"><open><![CDATA[<span style="-webkit-text-fill-color:red">]]></open><close><![CDATA[</span>]]></close></tag>` +
		`<tag name="x"/>` +
		`</tags></format><lyrics>`
	if !strings.Contains(string(out), want) {
		t.Errorf("Render() format block missing:\n%s", out)
	}
}

func TestRenderPrettyAndQueryable(t *testing.T) {
	s := amazingGrace()
	s.Verses = append(s.Verses,
		song.Verse{Def: "v1", Text: "Through many dangers\n[---]\n[D]toils and snares", Lang: "EN-us"})
	opts := fixedOpts
	opts.Pretty = true
	out, err := Render(s, opts)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !xml.Validate(out).Valid {
		t.Fatalf("pretty output is malformed:\n%s", out)
	}
	if !strings.Contains(string(out), "\n  <properties>\n") {
		t.Errorf("pretty output not indented:\n%s", out)
	}

	doc, err := xml.Parse(out)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	verses, err := doc.XPath("//lyrics/verse")
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, v := range verses {
		names = append(names, v.Attr("name"))
	}
	if got := strings.Join(names, " "); got != "v1a c1 v1b" {
		t.Errorf("verse names = %q, want %q", got, "v1a c1 v1b")
	}
	if lang := verses[2].Attr("lang"); lang != "en-US" {
		t.Errorf("lang = %q, want en-US", lang)
	}
	lines, _ := doc.XPath("//verse[@name='v1b']/lines")
	if len(lines) != 2 || lines[0].Attr("break") != "optional" {
		t.Errorf("v1b lines = %d, want 2 with an optional break", len(lines))
	}
	if !strings.Contains(string(out), `<lines><chord name="D"/>toils and snares</lines>`) {
		t.Errorf("second lines not kept inline:\n%s", out)
	}
	if n := strings.Count(string(out), "<?xml"); n != 1 {
		t.Errorf("pretty output has %d declarations, want 1", n)
	}
}

func TestExportThroughRegistry(t *testing.T) {
	p, err := plugins.LookupExporter("openlyrics")
	if err != nil {
		t.Fatalf("LookupExporter() error = %v", err)
	}
	var buf bytes.Buffer
	if err := p.Exporter.Export(&buf, amazingGrace(), fixedOpts); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "<?xml") {
		t.Errorf("Export() wrote %q", buf.String())
	}
}

func TestCanonicalLang(t *testing.T) {
	tests := map[string]string{"": "", "en": "en", "EN-us": "en-US", "not a tag!": ""}
	for in, want := range tests {
		if got := canonicalLang(in); got != want {
			t.Errorf("canonicalLang(%q) = %q, want %q", in, got, want)
		}
	}
}
