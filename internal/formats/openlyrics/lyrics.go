package openlyrics

import (
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/FocuswithJustin/SongBridge/core/encoding"
	"github.com/FocuswithJustin/SongBridge/core/song"
)

const (
	optionalSplit = "\n[---]\n"
	pageSplit     = "[--}{--]"
	newPageTag    = `<p style="page-break-after: always;"/>`
)

var (
	anyTag   = regexp.MustCompile(`\{/?\w+\}`)
	startTag = regexp.MustCompile(`\{(\w+)\}`)
	endTag   = regexp.MustCompile(`\{/(\w+)\}`)
	chordPro = regexp.MustCompile(`\[(\w.*?)\]`)
)

// verseNames returns the name attribute for each verse. Verses sharing a
// name get suffix letters in order of appearance: v1a, v1b, ... wrapping
// after z.
func verseNames(verses []song.Verse) []string {
	total := make(map[string]int, len(verses))
	for _, v := range verses {
		total[v.Def]++
	}
	seen := make(map[string]int, len(verses))
	names := make([]string, len(verses))
	for i, v := range verses {
		name := v.Def
		if total[v.Def] > 1 {
			name += string(rune('a' + seen[v.Def]%26))
		}
		seen[v.Def]++
		names[i] = name
	}
	return names
}

// hasFormattingTags reports whether any verse uses OpenLP formatting tags.
func hasFormattingTags(verses []song.Verse) bool {
	for _, v := range verses {
		if anyTag.MatchString(v.Text) {
			return true
		}
	}
	return false
}

// lyricsWriter renders verse text to <lines> elements and records the
// formatting tags it meets.
type lyricsWriter struct {
	tags []string
}

// lines renders one verse. Each optional split becomes a <lines> element;
// all but the last are marked break="optional". Formatting tags left open
// at a split are closed there and reopened in the next part.
func (lw *lyricsWriter) lines(b *strings.Builder, text string) {
	parts := strings.Split(encoding.EscapeLyric(text), optionalSplit)
	carry := ""
	for i, part := range parts {
		part = carry + part
		var closing string
		carry, closing = missingTags(part)
		part += closing

		if i < len(parts)-1 {
			b.WriteString(`<lines break="optional">`)
		} else {
			b.WriteString("<lines>")
		}
		b.WriteString(lw.markup(part))
		b.WriteString("</lines>")
	}
}

// markup converts formatting tags, line breaks, page breaks and ChordPro
// chords in escaped text to OpenLyrics markup.
func (lw *lyricsWriter) markup(text string) string {
	var ends []string
	for _, m := range endTag.FindAllStringSubmatch(text, -1) {
		ends = append(ends, m[1])
	}
	for _, m := range startTag.FindAllStringSubmatch(text, -1) {
		name := m[1]
		open := `<tag name="` + name + `"/>`
		if slices.Contains(ends, name) {
			open = `<tag name="` + name + `">`
		}
		text = strings.ReplaceAll(text, "{"+name+"}", open)
		lw.addTag(name)
	}
	for _, name := range ends {
		text = strings.ReplaceAll(text, "{/"+name+"}", "</tag>")
	}
	text = strings.ReplaceAll(text, "\n", "<br/>")
	text = strings.ReplaceAll(text, pageSplit, newPageTag)
	return chordPro.ReplaceAllStringFunc(text, func(m string) string {
		name := chordPro.FindStringSubmatch(m)[1]
		return `<chord name="` + strings.ReplaceAll(name, `"`, "&quot;") + `"/>`
	})
}

func (lw *lyricsWriter) addTag(name string) {
	if !slices.Contains(lw.tags, name) {
		lw.tags = append(lw.tags, name)
	}
}

// formatBlock renders the <format> element defining every tag seen.
func (lw *lyricsWriter) formatBlock(b *strings.Builder) {
	b.WriteString(`<format><tags application="OpenLP">`)
	for _, name := range lw.tags {
		t, ok := lookupTag(name)
		if !ok {
			b.WriteString(`<tag name="` + encoding.EscapeXMLAttr(name) + `"/>`)
			continue
		}
		b.WriteString(`<tag name="` + name + `">`)
		b.WriteString("<open><![CDATA[" + t.startHTML + "]]></open>")
		if t.endHTML != "" {
			b.WriteString("<close><![CDATA[" + t.endHTML + "]]></close>")
		}
		b.WriteString("</tag>")
	}
	b.WriteString("</tags></format>")
}

// missingTags finds the formatting tags that are opened and closed an
// unequal number of times in text. It returns the start tags to reopen in
// the next part, in order of first appearance, and the end tags that close
// them here, innermost first.
func missingTags(text string) (reopen, closing string) {
	type open struct {
		at  int
		tag formattingTag
	}
	var unbalanced []open
	for _, t := range baseTags {
		if t.name == "br" {
			continue
		}
		if strings.Count(text, t.start()) != strings.Count(text, t.end()) {
			unbalanced = append(unbalanced, open{strings.Index(text, t.start()), t})
		}
	}
	sort.SliceStable(unbalanced, func(i, j int) bool { return unbalanced[i].at < unbalanced[j].at })

	var starts, ends strings.Builder
	for i := range unbalanced {
		starts.WriteString(unbalanced[i].tag.start())
		ends.WriteString(unbalanced[len(unbalanced)-1-i].tag.end())
	}
	return starts.String(), ends.String()
}
