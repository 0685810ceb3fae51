package xml

import (
	"strings"
	"testing"
)

const lyricDoc = `<?xml version="1.0" encoding="UTF-8"?>
<song xmlns="http://openlyrics.info/namespace/2009/song" version="0.8"><properties><titles><title>Amazing Grace</title></titles><verseOrder>v1 c1 v1</verseOrder></properties><lyrics><verse name="v1"><lines>Amazing grace<br/>how sweet</lines></verse><verse name="c1"><lines>Praise &amp; glory</lines></verse></lyrics></song>`

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{"unclosed tag", "<song><lyrics></song>"},
		{"mismatched tags", "<song></verse>"},
		{"invalid chars", "<song>\x00</song>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.xml)); err == nil {
				t.Error("Parse() succeeded on malformed XML")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if res := Validate([]byte(lyricDoc)); !res.Valid {
		t.Errorf("Validate(lyricDoc) = %v, want valid", res.Errors)
	}

	res := Validate([]byte("<song>\n<verse>\n</song>"))
	if res.Valid {
		t.Fatal("Validate() accepted mismatched tags")
	}
	if len(res.Errors) != 1 {
		t.Fatalf("Errors = %v, want one", res.Errors)
	}
	if res.Errors[0].Line != 3 {
		t.Errorf("Line = %d, want 3", res.Errors[0].Line)
	}

	entity := `<!DOCTYPE song [<!ENTITY x "boom">]><song>&x;</song>`
	if Validate([]byte(entity)).Valid {
		t.Error("Validate() expanded an internal entity")
	}
}

func TestXPath(t *testing.T) {
	doc, err := Parse([]byte(lyricDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	verses, err := doc.XPath("//lyrics/verse")
	if err != nil {
		t.Fatalf("XPath() error = %v", err)
	}
	if len(verses) != 2 {
		t.Fatalf("XPath() found %d verses, want 2", len(verses))
	}
	if got := verses[1].Attr("name"); got != "c1" {
		t.Errorf("Attr(name) = %q, want %q", got, "c1")
	}
	if got := verses[1].Text(); got != "Praise & glory" {
		t.Errorf("Text() = %q, want %q", got, "Praise & glory")
	}

	order, err := doc.XPathFirst("//properties/verseOrder")
	if err != nil || order == nil {
		t.Fatalf("XPathFirst() = %v, %v", order, err)
	}
	if order.Text() != "v1 c1 v1" {
		t.Errorf("verseOrder = %q", order.Text())
	}

	missing, err := doc.XPathFirst("//themes")
	if err != nil || missing != nil {
		t.Errorf("XPathFirst(missing) = %v, %v, want nil, nil", missing, err)
	}

	if _, err := doc.XPath("//verse[@name="); err == nil {
		t.Error("XPath() accepted an invalid expression")
	}
}

func TestEvaluate(t *testing.T) {
	doc, err := Parse([]byte(lyricDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got, err := doc.Evaluate("count(//verse)")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if n, ok := got.(float64); !ok || n != 2 {
		t.Errorf("count(//verse) = %v, want 2", got)
	}
	got, err = doc.Evaluate("string(/song/@version)")
	if err != nil || got != "0.8" {
		t.Errorf("string(@version) = %v, %v, want 0.8", got, err)
	}
}

func TestRootAndChildren(t *testing.T) {
	doc, err := Parse([]byte(lyricDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	root := doc.Root()
	if root == nil || root.Name() != "song" {
		t.Fatalf("Root() = %v, want song", root)
	}
	var names []string
	for _, c := range root.Children() {
		names = append(names, c.Name())
	}
	if strings.Join(names, ",") != "properties,lyrics" {
		t.Errorf("Children() = %v", names)
	}
	verse, _ := doc.XPathFirst("//verse[@name='v1']")
	if kids := verse.Children(); len(kids) != 1 || kids[0].Name() != "lines" {
		t.Errorf("verse Children() = %v, want one lines element", kids)
	}
}

func TestFormat(t *testing.T) {
	out, err := Format([]byte(lyricDoc), FormatOptions{})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	got := string(out)
	for _, want := range []string{
		"<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n",
		"<song xmlns=\"http://openlyrics.info/namespace/2009/song\" version=\"0.8\">\n",
		"\n  <properties>\n",
		"\n      <title>Amazing Grace</title>\n",
		"\n      <lines>Amazing grace<br/>how sweet</lines>\n",
		"<lines>Praise &amp; glory</lines>",
		"\n</song>\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Format() output missing %q:\n%s", want, got)
		}
	}
	if !Validate(out).Valid {
		t.Errorf("Format() produced malformed XML:\n%s", got)
	}
	if n := strings.Count(got, "<?xml"); n != 1 {
		t.Errorf("Format() wrote %d declarations, want 1", n)
	}

	tabs, err := Format([]byte("<a><b/></a>"), FormatOptions{Indent: "\t"})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(tabs) != "<a>\n\t<b/>\n</a>\n" {
		t.Errorf("Format(tabs) = %q", tabs)
	}

	inline, err := Format([]byte(`<verse><lines><chord name="G"/><br/></lines></verse>`), FormatOptions{Inline: []string{"lines"}})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if want := "<verse>\n  <lines><chord name=\"G\"/><br/></lines>\n</verse>\n"; string(inline) != want {
		t.Errorf("Format(inline) = %q, want %q", inline, want)
	}

	if _, err := Format([]byte("<a>"), FormatOptions{}); err == nil {
		t.Error("Format() accepted malformed XML")
	}
}

func TestNilNodes(t *testing.T) {
	var n Node
	if n.Name() != "" || n.Text() != "" || n.Attr("x") != "" || n.Children() != nil {
		t.Error("zero Node returned data")
	}
	var d Document
	if d.Root() != nil {
		t.Error("zero Document returned data")
	}
}
