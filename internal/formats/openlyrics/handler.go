// Package openlyrics provides the embedded exporter for OpenLyrics 0.8 XML.
package openlyrics

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"

	"github.com/FocuswithJustin/SongBridge/core/encoding"
	"github.com/FocuswithJustin/SongBridge/core/errors"
	"github.com/FocuswithJustin/SongBridge/core/plugins"
	"github.com/FocuswithJustin/SongBridge/core/song"
	"github.com/FocuswithJustin/SongBridge/core/xml"
)

const (
	// Namespace is the OpenLyrics song namespace.
	Namespace = "http://openlyrics.info/namespace/2009/song"
	// Version is the OpenLyrics version written.
	Version = "0.8"
	// Extension is the output file extension.
	Extension = ".xml"

	defaultApplication = "SongBridge"
	dateLayout         = "2006-01-02T15:04:05"
)

// Handler implements plugins.Exporter for OpenLyrics.
type Handler struct{}

// Manifest returns the plugin manifest for registration.
func Manifest() *plugins.Manifest {
	return &plugins.Manifest{
		PluginID:    "format.openlyrics",
		Version:     "1.0.0",
		Kind:        plugins.KindExport,
		Description: "OpenLyrics 0.8 XML",
		Extensions:  []string{Extension},
	}
}

// Register registers this plugin with the embedded registry.
func Register() {
	plugins.MustRegister(&plugins.EmbeddedPlugin{
		Manifest: Manifest(),
		Exporter: &Handler{},
	})
}

func init() {
	Register()
}

// Export implements plugins.Exporter.
func (h *Handler) Export(w io.Writer, s *song.Song, opts plugins.ExportOptions) error {
	out, err := Render(s, opts)
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return errors.NewIO("write", "", err)
	}
	return nil
}

// Render returns s as an OpenLyrics document. The document is checked for
// well-formedness; with opts.Pretty it is also indented.
func Render(s *song.Song, opts plugins.ExportOptions) ([]byte, error) {
	app := opts.Application
	if app == "" {
		app = defaultApplication
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, `<song xmlns="%s" version="%s" createdIn="%s" modifiedIn="%s" modifiedDate="%s">`,
		Namespace, Version, attr(app), attr(app), opts.ModifiedTime().Format(dateLayout))

	writeProperties(&b, s)

	lw := &lyricsWriter{}
	var lyrics strings.Builder
	lyrics.WriteString("<lyrics>")
	names := verseNames(s.Verses)
	for i, v := range s.Verses {
		lyrics.WriteString(`<verse name="` + attr(names[i]) + `"`)
		if lang := canonicalLang(v.Lang); lang != "" {
			lyrics.WriteString(` lang="` + attr(lang) + `"`)
		}
		lyrics.WriteString(">")
		lw.lines(&lyrics, v.Text)
		lyrics.WriteString("</verse>")
	}
	lyrics.WriteString("</lyrics>")

	if hasFormattingTags(s.Verses) {
		lw.formatBlock(&b)
	}
	b.WriteString(lyrics.String())
	b.WriteString("</song>\n")

	out := []byte(b.String())
	if res := xml.Validate(out); !res.Valid {
		return nil, &errors.ParseError{
			Format:  "OpenLyrics",
			Path:    s.Title,
			Message: res.Errors[0].String(),
		}
	}
	if !opts.Pretty {
		return out, nil
	}
	return xml.Format(out, xml.FormatOptions{Inline: []string{"lines"}})
}

func writeProperties(b *strings.Builder, s *song.Song) {
	b.WriteString("<properties><titles>")
	element(b, "title", s.Title)
	if s.AlternateTitle != "" {
		element(b, "title", s.AlternateTitle)
	}
	b.WriteString("</titles>")
	if s.Comments != "" {
		b.WriteString("<comments>")
		element(b, "comment", s.Comments)
		b.WriteString("</comments>")
	}
	if s.Copyright != "" {
		element(b, "copyright", s.Copyright)
	}
	if s.VerseOrder != "" {
		element(b, "verseOrder", strings.ToLower(s.VerseOrder))
	}
	if s.CCLINumber != "" {
		element(b, "ccliNo", s.CCLINumber)
	}
	if len(s.Authors) > 0 {
		b.WriteString("<authors>")
		for _, a := range s.Authors {
			typ := a.Type
			if typ == "" {
				typ = "words"
			}
			b.WriteString(`<author type="` + attr(typ) + `">` + encoding.EscapeXMLText(a.Name) + "</author>")
		}
		b.WriteString("</authors>")
	}
	if s.SongBook != "" {
		b.WriteString(`<songbooks><songbook name="` + attr(s.SongBook) + `"`)
		if s.SongNumber != "" {
			b.WriteString(` entry="` + attr(s.SongNumber) + `"`)
		}
		b.WriteString("/></songbooks>")
	}
	if len(s.Topics) > 0 {
		b.WriteString("<themes>")
		for _, t := range s.Topics {
			element(b, "theme", t)
		}
		b.WriteString("</themes>")
	}
	b.WriteString("</properties>")
}

func element(b *strings.Builder, name, text string) {
	b.WriteString("<" + name + ">" + encoding.EscapeXMLText(text) + "</" + name + ">")
}

func attr(s string) string {
	return encoding.EscapeXMLAttr(s)
}

// canonicalLang returns the BCP 47 form of tag, or "" if tag is empty or
// not a language tag.
func canonicalLang(tag string) string {
	if tag == "" {
		return ""
	}
	t, err := language.Parse(tag)
	if err != nil {
		return ""
	}
	return t.String()
}
