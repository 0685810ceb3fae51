// Package txt provides the embedded exporter for plain text song sheets.
//
// A song sheet starts with a fixed header:
//
//	Title: Amazing Grace
//	Author: John Newton
//	Copyright: Public Domain
//	CCLI: 22025
//	Hymnal: Hymns of Faith #12
//	Groups: Grace
//	PlayOrder: Verse 1, Chorus 1, Verse 1
//
// followed by a blank line and the verses in play order. The first time a
// verse is played its label is followed by its text; a repeat prints the
// label alone. Verses the play order skips are appended at the end.
package txt

import (
	"bufio"
	"io"
	"strings"

	"github.com/FocuswithJustin/SongBridge/core/errors"
	"github.com/FocuswithJustin/SongBridge/core/plugins"
	"github.com/FocuswithJustin/SongBridge/core/song"
)

// Extension is the output file extension.
const Extension = ".txt"

// Handler implements plugins.Exporter for plain text.
type Handler struct{}

// Manifest returns the plugin manifest for registration.
func Manifest() *plugins.Manifest {
	return &plugins.Manifest{
		PluginID:    "format.txt",
		Version:     "1.0.0",
		Kind:        plugins.KindExport,
		Description: "plain text song sheet",
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
	bw := bufio.NewWriter(w)
	writeSheet(bw, s)
	if err := bw.Flush(); err != nil {
		return errors.NewIO("write", "", err)
	}
	return nil
}

// Render returns s as a song sheet.
func Render(s *song.Song) string {
	var b strings.Builder
	writeSheet(&b, s)
	return b.String()
}

type stringWriter interface {
	WriteString(string) (int, error)
}

func writeSheet(w stringWriter, s *song.Song) {
	order := playOrder(s)
	labels := make([]string, len(order))
	for i, def := range order {
		labels[i] = song.LabelForDef(def)
	}

	header := []struct{ key, value string }{
		{"Title", s.Title},
		{"Author", strings.Join(s.AuthorNames(), ", ")},
		{"Copyright", s.Copyright},
		{"CCLI", s.CCLINumber},
		{"Hymnal", hymnal(s)},
		{"Groups", strings.Join(s.Topics, ", ")},
		{"PlayOrder", strings.Join(labels, ", ")},
	}
	for _, h := range header {
		w.WriteString(h.key + ": " + h.value + "\n")
	}
	w.WriteString("\n")

	printed := make(map[string]bool)
	for i, def := range order {
		w.WriteString(labels[i] + "\n")
		if !printed[def] {
			printed[def] = true
			for _, v := range s.VersesByDef(def) {
				w.WriteString(v.Text + "\n")
			}
		}
		w.WriteString("\n")
	}
}

// playOrder is the song's play order with any verse it never plays
// appended.
func playOrder(s *song.Song) []string {
	order := s.PlayOrder()
	for i := range order {
		order[i] = strings.ToLower(order[i])
	}
	seen := make(map[string]bool, len(order))
	for _, def := range order {
		seen[def] = true
	}
	for _, v := range s.Verses {
		if !seen[v.Def] {
			seen[v.Def] = true
			order = append(order, v.Def)
		}
	}
	return order
}

func hymnal(s *song.Song) string {
	h := s.SongBook
	if s.SongNumber != "" {
		if h != "" {
			h += " "
		}
		h += "#" + s.SongNumber
	}
	return h
}
