package encoding

import (
	"fmt"
	"strings"
	"unicode/utf8"

	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultLegacyCodePage is the code page SongShow Plus falls back to when it
// writes text that is not UTF-8.
const DefaultLegacyCodePage = "windows-1251"

// TextDecoder turns raw field bytes into text.
//
// Valid UTF-8 is decoded as UTF-8. When Repair is enabled the result is then
// passed through RepairDoubleEncoded, which round-trips it through the legacy
// code page and keeps the UTF-8 reading whenever that round trip fails. Bytes
// that are not valid UTF-8 are read in the legacy code page.
type TextDecoder struct {
	legacy   xencoding.Encoding
	codePage string
	repair   bool
}

// NewTextDecoder returns a decoder for the named legacy code page (any WHATWG
// label, e.g. "windows-1251", "cp1251", "windows-1252").
func NewTextDecoder(codePage string, repair bool) (*TextDecoder, error) {
	if codePage == "" {
		codePage = DefaultLegacyCodePage
	}
	enc, err := htmlindex.Get(codePage)
	if err != nil {
		return nil, fmt.Errorf("unknown legacy code page %q: %w", codePage, err)
	}
	return &TextDecoder{legacy: enc, codePage: codePage, repair: repair}, nil
}

// MustTextDecoder is like NewTextDecoder but panics on an unknown code page.
func MustTextDecoder(codePage string, repair bool) *TextDecoder {
	d, err := NewTextDecoder(codePage, repair)
	if err != nil {
		panic(err)
	}
	return d
}

// CodePage returns the legacy code page label the decoder was built with.
func (d *TextDecoder) CodePage() string {
	return d.codePage
}

// Decode converts field bytes to a string.
func (d *TextDecoder) Decode(data []byte) string {
	if !utf8.Valid(data) {
		out, err := d.legacy.NewDecoder().Bytes(data)
		if err != nil {
			return strings.ToValidUTF8(string(data), "�")
		}
		return string(out)
	}
	s := string(data)
	if !d.repair {
		return s
	}
	return RepairDoubleEncoded(s, d.legacy)
}

// RepairDoubleEncoded re-encodes s into the legacy code page and decodes it
// again. If s holds a rune the code page cannot represent, s is returned
// unchanged.
//
// This is a heuristic carried over from the SongShow Plus importer. It is not
// proven to recover every double-encoded field and must not be generalized
// without sample data.
func RepairDoubleEncoded(s string, legacy xencoding.Encoding) string {
	encoded, err := legacy.NewEncoder().String(s)
	if err != nil {
		return s
	}
	decoded, err := legacy.NewDecoder().String(encoded)
	if err != nil {
		return s
	}
	return decoded
}
