package song

import "strings"

// Author is a credited author with an optional role such as "words" or
// "music".
type Author struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Verse is one verse of lyrics in source order.
type Verse struct {
	Def  string `json:"def"`
	Text string `json:"text"`
	Lang string `json:"lang,omitempty"`
}

// Type returns the verse's type, or TypeOther for an unknown tag letter.
func (v Verse) Type() VerseType {
	if v.Def == "" {
		return TypeOther
	}
	t, _ := TypeForTag(v.Def[0])
	return t
}

// Song is a finalized song. Produced by Draft.Finalize; consumers must treat
// it as read-only.
type Song struct {
	Title          string   `json:"title"`
	AlternateTitle string   `json:"alternate_title,omitempty"`
	SongNumber     string   `json:"song_number,omitempty"`
	Copyright      string   `json:"copyright,omitempty"`
	Comments       string   `json:"comments,omitempty"`
	CCLINumber     string   `json:"ccli_number,omitempty"`
	Authors        []Author `json:"authors,omitempty"`
	Topics         []string `json:"topics,omitempty"`
	SongBook       string   `json:"song_book,omitempty"`
	Verses         []Verse  `json:"verses"`
	VerseOrder     string   `json:"verse_order,omitempty"`
}

// VerseOrderList splits VerseOrder into verse names.
func (s *Song) VerseOrderList() []string {
	return strings.Fields(s.VerseOrder)
}

// PlayOrder returns the verse names in the order they are performed: the
// verse order when present, otherwise each verse once in source order.
func (s *Song) PlayOrder() []string {
	if order := s.VerseOrderList(); len(order) > 0 {
		return order
	}
	defs := make([]string, 0, len(s.Verses))
	seen := make(map[string]bool, len(s.Verses))
	for _, v := range s.Verses {
		if seen[v.Def] {
			continue
		}
		seen[v.Def] = true
		defs = append(defs, v.Def)
	}
	return defs
}

// VersesByDef returns the verses carrying the given name, in source order.
func (s *Song) VersesByDef(def string) []Verse {
	var out []Verse
	for _, v := range s.Verses {
		if v.Def == def {
			out = append(out, v)
		}
	}
	return out
}

// AuthorNames returns the author names in credit order.
func (s *Song) AuthorNames() []string {
	names := make([]string, len(s.Authors))
	for i, a := range s.Authors {
		names[i] = a.Name
	}
	return names
}
