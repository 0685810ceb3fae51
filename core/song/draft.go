package song

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/SongBridge/core/errors"
)

// Draft accumulates one song while its source is decoded. It is not safe for
// concurrent use; decode files in parallel with one Draft each.
type Draft struct {
	title          string
	alternateTitle string
	songNumber     string
	copyright      string
	comments       string
	ccliNumber     string
	authors        []Author
	topics         []string
	songBook       string
	verses         []Verse
	verseCounts    map[string]int

	explicitOrder   []string
	generatedOrder  []string
	orderMeaningful bool

	labels *VerseTagNormalizer
}

// NewDraft returns an empty draft.
func NewDraft() *Draft {
	d := &Draft{labels: NewVerseTagNormalizer()}
	d.Reset()
	return d
}

// Reset discards everything accumulated so far, including the Other-label
// registry.
func (d *Draft) Reset() {
	d.title = ""
	d.alternateTitle = ""
	d.songNumber = ""
	d.copyright = ""
	d.comments = ""
	d.ccliNumber = ""
	d.authors = nil
	d.topics = nil
	d.songBook = ""
	d.verses = nil
	d.verseCounts = make(map[string]int)
	d.explicitOrder = nil
	d.generatedOrder = nil
	d.orderMeaningful = false
	d.labels.reset()
}

// Labels returns the draft's verse label normalizer.
func (d *Draft) Labels() *VerseTagNormalizer {
	return d.labels
}

// VerseTag normalizes a free-text verse label against this draft's registry.
func (d *Draft) VerseTag(label string, ignoreUnknown bool) (string, bool) {
	return d.labels.Normalize(label, ignoreUnknown)
}

func (d *Draft) SetTitle(title string)          { d.title = title }
func (d *Draft) SetAlternateTitle(title string) { d.alternateTitle = title }
func (d *Draft) SetSongNumber(number string)    { d.songNumber = number }
func (d *Draft) SetCCLINumber(number string)    { d.ccliNumber = number }
func (d *Draft) SetSongBook(name string)        { d.songBook = name }

// SetComments replaces the comments; the last write wins.
func (d *Draft) SetComments(comments string) { d.comments = comments }

// Title returns the title accumulated so far.
func (d *Draft) Title() string { return d.title }

// AddTopic appends a topic. Empty and duplicate topics are dropped by
// Finalize.
func (d *Draft) AddTopic(topic string) {
	d.topics = append(d.topics, topic)
}

// AddVerseOrder appends a verse name to the explicit verse order.
func (d *Draft) AddVerseOrder(def string) {
	d.explicitOrder = append(d.explicitOrder, def)
}

// AddCopyright appends text to the copyright notice unless it is already part
// of it.
func (d *Draft) AddCopyright(text string) {
	if strings.Contains(d.copyright, text) {
		return
	}
	if d.copyright != "" {
		d.copyright += " "
	}
	d.copyright += text
}

// AddComment appends a comment line unless the text is already present.
func (d *Draft) AddComment(text string) {
	if strings.Contains(d.comments, text) {
		return
	}
	if text != "" {
		d.comments += strings.TrimSpace(text) + "\n"
	}
}

// AddAuthor credits one or more authors. The name is split on commas and
// ampersands; a single word followed by another name borrows that name's
// surname, so "Mr & Mrs Smith" credits "Mr Smith" and "Mrs Smith". Trailing
// periods are dropped.
func (d *Draft) AddAuthor(name, authorType string) {
	for _, group := range strings.Split(name, ",") {
		parts := strings.Split(group, "&")
		for i, part := range parts {
			author := strings.TrimSpace(part)
			if !strings.Contains(author, " ") && i < len(parts)-1 {
				if surname := lastWord(parts[i+1]); surname != "" {
					author += " " + surname
				}
			}
			author = strings.TrimSuffix(author, ".")
			if author != "" {
				d.addAuthorEntry(Author{Name: author, Type: authorType})
			}
		}
	}
}

func (d *Draft) addAuthorEntry(a Author) {
	if slices.Contains(d.authors, a) {
		return
	}
	d.authors = append(d.authors, a)
}

func lastWord(s string) string {
	words := strings.Split(strings.TrimSpace(s), " ")
	return words[len(words)-1]
}

// AddVerse stores a verse. def may be a bare type letter ("v"), in which case
// the next number for that type is assigned, or a full verse name ("v3").
// An empty def means "v".
//
// If the trimmed text matches a stored verse, nothing is stored; the stored
// verse's name is appended to the generated order instead.
func (d *Draft) AddVerse(text, def, lang string) {
	trimmed := strings.TrimSpace(text)
	for _, v := range d.verses {
		if strings.TrimSpace(v.Text) == trimmed {
			d.generatedOrder = append(d.generatedOrder, v.Def)
			d.orderMeaningful = true
			return
		}
	}

	if def == "" {
		def = TypeVerse.Tag()
	}
	tag, number := SplitDef(def)
	if number == "" {
		d.verseCounts[tag]++
		def = tag + strconv.Itoa(d.verseCounts[tag])
	} else if n, ok := defNumber(def); ok {
		if n > d.verseCounts[tag] {
			d.verseCounts[tag] = n
		}
	} else {
		d.verseCounts[tag]++
	}

	d.verses = append(d.verses, Verse{
		Def:  def,
		Text: strings.TrimRight(text, " \t\r\n\v\f"),
		Lang: lang,
	})
	// A verse name covers every verse sharing it, so one entry is enough.
	if !slices.Contains(d.generatedOrder, def) {
		d.generatedOrder = append(d.generatedOrder, def)
	}
}

// RepeatVerse appends def to the generated order again, or the last entry of
// the generated order when def is empty. A bare type letter is treated as the
// first verse of that type. Repeating a verse that was never added returns
// a NotFoundError and changes nothing. It is a no-op before the first verse.
func (d *Draft) RepeatVerse(def string) error {
	if len(d.generatedOrder) == 0 {
		return nil
	}
	if def == "" {
		d.generatedOrder = append(d.generatedOrder, d.generatedOrder[len(d.generatedOrder)-1])
		d.orderMeaningful = true
		return nil
	}
	if len(def) == 1 {
		def += "1"
	}
	if !slices.Contains(d.generatedOrder, def) {
		return errors.NewNotFound("verse", def)
	}
	d.generatedOrder = append(d.generatedOrder, def)
	d.orderMeaningful = true
	return nil
}

// VerseCount returns the highest verse number seen for a type letter.
func (d *Draft) VerseCount(tag string) int {
	return d.verseCounts[tag]
}

// VerseLen returns the number of distinct verses stored.
func (d *Draft) VerseLen() int {
	return len(d.verses)
}

// GeneratedOrder returns a copy of the order derived from verse arrival.
func (d *Draft) GeneratedOrder() []string {
	return slices.Clone(d.generatedOrder)
}

// ExplicitOrder returns a copy of the order supplied by the source.
func (d *Draft) ExplicitOrder() []string {
	return slices.Clone(d.explicitOrder)
}

// OrderMeaningful reports whether the generated order records a repeat.
func (d *Draft) OrderMeaningful() bool {
	return d.orderMeaningful
}

// Finalize validates the draft and returns the finished song. A song needs a
// title and at least one verse; otherwise an IncompleteSongError is returned.
// The draft is reset in either case.
func (d *Draft) Finalize() (*Song, error) {
	defer d.Reset()

	if d.title == "" {
		return nil, errors.NewIncompleteSong("missing title")
	}
	if len(d.verses) == 0 {
		return nil, errors.NewIncompleteSong("no verses")
	}

	verses, retyped := d.canonicalVerses()

	order := d.explicitOrder
	if len(order) == 0 && d.orderMeaningful {
		order = d.generatedOrder
	}
	finalOrder := make([]string, len(order))
	for i, def := range order {
		if newDef, ok := retyped[def]; ok {
			def = newDef
		}
		finalOrder[i] = def
	}

	return &Song{
		Title:          d.title,
		AlternateTitle: d.alternateTitle,
		SongNumber:     d.songNumber,
		Copyright:      d.copyright,
		Comments:       d.comments,
		CCLINumber:     d.ccliNumber,
		Authors:        slices.Clone(d.authors),
		Topics:         cleanTopics(d.topics),
		SongBook:       d.songBook,
		Verses:         verses,
		VerseOrder:     strings.Join(finalOrder, " "),
	}, nil
}

// canonicalVerses lower-cases known type letters, renames verses with an
// unknown type letter to fresh Other names and normalizes their text. It
// returns the verses and the old-to-new names of every renamed verse.
func (d *Draft) canonicalVerses() ([]Verse, map[string]string) {
	nextOther := 1
	for _, v := range d.verses {
		tag, _ := SplitDef(v.Def)
		if strings.ToLower(tag) != TypeOther.Tag() {
			continue
		}
		if n, ok := defNumber(v.Def); ok && n >= nextOther {
			nextOther = n + 1
		}
	}

	retyped := make(map[string]string)
	verses := make([]Verse, len(d.verses))
	for i, v := range d.verses {
		tag, number := SplitDef(v.Def)
		def := strings.ToLower(tag) + number
		if _, known := TypeForTag(v.Def[0]); !known {
			def = fmt.Sprintf("%s%d", TypeOther.Tag(), nextOther)
			nextOther++
		}
		if def != v.Def {
			retyped[v.Def] = def
		}
		verses[i] = Verse{Def: def, Text: NormalizeText(v.Text), Lang: v.Lang}
	}
	return verses, retyped
}

func cleanTopics(topics []string) []string {
	var out []string
	for _, t := range topics {
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
