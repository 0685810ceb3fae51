package songshowplus

import (
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"os"
	"regexp"
	"strings"

	"github.com/FocuswithJustin/SongBridge/core/encoding"
	"github.com/FocuswithJustin/SongBridge/core/errors"
	"github.com/FocuswithJustin/SongBridge/core/song"
	"github.com/FocuswithJustin/SongBridge/internal/logging"
)

// Options configures a Decoder.
type Options struct {
	// Text decodes field bytes. Nil means the default legacy code page with
	// double-encoding repair enabled.
	Text *encoding.TextDecoder
	// Logger receives per-block diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Result is a decoded song plus the non-fatal problems found on the way.
type Result struct {
	Song     *song.Song
	Warnings []error
	// Blocks counts the blocks read, skipped ones included.
	Blocks int
}

// Decoder turns SongShow Plus streams into songs. A Decoder holds one draft
// and must not be shared between goroutines.
type Decoder struct {
	text  *encoding.TextDecoder
	log   *slog.Logger
	draft *song.Draft
}

// NewDecoder returns a decoder configured by opts.
func NewDecoder(opts Options) *Decoder {
	text := opts.Text
	if text == nil {
		text = encoding.MustTextDecoder(encoding.DefaultLegacyCodePage, true)
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Decoder{text: text, log: log, draft: song.NewDraft()}
}

// DecodeFile opens path and decodes it.
func DecodeFile(path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()

	res, err := NewDecoder(opts).Decode(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return res, nil
}

// Decode reads blocks from r until the terminator and finalizes the song.
//
// Unknown blocks and unparsable fields are reported in Result.Warnings. A
// stream that ends where a block should start is also a warning; the song is
// finalized from what was read. Truncated fields, I/O failures and songs
// without a title or verses are returned as errors and no partial song is
// produced.
func (d *Decoder) Decode(r io.ReadSeeker) (*Result, error) {
	d.draft.Reset()

	br, err := NewBlockReader(r, d.text)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for {
		b, err := br.Next()
		if err == io.EOF {
			break
		}
		if errors.Is(err, errors.ErrPrematureEnd) {
			d.log.Warn("file ended prematurely", "offset", br.Offset())
			res.Warnings = append(res.Warnings, err)
			break
		}
		if err != nil {
			d.draft.Reset()
			return nil, err
		}
		res.Blocks++

		werr := d.Apply(b)
		if werr == nil {
			continue
		}
		res.Warnings = append(res.Warnings, werr)

		var unknown *errors.UnknownBlockError
		if errors.As(werr, &unknown) {
			logging.BlockSkipped(d.log, uint32(b.Tag), b.Offset, b.NextOffset)
			if err := br.Skip(b); err != nil {
				d.draft.Reset()
				return nil, err
			}
			continue
		}
		d.log.Warn("field not decoded", "tag", b.Tag.String(), "offset", b.Offset, "error", werr)
	}

	s, err := d.draft.Finalize()
	if err != nil {
		return nil, err
	}
	res.Song = s
	return res, nil
}

// ccliDigits finds the first run of digits in a CCLI field.
var ccliDigits = regexp.MustCompile(`\d+`)

// Apply interprets one block into the decoder's draft. It returns an
// *errors.UnknownBlockError for tags outside the vocabulary and an
// *errors.UnparsableFieldError for fields that cannot be read; both leave the
// draft usable.
func (d *Decoder) Apply(b *RawBlock) error {
	switch b.Tag {
	case TagTitle:
		d.draft.SetTitle(d.text.Decode(b.Payload))
	case TagAuthor:
		d.addAuthors(d.text.Decode(b.Payload))
	case TagCopyright:
		d.draft.AddCopyright(d.text.Decode(b.Payload))
	case TagCCLINumber:
		field := d.text.Decode(b.Payload)
		digits := ccliDigits.FindString(field)
		if digits == "" {
			return &errors.UnparsableFieldError{Field: "CCLI number", Value: field}
		}
		d.draft.SetCCLINumber(trimLeadingZeros(digits))
	case TagVerse, TagChorus, TagBridge:
		def := fmt.Sprintf("%s%d", b.Tag.verseLetter(), b.VerseNumber)
		d.draft.AddVerse(d.text.Decode(b.Payload), def, "")
	case TagCustomVerse:
		def, _ := d.draft.VerseTag(b.VerseName, false)
		d.draft.AddVerse(d.text.Decode(b.Payload), def, "")
	case TagTopic:
		d.draft.AddTopic(d.text.Decode(b.Payload))
	case TagComments:
		d.draft.SetComments(d.text.Decode(b.Payload))
	case TagVerseOrder:
		field := d.text.Decode(b.Payload)
		labels := SplitVerseOrder(field)
		// A custom verse name may itself contain spaces.
		if d.draft.Labels().Known(field) {
			labels = []string{field}
		}
		for _, label := range labels {
			if def, ok := d.draft.VerseTag(label, true); ok {
				d.draft.AddVerseOrder(def)
			}
		}
	case TagSongBook:
		d.draft.SetSongBook(d.text.Decode(b.Payload))
	case TagSongNumber:
		d.draft.SetSongNumber(SongNumber(b.Payload))
	default:
		return &errors.UnknownBlockError{Tag: uint32(b.Tag), Offset: b.Offset, Next: b.NextOffset}
	}
	return nil
}

// addAuthors credits every author in a " / " separated field, turning
// "Last, First" into "First Last".
func (d *Decoder) addAuthors(field string) {
	for _, author := range strings.Split(field, " / ") {
		if strings.Contains(author, ",") {
			parts := strings.Split(author, ", ")
			if len(parts) > 1 {
				author = parts[1] + " " + parts[0]
			}
		}
		d.draft.AddAuthor(author, "")
	}
}

// SongNumber renders little-endian number bytes in decimal. An empty slice
// is zero.
func SongNumber(le []byte) string {
	be := make([]byte, len(le))
	for i, b := range le {
		be[len(le)-1-i] = b
	}
	return new(big.Int).SetBytes(be).String()
}

func trimLeadingZeros(digits string) string {
	trimmed := strings.TrimLeft(digits, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}
