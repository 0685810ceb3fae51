package songshowplus

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/FocuswithJustin/SongBridge/core/encoding"
	"github.com/FocuswithJustin/SongBridge/core/errors"
	"github.com/FocuswithJustin/SongBridge/core/song"
)

func decode(t *testing.T, data []byte) (*Result, error) {
	t.Helper()
	return NewDecoder(Options{}).Decode(bytes.NewReader(data))
}

func mustDecode(t *testing.T, data []byte) *Result {
	t.Helper()
	res, err := decode(t, data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return res
}

func TestDecodeDuplicateVerseRoundTrip(t *testing.T) {
	res := mustDecode(t, stream(
		textBlock(TagTitle, "Amazing Grace"),
		verseBlock(TagVerse, 1, "Amazing grace how sweet the sound"),
		verseBlock(TagVerse, 1, "Amazing grace how sweet the sound"),
		textBlock(TagVerseOrder, "v1 v1"),
	))

	s := res.Song
	if s.Title != "Amazing Grace" {
		t.Errorf("Title = %q, want %q", s.Title, "Amazing Grace")
	}
	want := []song.Verse{{Def: "v1", Text: "Amazing grace how sweet the sound"}}
	if diff := cmp.Diff(want, s.Verses); diff != "" {
		t.Errorf("Verses mismatch (-want +got):\n%s", diff)
	}
	if s.VerseOrder != "v1 v1" {
		t.Errorf("VerseOrder = %q, want %q", s.VerseOrder, "v1 v1")
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", res.Warnings)
	}
}

func TestDecodeMetadata(t *testing.T) {
	res := mustDecode(t, stream(
		textBlock(TagTitle, "It Is Well"),
		textBlock(TagAuthor, "Spafford, Horatio / Bliss, Philip P."),
		textBlock(TagCopyright, "Public Domain"),
		textBlock(TagCopyright, "Public Domain"),
		textBlock(TagCCLINumber, "CCLI #0025376"),
		textBlock(TagTopic, "Peace"),
		textBlock(TagTopic, "Peace"),
		textBlock(TagTopic, "Trust"),
		textBlock(TagComments, "first"),
		textBlock(TagComments, "second"),
		textBlock(TagSongBook, "Hymns of Faith"),
		songNumberBlock(0x42),
		verseBlock(TagVerse, 1, "When peace like a river"),
		verseBlock(TagChorus, 1, "It is well"),
	))

	s := res.Song
	wantAuthors := []song.Author{{Name: "Horatio Spafford"}, {Name: "Philip P. Bliss"}}
	if diff := cmp.Diff(wantAuthors, s.Authors); diff != "" {
		t.Errorf("Authors mismatch (-want +got):\n%s", diff)
	}
	checks := []struct{ field, got, want string }{
		{"Copyright", s.Copyright, "Public Domain"},
		{"CCLINumber", s.CCLINumber, "25376"},
		{"Comments", s.Comments, "second"},
		{"SongBook", s.SongBook, "Hymns of Faith"},
		{"SongNumber", s.SongNumber, "66"},
		{"VerseOrder", s.VerseOrder, ""},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}
	if diff := cmp.Diff([]string{"Peace", "Trust"}, s.Topics); diff != "" {
		t.Errorf("Topics mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSkipsUnknownBlock(t *testing.T) {
	res := mustDecode(t, stream(
		textBlock(TagTitle, "Song"),
		verseBlock(TagVerse, 1, "one"),
		block(Tag(77), []byte{0x01, 0x02, 0x03}, []byte("future data")),
		verseBlock(TagChorus, 1, "refrain"),
	))

	var defs []string
	for _, v := range res.Song.Verses {
		defs = append(defs, v.Def)
	}
	if diff := cmp.Diff([]string{"v1", "c1"}, defs); diff != "" {
		t.Errorf("verse defs mismatch (-want +got):\n%s", diff)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want one", res.Warnings)
	}
	var unknown *errors.UnknownBlockError
	if !errors.As(res.Warnings[0], &unknown) || unknown.Tag != 77 {
		t.Errorf("warning = %v, want UnknownBlockError for tag 77", res.Warnings[0])
	}
	if res.Blocks != 4 {
		t.Errorf("Blocks = %d, want 4", res.Blocks)
	}
}

func TestDecodeCustomVerses(t *testing.T) {
	res := mustDecode(t, stream(
		textBlock(TagTitle, "Song"),
		customBlock("Intro A", "hum"),
		verseBlock(TagVerse, 1, "words"),
		customBlock("Intro A", "hum louder"),
		customBlock("Tag", "ending line"),
		textBlock(TagVerseOrder, "Intro A"),
		textBlock(TagVerseOrder, "Verse 1 Tag"),
		textBlock(TagVerseOrder, "Coda"),
	))

	var defs []string
	for _, v := range res.Song.Verses {
		defs = append(defs, v.Def)
	}
	if diff := cmp.Diff([]string{"o1", "v1", "o1", "o2"}, defs); diff != "" {
		t.Errorf("verse defs mismatch (-want +got):\n%s", diff)
	}
	if got, want := res.Song.VerseOrder, "o1 v1 o2"; got != want {
		t.Errorf("VerseOrder = %q, want %q", got, want)
	}
}

func TestDecodeUnparsableCCLI(t *testing.T) {
	res := mustDecode(t, stream(
		textBlock(TagTitle, "Song"),
		textBlock(TagCCLINumber, "pending"),
		verseBlock(TagVerse, 1, "words"),
	))
	if res.Song.CCLINumber != "" {
		t.Errorf("CCLINumber = %q, want empty", res.Song.CCLINumber)
	}
	if len(res.Warnings) != 1 || !errors.Is(res.Warnings[0], errors.ErrUnparsableField) {
		t.Errorf("Warnings = %v, want one unparsable field", res.Warnings)
	}
}

func TestDecodePrematureEnd(t *testing.T) {
	data := stream(textBlock(TagTitle, "Song"), verseBlock(TagVerse, 1, "words"))
	res := mustDecode(t, data[:len(data)-4])
	if res.Song.Title != "Song" || len(res.Song.Verses) != 1 {
		t.Errorf("Song = %+v, want title and one verse", res.Song)
	}
	if len(res.Warnings) != 1 || !errors.Is(res.Warnings[0], errors.ErrPrematureEnd) {
		t.Errorf("Warnings = %v, want premature end", res.Warnings)
	}
}

func TestDecodeFatal(t *testing.T) {
	title := textBlock(TagTitle, "Song")
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"truncated", append(title, verseBlock(TagVerse, 1, "words")[:11]...), errors.ErrStreamTruncated},
		{"short payload after a complete song", bytes.Join([][]byte{
			title,
			verseBlock(TagVerse, 1, "words"),
			verseBlock(TagVerse, 2, "more words")[:16],
		}, nil), errors.ErrStreamTruncated},
		{"no title", stream(verseBlock(TagVerse, 1, "words")), errors.ErrIncompleteSong},
		{"no verses", stream(title), errors.ErrIncompleteSong},
		{"empty", nil, errors.ErrIncompleteSong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := decode(t, tt.data)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Decode() error = %v, want %v", err, tt.want)
			}
			if res != nil {
				t.Errorf("Decode() result = %+v, want nil", res)
			}
		})
	}
}

func TestDecoderReuse(t *testing.T) {
	dec := NewDecoder(Options{})
	broken := bytes.Join([][]byte{
		textBlock(TagTitle, "Broken"),
		textBlock(TagAuthor, "Someone Else"),
		customBlock("Intro", "hum"),
		textBlock(TagTitle, "x")[:6],
	}, nil)
	if _, err := dec.Decode(bytes.NewReader(broken)); !errors.Is(err, errors.ErrStreamTruncated) {
		t.Fatalf("Decode() of truncated stream error = %v, want ErrStreamTruncated", err)
	}

	res, err := dec.Decode(bytes.NewReader(stream(
		textBlock(TagTitle, "Clean"),
		customBlock("Outro", "bye"),
	)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(res.Song.Authors) != 0 {
		t.Errorf("Authors = %v, leaked from previous file", res.Song.Authors)
	}
	if got := res.Song.Verses[0].Def; got != "o1" {
		t.Errorf("Def = %q, want o1 (registry must reset per file)", got)
	}
}

func TestDecodeLegacyCodePage(t *testing.T) {
	// "Слава" in windows-1251.
	cp1251 := string([]byte{0xD1, 0xEB, 0xE0, 0xE2, 0xE0})
	res := mustDecode(t, stream(
		textBlock(TagTitle, cp1251),
		verseBlock(TagVerse, 1, "Аминь"),
	))
	if res.Song.Title != "Слава" {
		t.Errorf("Title = %q, want %q", res.Song.Title, "Слава")
	}
	if got := res.Song.Verses[0].Text; got != "Аминь" {
		t.Errorf("verse text = %q, want %q", got, "Аминь")
	}

	latin := encoding.MustTextDecoder("windows-1252", false)
	res, err := NewDecoder(Options{Text: latin}).Decode(bytes.NewReader(stream(
		textBlock(TagTitle, string([]byte{'C', 'a', 'f', 0xE9})),
		verseBlock(TagVerse, 1, "x"),
	)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if res.Song.Title != "Café" {
		t.Errorf("Title = %q, want %q", res.Song.Title, "Café")
	}
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grace.sbsong")
	data := stream(textBlock(TagTitle, "Grace"), verseBlock(TagVerse, 1, "words"))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	res, err := DecodeFile(path, Options{})
	if err != nil {
		t.Fatalf("DecodeFile() error = %v", err)
	}
	if res.Song.Title != "Grace" {
		t.Errorf("Title = %q, want %q", res.Song.Title, "Grace")
	}

	_, err = DecodeFile(filepath.Join(t.TempDir(), "missing.sbsong"), Options{})
	var ioErr *errors.IOError
	if !errors.As(err, &ioErr) {
		t.Errorf("DecodeFile(missing) error = %v, want IOError", err)
	}
}
