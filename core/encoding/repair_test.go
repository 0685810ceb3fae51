package encoding

import (
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestNewTextDecoder(t *testing.T) {
	tests := []struct {
		name     string
		codePage string
		wantErr  bool
	}{
		{"default", "", false},
		{"windows-1251", "windows-1251", false},
		{"cp1251 label", "cp1251", false},
		{"windows-1252", "windows-1252", false},
		{"unknown", "klingon-8", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewTextDecoder(tt.codePage, true)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewTextDecoder(%q) error = %v, wantErr %v", tt.codePage, err, tt.wantErr)
			}
			if err == nil && d.CodePage() == "" {
				t.Error("CodePage() is empty")
			}
		})
	}
}

func TestTextDecoderDecode(t *testing.T) {
	d := MustTextDecoder("windows-1251", true)

	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"ascii", []byte("Amazing grace"), "Amazing grace"},
		{"cyrillic utf-8", []byte("Слава Богу"), "Слава Богу"},
		{"not representable keeps utf-8", []byte("賛美歌 ♪"), "賛美歌 ♪"},
		{"legacy bytes", []byte{0xCF, 0xF0, 0xE8}, "При"},
		{"empty", []byte{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Decode(tt.input); got != tt.want {
				t.Errorf("Decode(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTextDecoderWithoutRepair(t *testing.T) {
	d := MustTextDecoder("windows-1252", false)
	if got, want := d.Decode([]byte("Grâce")), "Grâce"; got != want {
		t.Errorf("Decode() = %q, want %q", got, want)
	}
	// 0xE9 is é in windows-1252 and invalid as UTF-8 on its own.
	if got, want := d.Decode([]byte{'C', 'a', 'f', 0xE9}), "Café"; got != want {
		t.Errorf("Decode() = %q, want %q", got, want)
	}
}

func TestRepairDoubleEncoded(t *testing.T) {
	if got, want := RepairDoubleEncoded("Благодать", charmap.Windows1251), "Благодать"; got != want {
		t.Errorf("RepairDoubleEncoded() = %q, want %q", got, want)
	}
	if got, want := RepairDoubleEncoded("日本", charmap.Windows1251), "日本"; got != want {
		t.Errorf("RepairDoubleEncoded() = %q, want %q", got, want)
	}
}

func TestMustTextDecoderPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustTextDecoder did not panic on unknown code page")
		}
	}()
	MustTextDecoder("no-such-page", true)
}
