package song

import "testing"

func TestVerseTagNormalizerKnownTypes(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Verse 2", "v2"},
		{"verse", "v1"},
		{"Chorus", "c1"},
		{"CHORUS 3", "c3"},
		{"Bridge 1", "b1"},
		{"Pre-Chorus", "p1"},
		{"Verse 2a", "v2"},
		{"Verse 02", "v2"},
		{" Chorus ", "c1"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			n := NewVerseTagNormalizer()
			got, ok := n.Normalize(tt.label, false)
			if !ok || got != tt.want {
				t.Errorf("Normalize(%q) = %q, %v; want %q, true", tt.label, got, ok, tt.want)
			}
			if n.Len() != 0 {
				t.Errorf("known label %q registered as Other", tt.label)
			}
		})
	}
}

func TestVerseTagNormalizerOtherLabels(t *testing.T) {
	n := NewVerseTagNormalizer()

	steps := []struct {
		label string
		want  string
	}{
		{"Intro A", "o1"},
		{"Intro A", "o1"},
		{"Tag", "o2"},
		{"Ending 4", "o3"},
		{"Tag", "o2"},
	}
	for _, s := range steps {
		got, ok := n.Normalize(s.label, false)
		if !ok || got != s.want {
			t.Errorf("Normalize(%q) = %q, %v; want %q", s.label, got, ok, s.want)
		}
	}
	if n.Len() != 3 {
		t.Errorf("Len() = %d, want 3", n.Len())
	}
}

func TestVerseTagNormalizerIgnoreUnknown(t *testing.T) {
	n := NewVerseTagNormalizer()

	if got, ok := n.Normalize("Vamp", true); ok {
		t.Errorf("Normalize(Vamp, ignore) = %q, true; want dropped", got)
	}
	if n.Known("Vamp") {
		t.Error("ignored label was registered")
	}

	if _, ok := n.Normalize("Vamp", false); !ok {
		t.Fatal("Normalize(Vamp) dropped a custom verse")
	}
	got, ok := n.Normalize("Vamp", true)
	if !ok || got != "o1" {
		t.Errorf("Normalize(Vamp, ignore) = %q, %v; want o1, true", got, ok)
	}
	if got, ok := n.Normalize("Chorus 2", true); !ok || got != "c2" {
		t.Errorf("Normalize(Chorus 2, ignore) = %q, %v; want c2, true", got, ok)
	}
}

func TestDraftVerseTagStablePerFile(t *testing.T) {
	d := NewDraft()
	first, _ := d.VerseTag("My Bridge Thing", false)
	second, _ := d.VerseTag("My Bridge Thing", false)
	if first != second {
		t.Errorf("VerseTag not stable: %q then %q", first, second)
	}
	d.Reset()
	if d.Labels().Known("My Bridge Thing") {
		t.Error("Reset did not clear the label registry")
	}
}
