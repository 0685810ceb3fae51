package song

import "testing"

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Amazing grace", "Amazing grace"},
		{"smart quotes", "‘Tis “so” sweet", `'Tis "so" sweet`},
		{"dashes and ellipsis", "Holy – holy — holy…", "Holy - holy - holy..."},
		{"crlf", "line one\r\nline two\rline three", "line one\nline two\nline three"},
		{"spaces around newline", "one \n two", "one\ntwo"},
		{"collapse whitespace", "a  \t b", "a b"},
		{"vertical tab is a verse break", "a\vb", "a\n\nb"},
		{"control chars removed", "a\x00b\x1fc\u0085d", "abcd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.input); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
