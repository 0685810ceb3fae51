package song

import (
	"regexp"
	"strings"
)

var (
	replacementChars = strings.NewReplacer(
		"‘", "'", "’", "'",
		"“", `"`, "”", `"`,
		"…", "...",
		"–", "-", "—", "-",
		"\v", "\n\n", "\f", "\n\n",
	)
	controlChars    = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F-\x9F]`)
	newLineRegex    = regexp.MustCompile(` ?(\r\n?|\n) ?`)
	whitespaceRegex = regexp.MustCompile(`[ \t]+`)
)

// NormalizeText tidies verse text: typographic punctuation becomes ASCII,
// control characters are removed, line endings become "\n" and runs of
// spaces or tabs collapse to a single space.
func NormalizeText(s string) string {
	s = replacementChars.Replace(s)
	s = controlChars.ReplaceAllString(s, "")
	s = newLineRegex.ReplaceAllString(s, "\n")
	return whitespaceRegex.ReplaceAllString(s, " ")
}
