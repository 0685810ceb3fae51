package song

import (
	"regexp"
	"strconv"
	"strings"
)

// labelNumber matches a label's leading non-digit prefix and the first run of
// digits after it. Anything after that run ("2a", "3.5") is ignored.
var labelNumber = regexp.MustCompile(`^(\D*)(\d+)`)

// labelTypes maps case-folded label prefixes to verse types.
var labelTypes = map[string]VerseType{
	"verse":      TypeVerse,
	"chorus":     TypeChorus,
	"bridge":     TypeBridge,
	"pre-chorus": TypePreChorus,
}

// VerseTagNormalizer maps free-text verse labels to verse names. Labels that
// are not a known verse type are registered as Other verses and numbered in
// order of first appearance. The registry is per file.
type VerseTagNormalizer struct {
	others map[string]int
	count  int
}

// NewVerseTagNormalizer returns an empty normalizer.
func NewVerseTagNormalizer() *VerseTagNormalizer {
	return &VerseTagNormalizer{others: make(map[string]int)}
}

// Normalize converts label to a verse name such as "v2" or "o1".
//
// With ignoreUnknown set, a label that is neither a known type nor already
// registered yields ok == false instead of being registered. Verse order
// lists use this mode so that stray words are dropped rather than invented
// as verses.
func (n *VerseTagNormalizer) Normalize(label string, ignoreUnknown bool) (def string, ok bool) {
	prefix, number := label, "1"
	if m := labelNumber.FindStringSubmatch(label); m != nil {
		prefix, number = m[1], m[2]
	}
	prefix = strings.ToLower(strings.TrimSpace(prefix))

	if t, known := labelTypes[prefix]; known {
		return t.Tag() + trimLeadingZeros(number), true
	}

	idx, seen := n.others[label]
	if !seen {
		if ignoreUnknown {
			return "", false
		}
		n.count++
		idx = n.count
		n.others[label] = idx
	}
	return TypeOther.Tag() + strconv.Itoa(idx), true
}

// Known reports whether label has been registered as an Other verse.
func (n *VerseTagNormalizer) Known(label string) bool {
	_, ok := n.others[label]
	return ok
}

// Len returns the number of registered Other labels.
func (n *VerseTagNormalizer) Len() int {
	return n.count
}

func (n *VerseTagNormalizer) reset() {
	n.others = make(map[string]int)
	n.count = 0
}

func trimLeadingZeros(number string) string {
	trimmed := strings.TrimLeft(number, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}
