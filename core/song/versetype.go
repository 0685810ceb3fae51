package song

import (
	"strconv"
	"strings"
)

// VerseType enumerates the verse kinds a verse name can carry.
type VerseType int

const (
	TypeVerse VerseType = iota
	TypeChorus
	TypeBridge
	TypePreChorus
	TypeIntro
	TypeEnding
	TypeOther
)

var verseTypeNames = [...]string{"Verse", "Chorus", "Bridge", "Pre-Chorus", "Intro", "Ending", "Other"}

// VerseTypes lists every verse type in canonical order.
var VerseTypes = []VerseType{TypeVerse, TypeChorus, TypeBridge, TypePreChorus, TypeIntro, TypeEnding, TypeOther}

// Name returns the display name, e.g. "Pre-Chorus".
func (t VerseType) Name() string {
	if t < TypeVerse || t > TypeOther {
		return verseTypeNames[TypeOther]
	}
	return verseTypeNames[t]
}

// Tag returns the single-letter tag, e.g. "p".
func (t VerseType) Tag() string {
	return strings.ToLower(t.Name()[:1])
}

func (t VerseType) String() string {
	return t.Name()
}

// TypeForTag returns the verse type for a tag letter. The lookup is
// case-insensitive.
func TypeForTag(tag byte) (VerseType, bool) {
	lower := strings.ToLower(string(tag))
	for _, t := range VerseTypes {
		if t.Tag() == lower {
			return t, true
		}
	}
	return TypeOther, false
}

// SplitDef splits a verse name into its tag letter and numeric part. The
// numeric part is the empty string when the name carries no number.
func SplitDef(def string) (tag string, number string) {
	if def == "" {
		return "", ""
	}
	return def[:1], def[1:]
}

// LabelForDef renders a verse name for people: "v2" -> "Verse 2",
// "p1" -> "Pre-Chorus 1". Unknown tags are returned unchanged.
func LabelForDef(def string) string {
	tag, number := SplitDef(def)
	if tag == "" {
		return def
	}
	t, ok := TypeForTag(tag[0])
	if !ok {
		return def
	}
	if number == "" {
		number = "1"
	}
	return t.Name() + " " + number
}

// defNumber parses the numeric part of a verse name.
func defNumber(def string) (int, bool) {
	_, number := SplitDef(def)
	if number == "" {
		return 0, false
	}
	n, err := strconv.Atoi(number)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
