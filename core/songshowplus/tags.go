package songshowplus

import "fmt"

// Tag identifies what a block holds.
type Tag uint32

const (
	TagEnd         Tag = 0
	TagTitle       Tag = 1
	TagAuthor      Tag = 2
	TagCopyright   Tag = 3
	TagCCLINumber  Tag = 5
	TagVerse       Tag = 12
	TagChorus      Tag = 20
	TagBridge      Tag = 24
	TagTopic       Tag = 29
	TagComments    Tag = 30
	TagVerseOrder  Tag = 31
	TagSongBook    Tag = 35
	TagSongNumber  Tag = 36
	TagCustomVerse Tag = 37
)

var tagNames = map[Tag]string{
	TagEnd:         "end",
	TagTitle:       "title",
	TagAuthor:      "author",
	TagCopyright:   "copyright",
	TagCCLINumber:  "ccli",
	TagVerse:       "verse",
	TagChorus:      "chorus",
	TagBridge:      "bridge",
	TagTopic:       "topic",
	TagComments:    "comments",
	TagVerseOrder:  "verse-order",
	TagSongBook:    "song-book",
	TagSongNumber:  "song-number",
	TagCustomVerse: "custom-verse",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint32(t))
}

// Known reports whether t is part of the decoded vocabulary.
func (t Tag) Known() bool {
	_, ok := tagNames[t]
	return ok && t != TagEnd
}

// HasVerseNumber reports whether blocks with this tag carry a verse number.
func (t Tag) HasVerseNumber() bool {
	return t == TagVerse || t == TagChorus || t == TagBridge
}

// verseLetter returns the verse type letter for verse-bearing tags.
func (t Tag) verseLetter() string {
	switch t {
	case TagVerse:
		return "v"
	case TagChorus:
		return "c"
	case TagBridge:
		return "b"
	}
	return ""
}
