// Package song provides the neutral song record shared by every importer and
// exporter, and the draft that consolidates a song while a source file is
// being decoded.
//
// # Lifecycle
//
// A Draft is created per source file. Importers feed it field by field
// (SetTitle, AddAuthor, AddVerse, ...). When the source is exhausted,
// Finalize checks that the song is complete, canonicalizes verse names and
// the verse order, and returns a Song. Finalize always leaves the draft empty
// so it can accumulate the next file; no state carries over between files.
//
// # Verse names
//
// A verse name ("verse_def") is a type letter followed by a number:
//
//   - v: Verse
//   - c: Chorus
//   - b: Bridge
//   - p: Pre-Chorus
//   - i: Intro
//   - e: Ending
//   - o: Other
//
// Free-text labels such as "Verse 2" or "Tag" are mapped onto verse names by
// the draft's VerseTagNormalizer. Labels that are not a known type are
// numbered as Other verses in order of first appearance, per file.
//
// # Deduplication
//
// Adding a verse whose trimmed text matches a stored verse does not store it
// again; the stored verse's name is appended to the generated verse order
// instead. The generated order is only kept when such a repeat was observed,
// or RepeatVerse was called, and no explicit order was supplied.
//
// # Example
//
//	d := song.NewDraft()
//	d.SetTitle("Amazing Grace")
//	d.AddVerse("Amazing grace, how sweet the sound", "v1", "")
//	d.AddVerse("Amazing grace, how sweet the sound", "v1", "")
//	s, err := d.Finalize()
//	// s.VerseOrder == "v1 v1", len(s.Verses) == 1
package song
