// Package songshowplus decodes SongShow Plus song files (.sbsong).
//
// A song file is a sequence of self-delimited blocks terminated by a zero
// tag:
//
//	tag          uint32 LE   what the block holds (title, verse, ...)
//	length       uint32 LE   bytes from here to the next block
//	[verse]      2 bytes     ignored byte, verse number     (verse, chorus, bridge)
//	[custom]     2 bytes     ignored byte, name length      (custom verse)
//	             n bytes     verse name
//	code         byte        how the field length is encoded
//	field length 0, 1 or 4   see fieldLength
//	payload      ...
//
// The song number block is special: its code byte is followed by code-1
// bytes holding the number as a little-endian unsigned integer.
//
// BlockReader yields raw blocks; Decoder interprets them into a song.Draft
// and finalizes the song. Unknown tags are skipped by seeking to the next
// block offset, so blocks added by later SongShow Plus versions do not break
// decoding.
package songshowplus
