package songshowplus

import (
	"bytes"
	"encoding/binary"
)

// field encodes text behind a one-byte or four-byte length code.
func field(text string) []byte {
	if len(text) < 256 {
		return append([]byte{0x08, byte(len(text))}, text...)
	}
	out := []byte{codeLength32A, 0, 0, 0, 0}
	binary.LittleEndian.PutUint32(out[1:], uint32(len(text)))
	return append(out, text...)
}

// block frames body as one block with a correct relative length.
func block(tag Tag, body ...[]byte) []byte {
	rest := bytes.Join(body, nil)
	out := make([]byte, 8, 8+len(rest))
	binary.LittleEndian.PutUint32(out[0:], uint32(tag))
	binary.LittleEndian.PutUint32(out[4:], uint32(len(rest)))
	return append(out, rest...)
}

func textBlock(tag Tag, text string) []byte {
	return block(tag, field(text))
}

func verseBlock(tag Tag, number byte, text string) []byte {
	return block(tag, []byte{0, number}, field(text))
}

func customBlock(name, text string) []byte {
	return block(TagCustomVerse, []byte{0, byte(len(name))}, []byte(name), field(text))
}

func songNumberBlock(le ...byte) []byte {
	return block(TagSongNumber, []byte{byte(len(le) + 1)}, le)
}

// stream joins blocks and appends the terminator.
func stream(blocks ...[]byte) []byte {
	return append(bytes.Join(blocks, nil), 0, 0, 0, 0)
}
