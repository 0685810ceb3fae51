package songshowplus

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/FocuswithJustin/SongBridge/core/encoding"
	"github.com/FocuswithJustin/SongBridge/core/errors"
)

// BlockReader reads raw blocks from a SongShow Plus stream.
//
// Next returns io.EOF once the terminator block has been read. If the stream
// ends where a block tag should start, Next returns an error matching
// errors.ErrPrematureEnd; everything read before that point is still valid.
// A fixed-size field cut short yields a *errors.StreamTruncatedError.
type BlockReader struct {
	r    io.ReadSeeker
	text *encoding.TextDecoder
	pos  int64
	done bool
}

// NewBlockReader starts reading blocks at the current position of r. Verse
// names are decoded with text.
func NewBlockReader(r io.ReadSeeker, text *encoding.TextDecoder) (*BlockReader, error) {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, errors.NewIO("seek", "", err)
	}
	return &BlockReader{r: r, text: text, pos: pos}, nil
}

// Offset returns the current stream position.
func (br *BlockReader) Offset() int64 {
	return br.pos
}

// Next reads the next block.
func (br *BlockReader) Next() (*RawBlock, error) {
	if br.done {
		return nil, io.EOF
	}

	start := br.pos
	var head [4]byte
	n, err := io.ReadFull(br.r, head[:])
	br.pos += int64(n)
	if err != nil {
		br.done = true
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("offset %d: %w", start, errors.ErrPrematureEnd)
		}
		return nil, errors.NewIO("read", "", err)
	}
	tag := Tag(binary.LittleEndian.Uint32(head[:]))
	if tag == TagEnd {
		br.done = true
		return nil, io.EOF
	}

	length, err := br.readUint32("block length")
	if err != nil {
		return nil, err
	}
	b := &RawBlock{
		Tag:        tag,
		Offset:     start,
		NextOffset: br.pos + int64(length),
	}

	switch {
	case tag.HasVerseNumber():
		pair, err := br.readN("verse number", 2)
		if err != nil {
			return nil, err
		}
		b.VerseNumber = int(pair[1])
	case tag == TagCustomVerse:
		pair, err := br.readN("verse name length", 2)
		if err != nil {
			return nil, err
		}
		name, err := br.readN("verse name", int(pair[1]))
		if err != nil {
			return nil, err
		}
		b.VerseName = br.text.Decode(name)
	}

	code, err := br.readN("length code", 1)
	if err != nil {
		return nil, err
	}
	b.LengthCode = code[0]

	if tag == TagSongNumber {
		size := int(b.LengthCode) - 1
		if size < 0 {
			size = 0
		}
		if b.Payload, err = br.readN("song number", size); err != nil {
			return nil, err
		}
		return b, nil
	}

	size, err := br.fieldLength(b.LengthCode)
	if err != nil {
		return nil, err
	}
	if b.Payload, err = br.readPayload(tag, size); err != nil {
		return nil, err
	}
	return b, nil
}

// Skip moves the stream to the block following b.
func (br *BlockReader) Skip(b *RawBlock) error {
	pos, err := br.r.Seek(b.NextOffset, io.SeekStart)
	if err != nil {
		return errors.NewIO("seek", "", err)
	}
	br.pos = pos
	return nil
}

// fieldLength decodes the payload length announced by a length code.
func (br *BlockReader) fieldLength(code byte) (int64, error) {
	switch code {
	case codeLength32A, codeLength32B:
		n, err := br.readUint32("field length")
		return int64(n), err
	case codeSingle:
		return 1, nil
	case codeEmpty:
		return 0, nil
	default:
		b, err := br.readN("field length", 1)
		if err != nil {
			return 0, err
		}
		return int64(b[0]), nil
	}
}

// readPayload reads size payload bytes. The buffer grows with the data
// actually read, so a corrupt length cannot force a huge allocation. A short
// payload is tolerated for unknown tags because the caller resynchronizes by
// offset.
func (br *BlockReader) readPayload(tag Tag, size int64) ([]byte, error) {
	start := br.pos
	var buf bytes.Buffer
	n, err := io.CopyN(&buf, br.r, size)
	br.pos += n
	if err != nil {
		if err != io.EOF {
			return nil, errors.NewIO("read", "", err)
		}
		if tag.Known() {
			return nil, errors.NewStreamTruncated("payload", start, io.ErrUnexpectedEOF)
		}
	}
	return buf.Bytes(), nil
}

func (br *BlockReader) readUint32(field string) (uint32, error) {
	b, err := br.readN(field, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (br *BlockReader) readN(field string, n int) ([]byte, error) {
	start := br.pos
	buf := make([]byte, n)
	got, err := io.ReadFull(br.r, buf)
	br.pos += int64(got)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errors.NewStreamTruncated(field, start, io.ErrUnexpectedEOF)
		}
		return nil, errors.NewIO("read", "", err)
	}
	return buf, nil
}

// Sniff reports whether header starts like a song file: with a known block
// tag.
func Sniff(header []byte) bool {
	if len(header) < 4 {
		return false
	}
	return Tag(binary.LittleEndian.Uint32(header)).Known()
}
