package songshowplus

// RawBlock is one block as read from the stream, before interpretation.
type RawBlock struct {
	Tag Tag
	// Offset is where the block header starts.
	Offset int64
	// NextOffset is where the following block starts.
	NextOffset int64
	// VerseNumber is set for verse, chorus and bridge blocks.
	VerseNumber int
	// VerseName is set for custom verse blocks.
	VerseName string
	// LengthCode is the length-descriptor code byte.
	LengthCode byte
	// Payload holds the field bytes. For song number blocks it holds the
	// little-endian number bytes.
	Payload []byte
}

// fieldLength codes.
const (
	codeLength32A = 12
	codeLength32B = 20
	codeSingle    = 2
	codeEmpty     = 9
)
