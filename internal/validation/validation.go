// Package validation checks input paths and derives safe, collision-free
// output file names from song titles.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxFilenameLength is the maximum length of a generated file name in bytes.
	MaxFilenameLength = 255
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
	// maxCollisions bounds the " (n)" suffix search.
	maxCollisions = 10000
)

// Common validation errors.
var (
	ErrPathTraversal    = errors.New("path traversal detected")
	ErrInvalidFilename  = errors.New("invalid filename")
	ErrPathTooLong      = errors.New("path too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrNoFreeName       = errors.New("no free output name")
)

// FallbackName is used for songs whose title sanitizes to nothing.
const FallbackName = "untitled"

// ValidatePath rejects empty paths, over-long paths and paths with control
// characters.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}
	return nil
}

// SanitizePath checks that a relative entry name stays inside baseDir and
// returns it cleaned. Bundle entries are named through it.
func SanitizePath(baseDir, userPath string) (string, error) {
	if err := ValidatePath(userPath); err != nil {
		return "", err
	}

	cleanPath := filepath.Clean(userPath)
	if filepath.IsAbs(cleanPath) {
		return "", fmt.Errorf("%w: absolute path not allowed", ErrPathTraversal)
	}
	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(baseDir, cleanPath))
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	relPath, err := filepath.Rel(absBase, absPath)
	if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	return cleanPath, nil
}

// reservedChars cannot appear in file names on at least one common platform.
const reservedChars = `<>:"/\|?*`

// SanitizeFilename turns a song title into a file name stem. Reserved and
// control characters become "_", surrounding spaces and dots are trimmed and
// the result is cut to fit MaxFilenameLength once ext is appended. A title
// with nothing usable yields FallbackName.
func SanitizeFilename(title, ext string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(title) {
		switch {
		case unicode.IsControl(r):
			b.WriteByte('_')
		case strings.ContainsRune(reservedChars, r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	name := strings.Trim(b.String(), " .")
	if strings.Trim(name, "_") == "" {
		name = FallbackName
	}

	// Room for the extension and the widest collision suffix.
	limit := MaxFilenameLength - len(ext) - len(" (10000)")
	if len(name) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = strings.TrimRight(name[:cut], " .")
	}
	return name
}

// ValidateFilename checks that name is a single path element that is safe
// to create.
func ValidateFilename(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrInvalidFilename
	}
	if len(name) > MaxFilenameLength {
		return fmt.Errorf("%w: too long", ErrInvalidFilename)
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%w: path separator not allowed", ErrInvalidFilename)
	}
	return nil
}

// CreateOutput creates dir/stem+ext for writing. Unless overwrite is set an
// existing file is never replaced: the names "stem (2)ext", "stem (3)ext" and
// so on are tried in turn. The file is created exclusively, so concurrent
// callers asking for the same stem get distinct files.
func CreateOutput(dir, stem, ext string, overwrite bool) (*os.File, string, error) {
	if err := ValidateFilename(stem + ext); err != nil {
		return nil, "", err
	}
	if overwrite {
		path := filepath.Join(dir, stem+ext)
		f, err := os.Create(path)
		if err != nil {
			return nil, "", err
		}
		return f, path, nil
	}

	for n := 1; n <= maxCollisions; n++ {
		name := stem + ext
		if n > 1 {
			name = fmt.Sprintf("%s (%d)%s", stem, n, ext)
		}
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("%w for %s%s in %s", ErrNoFreeName, stem, ext, dir)
}

// FileType represents a detected file type.
type FileType string

const (
	FileTypeTarXZ   FileType = "tar.xz"
	FileTypeTarGZ   FileType = "tar.gz"
	FileTypeGzip    FileType = "gzip"
	FileTypeXZ      FileType = "xz"
	FileTypeSQLite  FileType = "sqlite"
	FileTypeXML     FileType = "xml"
	FileTypeText    FileType = "text"
	FileTypeUnknown FileType = "unknown"
)

var magicBytes = []struct {
	fileType FileType
	magic    []byte
}{
	{FileTypeGzip, []byte{0x1f, 0x8b}},
	{FileTypeXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{FileTypeSQLite, []byte("SQLite format 3\x00")},
	{FileTypeXML, []byte("<?xml")},
	{FileTypeXML, []byte("\xef\xbb\xbf<?xml")},
}

// ValidateFileType checks that the content of reader matches the type its
// file name claims and returns that type. Compressed tarballs are recognized
// by their compression header.
func ValidateFileType(reader io.Reader, filename string) (FileType, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(reader, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FileTypeUnknown, fmt.Errorf("failed to read file header: %w", err)
	}
	buf = buf[:n]

	detected := detectFileTypeFromMagic(buf)
	expected := detectFileTypeFromExtension(filename)

	switch {
	case expected == FileTypeTarXZ && detected == FileTypeXZ:
		return FileTypeTarXZ, nil
	case expected == FileTypeTarGZ && detected == FileTypeGzip:
		return FileTypeTarGZ, nil
	case detected == expected:
		return detected, nil
	case detected == FileTypeUnknown && expected == FileTypeText && isLikelyText(buf):
		return FileTypeText, nil
	case detected == FileTypeUnknown && expected == FileTypeXML && isLikelyText(buf):
		// XML without a declaration.
		return FileTypeXML, nil
	case detected == FileTypeUnknown && expected == FileTypeUnknown:
		return FileTypeUnknown, nil
	}
	return FileTypeUnknown, fmt.Errorf("file type mismatch: extension suggests %s but content is %s", expected, detected)
}

func detectFileTypeFromMagic(buf []byte) FileType {
	for _, sig := range magicBytes {
		if bytes.HasPrefix(buf, sig.magic) {
			return sig.fileType
		}
	}
	return FileTypeUnknown
}

func detectFileTypeFromExtension(filename string) FileType {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return FileTypeTarXZ
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return FileTypeTarGZ
	}

	switch filepath.Ext(lower) {
	case ".xz":
		return FileTypeXZ
	case ".gz":
		return FileTypeGzip
	case ".db", ".sqlite", ".sqlite3":
		return FileTypeSQLite
	case ".xml":
		return FileTypeXML
	case ".txt":
		return FileTypeText
	default:
		return FileTypeUnknown
	}
}

// isLikelyText reports whether buf is mostly printable and free of NULs.
// Bytes at or above 0x80 are treated as neutral so UTF-8 and legacy code
// pages both pass.
func isLikelyText(buf []byte) bool {
	if len(buf) == 0 || bytes.IndexByte(buf, 0) != -1 {
		return false
	}
	printable, control := 0, 0
	for _, b := range buf {
		switch {
		case b >= 0x20 && b <= 0x7e, b == '\t', b == '\n', b == '\r':
			printable++
		case b < 0x20:
			control++
		}
	}
	return printable > 0 && float64(printable)/float64(printable+control) > 0.95
}
