// Package base holds detection logic shared by the format handlers.
package base

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/FocuswithJustin/SongBridge/core/plugins"
)

// DefaultHeaderSize is how many leading bytes Sniff functions see.
const DefaultHeaderSize = 64

// DetectConfig configures DetectFile.
type DetectConfig struct {
	// Extensions lists accepted file extensions (e.g. ".sbsong").
	Extensions []string
	// FormatName is reported in the DetectResult.
	FormatName string
	// Sniff, if set, checks the leading bytes of the file. A file with a
	// listed extension must also pass Sniff; a file with another extension
	// is detected if Sniff passes.
	Sniff func(header []byte) bool
	// HeaderSize is the number of bytes passed to Sniff.
	HeaderSize int
}

// DetectFile checks path against config.
func DetectFile(path string, config DetectConfig) (*plugins.DetectResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return &plugins.DetectResult{Detected: false, Reason: fmt.Sprintf("cannot stat: %v", err)}, nil
	}
	if info.IsDir() {
		return &plugins.DetectResult{Detected: false, Reason: "path is a directory, not a file"}, nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	extensionMatch := false
	for _, validExt := range config.Extensions {
		if ext == strings.ToLower(validExt) {
			extensionMatch = true
			break
		}
	}

	if config.Sniff == nil {
		if extensionMatch {
			return detected(config, "file extension"), nil
		}
		return notDetected(config), nil
	}

	header, err := ReadHeader(path, config.HeaderSize)
	if err != nil {
		return &plugins.DetectResult{Detected: false, Reason: fmt.Sprintf("cannot read: %v", err)}, nil
	}
	switch ok := config.Sniff(header); {
	case ok && extensionMatch:
		return detected(config, "file extension and content"), nil
	case ok:
		return detected(config, "content"), nil
	case extensionMatch:
		return &plugins.DetectResult{
			Detected: false,
			Reason:   fmt.Sprintf("%s extension but content does not match", config.FormatName),
		}, nil
	}
	return notDetected(config), nil
}

// ReadHeader returns up to size leading bytes of path. size <= 0 means
// DefaultHeaderSize.
func ReadHeader(path string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultHeaderSize
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, size)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:n], nil
}

func detected(config DetectConfig, by string) *plugins.DetectResult {
	return &plugins.DetectResult{
		Detected: true,
		Format:   config.FormatName,
		Reason:   fmt.Sprintf("%s %s detected", config.FormatName, by),
	}
}

func notDetected(config DetectConfig) *plugins.DetectResult {
	return &plugins.DetectResult{Detected: false, Reason: fmt.Sprintf("not a %s file", config.FormatName)}
}
