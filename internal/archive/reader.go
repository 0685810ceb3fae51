// Package archive writes and reads bundles of converted songs: tarballs
// compressed with xz or gzip.
package archive

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/ulikunitz/xz"
)

var (
	xzMagic   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	gzipMagic = []byte{0x1f, 0x8b}
)

// Reader wraps a tar.Reader with automatic decompression handling.
type Reader struct {
	*tar.Reader
	file         *os.File
	decompressor io.Closer
}

// NewReader opens the bundle at path. The compression is detected from the
// content, not the file name.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	br := bufio.NewReader(f)
	head, _ := br.Peek(len(xzMagic))

	var reader io.Reader
	var decompressor io.Closer
	switch {
	case bytes.HasPrefix(head, xzMagic):
		xzr, err := xz.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		reader = xzr
	case bytes.HasPrefix(head, gzipMagic):
		gzr, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		reader = gzr
		decompressor = gzr
	default:
		f.Close()
		return nil, fmt.Errorf("unsupported archive format: %s", path)
	}

	return &Reader{
		Reader:       tar.NewReader(reader),
		file:         f,
		decompressor: decompressor,
	}, nil
}

// Close closes the archive reader and any underlying decompressors.
func (r *Reader) Close() error {
	var err error
	if r.decompressor != nil {
		err = r.decompressor.Close()
	}
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Visitor is called for each entry. Return true to stop iteration.
type Visitor func(header *tar.Header, content io.Reader) (stop bool, err error)

// Iterate walks through all entries in the archive, calling the visitor for each.
func (r *Reader) Iterate(visitor Visitor) error {
	for {
		header, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}

		stop, err := visitor(header, r)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

// Walk opens the bundle at path and iterates through its entries.
func Walk(path string, visitor Visitor) error {
	r, err := NewReader(path)
	if err != nil {
		return err
	}
	defer r.Close()
	return r.Iterate(visitor)
}

// List returns the entry names of a bundle in archive order.
func List(path string) ([]string, error) {
	var names []string
	err := Walk(path, func(h *tar.Header, _ io.Reader) (bool, error) {
		names = append(names, h.Name)
		return false, nil
	})
	return names, err
}

// ReadFile returns the content of the entry called name.
func ReadFile(path, name string) ([]byte, error) {
	var content []byte
	found := false
	err := Walk(path, func(h *tar.Header, r io.Reader) (bool, error) {
		if h.Name != name {
			return false, nil
		}
		found = true
		var err error
		content, err = io.ReadAll(r)
		return true, err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("file not found: %s", name)
	}
	return content, nil
}
