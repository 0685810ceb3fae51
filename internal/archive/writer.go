package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/SongBridge/internal/validation"
)

// Compression selects the bundle compressor.
type Compression string

const (
	CompressionXZ   Compression = "xz"
	CompressionGzip Compression = "gz"
)

// ParseCompression accepts "xz" and "gz".
func ParseCompression(s string) (Compression, error) {
	switch c := Compression(strings.ToLower(strings.TrimSpace(s))); c {
	case CompressionXZ, CompressionGzip:
		return c, nil
	case "":
		return CompressionXZ, nil
	}
	return "", fmt.Errorf("unsupported bundle compression %q", s)
}

// Extension returns the file extension of a bundle, e.g. ".tar.xz".
func (c Compression) Extension() string {
	if c == CompressionGzip {
		return ".tar.gz"
	}
	return ".tar.xz"
}

// CompressionFor infers the compression from a bundle path. Paths without a
// known extension get def.
func CompressionFor(path string, def Compression) Compression {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return CompressionGzip
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return CompressionXZ
	}
	return def
}

// BundleOptions configures CreateBundle.
type BundleOptions struct {
	Compression Compression
	// BaseDir is the directory every entry is placed under. Empty means the
	// bundle file name without its extension.
	BaseDir string
	// ModTime is stamped on every entry. Zero means now.
	ModTime time.Time
}

// CreateBundle packs files into a compressed tarball at dst. Entries are
// named BaseDir/<file name> and written in name order; two files with the
// same base name are rejected. The bundle is written to a temporary file and
// renamed into place, so dst never holds a partial archive.
func CreateBundle(dst string, files []string, opts BundleOptions) error {
	if opts.Compression == "" {
		opts.Compression = CompressionFor(dst, CompressionXZ)
	}
	if opts.BaseDir == "" {
		opts.BaseDir = bundleName(dst)
	}
	if opts.ModTime.IsZero() {
		opts.ModTime = time.Now()
	}

	entries, err := bundleEntries(files, opts.BaseDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".bundle-*")
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := writeBundle(tmp, entries, opts); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to create archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	return nil
}

type bundleEntry struct {
	name string
	path string
}

func bundleEntries(files []string, baseDir string) ([]bundleEntry, error) {
	seen := make(map[string]bool, len(files))
	entries := make([]bundleEntry, 0, len(files))
	for _, path := range files {
		rel, err := validation.SanitizePath(".", filepath.Join(baseDir, filepath.Base(path)))
		if err != nil {
			return nil, fmt.Errorf("bundle entry for %s: %w", path, err)
		}
		name := filepath.ToSlash(rel)
		if seen[name] {
			return nil, fmt.Errorf("duplicate bundle entry %s", name)
		}
		seen[name] = true
		entries = append(entries, bundleEntry{name: name, path: path})
	}
	slices.SortFunc(entries, func(a, b bundleEntry) int { return strings.Compare(a.name, b.name) })
	return entries, nil
}

func writeBundle(w io.Writer, entries []bundleEntry, opts BundleOptions) error {
	var cw io.WriteCloser
	switch opts.Compression {
	case CompressionXZ:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return fmt.Errorf("xz writer: %w", err)
		}
		cw = xw
	case CompressionGzip:
		cw = gzip.NewWriter(w)
	default:
		return fmt.Errorf("unsupported bundle compression %q", opts.Compression)
	}

	tw := tar.NewWriter(cw)
	for _, e := range entries {
		if err := addFile(tw, e, opts.ModTime); err != nil {
			return err
		}
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return cw.Close()
}

func addFile(tw *tar.Writer, e bundleEntry, modTime time.Time) error {
	f, err := os.Open(e.path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", e.path)
	}

	header := &tar.Header{
		Name:     e.name,
		Mode:     0o644,
		Size:     info.Size(),
		ModTime:  modTime,
		Typeflag: tar.TypeReg,
		Format:   tar.FormatPAX,
	}
	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	_, err = io.Copy(tw, f)
	return err
}

func bundleName(dst string) string {
	base := filepath.Base(dst)
	for _, ext := range []string{".tar.xz", ".tar.gz", ".txz", ".tgz"} {
		if strings.HasSuffix(strings.ToLower(base), ext) {
			return base[:len(base)-len(ext)]
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
