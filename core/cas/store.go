// Package cas keeps copies of imported source files by content.
//
// Blobs live at <root>/blobs/sha256/<first2>/<sha256>. A BLAKE3 pointer at
// <root>/blobs/blake3/<first2>/<blake3>.json maps the BLAKE3 digest, which
// the song library uses as its source fingerprint, back to the blob.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// osRename is a variable to allow testing of rename errors.
var osRename = os.Rename

// ErrBlobNotFound is returned when a blob with the given hash does not exist.
var ErrBlobNotFound = errors.New("blob not found")

// ErrInvalidHash is returned when a hash string is not 64 lowercase hex digits.
var ErrInvalidHash = errors.New("invalid hash format")

var hexDigest = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Ref identifies a stored blob.
type Ref struct {
	SHA256 string `json:"sha256"`
	BLAKE3 string `json:"blake3"`
	Size   int64  `json:"size"`
}

// Store is a directory of content-addressed blobs. It is safe for concurrent
// use by several goroutines and processes: every write lands through an
// atomic rename.
type Store struct {
	root string
}

// NewStore creates the store directories under root if needed.
func NewStore(root string) (*Store, error) {
	for _, dir := range []string{"sha256", "blake3"} {
		if err := os.MkdirAll(filepath.Join(root, "blobs", dir), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create blob directory: %w", err)
		}
	}
	return &Store{root: root}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Put stores data and its BLAKE3 pointer. Storing the same bytes twice is a
// no-op that returns the same Ref.
func (s *Store) Put(data []byte) (Ref, error) {
	ref := Ref{SHA256: Hash(data), BLAKE3: Blake3Hash(data), Size: int64(len(data))}

	if err := s.writeOnce(s.blobPath(ref.SHA256), data); err != nil {
		return Ref{}, fmt.Errorf("failed to store blob: %w", err)
	}
	if err := s.writeOnce(s.pointerPath(ref.BLAKE3), []byte(ref.SHA256)); err != nil {
		return Ref{}, fmt.Errorf("failed to create BLAKE3 pointer: %w", err)
	}
	return ref, nil
}

// PutFile stores the contents of the file at path.
func (s *Store) PutFile(path string) (Ref, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Ref{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s.Put(data)
}

// Get returns the blob with the given SHA-256 hash.
func (s *Store) Get(sha string) ([]byte, error) {
	if !hexDigest.MatchString(sha) {
		return nil, ErrInvalidHash
	}
	data, err := os.ReadFile(s.blobPath(sha))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return data, nil
}

// Resolve maps a BLAKE3 digest to the SHA-256 hash of its blob.
func (s *Store) Resolve(b3 string) (string, error) {
	if !hexDigest.MatchString(b3) {
		return "", ErrInvalidHash
	}
	data, err := os.ReadFile(s.pointerPath(b3))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrBlobNotFound
		}
		return "", fmt.Errorf("failed to read pointer: %w", err)
	}
	sha := string(data)
	if !hexDigest.MatchString(sha) {
		return "", fmt.Errorf("corrupt pointer %s: %w", b3, ErrInvalidHash)
	}
	return sha, nil
}

// GetByBlake3 returns the blob whose BLAKE3 digest is b3.
func (s *Store) GetByBlake3(b3 string) ([]byte, error) {
	sha, err := s.Resolve(b3)
	if err != nil {
		return nil, err
	}
	return s.Get(sha)
}

// Has reports whether a blob with the given SHA-256 hash is stored.
func (s *Store) Has(sha string) bool {
	if !hexDigest.MatchString(sha) {
		return false
	}
	_, err := os.Stat(s.blobPath(sha))
	return err == nil
}

func (s *Store) blobPath(sha string) string {
	return filepath.Join(s.root, "blobs", "sha256", sha[:2], sha)
}

func (s *Store) pointerPath(b3 string) string {
	return filepath.Join(s.root, "blobs", "blake3", b3[:2], b3+".json")
}

// writeOnce writes data to path through a temp file and rename unless path
// already exists.
func (s *Store) writeOnce(path string, data []byte) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := osRename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Hash computes the SHA-256 hash of data without storing it.
func Hash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
