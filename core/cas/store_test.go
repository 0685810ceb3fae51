package cas

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/zeebo/blake3"
)

var source = []byte{1, 0, 0, 0, 8, 0, 0, 0, 13, 'A', 'm', 'a', 'z', 'i', 'n', 'g', 0, 0, 0, 0}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func TestPutAndGet(t *testing.T) {
	s := newTestStore(t)

	ref, err := s.Put(source)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	h := sha256.Sum256(source)
	if ref.SHA256 != hex.EncodeToString(h[:]) {
		t.Errorf("SHA256 = %s", ref.SHA256)
	}
	b := blake3.Sum256(source)
	if ref.BLAKE3 != hex.EncodeToString(b[:]) {
		t.Errorf("BLAKE3 = %s", ref.BLAKE3)
	}
	if ref.Size != int64(len(source)) {
		t.Errorf("Size = %d", ref.Size)
	}

	got, err := s.Get(ref.SHA256)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, source) {
		t.Error("Get returned different bytes")
	}

	got, err = s.GetByBlake3(ref.BLAKE3)
	if err != nil {
		t.Fatalf("GetByBlake3: %v", err)
	}
	if !bytes.Equal(got, source) {
		t.Error("GetByBlake3 returned different bytes")
	}

	wantPath := filepath.Join(s.Root(), "blobs", "sha256", ref.SHA256[:2], ref.SHA256)
	if _, err := os.Stat(wantPath); err != nil {
		t.Errorf("blob not at %s: %v", wantPath, err)
	}
	if !s.Has(ref.SHA256) {
		t.Error("Has() = false after Put")
	}
}

func TestPutIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	first, err := s.Put(source)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Put(source)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("refs differ: %+v vs %+v", first, second)
	}

	entries, err := os.ReadDir(filepath.Join(s.Root(), "blobs", "sha256", first.SHA256[:2]))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("%d entries in prefix dir, want 1", len(entries))
	}
}

func TestPutConcurrent(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Put(source); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Put: %v", err)
	}
}

func TestPutEmpty(t *testing.T) {
	s := newTestStore(t)
	ref, err := s.Put(nil)
	if err != nil {
		t.Fatal(err)
	}
	if ref.SHA256 != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("SHA256(empty) = %s", ref.SHA256)
	}
	got, err := s.Get(ref.SHA256)
	if err != nil || len(got) != 0 {
		t.Errorf("Get(empty) = %v, %v", got, err)
	}
}

func TestPutFile(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(t.TempDir(), "song.sbsong")
	if err := os.WriteFile(path, source, 0o644); err != nil {
		t.Fatal(err)
	}
	ref, err := s.PutFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if ref.SHA256 != Hash(source) {
		t.Errorf("PutFile hash = %s", ref.SHA256)
	}
	if _, err := s.PutFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("PutFile(missing) succeeded")
	}
}

func TestLookupErrors(t *testing.T) {
	s := newTestStore(t)
	missing := Hash([]byte("never stored"))

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"get missing", func() error { _, err := s.Get(missing); return err }, ErrBlobNotFound},
		{"get invalid", func() error { _, err := s.Get("not-a-hash"); return err }, ErrInvalidHash},
		{"get uppercase", func() error {
			_, err := s.Get("E3B0C44298FC1C149AFBF4C8996FB92427AE41E4649B934CA495991B7852B855")
			return err
		}, ErrInvalidHash},
		{"resolve missing", func() error { _, err := s.Resolve(missing); return err }, ErrBlobNotFound},
		{"resolve invalid", func() error { _, err := s.Resolve("xyz"); return err }, ErrInvalidHash},
		{"by blake3 missing", func() error { _, err := s.GetByBlake3(missing); return err }, ErrBlobNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	if s.Has("bad") || s.Has(missing) {
		t.Error("Has() = true for a missing blob")
	}
}

func TestCorruptPointer(t *testing.T) {
	s := newTestStore(t)
	ref, err := s.Put(source)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.pointerPath(ref.BLAKE3), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Resolve(ref.BLAKE3); !errors.Is(err, ErrInvalidHash) {
		t.Errorf("Resolve(corrupt) = %v, want ErrInvalidHash", err)
	}
}

func TestRenameErrorLeavesNoTempFiles(t *testing.T) {
	s := newTestStore(t)

	orig := osRename
	osRename = func(string, string) error { return errors.New("rename failed") }
	defer func() { osRename = orig }()

	if _, err := s.Put(source); err == nil {
		t.Fatal("expected error")
	}
	dir := filepath.Dir(s.blobPath(Hash(source)))
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestNewStoreMkdirError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(file); err == nil {
		t.Error("NewStore under a regular file succeeded")
	}
}

func TestBlake3File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.sbsong")
	if err := os.WriteFile(path, source, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Blake3File(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != Blake3Hash(source) {
		t.Errorf("Blake3File = %s, want %s", got, Blake3Hash(source))
	}
	if _, err := Blake3File(path + ".missing"); err == nil {
		t.Error("Blake3File(missing) succeeded")
	}
}
