// Package library stores finalized songs in a SQLite database.
//
// Each song is keyed by a random UUID and by the BLAKE3 fingerprint of the
// source file it came from, so importing the same bytes twice adds nothing.
// The source bytes themselves can be kept in a content-addressed store.
//
// A library is guarded by a lock file next to the database: one writer or
// any number of readers at a time across processes.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/FocuswithJustin/SongBridge/core/cas"
	serrors "github.com/FocuswithJustin/SongBridge/core/errors"
	"github.com/FocuswithJustin/SongBridge/core/song"
	"github.com/FocuswithJustin/SongBridge/core/sqlite"
)

// ErrLocked is returned when another process holds the library lock.
var ErrLocked = errors.New("library is locked by another process")

// ErrAmbiguousID is returned when an ID prefix matches more than one song.
var ErrAmbiguousID = errors.New("ambiguous song id")

const timeLayout = time.RFC3339

// Options configures Open.
type Options struct {
	// Path of the SQLite database. Its directory is created if needed.
	Path string
	// SourcesDir is the content-addressed store for source files. Empty
	// disables source storage.
	SourcesDir string
	// ReadOnly opens the library for reading under a shared lock.
	ReadOnly bool
}

// Library is an open song library. Its methods are safe for concurrent use.
type Library struct {
	db       *sql.DB
	lock     *flock.Flock
	sources  *cas.Store
	path     string
	readOnly bool
	now      func() time.Time
}

// Summary is one row of List.
type Summary struct {
	ID         string
	Title      string
	Authors    []string
	Verses     int
	SourcePath string
	ImportedAt time.Time
}

// Record is a stored song with its provenance.
type Record struct {
	ID           string
	Fingerprint  string
	SourcePath   string
	SourceSHA256 string
	ImportedAt   time.Time
	Song         *song.Song
}

// SaveResult reports what Save did.
type SaveResult struct {
	ID string
	// Added is false when a song from the same source bytes was already
	// present; ID then names the existing song.
	Added bool
}

// Open opens or creates the library at opts.Path.
func Open(ctx context.Context, opts Options) (*Library, error) {
	if opts.Path == "" {
		return nil, serrors.NewValidation("library.path", "must not be empty")
	}
	if !opts.ReadOnly {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, serrors.NewIO("create", filepath.Dir(opts.Path), err)
		}
	}

	lock := flock.New(opts.Path + ".lock")
	var locked bool
	var err error
	if opts.ReadOnly {
		locked, err = lock.TryRLock()
	} else {
		locked, err = lock.TryLock()
	}
	if err != nil {
		return nil, fmt.Errorf("acquire library lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	l := &Library{lock: lock, path: opts.Path, readOnly: opts.ReadOnly, now: time.Now}
	if err := l.open(ctx, opts); err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	return l, nil
}

func (l *Library) open(ctx context.Context, opts Options) error {
	var err error
	if opts.ReadOnly {
		if l.db, err = sqlite.OpenReadOnly(ctx, opts.Path); err != nil {
			return err
		}
		// A reader never creates the store.
		if opts.SourcesDir != "" {
			if _, statErr := os.Stat(opts.SourcesDir); statErr == nil {
				l.sources, err = cas.NewStore(opts.SourcesDir)
			}
		}
		if err != nil {
			_ = l.db.Close()
		}
		return err
	}

	if l.db, err = sqlite.Open(ctx, opts.Path); err != nil {
		return err
	}
	if err := applyMigrations(ctx, l.db); err != nil {
		_ = l.db.Close()
		return err
	}
	if opts.SourcesDir != "" {
		if l.sources, err = cas.NewStore(opts.SourcesDir); err != nil {
			_ = l.db.Close()
			return err
		}
	}
	return nil
}

// Path returns the database path.
func (l *Library) Path() string {
	return l.path
}

// Close closes the database and releases the lock.
func (l *Library) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	err := l.db.Close()
	if uerr := l.lock.Unlock(); err == nil {
		err = uerr
	}
	return err
}

// Save stores s, imported from the file at sourcePath. The file is hashed
// for its fingerprint and, when source storage is enabled, copied into the
// content-addressed store.
func (l *Library) Save(ctx context.Context, s *song.Song, sourcePath string) (SaveResult, error) {
	fingerprint, err := cas.Blake3File(sourcePath)
	if err != nil {
		return SaveResult{}, serrors.NewIO("read", sourcePath, err)
	}
	return l.save(ctx, s, sourcePath, fingerprint, func() (cas.Ref, error) {
		return l.sources.PutFile(sourcePath)
	})
}

// SaveBytes is Save for source bytes already in memory.
func (l *Library) SaveBytes(ctx context.Context, s *song.Song, sourcePath string, data []byte) (SaveResult, error) {
	return l.save(ctx, s, sourcePath, cas.Blake3Hash(data), func() (cas.Ref, error) {
		return l.sources.Put(data)
	})
}

// save inserts s unless a song with the same fingerprint exists. The source
// is only stored for new songs.
func (l *Library) save(ctx context.Context, s *song.Song, sourcePath, fingerprint string, store func() (cas.Ref, error)) (SaveResult, error) {
	if l.readOnly {
		return SaveResult{}, serrors.NewUnsupported("save", "library opened read-only")
	}

	id := uuid.NewString()
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return SaveResult{}, fmt.Errorf("begin save tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if existing, err := idForFingerprint(ctx, tx, fingerprint); err != nil {
		return SaveResult{}, err
	} else if existing != "" {
		return SaveResult{ID: existing}, nil
	}

	var sourceSHA sql.NullString
	if l.sources != nil {
		ref, err := store()
		if err != nil {
			return SaveResult{}, err
		}
		sourceSHA = sql.NullString{String: ref.SHA256, Valid: true}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO songs (
            id, fingerprint, source_path, source_sha256, title, alternate_title,
            song_number, copyright, comments, ccli_number, song_book, verse_order, imported_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, fingerprint, sourcePath, sourceSHA, s.Title, s.AlternateTitle,
		s.SongNumber, s.Copyright, s.Comments, s.CCLINumber, s.SongBook, s.VerseOrder,
		l.now().UTC().Format(timeLayout),
	)
	if err != nil {
		return SaveResult{}, fmt.Errorf("insert song: %w", err)
	}

	for i, v := range s.Verses {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO verses (song_id, position, name, text, lang) VALUES (?, ?, ?, ?, ?)`,
			id, i, v.Def, v.Text, v.Lang); err != nil {
			return SaveResult{}, fmt.Errorf("insert verse %s: %w", v.Def, err)
		}
	}
	for i, a := range s.Authors {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO authors (song_id, position, name, type) VALUES (?, ?, ?, ?)`,
			id, i, a.Name, a.Type); err != nil {
			return SaveResult{}, fmt.Errorf("insert author: %w", err)
		}
	}
	for i, topic := range s.Topics {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO topics (song_id, position, name) VALUES (?, ?, ?)`,
			id, i, topic); err != nil {
			return SaveResult{}, fmt.Errorf("insert topic: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return SaveResult{}, fmt.Errorf("commit song: %w", err)
	}
	return SaveResult{ID: id, Added: true}, nil
}

func idForFingerprint(ctx context.Context, tx *sql.Tx, fingerprint string) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM songs WHERE fingerprint = ?`, fingerprint).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup fingerprint: %w", err)
	}
	return id, nil
}

// List returns every song ordered by title, then import time.
func (l *Library) List(ctx context.Context) ([]Summary, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT s.id, s.title, s.source_path, s.imported_at,
                (SELECT COUNT(1) FROM verses v WHERE v.song_id = s.id)
           FROM songs s
          ORDER BY s.title COLLATE NOCASE, s.imported_at`)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var imported string
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.SourcePath, &imported, &sum.Verses); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		sum.ImportedAt, _ = time.Parse(timeLayout, imported)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}

	for i := range out {
		authors, err := l.authors(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		for _, a := range authors {
			out[i].Authors = append(out[i].Authors, a.Name)
		}
	}
	return out, nil
}

// Get returns the song whose ID is id or starts with id. A prefix that
// matches several songs returns ErrAmbiguousID.
func (l *Library) Get(ctx context.Context, id string) (*Record, error) {
	fullID, err := l.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}

	rec := &Record{ID: fullID, Song: &song.Song{}}
	var sourceSHA sql.NullString
	var imported string
	s := rec.Song
	err = l.db.QueryRowContext(ctx,
		`SELECT fingerprint, source_path, source_sha256, imported_at, title, alternate_title,
                song_number, copyright, comments, ccli_number, song_book, verse_order
           FROM songs WHERE id = ?`, fullID).Scan(
		&rec.Fingerprint, &rec.SourcePath, &sourceSHA, &imported, &s.Title, &s.AlternateTitle,
		&s.SongNumber, &s.Copyright, &s.Comments, &s.CCLINumber, &s.SongBook, &s.VerseOrder,
	)
	if err != nil {
		return nil, fmt.Errorf("load song %s: %w", fullID, err)
	}
	rec.SourceSHA256 = sourceSHA.String
	rec.ImportedAt, _ = time.Parse(timeLayout, imported)

	if s.Verses, err = l.verses(ctx, fullID); err != nil {
		return nil, err
	}
	if s.Authors, err = l.authors(ctx, fullID); err != nil {
		return nil, err
	}
	if s.Topics, err = l.topics(ctx, fullID); err != nil {
		return nil, err
	}
	return rec, nil
}

// Source returns the stored source bytes of a song.
func (l *Library) Source(ctx context.Context, id string) ([]byte, error) {
	if l.sources == nil {
		return nil, serrors.NewUnsupported("source retrieval", "source storage is disabled")
	}
	rec, err := l.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.SourceSHA256 == "" {
		return nil, serrors.NewNotFound("source", rec.ID)
	}
	data, err := l.sources.GetByBlake3(rec.Fingerprint)
	if errors.Is(err, cas.ErrBlobNotFound) {
		return nil, serrors.NewNotFound("source", rec.ID)
	}
	return data, err
}

// HasSource reports whether the source bytes of rec are in the store.
func (l *Library) HasSource(rec *Record) bool {
	return l.sources != nil && rec.SourceSHA256 != "" && l.sources.Has(rec.SourceSHA256)
}

func (l *Library) resolveID(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", serrors.NewNotFound("song", id)
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id FROM songs WHERE id = ? OR substr(id, 1, ?) = ? LIMIT 2`, id, len(id), id)
	if err != nil {
		return "", fmt.Errorf("lookup song %s: %w", id, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var match string
		if err := rows.Scan(&match); err != nil {
			return "", fmt.Errorf("scan song id: %w", err)
		}
		if match == id {
			return match, nil
		}
		ids = append(ids, match)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", serrors.NewNotFound("song", id)
	case 1:
		return ids[0], nil
	}
	return "", fmt.Errorf("%w: %s", ErrAmbiguousID, id)
}

func (l *Library) verses(ctx context.Context, id string) ([]song.Verse, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT name, text, lang FROM verses WHERE song_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("load verses: %w", err)
	}
	defer rows.Close()

	var out []song.Verse
	for rows.Next() {
		var v song.Verse
		if err := rows.Scan(&v.Def, &v.Text, &v.Lang); err != nil {
			return nil, fmt.Errorf("scan verse: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (l *Library) authors(ctx context.Context, id string) ([]song.Author, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT name, type FROM authors WHERE song_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	defer rows.Close()

	var out []song.Author
	for rows.Next() {
		var a song.Author
		if err := rows.Scan(&a.Name, &a.Type); err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (l *Library) topics(ctx context.Context, id string) ([]string, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT name FROM topics WHERE song_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("load topics: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var topic string
		if err := rows.Scan(&topic); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		out = append(out, topic)
	}
	return out, rows.Err()
}
