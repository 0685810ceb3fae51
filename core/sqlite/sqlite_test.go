package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func TestDriverInfo(t *testing.T) {
	info := GetInfo()

	if info.DriverName != DriverName() {
		t.Errorf("DriverName mismatch: info=%s, func=%s", info.DriverName, DriverName())
	}
	if info.DriverType != DriverType() {
		t.Errorf("DriverType mismatch: info=%s, func=%s", info.DriverType, DriverType())
	}
	if info.IsCGO != IsCGO() {
		t.Errorf("IsCGO mismatch: info=%v, func=%v", info.IsCGO, IsCGO())
	}
	if info.Package == "" {
		t.Error("Package should not be empty")
	}

	switch info.DriverType {
	case "purego":
		if info.DriverName != "sqlite" {
			t.Errorf("purego driver should use 'sqlite' name, got %q", info.DriverName)
		}
	case "cgo":
		if info.DriverName != "sqlite3" {
			t.Errorf("cgo driver should use 'sqlite3' name, got %q", info.DriverName)
		}
	default:
		t.Errorf("unknown driver type: %s", info.DriverType)
	}
}

func TestOpenAppliesPragmas(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	var mode string
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	var fk int
	if err := db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatal(err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}

	var timeout int
	if err := db.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatal(err)
	}
	if timeout != BusyTimeoutMillis {
		t.Errorf("busy_timeout = %d, want %d", timeout, BusyTimeoutMillis)
	}
}

func TestOpenReadOnly(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "library.db")

	db, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE songs (id TEXT PRIMARY KEY, title TEXT)`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO songs VALUES (?, ?)`, "s1", "Amazing Grace"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	ro, err := OpenReadOnly(ctx, path)
	if err != nil {
		t.Fatalf("OpenReadOnly: %v", err)
	}
	defer ro.Close()

	var title string
	if err := ro.QueryRowContext(ctx, `SELECT title FROM songs WHERE id = ?`, "s1").Scan(&title); err != nil {
		t.Fatal(err)
	}
	if title != "Amazing Grace" {
		t.Errorf("title = %q", title)
	}
	if _, err := ro.ExecContext(ctx, `INSERT INTO songs VALUES ('s2', 'x')`); err == nil {
		t.Error("write succeeded on a read-only database")
	}
}

func TestOpenReadOnlyMissingFile(t *testing.T) {
	if _, err := OpenReadOnly(context.Background(), filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Error("expected error for a missing database")
	}
}
