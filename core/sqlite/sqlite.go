// Package sqlite opens SQLite databases through whichever driver the build
// selected.
//
// Build modes:
//   - Default (CGO_ENABLED=0): pure Go modernc.org/sqlite
//   - CGO mode (CGO_ENABLED=1 -tags cgo_sqlite): mattn/go-sqlite3
//
// Use Open instead of sql.Open so the right driver name and connection
// settings are used.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
)

// BusyTimeoutMillis is how long a connection waits for a lock held by
// another process.
const BusyTimeoutMillis = 5000

// pragmas are applied to every database opened for writing.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA foreign_keys = ON",
	fmt.Sprintf("PRAGMA busy_timeout = %d", BusyTimeoutMillis),
}

// DriverName returns the database/sql driver name of the build.
func DriverName() string {
	return driverName
}

// DriverType returns "cgo" for mattn/go-sqlite3 and "purego" for
// modernc.org/sqlite.
func DriverType() string {
	return driverType
}

// IsCGO returns true if the CGO implementation is being used.
func IsCGO() bool {
	return driverType == "cgo"
}

// Open opens the database at path with WAL journaling, foreign keys and a
// busy timeout. The pool is limited to one connection so the pragmas hold
// for every statement.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	return db, nil
}

// OpenReadOnly opens an existing database with query_only set. A mode=ro
// URI cannot open a WAL database whose shared-memory file is missing.
func OpenReadOnly(ctx context.Context, path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	readPragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", BusyTimeoutMillis),
		"PRAGMA query_only = ON",
	}
	for _, pragma := range readPragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	return db, nil
}

// Info contains information about the SQLite driver configuration.
type Info struct {
	DriverName string `json:"driver_name"`
	DriverType string `json:"driver_type"`
	IsCGO      bool   `json:"is_cgo"`
	Package    string `json:"package"`
}

// GetInfo returns information about the current SQLite configuration.
func GetInfo() Info {
	return Info{
		DriverName: driverName,
		DriverType: driverType,
		IsCGO:      IsCGO(),
		Package:    driverPackage,
	}
}
