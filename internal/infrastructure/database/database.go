package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	// dirPermissions applies to a created archive directory.
	dirPermissions = 0750

	// filePermissions restricts the archive file to its owner.
	filePermissions = 0600

	// msPerSecond converts the configured busy timeout to the pragma's
	// millisecond unit.
	msPerSecond = 1000

	// openPingTimeout bounds the connectivity check inside Open.
	openPingTimeout = 5 * time.Second
)

// DB is the snapshot archive's SQLite handle. It embeds *sql.DB, so
// the archive store queries it directly; this wrapper only adds the
// open ritual (directory, pragmas, permissions) and the migration
// runner.
type DB struct {
	*sql.DB
	path string
}

// Config selects where and how the archive file is opened. It mirrors
// the archive section of config.yaml.
type Config struct {
	// Path is the archive file's filesystem path. A missing parent
	// directory is created.
	Path string

	// WALMode turns on write-ahead logging. A snapshot run holds the
	// writer for milliseconds, but WAL keeps concurrent readers (the
	// sqlite3 shell, a template generator) from blocking it.
	WALMode bool

	// BusyTimeout is how long a statement waits on a locked file, in
	// seconds, before failing.
	BusyTimeout int
}

// Open opens (creating if needed) the archive file and verifies it
// answers a ping. Foreign keys and the busy timeout are always set;
// WAL per Config. The file ends up owner-only: a routing archive
// carries console names nobody else needs to read.
//
// Returns:
//   - *DB: Open handle; Close it when the run is done
//   - error: If the directory, file, or first ping fails
func Open(cfg Config) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), dirPermissions); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite3", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	// One writer: SQLite serializes writes anyway, and a run's inserts
	// all happen on one goroutine.
	sqlDB.SetMaxOpenConns(1)

	db := &DB{DB: sqlDB, path: cfg.Path}

	ctx, cancel := context.WithTimeout(context.Background(), openPingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying archive: %w", err)
	}

	// The file may not exist until the first write; ignore the miss.
	_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck // First run creates the file later

	return db, nil
}

// dsn builds the sqlite3 connection string with the pragmas encoded.
// See: https://github.com/mattn/go-sqlite3#connection-string
func dsn(cfg Config) string {
	s := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
		cfg.Path, cfg.BusyTimeout*msPerSecond)
	if cfg.WALMode {
		s += "&_journal_mode=WAL&_synchronous=NORMAL"
	}
	return s
}

// Close releases the handle. Safe on a nil-DB wrapper.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}
	return nil
}

// Path returns the archive file's filesystem path.
func (db *DB) Path() string {
	return db.path
}
