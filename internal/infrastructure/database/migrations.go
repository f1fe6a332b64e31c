package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

// MigrationsFS holds the embedded schema files. The migrations package
// sets it from its init, so any binary that imports that package (the
// CLI, the archive tests) carries the schema with it. Left unset, the
// runner treats the schema as empty.
//
//	//go:embed *.sql
//	var files embed.FS
//
//	func init() { database.MigrationsFS = files }
var MigrationsFS embed.FS

// MigrationsDir is the schema files' directory inside MigrationsFS,
// "." when they sit at its root.
var MigrationsDir = "migrations"

// Migration is one versioned schema step, read from a
// YYYYMMDD_HHMMSS_name.up.sql / .down.sql file pair. DownSQL is ""
// when no down file exists.
type Migration struct {
	Version string
	Name    string
	UpSQL   string
	DownSQL string
}

// AppliedMigration is one row of the schema_migrations ledger.
type AppliedMigration struct {
	Version   string
	AppliedAt time.Time
}

// Migrate brings the archive schema up to date. Every unapplied
// migration runs, oldest first, each inside its own transaction: a
// failure rolls back that one step, keeps the earlier ones, and leaves
// the rest unattempted, so a rerun after fixing the file continues
// where it stopped. Already up to date is a no-op, which is the normal
// case for a tool that opens its archive on every run.
func (db *DB) Migrate(ctx context.Context) error {
	if err := db.ensureLedger(ctx); err != nil {
		return err
	}

	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("reading schema files: %w", err)
	}

	done, err := db.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if _, ok := done[m.Version]; ok {
			continue
		}
		if err := db.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("migration %s (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// MigrateDown rolls back the newest applied migration. Development and
// test helper; the tool itself only ever migrates up.
func (db *DB) MigrateDown(ctx context.Context) error {
	if err := db.ensureLedger(ctx); err != nil {
		return err
	}

	done, err := db.appliedVersions(ctx)
	if err != nil {
		return err
	}
	newest := ""
	for v := range done {
		if v > newest {
			newest = v
		}
	}
	if newest == "" {
		return nil
	}

	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("reading schema files: %w", err)
	}
	for _, m := range migrations {
		if m.Version != newest {
			continue
		}
		if m.DownSQL == "" {
			return fmt.Errorf("migration %s has no down file", m.Version)
		}
		return db.revertMigration(ctx, m)
	}
	return fmt.Errorf("applied migration %s missing from schema files", newest)
}

// MigrationStatus reports the ledger against the embedded schema
// files: which versions are applied, and which are still pending.
func (db *DB) MigrationStatus(ctx context.Context) (applied []AppliedMigration, pending []string, err error) {
	if err := db.ensureLedger(ctx); err != nil {
		return nil, nil, err
	}

	done, err := db.appliedVersions(ctx)
	if err != nil {
		return nil, nil, err
	}
	for v, at := range done {
		applied = append(applied, AppliedMigration{Version: v, AppliedAt: at})
	}
	sort.Slice(applied, func(i, j int) bool { return applied[i].Version < applied[j].Version })

	migrations, err := loadMigrations()
	if err != nil {
		return nil, nil, err
	}
	for _, m := range migrations {
		if _, ok := done[m.Version]; !ok {
			pending = append(pending, m.Version)
		}
	}
	return applied, pending, nil
}

// ensureLedger creates the schema_migrations table on first contact.
func (db *DB) ensureLedger(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating migration ledger: %w", err)
	}
	return nil
}

// appliedVersions reads the ledger into a version set.
func (db *DB) appliedVersions(ctx context.Context) (map[string]time.Time, error) {
	rows, err := db.QueryContext(ctx, "SELECT version, applied_at FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("reading migration ledger: %w", err)
	}
	defer rows.Close()

	done := make(map[string]time.Time)
	for rows.Next() {
		var version, at string
		if err := rows.Scan(&version, &at); err != nil {
			return nil, fmt.Errorf("scanning migration ledger: %w", err)
		}
		// The runner wrote the timestamp; the format is ours.
		applied, _ := time.Parse(time.RFC3339, at) //nolint:errcheck // Format is controlled
		done[version] = applied
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading migration ledger: %w", err)
	}
	return done, nil
}

// applyMigration runs one up step and records it, atomically.
func (db *DB) applyMigration(ctx context.Context, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	if _, err := tx.ExecContext(ctx, m.UpSQL); err != nil {
		return fmt.Errorf("executing up SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
		m.Version, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}
	return tx.Commit()
}

// revertMigration runs one down step and clears its ledger row,
// atomically.
func (db *DB) revertMigration(ctx context.Context, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	if _, err := tx.ExecContext(ctx, m.DownSQL); err != nil {
		return fmt.Errorf("executing down SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM schema_migrations WHERE version = ?", m.Version,
	); err != nil {
		return fmt.Errorf("clearing migration record: %w", err)
	}
	return tx.Commit()
}

// loadMigrations reads the embedded schema files into version order.
// Files that don't follow the naming contract are ignored; a down file
// without its up partner is too.
func loadMigrations() ([]Migration, error) {
	var unset embed.FS
	if MigrationsFS == unset {
		return nil, nil
	}
	entries, err := fs.ReadDir(MigrationsFS, MigrationsDir)
	if err != nil {
		// No directory means no schema yet.
		return nil, nil
	}

	byVersion := make(map[string]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version, name, up, ok := splitMigrationName(entry.Name())
		if !ok {
			continue
		}
		sqlText, err := fs.ReadFile(MigrationsFS, path.Join(MigrationsDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		m := byVersion[version]
		if m == nil {
			m = &Migration{Version: version}
			byVersion[version] = m
		}
		if up {
			m.Name = name
			m.UpSQL = string(sqlText)
		} else {
			m.DownSQL = string(sqlText)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.UpSQL == "" {
			continue
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// splitMigrationName takes a schema filename apart. The contract is
// YYYYMMDD_HHMMSS_name.up.sql (or .down.sql): the first two
// underscore fields form the version, the rest the name.
func splitMigrationName(filename string) (version, name string, up, ok bool) {
	base, found := strings.CutSuffix(filename, ".sql")
	if !found {
		return "", "", false, false
	}
	switch {
	case strings.HasSuffix(base, ".up"):
		up = true
		base = strings.TrimSuffix(base, ".up")
	case strings.HasSuffix(base, ".down"):
		base = strings.TrimSuffix(base, ".down")
	default:
		return "", "", false, false
	}

	parts := strings.SplitN(base, "_", 3)
	if len(parts) < 2 {
		return "", "", false, false
	}
	version = parts[0] + "_" + parts[1]
	if len(parts) == 3 {
		name = parts[2]
	} else {
		name = base
	}
	return version, name, up, true
}
