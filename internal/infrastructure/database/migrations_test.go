package database

import (
	"context"
	"embed"
	"testing"
)

// The fixture schema is a two-step history of a run log: the table,
// then an index on its created_at column.
//
//go:embed testdata/*.sql
var fixtureSchemaFS embed.FS

// useFixtureSchema points the runner at the fixture schema for one
// test.
func useFixtureSchema(t *testing.T) {
	t.Helper()

	origFS, origDir := MigrationsFS, MigrationsDir
	t.Cleanup(func() {
		MigrationsFS = origFS
		MigrationsDir = origDir
	})
	MigrationsFS = fixtureSchemaFS
	MigrationsDir = "testdata"
}

// tableExists reports whether the archive has the named table or
// index.
func tableExists(t *testing.T, db *DB, kind, name string) bool {
	t.Helper()

	var n int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type = ? AND name = ?", kind, name,
	).Scan(&n)
	if err != nil {
		t.Fatalf("sqlite_master query: %v", err)
	}
	return n > 0
}

func TestMigrate(t *testing.T) {
	useFixtureSchema(t)
	db := openArchive(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	if !tableExists(t, db, "table", "run_log") {
		t.Error("run_log table not created")
	}
	if !tableExists(t, db, "index", "idx_run_log_created_at") {
		t.Error("created_at index not created")
	}

	applied, pending, err := db.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 2 || len(pending) != 0 {
		t.Errorf("status = %d applied, %d pending; want 2, 0", len(applied), len(pending))
	}
	// Oldest first: the table has to exist before its index.
	if applied[0].Version != "20260801_100000" {
		t.Errorf("first applied = %s, want 20260801_100000", applied[0].Version)
	}
	if applied[0].AppliedAt.IsZero() {
		t.Error("applied_at not recorded")
	}

	// A rerun finds nothing to do.
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestMigrateDown(t *testing.T) {
	useFixtureSchema(t)
	db := openArchive(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// First rollback removes the index, the second the table.
	if err := db.MigrateDown(ctx); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}
	if tableExists(t, db, "index", "idx_run_log_created_at") {
		t.Error("index should be gone after first rollback")
	}
	if !tableExists(t, db, "table", "run_log") {
		t.Error("run_log should survive the first rollback")
	}

	if err := db.MigrateDown(ctx); err != nil {
		t.Fatalf("second MigrateDown() error = %v", err)
	}
	if tableExists(t, db, "table", "run_log") {
		t.Error("run_log should be gone after second rollback")
	}

	applied, pending, err := db.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 0 || len(pending) != 2 {
		t.Errorf("status = %d applied, %d pending; want 0, 2", len(applied), len(pending))
	}

	// An empty ledger rolls back to nothing, quietly.
	if err := db.MigrateDown(ctx); err != nil {
		t.Fatalf("MigrateDown() on empty ledger error = %v", err)
	}
}

func TestMigrate_NoSchema(t *testing.T) {
	origFS, origDir := MigrationsFS, MigrationsDir
	t.Cleanup(func() {
		MigrationsFS = origFS
		MigrationsDir = origDir
	})
	var unset embed.FS
	MigrationsFS = unset
	MigrationsDir = "."

	db := openArchive(t)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() with no schema error = %v", err)
	}
}

func TestMigrationStatus_Pending(t *testing.T) {
	useFixtureSchema(t)
	db := openArchive(t)

	applied, pending, err := db.MigrationStatus(context.Background())
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("applied = %d, want 0", len(applied))
	}
	if len(pending) != 2 {
		t.Errorf("pending = %d, want 2", len(pending))
	}
}

func TestSplitMigrationName(t *testing.T) {
	tests := []struct {
		filename    string
		wantVersion string
		wantName    string
		wantUp      bool
		wantOk      bool
	}{
		{"20260815_090000_create_snapshot_runs.up.sql", "20260815_090000", "create_snapshot_runs", true, true},
		{"20260815_090000_create_snapshot_runs.down.sql", "20260815_090000", "create_snapshot_runs", false, true},
		{"20260802_083000_index_run_log_created_at.up.sql", "20260802_083000", "index_run_log_created_at", true, true},
		{"notes.md", "", "", false, false},
		{"20260815_090000_missing_direction.sql", "", "", false, false},
		{"orphan.up.sql", "", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, up, ok := splitMigrationName(tt.filename)
			if ok != tt.wantOk {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOk)
			}
			if !ok {
				return
			}
			if version != tt.wantVersion {
				t.Errorf("version = %q, want %q", version, tt.wantVersion)
			}
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if up != tt.wantUp {
				t.Errorf("up = %v, want %v", up, tt.wantUp)
			}
		})
	}
}
