package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/wingroute/internal/infrastructure/config"
	"github.com/nerrad567/wingroute/internal/infrastructure/database"
	"github.com/nerrad567/wingroute/internal/snapshot"
)

// Sentinel errors for archive operations.
var (
	// ErrDisabled indicates the archive is disabled in config.
	ErrDisabled = errors.New("archive: disabled in configuration")

	// ErrNotFound indicates no archived run matched the query.
	ErrNotFound = errors.New("archive: run not found")
)

// Store keeps a history of snapshot runs in SQLite, one row per run.
//
// The store is append-mostly: Record inserts, Recent reads back, and
// Prune trims rows past the retention window. Durability settings
// (WAL, busy timeout) come from the database layer.
type Store struct {
	db *database.DB
}

// Open opens the archive database and applies pending migrations.
//
// Parameters:
//   - ctx: Cancellation for the migration pass
//   - cfg: Archive configuration from config.yaml
//
// Returns:
//   - *Store: Ready store; caller owns Close
//   - error: ErrDisabled, or an open/migration failure
func Open(ctx context.Context, cfg config.ArchiveConfig) (*Store, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	db, err := database.Open(database.Config{
		Path:        cfg.Path,
		WALMode:     cfg.WALMode,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening archive database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating archive database: %w", err)
	}

	return &Store{db: db}, nil
}

// NewStore wraps an already-open database. The caller keeps ownership
// of the database's lifecycle.
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Run is one archived snapshot run as read back from the store. The
// QueryStats and Tracks payloads stay as the JSON they were recorded
// with; callers that need the structures decode them.
type Run struct {
	RunID       string
	CreatedAt   time.Time
	ConsoleHost string
	Interface   string
	OutCount    int
	DurationMs  int64
	TrackCount  int
	StereoPairs int
	Unrouted    int
	QueryStats  string
	Tracks      string
}

// Record archives one completed run.
//
// Parameters:
//   - ctx: Cancellation for the insert
//   - result: The completed run; its RunID must be unique
//
// Returns:
//   - error: Encoding or insert failure (duplicate RunID included)
func (s *Store) Record(ctx context.Context, result *snapshot.Result) error {
	stats, err := json.Marshal(result.Stats)
	if err != nil {
		return fmt.Errorf("encoding query stats: %w", err)
	}
	tracks, err := result.TracksJSON()
	if err != nil {
		return fmt.Errorf("encoding tracks: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshot_runs (
			run_id, created_at, console_host, interface, out_count,
			duration_ms, track_count, stereo_pairs, unrouted,
			query_stats, tracks
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID,
		result.StartedAt.UTC().Format(time.RFC3339),
		result.ConsoleHost,
		result.Interface,
		result.OutCount,
		result.Duration.Milliseconds(),
		len(result.Tracks),
		result.StereoPairCount(),
		result.UnroutedCount(),
		string(stats),
		string(tracks),
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", result.RunID, err)
	}
	return nil
}

// Recent returns the most recent runs, newest first.
//
// Parameters:
//   - ctx: Cancellation for the query
//   - limit: Maximum rows; values below 1 return one row
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit < 1 {
		limit = 1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, created_at, console_host, interface, out_count,
		       duration_ms, track_count, stereo_pairs, unrouted,
		       query_stats, tracks
		FROM snapshot_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading recent runs: %w", err)
	}
	return runs, nil
}

// Get returns one archived run by id.
func (s *Store) Get(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, created_at, console_host, interface, out_count,
		       duration_ms, track_count, stereo_pairs, unrouted,
		       query_stats, tracks
		FROM snapshot_runs
		WHERE run_id = ?`, runID)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return run, err
}

// Prune deletes runs older than the retention window.
//
// Parameters:
//   - ctx: Cancellation for the delete
//   - keepDays: Retention in days; values below 1 keep everything
//
// Returns:
//   - int64: Number of rows deleted
//   - error: Delete failure
func (s *Store) Prune(ctx context.Context, keepDays int) (int64, error) {
	if keepDays < 1 {
		return 0, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -keepDays).Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM snapshot_runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning runs before %s: %w", cutoff, err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned runs: %w", err)
	}
	return deleted, nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanRun reads one snapshot_runs row.
func scanRun(sc scanner) (Run, error) {
	var run Run
	var createdAt string
	err := sc.Scan(
		&run.RunID, &createdAt, &run.ConsoleHost, &run.Interface,
		&run.OutCount, &run.DurationMs, &run.TrackCount,
		&run.StereoPairs, &run.Unrouted, &run.QueryStats, &run.Tracks,
	)
	if err != nil {
		return Run{}, err
	}

	run.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	return run, nil
}
