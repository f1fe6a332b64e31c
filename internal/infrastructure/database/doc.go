// Package database opens the snapshot archive's SQLite file and keeps
// its schema current.
//
// The archive is a single local file the CLI touches once per run:
// open, migrate, insert the run, prune, close. The handle embeds
// *sql.DB, so callers query it directly; this package only owns the
// open ritual (parent directory, WAL and busy-timeout pragmas,
// owner-only file permissions) and the embedded, versioned up/down
// migration runner.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Archive.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
