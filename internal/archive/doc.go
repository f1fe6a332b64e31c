// Package archive keeps a local history of snapshot runs in SQLite.
//
// Each completed run becomes one row in snapshot_runs: identity and
// endpoint columns for querying, counters for trend dashboards, and
// the full track array plus engine stats as JSON payloads for
// after-the-fact inspection ("what was patched last Tuesday").
//
// The store sits on the infrastructure database package (WAL mode,
// busy timeout, embedded migrations); importing the migrations
// package wires the schema in.
//
// # Usage
//
//	store, err := archive.Open(ctx, cfg.Archive)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	if err := store.Record(ctx, result); err != nil {
//	    logger.Error("archive failed", "error", err)
//	}
//	deleted, _ := store.Prune(ctx, cfg.Archive.KeepDays)
package archive
