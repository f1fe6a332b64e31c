// Package snapshot orchestrates one console poll from dial to sinks.
//
// A run is strictly sequential: open the UDP transport, probe the
// address-space conventions, resolve the routing graph to a track
// list, pair stereo sides, then hand the Result to each configured
// Sink. The package owns the run lifecycle; the wire protocol lives in
// internal/console and the resolution rules in internal/routing.
//
// # Sinks
//
// Sinks are independent consumers of a completed Result. The file
// writer is the contract output and its failure fails the run; the
// archive, MQTT announce, and metrics sinks degrade to error logs so a
// broker outage never costs the snapshot file.
//
// # Usage
//
//	result, err := snapshot.Run(ctx, snapshot.Options{
//	    Console:  cfg.Console,
//	    Snapshot: cfg.Snapshot,
//	    Logger:   logger,
//	})
//	if err != nil {
//	    return err
//	}
//	err = snapshot.ApplySinks(ctx, result, sinks, logger)
package snapshot
