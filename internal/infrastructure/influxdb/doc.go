// Package influxdb records snapshot-run metrics to InfluxDB v2.
//
// Each run produces one "snapshot_run" point: query-engine counters
// (addresses queried, replies, send errors, rounds), run duration, and
// track outcome counts (tracks, stereo pairs, unrouted slots), tagged
// by console host and interface. A studio dashboard can then watch
// console reachability and query reliability drift over time.
//
// The lifecycle matches the one-shot CLI: Connect pings the server,
// WriteSnapshotRun writes the point synchronously, Close releases the
// handle. Errors come back on the write call itself.
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.WriteSnapshotRun(ctx, influxdb.SnapshotRunPoint{
//	    ConsoleHost: "192.168.8.3",
//	    Interface:   "USB",
//	    DurationMs:  2140,
//	})
package influxdb
