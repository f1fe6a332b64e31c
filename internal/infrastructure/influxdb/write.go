package influxdb

import (
	"context"
	"fmt"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// SnapshotRunPoint carries one run's metrics for WriteSnapshotRun.
// Plain values, so callers above this package need no InfluxDB types.
type SnapshotRunPoint struct {
	// ConsoleHost and Interface tag the point (low cardinality).
	ConsoleHost string
	Interface   string

	// Timing and query-engine counters.
	DurationMs       int64
	AddressesQueried int64
	Replies          int64
	SendErrors       int64
	Rounds           int64

	// Track outcome counters.
	Tracks      int64
	StereoPairs int64
	Unrouted    int64

	// Time is the run's start time; zero means now.
	Time time.Time
}

// WriteSnapshotRun records one snapshot run's metrics: a single
// synchronous write of one "snapshot_run" point.
//
// Parameters:
//   - ctx: Cancellation for the HTTP write
//   - p: The run's tags and counters
//
// Returns:
//   - error: Wraps ErrWriteFailed when the server rejects the point
func (c *Client) WriteSnapshotRun(ctx context.Context, p SnapshotRunPoint) error {
	ts := p.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	point := write.NewPoint(
		"snapshot_run",
		map[string]string{
			"console_host": p.ConsoleHost,
			"interface":    p.Interface,
		},
		map[string]interface{}{
			"duration_ms":       p.DurationMs,
			"addresses_queried": p.AddressesQueried,
			"replies":           p.Replies,
			"send_errors":       p.SendErrors,
			"rounds":            p.Rounds,
			"tracks":            p.Tracks,
			"stereo_pairs":      p.StereoPairs,
			"unrouted":          p.Unrouted,
		},
		ts,
	)

	if err := c.write.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

// WritePoint writes a custom point with full control over tags and
// fields, for measurements the helper does not cover.
func (c *Client) WritePoint(ctx context.Context, measurement string, tags map[string]string, fields map[string]interface{}) error {
	point := write.NewPoint(measurement, tags, fields, time.Now())
	if err := c.write.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}
