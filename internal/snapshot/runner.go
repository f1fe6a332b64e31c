package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/wingroute/internal/console"
	"github.com/nerrad567/wingroute/internal/infrastructure/config"
	"github.com/nerrad567/wingroute/internal/routing"
)

// Logger is the structured logging interface consumed by the runner.
// Satisfied by the logging infrastructure's Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options configures one snapshot run.
type Options struct {
	// Console is the endpoint and query tuning.
	Console config.ConsoleConfig

	// Snapshot selects naming and coloring behavior.
	Snapshot config.SnapshotConfig

	// Logger receives run progress; nil runs silently.
	Logger Logger

	// OnProgress, when set, receives settled/total counts from the
	// query engine. Must be set before Run.
	OnProgress func(settled, total int)

	// Dial overrides the transport constructor. Nil dials the console
	// over UDP; tests substitute simulated transports.
	Dial func(cfg console.ClientConfig) (console.Transport, error)
}

// Result is one completed snapshot run: the resolved track list plus
// enough run metadata for every sink (file, archive, announce, metrics).
type Result struct {
	// RunID is a fresh v4 UUID identifying this run.
	RunID string

	// StartedAt and Duration bound the run.
	StartedAt time.Time
	Duration  time.Duration

	// ConsoleHost, ConsolePort, and Interface identify what was polled.
	ConsoleHost string
	ConsolePort int
	Interface   string

	// OutCount is the number of output slots resolved.
	OutCount int

	// Probe holds the discovered address-space conventions.
	Probe console.ProbeResult

	// Stats holds the query engine's counters for the whole run.
	Stats console.EngineStats

	// Tracks is the resolved, stereo-paired track list, one entry per
	// output slot in slot order.
	Tracks []routing.Track
}

// StereoPairCount returns the number of detected stereo pairs.
func (r *Result) StereoPairCount() int {
	n := 0
	for _, t := range r.Tracks {
		if t.StereoLeft {
			n++
		}
	}
	return n
}

// UnroutedCount returns the number of output slots with no routing.
func (r *Result) UnroutedCount() int {
	n := 0
	for _, t := range r.Tracks {
		if t.Unrouted {
			n++
		}
	}
	return n
}

// Summary is the compact run description published to announce topics
// and logged at the end of a run.
type Summary struct {
	RunID       string `json:"run_id"`
	GeneratedAt string `json:"generated_at"`
	ConsoleHost string `json:"console_host"`
	Interface   string `json:"interface"`
	OutCount    int    `json:"out_count"`
	Tracks      int    `json:"tracks"`
	StereoPairs int    `json:"stereo_pairs"`
	Unrouted    int    `json:"unrouted"`
	DurationMs  int64  `json:"duration_ms"`
}

// Summary returns the run's compact description.
func (r *Result) Summary() Summary {
	return Summary{
		RunID:       r.RunID,
		GeneratedAt: r.StartedAt.UTC().Format(time.RFC3339),
		ConsoleHost: r.ConsoleHost,
		Interface:   r.Interface,
		OutCount:    r.OutCount,
		Tracks:      len(r.Tracks),
		StereoPairs: r.StereoPairCount(),
		Unrouted:    r.UnroutedCount(),
		DurationMs:  r.Duration.Milliseconds(),
	}
}

// SummaryJSON returns the summary as JSON.
func (r *Result) SummaryJSON() ([]byte, error) {
	data, err := json.Marshal(r.Summary())
	if err != nil {
		return nil, fmt.Errorf("encoding summary: %w", err)
	}
	return data, nil
}

// TracksJSON returns the full track array, same shape as the snapshot
// file.
func (r *Result) TracksJSON() ([]byte, error) {
	return EncodeTracks(r.Tracks)
}

// Run performs one complete snapshot: dial, probe, resolve, pair.
//
// The transport is opened at the start and closed on every exit path.
// The flow is strictly sequential; ctx cancellation ends the run
// between query rounds with a wrapped error.
//
// Parameters:
//   - ctx: Cancellation for the whole run
//   - opts: Endpoint, tuning, and behavior selection
//
// Returns:
//   - *Result: The resolved run, ready for sinks
//   - error: Transport setup or query failure (context cancellation)
func Run(ctx context.Context, opts Options) (*Result, error) {
	started := time.Now()
	iface := strings.ToUpper(opts.Console.Interface)

	dial := opts.Dial
	if dial == nil {
		dial = func(cfg console.ClientConfig) (console.Transport, error) {
			return console.Dial(cfg)
		}
	}

	transport, err := dial(console.ClientConfig{
		Host: opts.Console.Host,
		Port: opts.Console.Port,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConsoleDial, err)
	}
	defer transport.Close()

	if opts.Logger != nil {
		if lt, ok := transport.(interface{ SetLogger(console.Logger) }); ok {
			lt.SetLogger(opts.Logger)
		}
	}

	engine := console.NewEngine(transport, opts.Console.BatchSize)
	if opts.Logger != nil {
		engine.SetLogger(opts.Logger)
	}
	if opts.OnProgress != nil {
		engine.SetOnProgress(opts.OnProgress)
	}

	probe, err := console.Probe(ctx, engine, console.ProbeOptions{
		Timeout:     opts.Console.ProbeTimeout(),
		MaxAttempts: opts.Console.QueryAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("probing console: %w", err)
	}
	logDebug(opts.Logger, "address space probed",
		"channel_format", probe.ChannelFormat.String(),
		"source_format", probe.SourceFormat.String(),
		"routing_variant", probe.Routing.String(),
	)

	resolver := routing.NewResolver(engine, probe, routing.Config{
		Interface:           iface,
		NameMode:            routing.NameMode(opts.Snapshot.NameMode),
		ForceHardwareColors: opts.Snapshot.ForceHWColors,
		QueryTimeout:        opts.Console.QueryTimeout(),
		ShortTimeout:        opts.Console.ProbeTimeout(),
		MaxAttempts:         opts.Console.QueryAttempts,
	})
	if opts.Logger != nil {
		resolver.SetLogger(opts.Logger)
	}

	tracks, catalog, err := resolver.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving routing: %w", err)
	}

	routing.PairStereo(tracks, catalog.SourceMode)

	result := &Result{
		RunID:       uuid.NewString(),
		StartedAt:   started,
		Duration:    time.Since(started),
		ConsoleHost: opts.Console.Host,
		ConsolePort: opts.Console.Port,
		Interface:   iface,
		OutCount:    len(tracks),
		Probe:       probe,
		Stats:       engine.Stats(),
		Tracks:      tracks,
	}

	if opts.Logger != nil {
		opts.Logger.Info("snapshot resolved",
			"run_id", result.RunID,
			"tracks", len(result.Tracks),
			"stereo_pairs", result.StereoPairCount(),
			"unrouted", result.UnroutedCount(),
			"duration_ms", result.Duration.Milliseconds(),
			"requests_sent", result.Stats.RequestsSent,
			"replies_matched", result.Stats.RepliesMatched,
		)
	}

	return result, nil
}

// logDebug logs through an optional logger.
func logDebug(logger Logger, msg string, args ...any) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}
