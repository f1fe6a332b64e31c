// wingroute - WING console routing snapshot tool
//
// One-shot CLI that polls a Behringer WING console over its UDP
// control protocol, resolves which hardware inputs feed the recording
// interface's output slots, and writes the result as wing_routing.json
// for session-template tooling. Optional sinks archive the run to
// SQLite, announce it over MQTT, and record run metrics to InfluxDB.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"

	_ "github.com/nerrad567/wingroute/migrations"

	"github.com/nerrad567/wingroute/internal/archive"
	"github.com/nerrad567/wingroute/internal/infrastructure/config"
	"github.com/nerrad567/wingroute/internal/infrastructure/influxdb"
	"github.com/nerrad567/wingroute/internal/infrastructure/logging"
	"github.com/nerrad567/wingroute/internal/infrastructure/mqtt"
	"github.com/nerrad567/wingroute/internal/snapshot"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel the run on interrupt signals (Ctrl+C, SIGTERM); the query
	// engine stops between retry rounds.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cliOptions holds the parsed command line.
type cliOptions struct {
	configPath string
	outputPath string
	quiet      bool
}

// parseFlags parses the command line. The config default honors the
// WINGROUTE_CONFIG environment variable; a .txt config path is read as
// the legacy KEY=value format.
func parseFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("wingroute", flag.ContinueOnError)

	var opts cliOptions
	fs.StringVar(&opts.configPath, "config", defaultConfig(), "config file path (.yaml, or legacy .txt)")
	fs.StringVar(&opts.outputPath, "output", "", "snapshot file path (overrides config)")
	fs.BoolVar(&opts.quiet, "quiet", false, "suppress the query progress bar")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}
	return opts, nil
}

// defaultConfig returns the configuration file path used when -config
// is not given.
func defaultConfig() string {
	if path := os.Getenv("WINGROUTE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// run is the actual application logic, separated from main for
// testability. Returning an error allows main to handle exit codes
// consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - opts: Parsed command line
//
// Returns:
//   - error: nil on a written snapshot, or error describing failure
func run(ctx context.Context, opts cliOptions) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting wingroute",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", opts.configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	if opts.outputPath != "" {
		cfg.Snapshot.OutputPath = opts.outputPath
	}

	// Poll the console.
	result, err := snapshot.Run(ctx, snapshot.Options{
		Console:    cfg.Console,
		Snapshot:   cfg.Snapshot,
		Logger:     log,
		OnProgress: progressCallback(opts.quiet),
	})
	if err != nil {
		return err
	}

	// The file writer is the contract output; the optional sinks follow
	// it and degrade to error logs on failure.
	sinks := []snapshot.Sink{
		&snapshot.Writer{Path: cfg.Snapshot.OutputPath},
	}

	if cfg.Archive.Enabled {
		store, archiveErr := archive.Open(ctx, cfg.Archive)
		if archiveErr != nil {
			log.Error("archive unavailable", "error", archiveErr)
		} else {
			defer func() {
				if closeErr := store.Close(); closeErr != nil {
					log.Error("error closing archive", "error", closeErr)
				}
			}()
			sinks = append(sinks, &archiveSink{store: store, keepDays: cfg.Archive.KeepDays})
		}
	}

	if cfg.MQTT.Enabled {
		client, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			log.Error("MQTT broker unavailable", "error", mqttErr)
		} else {
			client.SetLogger(log)
			defer func() {
				if closeErr := client.Close(); closeErr != nil {
					log.Error("error closing MQTT", "error", closeErr)
				}
			}()
			log.Info("MQTT connected",
				"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
				"client_id", cfg.MQTT.Broker.ClientID,
			)
			sinks = append(sinks, &announceSink{client: client})
		}
	}

	if cfg.InfluxDB.Enabled {
		client, influxErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if influxErr != nil {
			log.Error("InfluxDB unavailable", "error", influxErr)
		} else {
			defer func() {
				if closeErr := client.Close(); closeErr != nil {
					log.Error("error closing InfluxDB", "error", closeErr)
				}
			}()
			sinks = append(sinks, &metricsSink{client: client})
		}
	}

	if err := snapshot.ApplySinks(ctx, result, sinks, log); err != nil {
		return err
	}

	log.Info("snapshot written",
		"path", cfg.Snapshot.OutputPath,
		"tracks", len(result.Tracks),
		"stereo_pairs", result.StereoPairCount(),
		"unrouted", result.UnroutedCount(),
	)
	return nil
}

// progressCallback builds the query progress callback, or nil when the
// bar is suppressed. The engine reports settled/total counts; the bar
// is created on the first report, once the total is known.
func progressCallback(quiet bool) func(settled, total int) {
	if quiet {
		return nil
	}

	var bar *progressbar.ProgressBar
	return func(settled, total int) {
		if bar == nil || bar.GetMax() != total {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("querying console"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set(settled)
	}
}

// archiveSink records the run in the SQLite archive and applies the
// retention window.
type archiveSink struct {
	store    *archive.Store
	keepDays int
}

// Name implements snapshot.Sink.
func (s *archiveSink) Name() string { return "archive" }

// Store implements snapshot.Sink.
func (s *archiveSink) Store(ctx context.Context, result *snapshot.Result) error {
	if err := s.store.Record(ctx, result); err != nil {
		return err
	}
	_, err := s.store.Prune(ctx, s.keepDays)
	return err
}

// announceSink publishes the retained snapshot topics.
type announceSink struct {
	client *mqtt.Client
}

// Name implements snapshot.Sink.
func (s *announceSink) Name() string { return "mqtt" }

// Store implements snapshot.Sink.
func (s *announceSink) Store(_ context.Context, result *snapshot.Result) error {
	summary, err := result.SummaryJSON()
	if err != nil {
		return err
	}
	tracks, err := result.TracksJSON()
	if err != nil {
		return err
	}

	if err := s.client.PublishRetained(mqtt.TopicSnapshot, summary); err != nil {
		return err
	}
	return s.client.PublishRetained(mqtt.TopicSnapshotTracks, tracks)
}

// metricsSink records one run point to InfluxDB.
type metricsSink struct {
	client *influxdb.Client
}

// Name implements snapshot.Sink.
func (s *metricsSink) Name() string { return "influxdb" }

// Store implements snapshot.Sink.
func (s *metricsSink) Store(ctx context.Context, result *snapshot.Result) error {
	// #nosec G115 -- engine counters never approach int64 range
	return s.client.WriteSnapshotRun(ctx, influxdb.SnapshotRunPoint{
		ConsoleHost:      result.ConsoleHost,
		Interface:        result.Interface,
		DurationMs:       result.Duration.Milliseconds(),
		AddressesQueried: int64(result.Stats.RequestsSent),
		Replies:          int64(result.Stats.RepliesMatched),
		SendErrors:       int64(result.Stats.SendErrors),
		Rounds:           int64(result.Stats.Rounds),
		Tracks:           int64(len(result.Tracks)),
		StereoPairs:      int64(result.StereoPairCount()),
		Unrouted:         int64(result.UnroutedCount()),
		Time:             result.StartedAt,
	})
}
