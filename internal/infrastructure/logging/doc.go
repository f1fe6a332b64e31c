// Package logging provides structured logging for wingroute.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - JSON output for machine-parsed logs (e.g. when run from a DAW
//     session hook)
//   - Text output for interactive runs (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "text"     # text, json
//	  output: "stderr"   # stdout, stderr, or a file path
//
// Logs default to stderr so that stdout stays clean for anything a
// caller pipes the tool into.
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("snapshot complete", "tracks", 48)
//	logger.Error("console unreachable", "error", err)
//
// # Security
//
// Never log broker passwords or InfluxDB tokens.
package logging
