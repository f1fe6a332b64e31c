package snapshot

import (
	"context"
	"errors"
	"fmt"
)

// Sink consumes one completed run result. Implementations cover the
// snapshot file, the SQLite archive, the MQTT announce, and the run
// metrics point.
type Sink interface {
	// Name identifies the sink in logs.
	Name() string

	// Store persists or announces the result.
	Store(ctx context.Context, result *Result) error
}

// requiredSink marks sinks whose failure fails the whole run. The
// snapshot file is the tool's contract output, so its writer reports
// itself required; archive, announce, and metrics degrade to error
// logs.
type requiredSink interface {
	Required() bool
}

// ApplySinks applies every sink in order. A sink failure is logged and
// does not stop later sinks; the returned error joins the failures of
// required sinks, wrapped in ErrSinkFailed.
//
// Parameters:
//   - ctx: Cancellation, passed to each sink
//   - result: The completed run
//   - sinks: Sinks to apply, in order
//   - logger: Receives per-sink outcomes; nil runs silently
//
// Returns:
//   - error: nil unless a required sink failed
func ApplySinks(ctx context.Context, result *Result, sinks []Sink, logger Logger) error {
	var failed []error
	for _, s := range sinks {
		if err := s.Store(ctx, result); err != nil {
			if logger != nil {
				logger.Error("snapshot sink failed", "sink", s.Name(), "error", err)
			}
			if req, ok := s.(requiredSink); ok && req.Required() {
				failed = append(failed, fmt.Errorf("%s: %w", s.Name(), err))
			}
			continue
		}
		logDebug(logger, "snapshot sink stored", "sink", s.Name())
	}
	if len(failed) > 0 {
		return fmt.Errorf("%w: %w", ErrSinkFailed, errors.Join(failed...))
	}
	return nil
}
