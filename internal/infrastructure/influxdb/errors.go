package influxdb

import "errors"

// Sentinel errors. The metrics sink is optional: the CLI logs any of
// these and carries on, since the routing file never depends on the
// metrics server.
var (
	// ErrDisabled reports that the metrics sink is switched off in
	// configuration.
	ErrDisabled = errors.New("influxdb: metrics disabled")

	// ErrUnreachable reports that the server did not answer the
	// connect-time ping.
	ErrUnreachable = errors.New("influxdb: server unreachable")

	// ErrWriteFailed reports that writing the run point failed.
	ErrWriteFailed = errors.New("influxdb: write failed")
)
