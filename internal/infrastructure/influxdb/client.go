package influxdb

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/nerrad567/wingroute/internal/infrastructure/config"
)

// pingTimeout bounds the connectivity check inside Connect.
const pingTimeout = 5 * time.Second

// Client is the run-metrics sink's InfluxDB handle, shaped for a
// process that lives for one snapshot: Connect verifies the server,
// WriteSnapshotRun sends the run's single point synchronously, Close
// releases the handle. There is no batching or background flush
// layer; a run is one point.
type Client struct {
	client influxdb2.Client
	write  api.WriteAPIBlocking
	cfg    config.InfluxDBConfig
}

// Connect creates the client and verifies the server answers a ping
// before the run commits to the sink. Failing here lets the caller
// drop the sink up front instead of discovering a dead server when
// the point is written.
//
// Parameters:
//   - ctx: Bounds the connect-time ping
//   - cfg: The influxdb section of config.yaml
//
// Returns:
//   - *Client: Ready to write; Close it when the run is done
//   - error: ErrDisabled when the sink is off, ErrUnreachable when
//     the server does not answer
func Connect(ctx context.Context, cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	up, err := client.Ping(pingCtx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	if !up {
		client.Close()
		return nil, fmt.Errorf("%w: ping not ready", ErrUnreachable)
	}

	return &Client{
		client: client,
		write:  client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		cfg:    cfg,
	}, nil
}

// Close releases the underlying HTTP client. Writes are synchronous,
// so there is nothing to flush; the error return only keeps the
// sink-teardown call shape uniform.
func (c *Client) Close() error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}
