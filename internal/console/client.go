package console

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Transport parameters.
const (
	// DefaultPort is the console's control protocol port.
	DefaultPort = 2223

	// receiveBufferSize is the kernel receive buffer requested for the
	// query socket. A retry round can have a full batch of replies in
	// flight at once; the platform default buffer drops under that load.
	receiveBufferSize = 1 << 20

	// maxDatagramSize is the largest reply datagram read in one call.
	// Parameter replies are tens of bytes; the headroom costs one buffer.
	maxDatagramSize = 8192

	// defaultSendTimeout bounds a single request write.
	defaultSendTimeout = time.Second
)

// Logger is the optional structured logging interface consumed by this
// package. Satisfied by the logging infrastructure's Logger.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Transport sends parameter requests and receives replies. Implemented
// by Client; tests substitute simulated transports to exercise loss and
// reordering without a console.
type Transport interface {
	Send(addr Address) error
	Receive(deadline time.Time) (Message, error)
	Close() error
}

// Ensure Client implements Transport.
var _ Transport = (*Client)(nil)

// ClientConfig holds the console endpoint.
type ClientConfig struct {
	// Host is the console's IP address or hostname.
	Host string

	// Port is the control port. Default: DefaultPort.
	Port int
}

// Stats holds transport counters for one run.
type Stats struct {
	RequestsTx   uint64
	RepliesRx    uint64
	DecodeErrors uint64
	SendErrors   uint64
}

// Client is the UDP transport for one snapshot run.
//
// One socket is bound for the whole run and released by Close. Send and
// Receive follow the query engine's sequential model and are not meant
// for concurrent use with each other; Close is idempotent and safe to
// call from any goroutine.
type Client struct {
	conn *net.UDPConn
	dest *net.UDPAddr
	rbuf [maxDatagramSize]byte

	closeOnce sync.Once
	closeErr  error

	logger   Logger
	loggerMu sync.RWMutex

	requestsTx   atomic.Uint64
	repliesRx    atomic.Uint64
	decodeErrors atomic.Uint64
	sendErrors   atomic.Uint64
}

// Dial resolves the console endpoint and binds the local query socket.
//
// The socket is bound to a wildcard ephemeral port and its receive
// buffer is enlarged to survive bulk reply bursts. Failures here are the
// only transport errors fatal to a run.
//
// Parameters:
//   - cfg: Console endpoint configuration
//
// Returns:
//   - *Client: Bound transport ready for queries
//   - error: ErrResolveFailed or ErrBindFailed on setup failure
func Dial(cfg ClientConfig) (*Client, error) {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}

	dest, err := net.ResolveUDPAddr("udp", net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResolveFailed, err)
	}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBindFailed, err)
	}

	c := &Client{conn: conn, dest: dest}

	// The kernel may clamp the request; retry rounds absorb a smaller
	// buffer at the cost of more attempts.
	if err := conn.SetReadBuffer(receiveBufferSize); err != nil {
		c.logDebug("set receive buffer failed", "error", err)
	}

	return c, nil
}

// LocalAddr returns the bound local endpoint.
func (c *Client) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// Send encodes and writes one parameter request to the console.
//
// Returns:
//   - error: ErrSendFailed if the write fails; callers count and retry
//     rather than abort
func (c *Client) Send(addr Address) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(defaultSendTimeout)); err != nil {
		return fmt.Errorf("%w: set deadline: %w", ErrSendFailed, err)
	}

	if _, err := c.conn.WriteToUDP(EncodeRequest(addr), c.dest); err != nil {
		c.sendErrors.Add(1)
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	c.requestsTx.Add(1)
	return nil
}

// Receive reads one reply arriving before the deadline.
//
// Returns ErrReceiveTimeout when the deadline passes with nothing read;
// that ends a drain window and is not a fault. Malformed datagrams are
// counted and reported as ErrInvalidMessage so the caller can skip them.
//
// Parameters:
//   - deadline: Absolute read deadline
//
// Returns:
//   - Message: Decoded reply
//   - error: ErrReceiveTimeout, ErrInvalidMessage, or ErrReceiveFailed
func (c *Client) Receive(deadline time.Time) (Message, error) {
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return Message{}, fmt.Errorf("%w: set deadline: %w", ErrReceiveFailed, err)
	}

	n, _, err := c.conn.ReadFromUDP(c.rbuf[:])
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return Message{}, ErrReceiveTimeout
		}
		return Message{}, fmt.Errorf("%w: %w", ErrReceiveFailed, err)
	}

	msg, err := DecodeMessage(c.rbuf[:n])
	if err != nil {
		c.decodeErrors.Add(1)
		return Message{}, err
	}

	c.repliesRx.Add(1)
	return msg, nil
}

// Close releases the query socket. Safe to call multiple times.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// SetLogger sets the logger for this client.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// Stats returns current transport counters.
func (c *Client) Stats() Stats {
	return Stats{
		RequestsTx:   c.requestsTx.Load(),
		RepliesRx:    c.repliesRx.Load(),
		DecodeErrors: c.decodeErrors.Load(),
		SendErrors:   c.sendErrors.Load(),
	}
}

// logDebug logs a debug message if a logger is set.
func (c *Client) logDebug(msg string, keysAndValues ...any) {
	c.loggerMu.RLock()
	logger := c.logger
	c.loggerMu.RUnlock()

	if logger != nil {
		logger.Debug(msg, keysAndValues...)
	}
}
