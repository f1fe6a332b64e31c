package console

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Query defaults, sized for a console on a quiet local network.
const (
	// DefaultBatchSize bounds requests in flight per retry round.
	// Issuing thousands of simultaneous requests overruns the console's
	// and the local socket's buffering, causing correlated loss.
	DefaultBatchSize = 1000

	// DefaultQueryTimeout is the reply drain window per retry round.
	DefaultQueryTimeout = 300 * time.Millisecond

	// DefaultMaxAttempts is the retry-round ceiling per batch.
	DefaultMaxAttempts = 4
)

// QueryOptions tunes one Query call. Zero fields take the defaults.
type QueryOptions struct {
	// Timeout is the reply drain window of each retry round.
	Timeout time.Duration

	// MaxAttempts is the maximum send+drain rounds per batch.
	MaxAttempts int
}

// Result is one address's outcome. Received distinguishes "replied with
// an empty value" from "never replied"; absence of a reply is ordinary
// data for optional parameters, not an error.
type Result struct {
	Value    string
	Received bool
}

// Results maps every queried address to its outcome. The key set always
// equals the queried address set.
type Results map[Address]Result

// Get returns the received value for addr and whether a reply arrived.
func (r Results) Get(addr Address) (string, bool) {
	res := r[addr]
	return res.Value, res.Received
}

// Value returns the received value for addr, or "" when no reply arrived.
func (r Results) Value(addr Address) string {
	return r[addr].Value
}

// Merge copies every entry of other into r.
func (r Results) Merge(other Results) {
	for addr, res := range other {
		r[addr] = res
	}
}

// EngineStats holds query counters for one engine instance.
type EngineStats struct {
	RequestsSent   uint64
	RepliesMatched uint64
	RepliesIgnored uint64
	SendErrors     uint64
	Rounds         uint64
}

// Engine resolves sets of parameter addresses over an unreliable
// datagram transport.
//
// The engine is created fresh per snapshot run and drives its transport
// from the calling goroutine; Query blocks until every batch has either
// resolved or exhausted its retry budget.
type Engine struct {
	transport Transport
	batchSize int

	onProgress func(settled, total int)

	logger   Logger
	loggerMu sync.RWMutex

	requestsSent   atomic.Uint64
	repliesMatched atomic.Uint64
	repliesIgnored atomic.Uint64
	sendErrors     atomic.Uint64
	rounds         atomic.Uint64
}

// NewEngine creates a query engine over the given transport.
//
// Parameters:
//   - transport: Request/reply transport (usually a *Client)
//   - batchSize: Maximum requests in flight per retry round; values
//     below 1 take DefaultBatchSize
func NewEngine(transport Transport, batchSize int) *Engine {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &Engine{transport: transport, batchSize: batchSize}
}

// SetLogger sets the logger for this engine.
func (e *Engine) SetLogger(logger Logger) {
	e.loggerMu.Lock()
	e.logger = logger
	e.loggerMu.Unlock()
}

// SetOnProgress sets a callback reporting settled addresses. An address
// is settled once its value is known or its batch has exhausted all
// retry rounds; settled reaches total on every completed query. Must be
// set before Query is called.
func (e *Engine) SetOnProgress(callback func(settled, total int)) {
	e.onProgress = callback
}

// Query resolves every address in addrs against the console.
//
// The address list is deduplicated and partitioned into batches. Each
// batch runs up to MaxAttempts rounds: one request is sent per
// still-unanswered address, then replies are drained until the round's
// deadline. A reply for any address still unanswered globally is
// accepted opportunistically, so late replies from earlier batches are
// never wasted, but a completed batch is never reopened. A batch stops
// retrying early once all its addresses have answered.
//
// Addresses with no reply after all rounds map to a Result with
// Received == false; that is a normal outcome for optional parameters,
// not an error. Wall-clock cost is bounded by
// batches × MaxAttempts × Timeout.
//
// Parameters:
//   - ctx: Cancellation; checked between rounds
//   - addrs: Addresses to resolve (duplicates collapse)
//   - opts: Per-call tuning; zero fields take defaults
//
// Returns:
//   - Results: One entry per distinct address, always
//   - error: ErrQueryAborted if ctx is cancelled mid-run
func (e *Engine) Query(ctx context.Context, addrs []Address, opts QueryOptions) (Results, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultQueryTimeout
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = DefaultMaxAttempts
	}

	results := make(Results, len(addrs))
	pending := make(map[Address]struct{}, len(addrs))

	var batches [][]Address
	var current []Address
	for _, addr := range addrs {
		if _, dup := pending[addr]; dup {
			continue
		}
		pending[addr] = struct{}{}
		results[addr] = Result{}
		current = append(current, addr)
		if len(current) == e.batchSize {
			batches = append(batches, current)
			current = nil
		}
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}

	total := len(pending)
	abandoned := 0

	for _, batch := range batches {
		for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
			if err := ctx.Err(); err != nil {
				return results, fmt.Errorf("%w: %w", ErrQueryAborted, err)
			}

			outstanding := batch[:0:0]
			for _, addr := range batch {
				if _, waiting := pending[addr]; waiting {
					outstanding = append(outstanding, addr)
				}
			}
			if len(outstanding) == 0 {
				break
			}

			e.rounds.Add(1)
			for _, addr := range outstanding {
				if err := e.transport.Send(addr); err != nil {
					e.sendErrors.Add(1)
					e.logDebug("request send failed", "address", string(addr), "error", err)
					continue
				}
				e.requestsSent.Add(1)
			}

			e.drain(time.Now().Add(opts.Timeout), pending, results, outstanding)
			e.reportProgress(e.settled(total, pending, abandoned), total)
		}

		// Whatever the batch never resolved has exhausted its retry
		// budget and settles as absent. The address stays in pending so
		// a late reply during a later batch's drain is still recorded.
		for _, addr := range batch {
			if _, waiting := pending[addr]; waiting {
				abandoned++
			}
		}
		e.reportProgress(e.settled(total, pending, abandoned), total)
	}

	return results, nil
}

// settled computes how many addresses have either answered or run out
// of retry rounds. A late reply to an abandoned address can briefly
// count it twice, so the value is capped at total.
func (e *Engine) settled(total int, pending map[Address]struct{}, abandoned int) int {
	s := total - len(pending) + abandoned
	if s > total {
		s = total
	}
	return s
}

// drain reads replies until the deadline or until every address of the
// current batch has answered. Replies for addresses outside the batch
// but still pending globally are recorded too; only in-batch matches
// count toward the returned total.
func (e *Engine) drain(deadline time.Time, pending map[Address]struct{}, results Results, batch []Address) int {
	inBatch := make(map[Address]struct{}, len(batch))
	for _, addr := range batch {
		inBatch[addr] = struct{}{}
	}

	matched := 0
	for matched < len(batch) && time.Now().Before(deadline) {
		msg, err := e.transport.Receive(deadline)
		if err != nil {
			if errors.Is(err, ErrReceiveTimeout) {
				break
			}
			if errors.Is(err, ErrInvalidMessage) {
				continue
			}
			e.logDebug("reply receive failed", "error", err)
			break
		}

		if _, waiting := pending[msg.Address]; !waiting {
			e.repliesIgnored.Add(1)
			continue
		}

		delete(pending, msg.Address)
		results[msg.Address] = Result{Value: msg.Value(), Received: true}
		e.repliesMatched.Add(1)
		if _, ok := inBatch[msg.Address]; ok {
			matched++
		}
	}
	return matched
}

// reportProgress invokes the progress callback if one is set.
func (e *Engine) reportProgress(settled, total int) {
	if e.onProgress != nil {
		e.onProgress(settled, total)
	}
}

// Stats returns current query counters.
func (e *Engine) Stats() EngineStats {
	return EngineStats{
		RequestsSent:   e.requestsSent.Load(),
		RepliesMatched: e.repliesMatched.Load(),
		RepliesIgnored: e.repliesIgnored.Load(),
		SendErrors:     e.sendErrors.Load(),
		Rounds:         e.rounds.Load(),
	}
}

// logDebug logs a debug message if a logger is set.
func (e *Engine) logDebug(msg string, keysAndValues ...any) {
	e.loggerMu.RLock()
	logger := e.logger
	e.loggerMu.RUnlock()

	if logger != nil {
		logger.Debug(msg, keysAndValues...)
	}
}
