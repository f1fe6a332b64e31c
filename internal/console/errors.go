package console

import "errors"

// Domain errors for the console protocol package.
var (
	// ErrResolveFailed is returned when the console endpoint address
	// cannot be resolved.
	ErrResolveFailed = errors.New("console: endpoint resolve failed")

	// ErrBindFailed is returned when the local query socket cannot be
	// bound. This is fatal to a snapshot run.
	ErrBindFailed = errors.New("console: local socket bind failed")

	// ErrSendFailed is returned when a request datagram cannot be written.
	ErrSendFailed = errors.New("console: request send failed")

	// ErrReceiveFailed is returned when reading from the query socket
	// fails for a reason other than the deadline passing.
	ErrReceiveFailed = errors.New("console: reply receive failed")

	// ErrReceiveTimeout is returned by Receive when the deadline passes
	// with no datagram read. Callers treat this as the end of a drain
	// window, not a fault.
	ErrReceiveTimeout = errors.New("console: receive timed out")

	// ErrInvalidMessage is returned when a received datagram cannot be
	// decoded as a control message.
	ErrInvalidMessage = errors.New("console: invalid message")

	// ErrQueryAborted is returned when a query run is cancelled through
	// its context before all batches complete.
	ErrQueryAborted = errors.New("console: query aborted")
)
