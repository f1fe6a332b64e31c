package snapshot

import "errors"

// Sentinel errors for snapshot operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, snapshot.ErrConsoleDial) {
//	    // Console endpoint unreachable
//	}
var (
	// ErrConsoleDial indicates the console transport could not be set up.
	ErrConsoleDial = errors.New("snapshot: console dial failed")

	// ErrSinkFailed indicates a required sink rejected the result.
	ErrSinkFailed = errors.New("snapshot: required sink failed")
)
