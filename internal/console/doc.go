// Package console implements the WING control protocol client: the UDP
// transport, the OSC message codec, the reliable query engine, and the
// address-space probe.
//
// The console exposes hundreds of independently addressable parameters
// (names, colors, mute state, routing pointers) behind a request/reply
// exchange over UDP. There is no bulk dump, and individual datagrams are
// silently dropped by the network or the console under load. This
// package turns that into a usable primitive: hand the engine a set of
// addresses, get back the latest value for each that answered.
//
// # Architecture
//
//	┌──────────────┐   Query()   ┌──────────────┐  Send/Receive  ┌─────────┐
//	│ Probe +      │────────────▶│    Engine    │───────────────▶│ Client  │   UDP
//	│ routing pkg  │             │  (query.go)  │                │ (socket)│◄──────▶ WING
//	└──────────────┘             └──────────────┘                └─────────┘
//	                              batches, bounded retries        one socket
//	                              per-address results             per run
//
// # Reliability model
//
// Query partitions its address set into fixed-size batches and runs up
// to MaxAttempts send+drain rounds per batch. An address that never
// answers maps to an absent result, not an error: most optional
// parameters legitimately do not exist on a given console. Only
// transport setup failures (resolve, bind) abort a run.
//
// # Address conventions
//
// Firmware generations differ in index zero-padding and in the nesting
// of routing-pointer leaves. Probe discovers both once per run; all
// later addresses are built from the resolved conventions through the
// typed builders in address.go.
//
// # Thread safety
//
// The engine and client follow the run's single logical flow of
// control: Query drives Send/Receive from the calling goroutine.
// Close and the stats accessors are safe from any goroutine.
package console
