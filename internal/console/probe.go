package console

import (
	"context"
	"fmt"
	"time"
)

// DefaultProbeTimeout is the reply drain window for probe rounds. The
// probe set is tiny and most of its addresses intentionally do not
// exist, so the window is kept short.
const DefaultProbeTimeout = 150 * time.Millisecond

// Querier resolves address sets against the console. Satisfied by
// *Engine; tests substitute canned responders.
type Querier interface {
	Query(ctx context.Context, addrs []Address, opts QueryOptions) (Results, error)
}

// ProbeResult holds the address-space conventions of the connected
// console, discovered once per run and threaded through all subsequent
// address construction.
type ProbeResult struct {
	// ChannelFormat is the index spelling of the strip namespaces.
	ChannelFormat IndexFormat

	// SourceFormat is the index spelling of the source namespace.
	SourceFormat IndexFormat

	// Routing is the routing-pointer leaf variant the firmware answers.
	Routing RoutingVariant
}

// ProbeOptions tunes a Probe call. Zero fields take the defaults.
type ProbeOptions struct {
	// Timeout is the reply drain window per probe round.
	Timeout time.Duration

	// MaxAttempts is the retry ceiling for the probe query.
	MaxAttempts int
}

// Probe discovers the connected console's path conventions.
//
// Firmware generations differ in index padding and routing-pointer
// nesting, and there is no version parameter to read, so the probe
// queries a handful of index-1 addresses in every plausible spelling
// and inspects which ones answered:
//
//   - a reply to the 2-digit channel-name probe selects 2-digit
//     indices for the strip namespaces, otherwise unpadded;
//   - a reply to the 3-digit source-name probe selects 3-digit source
//     indices, else 2-digit if that probe answered, else unpadded;
//   - a reply to the nested conn routing-pointer probe (spelled with
//     the resolved source format) selects the conn variant; a reply to
//     only the legacy pointer selects legacy; silence on both selects
//     conn, the current-firmware default.
//
// A console that answers nothing at all yields every default and the
// run proceeds; the bulk query then simply resolves to absences.
//
// Parameters:
//   - ctx: Cancellation, passed through to the query engine
//   - q: Query engine to issue the probe set through
//   - opts: Per-call tuning; zero fields take defaults
//
// Returns:
//   - ProbeResult: Resolved conventions, defaults where silent
//   - error: Only a query-engine error (context cancellation)
func Probe(ctx context.Context, q Querier, opts ProbeOptions) (ProbeResult, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultProbeTimeout
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = DefaultMaxAttempts
	}

	formats := []IndexFormat{FormatUnpadded, FormatPadded2, FormatPadded3}

	var addrs []Address
	for _, f := range formats {
		addrs = append(addrs,
			StripAddress("ch", f, 1, FieldName),
			SourceAddress(f, 1, FieldName),
			SourceAddress(f, 1, VariantLegacy.GroupField()),
			SourceAddress(f, 1, VariantConn.GroupField()),
		)
	}

	results, err := q.Query(ctx, addrs, QueryOptions{
		Timeout:     opts.Timeout,
		MaxAttempts: opts.MaxAttempts,
	})
	if err != nil {
		return ProbeResult{}, fmt.Errorf("probing address space: %w", err)
	}

	res := ProbeResult{
		ChannelFormat: FormatUnpadded,
		SourceFormat:  FormatUnpadded,
	}

	// The console does not use 3-digit channel indices.
	if _, ok := results.Get(StripAddress("ch", FormatPadded2, 1, FieldName)); ok {
		res.ChannelFormat = FormatPadded2
	}

	if _, ok := results.Get(SourceAddress(FormatPadded3, 1, FieldName)); ok {
		res.SourceFormat = FormatPadded3
	} else if _, ok := results.Get(SourceAddress(FormatPadded2, 1, FieldName)); ok {
		res.SourceFormat = FormatPadded2
	}

	res.Routing = resolveRoutingVariant(results, res.SourceFormat)

	return res, nil
}

// resolveRoutingVariant picks the pointer leaf variant from the probe
// replies, reading the spellings at the already-resolved source format.
func resolveRoutingVariant(results Results, f IndexFormat) RoutingVariant {
	if _, ok := results.Get(SourceAddress(f, 1, VariantConn.GroupField())); ok {
		return VariantConn
	}
	if _, ok := results.Get(SourceAddress(f, 1, VariantLegacy.GroupField())); ok {
		return VariantLegacy
	}
	return VariantConn
}
