package routing

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/wingroute/internal/console"
)

// Logger is the optional structured logging interface consumed by this
// package. Satisfied by the logging infrastructure's Logger.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
}

// Config is the resolver's immutable configuration view, constructed
// once before the run.
type Config struct {
	// Interface is the recording interface namespace ("USB", "MOD",
	// "CRD") whose output slots are resolved.
	Interface string

	// OutCount is the number of output slots. Zero derives it from
	// the interface (64 for module/card, 48 otherwise).
	OutCount int

	// NameMode selects the metadata layer tracks are named from.
	NameMode NameMode

	// ForceHardwareColors colors every routed track by its hardware
	// group's fixed RGB regardless of name mode.
	ForceHardwareColors bool

	// QueryTimeout is the bulk phase-1 drain window per retry round.
	QueryTimeout time.Duration

	// ShortTimeout is the phase-2 drain window. The phase-2 set is
	// small and partially speculative, so it uses the probe's shorter
	// window.
	ShortTimeout time.Duration

	// MaxAttempts is the retry-round ceiling per batch.
	MaxAttempts int
}

// Resolver walks the console's routing graph: output slot pointers,
// strip upstream pointers, and hardware-input metadata, producing one
// Track per output slot.
type Resolver struct {
	querier console.Querier
	probe   console.ProbeResult
	cfg     Config
	logger  Logger
}

// NewResolver creates a resolver over a query engine, using the
// address conventions the probe discovered.
func NewResolver(querier console.Querier, probe console.ProbeResult, cfg Config) *Resolver {
	if cfg.OutCount <= 0 {
		cfg.OutCount = OutCountFor(cfg.Interface)
	}
	if !cfg.NameMode.IsValid() {
		cfg.NameMode = NameModeChannel
	}
	return &Resolver{querier: querier, probe: probe, cfg: cfg}
}

// SetLogger sets the logger for this resolver.
func (r *Resolver) SetLogger(logger Logger) {
	r.logger = logger
}

// Resolve runs the two-phase metadata query and synthesizes the track
// list.
//
// Phase 1 covers every output slot's routing pointer plus every
// strip's and bus's display metadata. Phase 2 queries name, color,
// mute, and mode for each distinct genuine hardware reference found in
// phase 1's pointers; logical references (strips, buses, OFF) never
// reach phase 2, and an empty reference set simply skips it.
//
// The returned catalog backs the stereo pairing pass's mode lookups.
//
// Parameters:
//   - ctx: Cancellation; honored between query rounds
//
// Returns:
//   - []Track: One track per output slot, 1..OutCount, unpaired
//   - *Catalog: The run's metadata store
//   - error: Only a query-engine failure (context cancellation)
func (r *Resolver) Resolve(ctx context.Context) ([]Track, *Catalog, error) {
	phase1 := r.phase1Addresses()
	results, err := r.querier.Query(ctx, phase1, console.QueryOptions{
		Timeout:     r.cfg.QueryTimeout,
		MaxAttempts: r.cfg.MaxAttempts,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("querying routing metadata: %w", err)
	}

	refs := r.deriveHardwareRefs(results)
	r.logDebug("hardware references derived", "count", len(refs))

	if len(refs) > 0 {
		phase2, err := r.querier.Query(ctx, hardwareAddresses(refs), console.QueryOptions{
			Timeout:     r.cfg.ShortTimeout,
			MaxAttempts: r.cfg.MaxAttempts,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("querying hardware inputs: %w", err)
		}
		results.Merge(phase2)
	}

	catalog := newCatalog(results, r.probe, refs)

	tracks := make([]Track, 0, r.cfg.OutCount)
	for slot := 1; slot <= r.cfg.OutCount; slot++ {
		tracks = append(tracks, r.resolveSlot(slot, catalog))
	}
	return tracks, catalog, nil
}

// phase1Addresses builds the bulk query set with the probe-resolved
// index spellings.
func (r *Resolver) phase1Addresses() []console.Address {
	var addrs []console.Address

	for slot := 1; slot <= r.cfg.OutCount; slot++ {
		addrs = append(addrs,
			console.OutputAddress(r.cfg.Interface, slot, console.FieldGroup),
			console.OutputAddress(r.cfg.Interface, slot, console.FieldIndex),
		)
	}

	f := r.probe.ChannelFormat
	for _, strip := range []struct {
		kind  string
		count int
	}{
		{GroupChannel.StripKind(), ChannelCount},
		{GroupAuxStrip.StripKind(), AuxStripCount},
	} {
		for i := 1; i <= strip.count; i++ {
			addrs = append(addrs,
				console.StripAddress(strip.kind, f, i, console.FieldName),
				console.StripAddress(strip.kind, f, i, console.FieldColor),
				console.StripAddress(strip.kind, f, i, console.FieldLED),
				console.StripAddress(strip.kind, f, i, console.FieldLight),
				console.StripAddress(strip.kind, f, i, r.probe.Routing.GroupField()),
				console.StripAddress(strip.kind, f, i, r.probe.Routing.IndexField()),
			)
		}
	}

	for _, bus := range []Group{GroupMain, GroupBus, GroupMatrix} {
		for i := 1; i <= busStripCount(bus); i++ {
			addrs = append(addrs,
				console.StripAddress(bus.StripKind(), f, i, console.FieldName),
				console.StripAddress(bus.StripKind(), f, i, console.FieldColor),
				console.StripAddress(bus.StripKind(), f, i, console.FieldLED),
				console.StripAddress(bus.StripKind(), f, i, console.FieldLight),
			)
		}
	}

	return addrs
}

// deriveHardwareRefs scans the output slot pointers and every strip's
// upstream pointer for distinct genuine hardware references. An
// unparseable pointer index skips that pointer; the slot still
// resolves from whatever phase-1 data exists.
func (r *Resolver) deriveHardwareRefs(results console.Results) []hardwareRef {
	seen := make(map[Reference]string)

	add := func(rawGroup, rawIndex string) {
		rawGroup = strings.TrimSpace(rawGroup)
		rawIndex = strings.TrimSpace(rawIndex)
		if rawGroup == "" || rawIndex == "" {
			return
		}
		group := NormalizeGroup(rawGroup)
		if !group.IsHardware() {
			return
		}
		n, err := strconv.Atoi(rawIndex)
		if err != nil {
			return
		}
		ref := Reference{Group: group, Index: n}
		if _, dup := seen[ref]; !dup {
			seen[ref] = rawGroup
		}
	}

	for slot := 1; slot <= r.cfg.OutCount; slot++ {
		add(
			results.Value(console.OutputAddress(r.cfg.Interface, slot, console.FieldGroup)),
			results.Value(console.OutputAddress(r.cfg.Interface, slot, console.FieldIndex)),
		)
	}

	f := r.probe.ChannelFormat
	for _, strip := range []struct {
		kind  string
		count int
	}{
		{GroupChannel.StripKind(), ChannelCount},
		{GroupAuxStrip.StripKind(), AuxStripCount},
	} {
		for i := 1; i <= strip.count; i++ {
			add(
				results.Value(console.StripAddress(strip.kind, f, i, r.probe.Routing.GroupField())),
				results.Value(console.StripAddress(strip.kind, f, i, r.probe.Routing.IndexField())),
			)
		}
	}

	refs := make([]hardwareRef, 0, len(seen))
	for ref, raw := range seen {
		refs = append(refs, hardwareRef{Ref: ref, Raw: raw})
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Ref.Group != refs[j].Ref.Group {
			return refs[i].Ref.Group < refs[j].Ref.Group
		}
		return refs[i].Ref.Index < refs[j].Ref.Index
	})
	return refs
}

// hardwareAddresses builds the phase-2 query set. The raw group
// spelling builds each address because the /io/in namespace only
// answers the console's own spelling.
func hardwareAddresses(refs []hardwareRef) []console.Address {
	addrs := make([]console.Address, 0, len(refs)*5)
	for _, hw := range refs {
		for _, field := range []string{
			console.FieldName,
			console.FieldColor,
			console.FieldLED,
			console.FieldLight,
			console.FieldMode,
		} {
			addrs = append(addrs, console.HardwareInputAddress(hw.Raw, hw.Ref.Index, field))
		}
	}
	return addrs
}

// resolveSlot walks one output slot's routing indirection to a Track.
func (r *Resolver) resolveSlot(slot int, cat *Catalog) Track {
	rawGroup := strings.TrimSpace(cat.value(console.OutputAddress(r.cfg.Interface, slot, console.FieldGroup)))
	group := NormalizeGroup(rawGroup)

	index := slot
	if n, err := strconv.Atoi(strings.TrimSpace(cat.value(console.OutputAddress(r.cfg.Interface, slot, console.FieldIndex)))); err == nil {
		index = n
	}

	track := Track{
		Slot:          slot,
		Ref:           Reference{Group: group, Index: index},
		ChannelLabel:  "-",
		SourceLabel:   "-",
		HardwareLabel: "-",
		PlaybackInput: slot - 1,
		Unrouted:      group == GroupOff || group == "",
	}

	// A slot routed to a strip takes the strip's own metadata, and the
	// strip's upstream pointer (when set) becomes the effective
	// hardware reference for bus math and fixed-color lookup.
	var direct Metadata
	isDirect := false
	if group.IsStrip() {
		isDirect = true
		direct = cat.StripMeta(group.StripKind(), index)
		if upstream, ok := cat.StripUpstream(group.StripKind(), index); ok {
			track.Ref = upstream
		}
	}

	name := ""
	color := 0
	forceUncolored := false

	switch {
	case track.Unrouted:
		name = fmt.Sprintf("(INPUT %d NOT ROUTED)", slot)
		forceUncolored = true

	case track.Ref.Group.IsBus():
		name, color, forceUncolored = r.resolveBusSlot(&track, cat)

	default:
		name, color, forceUncolored = r.resolveHardwareSlot(&track, cat, isDirect, direct)
	}

	track.Name = name
	track.Color = TrackColor(track.Ref.Group, color, forceUncolored, track.Unrouted,
		r.cfg.NameMode, r.cfg.ForceHardwareColors)
	return track
}

// resolveBusSlot fills a mix-bus-routed slot's labels and picks its
// name and color. Bus parameter indices interleave stereo sides: index
// 2n-1 is bus n left, 2n bus n right.
func (r *Resolver) resolveBusSlot(track *Track, cat *Catalog) (name string, color int, forceUncolored bool) {
	busNumber := (track.Ref.Index-1)/2 + 1
	side := " R"
	if track.Ref.Index%2 != 0 {
		side = " L"
	}

	meta := cat.BusMeta(track.Ref.Group, busNumber)
	positionLabel := Reference{Group: track.Ref.Group, Index: busNumber}.Label() + side

	track.ChannelLabel = "-"
	if meta.Name != "" {
		track.ChannelLabel = meta.Name
	}
	track.HardwareLabel = positionLabel

	if r.cfg.NameMode == NameModeChannel {
		if meta.Name != "" {
			name = meta.Name + side
		}
		return name, meta.Color, meta.Muted
	}
	return positionLabel, meta.Color, false
}

// resolveHardwareSlot fills a hardware-routed slot's labels and picks
// its name and color per the display mode. For channel-name mode the
// direct strip's own fields win when the slot is strip-routed; the
// catalog's channel entry (keyed by upstream reference) covers slots
// patched straight to a jack that some strip also listens to.
func (r *Resolver) resolveHardwareSlot(track *Track, cat *Catalog, isDirect bool, direct Metadata) (name string, color int, forceUncolored bool) {
	channel, hasChannel := cat.Channel(track.Ref)
	source, hasSource := cat.Source(track.Ref)

	if isDirect && direct.Name != "" {
		track.ChannelLabel = direct.Name
	} else if hasChannel && channel.Name != "" {
		track.ChannelLabel = channel.Name
	}
	if hasSource && source.Name != "" {
		track.SourceLabel = source.Name
	}
	track.HardwareLabel = track.Ref.Label()

	switch r.cfg.NameMode {
	case NameModeChannel:
		if isDirect {
			return direct.Name, direct.Color, direct.Muted
		}
		if hasChannel {
			return channel.Name, channel.Color, channel.Muted
		}
	case NameModeSource:
		if hasSource {
			return source.Name, source.Color, false
		}
	case NameModeHardware:
		return track.Ref.Label(), 0, false
	}
	return "", 0, false
}

// logDebug logs a debug message if a logger is set.
func (r *Resolver) logDebug(msg string, keysAndValues ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, keysAndValues...)
	}
}
