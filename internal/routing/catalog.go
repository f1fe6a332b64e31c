package routing

import (
	"strconv"
	"strings"

	"github.com/nerrad567/wingroute/internal/console"
)

// offValues are the reply spellings that read as off/muted. The mute
// parameters answer with whichever of these the firmware favours;
// anything else, including an absent reply, reads as on.
var offValues = map[string]struct{}{
	"0":        {},
	"0.0":      {},
	"OFF":      {},
	"false":    {},
	"False":    {},
	"0.000000": {},
}

// isOff parses a mute/LED reply value.
func isOff(value string) bool {
	_, ok := offValues[value]
	return ok
}

// Metadata is one strip's or input's display metadata.
type Metadata struct {
	// Name is the trimmed display name, "" when unset.
	Name string

	// Color is the numeric color code, 0 when unset or malformed.
	Color int

	// Muted reports whether the strip's LED reads as off.
	Muted bool
}

// SourceMetadata is a hardware input's metadata. Mode distinguishes
// mono from stereo-linked inputs.
type SourceMetadata struct {
	Metadata

	// Mode is the input's mono/stereo mode, "M" when unreported.
	Mode string
}

// SourceModeStereo is the mode value of a stereo-linked input.
const SourceModeStereo = "ST"

// hardwareRef is a genuine physical-input reference found in a routing
// pointer. Raw preserves the console's own group spelling, which is
// the only spelling the /io/in namespace answers to; Ref carries the
// canonical form that keys the catalog.
type hardwareRef struct {
	Ref Reference
	Raw string
}

// Catalog is the read-through metadata store for one resolution run.
// It owns the merged phase-1 and phase-2 query results and the derived
// source and channel maps, with the precedence rules fixed:
//
//   - sources: phase-2 hardware-input metadata, keyed by canonical
//     reference;
//   - channels: each strip's metadata keyed by the strip's own
//     upstream hardware reference; where two strips share an upstream,
//     channel strips beat aux strips and lower indices beat higher.
type Catalog struct {
	results console.Results
	probe   console.ProbeResult

	sources  map[Reference]SourceMetadata
	channels map[Reference]Metadata
}

// newCatalog derives the source and channel maps from the merged
// results.
func newCatalog(results console.Results, probe console.ProbeResult, refs []hardwareRef) *Catalog {
	c := &Catalog{
		results:  results,
		probe:    probe,
		sources:  make(map[Reference]SourceMetadata, len(refs)),
		channels: make(map[Reference]Metadata),
	}
	c.gatherSources(refs)
	c.gatherChannels()
	return c
}

// value returns the reply for an address, "" when absent.
func (c *Catalog) value(addr console.Address) string {
	return c.results.Value(addr)
}

// firstValue returns the first non-empty reply among the addresses.
func (c *Catalog) firstValue(addrs ...console.Address) string {
	for _, addr := range addrs {
		if v := c.results.Value(addr); v != "" {
			return v
		}
	}
	return ""
}

// parseColor reads a color code reply, substituting the neutral code
// for absent or malformed values.
func parseColor(value string) int {
	code, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return code
}

// muted parses an led-else-light reply pair, defaulting to on.
func muted(led, light string) bool {
	v := led
	if v == "" {
		v = light
	}
	if v == "" {
		v = "1"
	}
	return isOff(v)
}

// gatherSources builds the source map from the phase-2 replies.
func (c *Catalog) gatherSources(refs []hardwareRef) {
	for _, hw := range refs {
		c.sources[hw.Ref] = SourceMetadata{
			Metadata: Metadata{
				Name:  strings.TrimSpace(c.value(console.HardwareInputAddress(hw.Raw, hw.Ref.Index, console.FieldName))),
				Color: parseColor(c.value(console.HardwareInputAddress(hw.Raw, hw.Ref.Index, console.FieldColor))),
				Muted: muted(
					c.value(console.HardwareInputAddress(hw.Raw, hw.Ref.Index, console.FieldLED)),
					c.value(console.HardwareInputAddress(hw.Raw, hw.Ref.Index, console.FieldLight)),
				),
			},
			Mode: c.sourceMode(hw),
		}
	}
}

// sourceMode reads a hardware input's mono/stereo mode, "M" when the
// input does not report one.
func (c *Catalog) sourceMode(hw hardwareRef) string {
	if v, ok := c.results.Get(console.HardwareInputAddress(hw.Raw, hw.Ref.Index, console.FieldMode)); ok && v != "" {
		return v
	}
	return "M"
}

// gatherChannels builds the channel map: every strip with a parseable
// upstream pointer contributes its metadata under that reference.
// Iteration runs aux strips before channel strips and indices high to
// low, so the later writes give channel strips precedence over aux
// strips and lower indices precedence within a type.
func (c *Catalog) gatherChannels() {
	for _, strip := range []struct {
		kind  string
		count int
	}{
		{GroupAuxStrip.StripKind(), AuxStripCount},
		{GroupChannel.StripKind(), ChannelCount},
	} {
		for i := strip.count; i >= 1; i-- {
			ref, ok := c.StripUpstream(strip.kind, i)
			if !ok {
				continue
			}
			c.channels[ref] = c.StripMeta(strip.kind, i)
		}
	}
}

// StripMeta reads a channel or aux strip's own name, color, and mute
// state. kind is the path namespace ("ch" or "aux").
func (c *Catalog) StripMeta(kind string, index int) Metadata {
	f := c.probe.ChannelFormat
	return Metadata{
		Name:  strings.TrimSpace(c.value(console.StripAddress(kind, f, index, console.FieldName))),
		Color: parseColor(c.value(console.StripAddress(kind, f, index, console.FieldColor))),
		Muted: muted(
			c.value(console.StripAddress(kind, f, index, console.FieldLED)),
			c.value(console.StripAddress(kind, f, index, console.FieldLight)),
		),
	}
}

// StripUpstream reads a strip's upstream routing pointer. Reports
// false when the pointer's group is empty. A pointer index that does
// not parse keeps the strip's own index; the group still applies.
func (c *Catalog) StripUpstream(kind string, index int) (Reference, bool) {
	f := c.probe.ChannelFormat
	rawGroup := strings.TrimSpace(c.value(console.StripAddress(kind, f, index, c.probe.Routing.GroupField())))
	rawIndex := strings.TrimSpace(c.value(console.StripAddress(kind, f, index, c.probe.Routing.IndexField())))

	group := NormalizeGroup(rawGroup)
	if group == "" {
		return Reference{}, false
	}
	n, err := strconv.Atoi(rawIndex)
	if err != nil {
		n = index
	}
	return Reference{Group: group, Index: n}, true
}

// BusMeta reads a mix bus strip's name, color, and mute state by bus
// number (not parameter index; callers apply the odd/even formula
// first).
func (c *Catalog) BusMeta(group Group, busNumber int) Metadata {
	return c.StripMeta(group.StripKind(), busNumber)
}

// Source looks up phase-2 hardware-input metadata by canonical
// reference.
func (c *Catalog) Source(ref Reference) (SourceMetadata, bool) {
	m, ok := c.sources[ref]
	return m, ok
}

// Channel looks up a strip's metadata by the strip's upstream hardware
// reference.
func (c *Catalog) Channel(ref Reference) (Metadata, bool) {
	m, ok := c.channels[ref]
	return m, ok
}

// SourceMode returns a reference's mono/stereo mode, "M" when unknown.
func (c *Catalog) SourceMode(ref Reference) string {
	if m, ok := c.sources[ref]; ok {
		return m.Mode
	}
	return "M"
}
