package console

import (
	"fmt"
	"strconv"
)

// Address identifies one queryable console parameter as a slash-separated
// path, e.g. "/ch/01/name" or "/io/out/USB/5/grp". Addresses are built
// through the helpers below so that index spelling follows the probed
// convention everywhere; they are never mutated, only queried.
type Address string

// Parameter leaf names used by the snapshot queries.
const (
	// FieldName is a strip's or input's display name.
	FieldName = "name"

	// FieldColor is the numeric color code.
	FieldColor = "col"

	// FieldLED is the strip's channel LED state; preferred over
	// FieldLight where both exist.
	FieldLED = "led"

	// FieldLight is the older spelling of the channel LED state.
	FieldLight = "light"

	// FieldMode is a hardware input's mono/stereo mode ("ST" = stereo).
	FieldMode = "mode"

	// FieldGroup is the group half of a routing pointer.
	FieldGroup = "grp"

	// FieldIndex is the index half of a routing pointer.
	FieldIndex = "in"
)

// IndexFormat is an index zero-padding convention. Firmware generations
// differ in how they spell indices inside parameter paths; the probe
// discovers the convention per namespace once and it is applied to all
// subsequent address construction in that namespace.
type IndexFormat int

// Index spelling conventions, in probe order.
const (
	// FormatUnpadded spells indices without padding: 1, 2, … 40.
	FormatUnpadded IndexFormat = iota

	// FormatPadded2 spells indices zero-padded to two digits: 01 … 40.
	FormatPadded2

	// FormatPadded3 spells indices zero-padded to three digits: 001 ….
	FormatPadded3
)

// Apply renders an index in this convention.
func (f IndexFormat) Apply(i int) string {
	switch f {
	case FormatPadded2:
		return fmt.Sprintf("%02d", i)
	case FormatPadded3:
		return fmt.Sprintf("%03d", i)
	default:
		return strconv.Itoa(i)
	}
}

// String returns a human-readable name for logging.
func (f IndexFormat) String() string {
	switch f {
	case FormatPadded2:
		return "2-digit"
	case FormatPadded3:
		return "3-digit"
	default:
		return "unpadded"
	}
}

// RoutingVariant selects the leaf pair a firmware answers for a strip's
// upstream routing pointer. Newer firmware nests the pointer under a
// "conn" segment; older firmware answers the bare pair.
type RoutingVariant int

// Routing pointer address variants. VariantConn is the zero value: when
// the probe gets no answer at all, current firmware is assumed.
const (
	// VariantConn queries in/conn/grp + in/conn/in.
	VariantConn RoutingVariant = iota

	// VariantLegacy queries in/grp + in/in.
	VariantLegacy
)

// GroupField returns the pointer's group leaf for this variant.
func (v RoutingVariant) GroupField() string {
	if v == VariantLegacy {
		return "in/grp"
	}
	return "in/conn/grp"
}

// IndexField returns the pointer's index leaf for this variant.
func (v RoutingVariant) IndexField() string {
	if v == VariantLegacy {
		return "in/in"
	}
	return "in/conn/in"
}

// String returns a human-readable name for logging.
func (v RoutingVariant) String() string {
	if v == VariantLegacy {
		return "legacy"
	}
	return "conn"
}

// StripAddress builds a channel-strip parameter address. kind is the
// path namespace ("ch", "aux", "main", "bus", "mtx"); the index is
// spelled per the given convention.
//
// Example:
//
//	StripAddress("ch", FormatPadded2, 7, FieldName) // "/ch/07/name"
func StripAddress(kind string, f IndexFormat, index int, field string) Address {
	return Address("/" + kind + "/" + f.Apply(index) + "/" + field)
}

// SourceAddress builds a source-namespace parameter address. Only the
// probe queries this namespace.
func SourceAddress(f IndexFormat, index int, field string) Address {
	return Address("/src/" + f.Apply(index) + "/" + field)
}

// OutputAddress builds the routing-pointer address of a physical output
// slot on the given recording interface. Slot numbers are never padded.
//
// Example:
//
//	OutputAddress("USB", 5, FieldGroup) // "/io/out/USB/5/grp"
func OutputAddress(iface string, slot int, field string) Address {
	return Address("/io/out/" + iface + "/" + strconv.Itoa(slot) + "/" + field)
}

// HardwareInputAddress builds a physical-input parameter address. group
// is the raw group spelling exactly as the console reported it in a
// routing pointer; the console answers only its own spelling here.
//
// Example:
//
//	HardwareInputAddress("LCL", 3, FieldName) // "/io/in/LCL/3/name"
func HardwareInputAddress(group string, index int, field string) Address {
	return Address("/io/in/" + group + "/" + strconv.Itoa(index) + "/" + field)
}
