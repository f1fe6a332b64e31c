// Package routing resolves the console's input routing graph into a
// flat, slot-ordered track list.
//
// The console exposes routing as layered indirection: each recording
// output slot points at a source (a hardware input, a channel or aux
// strip, a mix bus, or OFF), and each strip in turn points at its own
// upstream hardware input. The resolver walks these pointers in two
// query phases:
//
//	phase 1: output pointers + strip/bus metadata   (bulk, known set)
//	phase 2: hardware-input metadata                (derived from phase 1)
//
// and synthesizes one Track per slot, naming and coloring it according
// to the configured display mode. A final pass (PairStereo) detects
// stereo pairs among adjacent tracks and folds each pair's left side.
//
// Group tags are normalized once at the package boundary
// (NormalizeGroup); all internal maps key on canonical tags, while raw
// spellings are preserved where the console insists on its own (the
// hardware-input namespace).
//
// Nothing in this package performs I/O directly; all console access
// goes through the console.Querier interface, which keeps resolution
// logic testable against canned reply sets.
package routing
