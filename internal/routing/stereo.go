package routing

import (
	"strconv"
	"strings"
)

// PairStereo detects stereo pairs among adjacent tracks and rewrites
// the pair's left side in place.
//
// Two adjacent routed tracks pair when either:
//
//   - the left name ends in " L" and the right name is the left name
//     with every " L" replaced by " R"; or
//   - both reference the same group at odd/even adjacent indices, and
//     the group is a mix bus or the left index's hardware input
//     reports stereo mode.
//
// A pair marks the left track StereoLeft and the right StereoRight,
// remaps the left track's playback input into the stereo range, and
// strips the side suffix from the left track's name and labels. A name
// or label that is exactly the bare hardware position is rewritten to
// the position range instead, since it has no suffix to strip.
//
// The pass is idempotent: tracks already marked as a pair side are
// skipped, so re-running it never cascades pairs or double-remaps.
//
// Parameters:
//   - tracks: The slot-ordered track list; modified in place
//   - sourceMode: Mono/stereo mode lookup for hardware references,
//     typically Catalog.SourceMode
func PairStereo(tracks []Track, sourceMode func(Reference) string) {
	for i := 0; i+1 < len(tracks); i++ {
		left, right := &tracks[i], &tracks[i+1]
		if left.Unrouted || right.Unrouted || left.StereoRight || left.StereoLeft {
			continue
		}
		if !isStereoPair(left, right, sourceMode) {
			continue
		}

		left.StereoLeft = true
		right.StereoRight = true
		left.PlaybackInput = StereoInputBase + (left.Slot - 1)

		if left.Name != "" {
			left.Name = cleanPairLabel(left.Name, left.Ref)
		}
		left.ChannelLabel = cleanOptionalPairLabel(left.ChannelLabel, left.Ref)
		left.SourceLabel = cleanOptionalPairLabel(left.SourceLabel, left.Ref)
		left.HardwareLabel = cleanOptionalPairLabel(left.HardwareLabel, left.Ref)
	}
}

// isStereoPair applies the pairing rules to two adjacent routed tracks.
func isStereoPair(left, right *Track, sourceMode func(Reference) string) bool {
	if left.Name != "" && strings.HasSuffix(left.Name, " L") &&
		right.Name == strings.ReplaceAll(left.Name, " L", " R") {
		return true
	}

	if left.Ref.Group != right.Ref.Group {
		return false
	}
	if left.Ref.Index%2 != 1 || right.Ref.Index != left.Ref.Index+1 {
		return false
	}
	if left.Ref.Group.IsBus() {
		return true
	}
	return sourceMode(left.Ref) == SourceModeStereo
}

// cleanPairLabel strips the left-side suffix from a paired track's
// label. A label that is exactly the bare position becomes the
// two-index range.
func cleanPairLabel(label string, ref Reference) string {
	if label == ref.Label() {
		return ref.Label() + "-" + strconv.Itoa(ref.Index+1)
	}
	if strings.HasSuffix(label, " L") {
		label = label[:len(label)-2]
	} else if strings.HasSuffix(label, "L") {
		label = label[:len(label)-1]
	}
	return strings.TrimSpace(label)
}

// cleanOptionalPairLabel cleans a diagnostic label, leaving the absent
// marker alone.
func cleanOptionalPairLabel(label string, ref Reference) string {
	if label == "-" {
		return label
	}
	return cleanPairLabel(label, ref)
}
