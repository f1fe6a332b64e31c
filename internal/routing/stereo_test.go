package routing

import "testing"

// monoMode is a sourceMode lookup that reports every input mono.
func monoMode(Reference) string { return "M" }

func stereoFor(refs ...Reference) func(Reference) string {
	set := make(map[Reference]struct{}, len(refs))
	for _, r := range refs {
		set[r] = struct{}{}
	}
	return func(r Reference) string {
		if _, ok := set[r]; ok {
			return SourceModeStereo
		}
		return "M"
	}
}

func TestPairStereoNameSuffix(t *testing.T) {
	tracks := []Track{
		{Slot: 1, Name: "Keys L", Ref: Reference{GroupLocal, 5}, PlaybackInput: 0,
			ChannelLabel: "Keys L", SourceLabel: "-", HardwareLabel: "LCL 5"},
		{Slot: 2, Name: "Keys R", Ref: Reference{GroupAES50A, 2}, PlaybackInput: 1,
			ChannelLabel: "Keys R", SourceLabel: "-", HardwareLabel: "A 2"},
	}
	PairStereo(tracks, monoMode)

	if !tracks[0].StereoLeft || !tracks[1].StereoRight {
		t.Fatalf("flags = %v/%v, want L/R", tracks[0].StereoLeft, tracks[1].StereoRight)
	}
	if tracks[0].Name != "Keys" {
		t.Errorf("left name = %q, want Keys", tracks[0].Name)
	}
	if tracks[0].PlaybackInput != StereoInputBase {
		t.Errorf("left playback input = %d, want %d", tracks[0].PlaybackInput, StereoInputBase)
	}
	if tracks[1].PlaybackInput != 1 {
		t.Errorf("right playback input = %d, want 1", tracks[1].PlaybackInput)
	}
	if tracks[0].ChannelLabel != "Keys" {
		t.Errorf("left channel label = %q, want Keys", tracks[0].ChannelLabel)
	}
	if tracks[0].SourceLabel != "-" {
		t.Errorf("left source label = %q, want -", tracks[0].SourceLabel)
	}
}

func TestPairStereoAdjacency(t *testing.T) {
	tests := []struct {
		name string
		a, b Reference
		mode func(Reference) string
		want bool
	}{
		{
			name: "stereo-linked hardware inputs",
			a:    Reference{GroupAES50A, 3}, b: Reference{GroupAES50A, 4},
			mode: stereoFor(Reference{GroupAES50A, 3}),
			want: true,
		},
		{
			name: "mono hardware inputs do not pair",
			a:    Reference{GroupAES50A, 3}, b: Reference{GroupAES50A, 4},
			mode: monoMode,
			want: false,
		},
		{
			name: "buses pair without a mode lookup",
			a:    Reference{GroupMain, 1}, b: Reference{GroupMain, 2},
			mode: monoMode,
			want: true,
		},
		{
			name: "even-odd adjacency does not pair",
			a:    Reference{GroupMain, 2}, b: Reference{GroupMain, 3},
			mode: monoMode,
			want: false,
		},
		{
			name: "non-adjacent indices do not pair",
			a:    Reference{GroupBus, 1}, b: Reference{GroupBus, 4},
			mode: monoMode,
			want: false,
		},
		{
			name: "different groups do not pair",
			a:    Reference{GroupAES50A, 1}, b: Reference{GroupAES50B, 2},
			mode: stereoFor(Reference{GroupAES50A, 1}),
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracks := []Track{
				{Slot: 1, Name: "Left", Ref: tt.a, ChannelLabel: "-", SourceLabel: "-", HardwareLabel: tt.a.Label()},
				{Slot: 2, Name: "Right", Ref: tt.b, ChannelLabel: "-", SourceLabel: "-", HardwareLabel: tt.b.Label()},
			}
			PairStereo(tracks, tt.mode)
			if got := tracks[0].StereoLeft; got != tt.want {
				t.Errorf("paired = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPairStereoPositionRangeRewrite(t *testing.T) {
	// Hardware-labeled names have no side suffix to strip; the bare
	// position becomes a range instead.
	tracks := []Track{
		{Slot: 1, Name: "A 3", Ref: Reference{GroupAES50A, 3},
			ChannelLabel: "-", SourceLabel: "-", HardwareLabel: "A 3"},
		{Slot: 2, Name: "A 4", Ref: Reference{GroupAES50A, 4},
			ChannelLabel: "-", SourceLabel: "-", HardwareLabel: "A 4"},
	}
	PairStereo(tracks, stereoFor(Reference{GroupAES50A, 3}))

	if !tracks[0].StereoLeft {
		t.Fatal("tracks did not pair")
	}
	if tracks[0].Name != "A 3-4" {
		t.Errorf("left name = %q, want A 3-4", tracks[0].Name)
	}
	if tracks[0].HardwareLabel != "A 3-4" {
		t.Errorf("left hardware label = %q, want A 3-4", tracks[0].HardwareLabel)
	}
	if tracks[1].Name != "A 4" {
		t.Errorf("right name = %q, want untouched", tracks[1].Name)
	}
}

func TestPairStereoBareSuffixStrip(t *testing.T) {
	// A name ending in "L" without the space still loses the letter.
	tracks := []Track{
		{Slot: 1, Name: "DrumsL", Ref: Reference{GroupBus, 1},
			ChannelLabel: "DrumsL", SourceLabel: "-", HardwareLabel: "BUS 1 L"},
		{Slot: 2, Name: "DrumsR", Ref: Reference{GroupBus, 2},
			ChannelLabel: "DrumsR", SourceLabel: "-", HardwareLabel: "BUS 1 R"},
	}
	PairStereo(tracks, monoMode)

	if !tracks[0].StereoLeft {
		t.Fatal("bus tracks did not pair")
	}
	if tracks[0].Name != "Drums" {
		t.Errorf("left name = %q, want Drums", tracks[0].Name)
	}
	if tracks[0].HardwareLabel != "BUS 1" {
		t.Errorf("left hardware label = %q, want BUS 1", tracks[0].HardwareLabel)
	}
}

func TestPairStereoSkipsUnroutedAndChains(t *testing.T) {
	tracks := []Track{
		{Slot: 1, Name: "(INPUT 1 NOT ROUTED)", Unrouted: true,
			ChannelLabel: "-", SourceLabel: "-", HardwareLabel: "-"},
		{Slot: 2, Name: "X", Ref: Reference{GroupAES50A, 1},
			ChannelLabel: "-", SourceLabel: "-", HardwareLabel: "A 1"},
		{Slot: 3, Name: "Y", Ref: Reference{GroupAES50A, 2},
			ChannelLabel: "-", SourceLabel: "-", HardwareLabel: "A 2"},
		{Slot: 4, Name: "Z", Ref: Reference{GroupAES50A, 3},
			ChannelLabel: "-", SourceLabel: "-", HardwareLabel: "A 3"},
	}
	mode := stereoFor(Reference{GroupAES50A, 1}, Reference{GroupAES50A, 2}, Reference{GroupAES50A, 3})
	PairStereo(tracks, mode)

	if tracks[0].StereoLeft || tracks[0].StereoRight {
		t.Error("unrouted track must not pair")
	}
	if !tracks[1].StereoLeft || !tracks[2].StereoRight {
		t.Error("tracks 2+3 should pair")
	}
	// Track 3 is a right side; it must not start a second pair with
	// track 4 even though the indices line up.
	if tracks[2].StereoLeft || tracks[3].StereoRight {
		t.Error("pairs must not cascade through a right side")
	}
}

func TestPairStereoIdempotent(t *testing.T) {
	tracks := []Track{
		{Slot: 1, Name: "Keys L", Ref: Reference{GroupLocal, 5},
			ChannelLabel: "Keys L", SourceLabel: "-", HardwareLabel: "LCL 5"},
		{Slot: 2, Name: "Keys R", Ref: Reference{GroupLocal, 6},
			ChannelLabel: "Keys R", SourceLabel: "-", HardwareLabel: "LCL 6"},
	}
	PairStereo(tracks, stereoFor(Reference{GroupLocal, 5}))
	first := make([]Track, len(tracks))
	copy(first, tracks)

	PairStereo(tracks, stereoFor(Reference{GroupLocal, 5}))
	for i := range tracks {
		if tracks[i] != first[i] {
			t.Errorf("track %d changed on second pass: %+v vs %+v", i, tracks[i], first[i])
		}
	}
}
