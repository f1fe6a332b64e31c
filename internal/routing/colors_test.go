package routing

import "testing"

func TestPaletteColor(t *testing.T) {
	tests := []struct {
		code int
		want RGB
	}{
		{0, RGB{60, 60, 60}},
		{9, RGB{255, 0, 0}},
		{18, RGB{230, 230, 230}},
		{99, RGB{60, 60, 60}},
		{-1, RGB{60, 60, 60}},
	}
	for _, tt := range tests {
		if got := PaletteColor(tt.code); got != tt.want {
			t.Errorf("PaletteColor(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestFixedGroupColor(t *testing.T) {
	if rgb, ok := FixedGroupColor(GroupAES50A); !ok || rgb != (RGB{0, 100, 255}) {
		t.Errorf("FixedGroupColor(A) = %v, %v", rgb, ok)
	}
	if _, ok := FixedGroupColor(GroupChannel); ok {
		t.Error("FixedGroupColor(CH) should not exist")
	}
	if _, ok := FixedGroupColor(GroupOff); ok {
		t.Error("FixedGroupColor(OFF) should not exist")
	}
}

func TestTrackColor(t *testing.T) {
	tests := []struct {
		name     string
		group    Group
		code     int
		muted    bool
		unrouted bool
		mode     NameMode
		force    bool
		want     RGB
	}{
		{
			name:  "routed channel mode palette",
			group: GroupAES50A, code: 9, mode: NameModeChannel,
			want: RGB{255, 0, 0},
		},
		{
			name:  "muted overrides palette",
			group: GroupAES50A, code: 9, muted: true, mode: NameModeChannel,
			want: RGB{60, 60, 60},
		},
		{
			name:  "unrouted is neutral even when forced",
			group: GroupOff, code: 9, unrouted: true, mode: NameModeChannel, force: true,
			want: RGB{60, 60, 60},
		},
		{
			name:  "hardware mode uses fixed group color",
			group: GroupLocal, code: 9, mode: NameModeHardware,
			want: RGB{0, 180, 150},
		},
		{
			name:  "hardware mode mute does not override fixed color",
			group: GroupLocal, code: 9, muted: true, mode: NameModeHardware,
			want: RGB{0, 180, 150},
		},
		{
			name:  "forced hardware colors in channel mode",
			group: GroupAES50B, code: 9, mode: NameModeChannel, force: true,
			want: RGB{0, 200, 0},
		},
		{
			name:  "source mode keeps palette for hardware groups",
			group: GroupAES50A, code: 5, mode: NameModeSource,
			want: RGB{0, 200, 0},
		},
		{
			name:  "source mode forces fixed color for buses",
			group: GroupBus, code: 5, mode: NameModeSource,
			want: RGB{255, 150, 0},
		},
		{
			name:  "hardware mode without fixed color falls back to palette",
			group: Group("FUTUREPORT"), code: 5, mode: NameModeHardware,
			want: RGB{0, 200, 0},
		},
		{
			name:  "unknown code maps to neutral",
			group: GroupAES50A, code: 42, mode: NameModeChannel,
			want: RGB{60, 60, 60},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrackColor(tt.group, tt.code, tt.muted, tt.unrouted, tt.mode, tt.force)
			if got != tt.want {
				t.Errorf("TrackColor() = %v, want %v", got, tt.want)
			}
		})
	}
}
