package routing

// RGB is a display color triple.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// palette maps the console's numeric color codes to RGB. Code 0 is the
// neutral/uncolored gray, also used for muted and unrouted tracks.
var palette = map[int]RGB{
	0:  {60, 60, 60},
	1:  {50, 50, 200},
	2:  {0, 100, 255},
	3:  {128, 0, 255},
	4:  {0, 200, 255},
	5:  {0, 200, 0},
	6:  {128, 255, 0},
	7:  {255, 255, 0},
	8:  {200, 100, 0},
	9:  {255, 0, 0},
	10: {255, 128, 128},
	11: {255, 0, 128},
	12: {200, 100, 255},
	13: {255, 180, 0},
	14: {100, 150, 255},
	15: {255, 140, 0},
	16: {0, 180, 150},
	17: {120, 120, 120},
	18: {230, 230, 230},
}

// fixedGroupColors assigns each routing group a fixed RGB used when
// tracks are colored by hardware position instead of strip metadata.
var fixedGroupColors = map[Group]RGB{
	GroupAES50A:       {0, 100, 255},
	GroupAES50B:       {0, 200, 0},
	GroupAES50C:       {128, 0, 255},
	GroupLocal:        {0, 180, 150},
	GroupModule:       {255, 128, 0},
	GroupCard:         {200, 200, 200},
	GroupUSB:          {200, 200, 200},
	GroupAuxStrip:     {255, 255, 0},
	GroupAES:          {255, 0, 255},
	GroupOscillator:   {0, 255, 255},
	GroupStageConnect: {0, 150, 255},
	GroupPlayer:       {100, 255, 100},
	GroupUser:         {255, 100, 100},
	GroupMain:         {255, 50, 50},
	GroupBus:          {255, 150, 0},
	GroupMatrix:       {255, 100, 200},
}

// NeutralColor returns the uncolored default.
func NeutralColor() RGB {
	return palette[0]
}

// PaletteColor maps a numeric color code to RGB. Unknown codes map to
// the neutral color; the console only emits 0..18 but a malformed
// reply must not break resolution.
func PaletteColor(code int) RGB {
	if rgb, ok := palette[code]; ok {
		return rgb
	}
	return palette[0]
}

// FixedGroupColor returns the fixed RGB of a routing group, if it has
// one.
func FixedGroupColor(g Group) (RGB, bool) {
	rgb, ok := fixedGroupColors[g]
	return rgb, ok
}

// TrackColor resolves a track's final RGB from the track's effective
// group, its metadata color code, and the active color policy.
//
// Hardware coloring applies when forced by configuration, when the
// display mode is hardware labels, or when source-name mode hits a mix
// bus (buses have no source metadata to color by). A routed track in
// hardware coloring takes its group's fixed RGB. Muted and unrouted
// tracks force the neutral color; everything else maps the code
// through the palette.
func TrackColor(group Group, code int, muted, unrouted bool, mode NameMode, forceHardware bool) RGB {
	useHardware := forceHardware || mode == NameModeHardware ||
		(mode == NameModeSource && group.IsBus())

	if useHardware && !unrouted {
		if rgb, ok := FixedGroupColor(group); ok {
			return rgb
		}
	}
	if muted || unrouted {
		return NeutralColor()
	}
	return PaletteColor(code)
}
