package routing

// Console geometry. Strip and bus counts are fixed across the WING
// family; only the output slot count depends on the recording
// interface.
const (
	// ChannelCount is the number of input channel strips.
	ChannelCount = 40

	// AuxStripCount is the number of aux input strips.
	AuxStripCount = 8

	// MainCount is the number of main mix buses.
	MainCount = 4

	// BusCount is the number of mix buses.
	BusCount = 16

	// MatrixCount is the number of matrix buses.
	MatrixCount = 8

	// OutCountUSB is the output slot count of the USB interface.
	OutCountUSB = 48

	// OutCountCard is the output slot count of the module and card
	// interfaces.
	OutCountCard = 64
)

// StereoInputBase is the playback-engine input index a stereo pair's
// left track is remapped to (base plus slot-1). The recording
// application reserves this range for stereo inputs, so remapped
// indices can never collide with a mono track's natural slot-1 index.
const StereoInputBase = 1024

// OutCountFor returns the output slot count of a recording interface.
func OutCountFor(iface string) int {
	switch NormalizeGroup(iface) {
	case GroupModule, GroupCard:
		return OutCountCard
	default:
		return OutCountUSB
	}
}

// busStripCount returns how many strips a bus group has.
func busStripCount(g Group) int {
	switch g {
	case GroupMain:
		return MainCount
	case GroupMatrix:
		return MatrixCount
	default:
		return BusCount
	}
}

// NameMode selects which metadata layer names a track.
type NameMode string

// Display name modes.
const (
	// NameModeChannel names tracks after the channel strip feeding the
	// output (falling back through the routing graph).
	NameModeChannel NameMode = "CH"

	// NameModeSource names tracks after the hardware input's own label.
	NameModeSource NameMode = "SRC"

	// NameModeHardware names tracks after the raw jack position.
	NameModeHardware NameMode = "HW"
)

// IsValid reports whether the mode is one of the known values.
func (m NameMode) IsValid() bool {
	switch m {
	case NameModeChannel, NameModeSource, NameModeHardware:
		return true
	default:
		return false
	}
}

// Track is one resolved physical output slot, the unit of the final
// snapshot. Slots are 1-based and contiguous; every slot of the
// configured interface yields exactly one Track, routed or not.
type Track struct {
	// Slot is the 1-based output slot index.
	Slot int

	// Name is the resolved display name. Unrouted slots carry a
	// generated placeholder.
	Name string

	// Color is the resolved RGB color.
	Color RGB

	// Ref is the effective hardware reference after walking the
	// routing indirection (output pointer, then the strip's own
	// upstream pointer where one exists).
	Ref Reference

	// ChannelLabel, SourceLabel, and HardwareLabel are diagnostic
	// labels for each metadata layer, "-" where a layer is absent.
	ChannelLabel  string
	SourceLabel   string
	HardwareLabel string

	// PlaybackInput is the recording application's input index:
	// slot-1, remapped into the stereo range when the track is a
	// pair's left side.
	PlaybackInput int

	// StereoLeft and StereoRight mark participation in a detected
	// stereo pair. At most one of the two is set, and StereoRight
	// implies the preceding track has StereoLeft set.
	StereoLeft  bool
	StereoRight bool

	// Unrouted marks a slot whose routing pointer was OFF or absent.
	Unrouted bool
}
