package routing

import (
	"strconv"
	"strings"
)

// Group is a canonical routing group tag: the category half of a
// routing pointer after normalization. Physical groups name jacks and
// digital buses on the console's back panel; logical groups name
// channel strips, mix buses, and the unrouted sentinel.
type Group string

// Logical groups. These never appear as phase-2 hardware references.
const (
	// GroupChannel is an input channel strip.
	GroupChannel Group = "CH"

	// GroupAuxStrip is an aux input strip. The same tag also names the
	// physical aux jacks, which is why it carries a fixed color.
	GroupAuxStrip Group = "AUX"

	// GroupMain is a main mix bus.
	GroupMain Group = "MAIN"

	// GroupBus is a mix bus.
	GroupBus Group = "BUS"

	// GroupMatrix is a matrix bus.
	GroupMatrix Group = "MTX"

	// GroupOff is the unrouted sentinel.
	GroupOff Group = "OFF"
)

// Physical groups.
const (
	// GroupAES50A, B, C are the three AES50 ports.
	GroupAES50A Group = "A"
	GroupAES50B Group = "B"
	GroupAES50C Group = "C"

	// GroupLocal is the local XLR inputs.
	GroupLocal Group = "LCL"

	// GroupModule is the expansion module (including Dante cards).
	GroupModule Group = "MOD"

	// GroupCard is the recording card slot.
	GroupCard Group = "CRD"

	// GroupUSB is the USB audio interface.
	GroupUSB Group = "USB"

	// GroupAES is the stereo AES/EBU input.
	GroupAES Group = "AES"

	// GroupOscillator is the internal oscillator.
	GroupOscillator Group = "OSC"

	// GroupStageConnect is the StageConnect port.
	GroupStageConnect Group = "SC"

	// GroupPlayer is the USB player.
	GroupPlayer Group = "PLAY"

	// GroupUser is the user signal patch.
	GroupUser Group = "USR"
)

// groupAliases maps normalized spellings to their canonical tag.
// Firmware versions and UI exports disagree on spellings; the console
// itself answers routing queries with the short tags.
var groupAliases = map[string]Group{
	"LOCAL": GroupLocal, "LOC": GroupLocal, "LCL": GroupLocal,
	"MOD": GroupModule, "MODULE": GroupModule, "DANTE": GroupModule,
	"AUX": GroupAuxStrip, "AUXIN": GroupAuxStrip,
	"AESEBU": GroupAES, "AES": GroupAES,
	"OSC": GroupOscillator, "OSCILLATOR": GroupOscillator,
	"SC": GroupStageConnect, "STAGECONNECT": GroupStageConnect, "STCONNECT": GroupStageConnect,
	"USB": GroupUSB, "USBAUDIO": GroupUSB,
	"PLAY": GroupPlayer, "USBPLAYER": GroupPlayer,
	"USR": GroupUser, "USER": GroupUser, "USERSIGNAL": GroupUser,
	"CRD": GroupCard, "CARD": GroupCard,
}

// NormalizeGroup canonicalizes a raw group spelling as reported by the
// console or found in a routing pointer. Unknown tags pass through
// unchanged (uppercased, separators stripped) so that a firmware
// addition degrades to a working passthrough rather than an error.
func NormalizeGroup(raw string) Group {
	s := strings.ToUpper(raw)
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")

	if strings.Contains(s, "AES50") {
		for _, port := range []Group{GroupAES50A, GroupAES50B, GroupAES50C} {
			if strings.Contains(s, string(port)) {
				return port
			}
		}
	}

	if g, ok := groupAliases[s]; ok {
		return g
	}
	return Group(s)
}

// IsBus reports whether the group is a mix bus. Mix buses are always
// stereo-interleaved: parameter index 2n-1 is bus n's left side,
// index 2n its right.
func (g Group) IsBus() bool {
	return g == GroupMain || g == GroupBus || g == GroupMatrix
}

// IsStrip reports whether the group is a channel or aux input strip.
func (g Group) IsStrip() bool {
	return g == GroupChannel || g == GroupAuxStrip
}

// IsHardware reports whether the group names a genuine physical input,
// i.e. something worth a phase-2 metadata query. Logical groups and
// the empty tag are not hardware.
func (g Group) IsHardware() bool {
	switch g {
	case "", GroupChannel, GroupAuxStrip, GroupMain, GroupBus, GroupMatrix, GroupOff:
		return false
	default:
		return true
	}
}

// StripKind returns the parameter-path namespace of a strip group.
func (g Group) StripKind() string {
	return strings.ToLower(string(g))
}

// Reference identifies a physical or logical routing endpoint as a
// (group, index) pair. Two references are equal iff both fields match.
type Reference struct {
	Group Group
	Index int
}

// Label renders the reference the way diagnostic labels spell it.
func (r Reference) Label() string {
	return string(r.Group) + " " + strconv.Itoa(r.Index)
}
