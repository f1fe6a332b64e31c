package routing

import "testing"

func TestNormalizeGroup(t *testing.T) {
	tests := []struct {
		raw  string
		want Group
	}{
		{"A", GroupAES50A},
		{"AES50A", GroupAES50A},
		{"AES50-B", GroupAES50B},
		{"aes50 c", GroupAES50C},
		{"LOCAL", GroupLocal},
		{"LCL", GroupLocal},
		{"loc", GroupLocal},
		{"DANTE", GroupModule},
		{"MODULE", GroupModule},
		{"MOD", GroupModule},
		{"CARD", GroupCard},
		{"CRD", GroupCard},
		{"USB", GroupUSB},
		{"USB-AUDIO", GroupUSB},
		{"AES/EBU", Group("AES/EBU")},
		{"AESEBU", GroupAES},
		{"AES", GroupAES},
		{"OSCILLATOR", GroupOscillator},
		{"STAGECONNECT", GroupStageConnect},
		{"sc", GroupStageConnect},
		{"USB PLAYER", GroupPlayer},
		{"USER SIGNAL", GroupUser},
		{"user", GroupUser},
		{"AUX IN", GroupAuxStrip},
		{"aux", GroupAuxStrip},
		{"CH", GroupChannel},
		{"MAIN", GroupMain},
		{"BUS", GroupBus},
		{"MTX", GroupMatrix},
		{"OFF", GroupOff},
		{"", Group("")},
		{"FUTUREPORT", Group("FUTUREPORT")},
	}
	for _, tt := range tests {
		if got := NormalizeGroup(tt.raw); got != tt.want {
			t.Errorf("NormalizeGroup(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestGroupPredicates(t *testing.T) {
	tests := []struct {
		g        Group
		bus      bool
		strip    bool
		hardware bool
	}{
		{GroupMain, true, false, false},
		{GroupBus, true, false, false},
		{GroupMatrix, true, false, false},
		{GroupChannel, false, true, false},
		{GroupAuxStrip, false, true, false},
		{GroupOff, false, false, false},
		{Group(""), false, false, false},
		{GroupAES50A, false, false, true},
		{GroupLocal, false, false, true},
		{GroupModule, false, false, true},
		{GroupUSB, false, false, true},
		{Group("FUTUREPORT"), false, false, true},
	}
	for _, tt := range tests {
		if got := tt.g.IsBus(); got != tt.bus {
			t.Errorf("%q.IsBus() = %v, want %v", tt.g, got, tt.bus)
		}
		if got := tt.g.IsStrip(); got != tt.strip {
			t.Errorf("%q.IsStrip() = %v, want %v", tt.g, got, tt.strip)
		}
		if got := tt.g.IsHardware(); got != tt.hardware {
			t.Errorf("%q.IsHardware() = %v, want %v", tt.g, got, tt.hardware)
		}
	}
}

func TestReferenceLabel(t *testing.T) {
	ref := Reference{Group: GroupAES50A, Index: 12}
	if got := ref.Label(); got != "A 12" {
		t.Errorf("Label() = %q, want %q", got, "A 12")
	}
}

func TestStripKind(t *testing.T) {
	if got := GroupChannel.StripKind(); got != "ch" {
		t.Errorf("StripKind() = %q, want %q", got, "ch")
	}
	if got := GroupMatrix.StripKind(); got != "mtx" {
		t.Errorf("StripKind() = %q, want %q", got, "mtx")
	}
}
