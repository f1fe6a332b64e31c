package console

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

// buildReply assembles an OSC message datagram the way the console
// replies to a parameter request: padded address, padded type tags,
// then the encoded arguments.
func buildReply(addr string, tags string, args ...[]byte) []byte {
	buf := appendPaddedString(nil, addr)
	buf = appendPaddedString(buf, tags)
	for _, arg := range args {
		buf = append(buf, arg...)
	}
	return buf
}

// stringArg encodes a padded OSC string argument.
func stringArg(s string) []byte {
	return appendPaddedString(nil, s)
}

// int32Arg encodes a big-endian OSC int32 argument.
func int32Arg(v int32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	return b[:]
}

// float32Arg encodes a big-endian OSC float32 argument.
func float32Arg(v float32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], math.Float32bits(v))
	return b[:]
}

func TestEncodeRequest(t *testing.T) {
	tests := []struct {
		name string
		addr Address
		want []byte
	}{
		{
			"address needing one pad byte",
			"/ch/01/name",
			[]byte("/ch/01/name\x00,\x00\x00\x00"),
		},
		{
			"address on alignment boundary gets full pad word",
			"/ch/01/light",
			[]byte("/ch/01/light\x00\x00\x00\x00,\x00\x00\x00"),
		},
		{
			"short address",
			"/ch/1/in",
			[]byte("/ch/1/in\x00\x00\x00\x00,\x00\x00\x00"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeRequest(tt.addr)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("EncodeRequest(%q) = %q, want %q", tt.addr, got, tt.want)
			}
			if len(got)%4 != 0 {
				t.Errorf("datagram length %d not 4-byte aligned", len(got))
			}
		})
	}
}

func TestDecodeMessage(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantAddr Address
		wantArgs []string
	}{
		{
			"string argument",
			buildReply("/ch/05/name", ",s", stringArg("Vocal")),
			"/ch/05/name",
			[]string{"Vocal"},
		},
		{
			"int argument",
			buildReply("/ch/05/col", ",i", int32Arg(9)),
			"/ch/05/col",
			[]string{"9"},
		},
		{
			"negative int argument",
			buildReply("/ch/05/col", ",i", int32Arg(-1)),
			"/ch/05/col",
			[]string{"-1"},
		},
		{
			"float argument",
			buildReply("/ch/05/led", ",f", float32Arg(0.5)),
			"/ch/05/led",
			[]string{"0.5"},
		},
		{
			"boolean arguments",
			buildReply("/ch/05/led", ",TF"),
			"/ch/05/led",
			[]string{"True", "False"},
		},
		{
			"mixed arguments",
			buildReply("/io/out/USB/1/grp", ",si", stringArg("LCL"), int32Arg(3)),
			"/io/out/USB/1/grp",
			[]string{"LCL", "3"},
		},
		{
			"no type tag string",
			appendPaddedString(nil, "/ch/01/name"),
			"/ch/01/name",
			nil,
		},
		{
			"empty argument list",
			buildReply("/ch/01/name", ","),
			"/ch/01/name",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeMessage(tt.data)
			if err != nil {
				t.Fatalf("DecodeMessage() error = %v", err)
			}
			if msg.Address != tt.wantAddr {
				t.Errorf("Address = %q, want %q", msg.Address, tt.wantAddr)
			}
			if len(msg.Args) != len(tt.wantArgs) {
				t.Fatalf("Args = %v, want %v", msg.Args, tt.wantArgs)
			}
			for i := range tt.wantArgs {
				if msg.Args[i] != tt.wantArgs[i] {
					t.Errorf("Args[%d] = %q, want %q", i, msg.Args[i], tt.wantArgs[i])
				}
			}
		})
	}
}

func TestDecodeMessage_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty datagram", nil},
		{"unterminated address", []byte("/ch/01/name")},
		{"address without leading slash", buildReply("ch/01/name", ",")},
		{"type tags without comma", buildReply("/ch/01/name", "s")},
		{"truncated int argument", buildReply("/ch/01/col", ",i", []byte{0, 0})},
		{"truncated float argument", buildReply("/ch/01/led", ",f", []byte{0})},
		{"unsupported argument type", buildReply("/ch/01/name", ",b", int32Arg(0))},
		{"padding past end of datagram", []byte("/a\x00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeMessage(tt.data); !errors.Is(err, ErrInvalidMessage) {
				t.Errorf("DecodeMessage() error = %v, want ErrInvalidMessage", err)
			}
		})
	}
}

func TestDecodeMessage_RoundTripsRequest(t *testing.T) {
	const addr = Address("/aux/3/name")
	msg, err := DecodeMessage(EncodeRequest(addr))
	if err != nil {
		t.Fatalf("DecodeMessage() error = %v", err)
	}
	if msg.Address != addr {
		t.Errorf("Address = %q, want %q", msg.Address, addr)
	}
	if msg.Value() != "" {
		t.Errorf("Value() = %q, want empty", msg.Value())
	}
}

func TestMessageValue(t *testing.T) {
	if got := (Message{}).Value(); got != "" {
		t.Errorf("empty message Value() = %q", got)
	}
	m := Message{Address: "/ch/01/name", Args: []string{"Kick", "extra"}}
	if got := m.Value(); got != "Kick" {
		t.Errorf("Value() = %q, want %q", got, "Kick")
	}
}
