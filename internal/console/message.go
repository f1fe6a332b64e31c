package console

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
)

// OSC 1.0 wire format constants.
const (
	// oscAlignment is the byte alignment of every string field in an OSC
	// message. Strings are NUL-terminated and padded to this boundary.
	oscAlignment = 4

	// typeTagPrefix introduces the type tag string of an OSC message.
	typeTagPrefix = ','
)

// OSC argument type tags the console uses in parameter replies.
const (
	tagString = 's'
	tagInt32  = 'i'
	tagFloat  = 'f'
	tagTrue   = 'T'
	tagFalse  = 'F'
)

// Message is one decoded control message: a parameter address plus the
// argument values rendered to strings.
//
// The console answers a parameter request with a message carrying the
// same address and the current value as its first argument. Values are
// kept as strings regardless of wire type; the routing layer compares
// and parses them itself.
type Message struct {
	// Address is the parameter path the message refers to.
	Address Address

	// Args holds the argument values in wire order, rendered to strings.
	Args []string
}

// Value returns the first argument, or "" when the message carries none.
// A reply with an empty argument list still counts as a reply; the
// parameter's value is simply empty.
func (m Message) Value() string {
	if len(m.Args) == 0 {
		return ""
	}
	return m.Args[0]
}

// EncodeRequest encodes a parameter request for the given address.
//
// A request is an OSC message with an empty argument list: the padded
// address followed by the padded bare type tag string ",". The console
// replies with the parameter's current value on the same address.
//
// Parameters:
//   - addr: Parameter address to request
//
// Returns:
//   - []byte: Datagram ready to send to the console's control port
func EncodeRequest(addr Address) []byte {
	buf := make([]byte, 0, len(addr)+2*oscAlignment)
	buf = appendPaddedString(buf, string(addr))
	buf = appendPaddedString(buf, string(typeTagPrefix))
	return buf
}

// appendPaddedString appends s, its NUL terminator, and padding up to the
// next 4-byte boundary.
func appendPaddedString(buf []byte, s string) []byte {
	buf = append(buf, s...)
	buf = append(buf, 0)
	for len(buf)%oscAlignment != 0 {
		buf = append(buf, 0)
	}
	return buf
}

// DecodeMessage parses a received datagram into a Message.
//
// Handles the argument types the console emits for parameter reads:
// strings, 32-bit integers, 32-bit floats, and the boolean tags. Integer
// and float arguments are rendered with strconv so that "0" and "0.5"
// come out the way the mute/color parsers expect. Booleans render as
// "True"/"False" to match the console's own textual spelling of switch
// parameters.
//
// A datagram without a type tag string decodes as a bare address with no
// arguments.
//
// Parameters:
//   - data: Raw datagram bytes
//
// Returns:
//   - Message: Decoded message
//   - error: ErrInvalidMessage if the datagram is malformed
func DecodeMessage(data []byte) (Message, error) {
	addr, rest, err := readPaddedString(data)
	if err != nil {
		return Message{}, fmt.Errorf("%w: address: %w", ErrInvalidMessage, err)
	}
	if len(addr) == 0 || addr[0] != '/' {
		return Message{}, fmt.Errorf("%w: address %q does not start with '/'", ErrInvalidMessage, addr)
	}

	msg := Message{Address: Address(addr)}
	if len(rest) == 0 {
		// No type tag string: a bare address with no arguments.
		return msg, nil
	}

	tags, rest, err := readPaddedString(rest)
	if err != nil {
		return Message{}, fmt.Errorf("%w: type tags: %w", ErrInvalidMessage, err)
	}
	if len(tags) == 0 || tags[0] != typeTagPrefix {
		return Message{}, fmt.Errorf("%w: type tag string %q does not start with ','", ErrInvalidMessage, tags)
	}

	for _, tag := range []byte(tags[1:]) {
		var arg string
		switch tag {
		case tagString:
			arg, rest, err = readPaddedString(rest)
			if err != nil {
				return Message{}, fmt.Errorf("%w: string argument: %w", ErrInvalidMessage, err)
			}
		case tagInt32:
			if len(rest) < oscAlignment {
				return Message{}, fmt.Errorf("%w: truncated int32 argument", ErrInvalidMessage)
			}
			v := int32(binary.BigEndian.Uint32(rest[:oscAlignment])) //nolint:gosec // reinterpreting wire bits
			arg = strconv.FormatInt(int64(v), 10)
			rest = rest[oscAlignment:]
		case tagFloat:
			if len(rest) < oscAlignment {
				return Message{}, fmt.Errorf("%w: truncated float32 argument", ErrInvalidMessage)
			}
			v := math.Float32frombits(binary.BigEndian.Uint32(rest[:oscAlignment]))
			arg = strconv.FormatFloat(float64(v), 'g', -1, 32)
			rest = rest[oscAlignment:]
		case tagTrue:
			arg = "True"
		case tagFalse:
			arg = "False"
		default:
			return Message{}, fmt.Errorf("%w: unsupported argument type %q", ErrInvalidMessage, string(tag))
		}
		msg.Args = append(msg.Args, arg)
	}

	return msg, nil
}

// readPaddedString consumes one NUL-terminated, 4-byte-aligned string
// from data and returns it with the remaining bytes.
func readPaddedString(data []byte) (string, []byte, error) {
	end := bytes.IndexByte(data, 0)
	if end < 0 {
		return "", nil, fmt.Errorf("unterminated string in %d bytes", len(data))
	}
	next := end + 1
	for next%oscAlignment != 0 {
		next++
	}
	if next > len(data) {
		return "", nil, fmt.Errorf("string padding exceeds datagram (%d > %d)", next, len(data))
	}
	return string(data[:end]), data[next:], nil
}
