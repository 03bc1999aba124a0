package codec

import (
	"encoding/binary"
	"math"
)

// StreamFrame is one `[size u16][tag][payload]` frame on the bidirectional
// stream channel (§4.1). Size covers tag+payload, i.e. len(payload)+1.
type StreamFrame struct {
	Tag     byte
	Payload []byte
}

// EncodeFrame serializes one stream frame.
func EncodeFrame(f StreamFrame) []byte {
	out := make([]byte, 2, 2+1+len(f.Payload))
	binary.BigEndian.PutUint16(out, uint16(len(f.Payload)+1))
	out = append(out, f.Tag)
	out = append(out, f.Payload...)
	return out
}

// MessageKind discriminates the TcpMessage union (§3).
type MessageKind int

const (
	MessageStdout MessageKind = iota
	MessagePlain
	MessageError
	MessageVersionInfo
)

// ErrorReport is the payload of a stream-channel Error message.
type ErrorReport struct {
	Timestamp  float64
	Sequence   uint16
	Code       int32
	IsError    bool
	Details    string
	Location   string
	CallStack  string
}

// VersionInfo is the payload of a stream-channel VersionInfo message.
type VersionInfo struct {
	DeviceType string
	DeviceID   string
	Name       string
	Version    string
}

// TcpMessage is the decoded, tagged-union form of one inbound stream frame.
type TcpMessage struct {
	Kind    MessageKind
	Text    string // Stdout or Message text
	Error   ErrorReport
	Version VersionInfo
}

// DecodeFrame interprets one already-extracted frame's tag+payload as an
// inbound TcpMessage. Unknown tags yield a decode error, never a panic.
func DecodeFrame(f StreamFrame) (TcpMessage, error) {
	switch f.Tag {
	case StreamTagStdout:
		return TcpMessage{Kind: MessageStdout, Text: string(f.Payload)}, nil
	case StreamTagMessage:
		return TcpMessage{Kind: MessagePlain, Text: string(f.Payload)}, nil
	case StreamTagVersion:
		v, err := decodeVersionInfo(f.Payload)
		if err != nil {
			return TcpMessage{}, err
		}
		return TcpMessage{Kind: MessageVersionInfo, Version: v}, nil
	case StreamTagError:
		e, err := decodeErrorReport(f.Payload)
		if err != nil {
			return TcpMessage{}, err
		}
		return TcpMessage{Kind: MessageError, Error: e}, nil
	default:
		return TcpMessage{}, &DecodeError{Field: "stream.tag", Reason: "unrecognized tag"}
	}
}

// EncodeErrorReport builds the tag-0x0B payload: timestamp f64 BE,
// sequence u16, error_code i32, flags u16 (bit0 = is_error), then three
// u16-length-prefixed UTF-8 strings (details, location, call_stack).
func EncodeErrorReport(e ErrorReport) []byte {
	out := make([]byte, 0, 8+2+4+2+3*2+len(e.Details)+len(e.Location)+len(e.CallStack))
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], math.Float64bits(e.Timestamp))
	out = append(out, ts[:]...)
	var seq [2]byte
	binary.BigEndian.PutUint16(seq[:], e.Sequence)
	out = append(out, seq[:]...)
	var code [4]byte
	binary.BigEndian.PutUint32(code[:], uint32(e.Code))
	out = append(out, code[:]...)
	var flags uint16
	if e.IsError {
		flags |= 1
	}
	var fb [2]byte
	binary.BigEndian.PutUint16(fb[:], flags)
	out = append(out, fb[:]...)
	out = appendLengthPrefixedString(out, e.Details)
	out = appendLengthPrefixedString(out, e.Location)
	out = appendLengthPrefixedString(out, e.CallStack)
	return out
}

func decodeErrorReport(payload []byte) (ErrorReport, error) {
	var e ErrorReport
	if len(payload) < 8+2+4+2 {
		return e, &DecodeError{Field: "error_report", Reason: "too short"}
	}
	e.Timestamp = math.Float64frombits(binary.BigEndian.Uint64(payload[0:8]))
	e.Sequence = binary.BigEndian.Uint16(payload[8:10])
	e.Code = int32(binary.BigEndian.Uint32(payload[10:14]))
	flags := binary.BigEndian.Uint16(payload[14:16])
	e.IsError = flags&1 != 0
	pos := 16

	details, next, err := readLengthPrefixedString(payload, pos)
	if err != nil {
		return e, err
	}
	e.Details = details
	pos = next

	location, next, err := readLengthPrefixedString(payload, pos)
	if err != nil {
		return e, err
	}
	e.Location = location
	pos = next

	callStack, _, err := readLengthPrefixedString(payload, pos)
	if err != nil {
		return e, err
	}
	e.CallStack = callStack
	return e, nil
}

func decodeVersionInfo(payload []byte) (VersionInfo, error) {
	var v VersionInfo
	pos := 0
	deviceType, next, err := readLengthPrefixedString(payload, pos)
	if err != nil {
		return v, err
	}
	v.DeviceType, pos = deviceType, next

	deviceID, next, err := readLengthPrefixedString(payload, pos)
	if err != nil {
		return v, err
	}
	v.DeviceID, pos = deviceID, next

	name, next, err := readLengthPrefixedString(payload, pos)
	if err != nil {
		return v, err
	}
	v.Name, pos = name, next

	version, _, err := readLengthPrefixedString(payload, pos)
	if err != nil {
		return v, err
	}
	v.Version = version
	return v, nil
}

// EncodeGameDataSection builds the outbound stream payload for the
// game-data tag: a raw ASCII string, the same bare-bytes convention as
// EncodeTimezoneSection. Payload layout for the other two named outbound
// stream tags (match-info, joystick descriptor) is not specified beyond
// their names, so this package only encodes the one the command surface
// (§6's set_game_data) actually needs.
func EncodeGameDataSection(data string) []byte {
	return []byte(data)
}

// EncodeVersionInfo builds a version-info payload, used by the fake-robot
// test harness.
func EncodeVersionInfo(v VersionInfo) []byte {
	var out []byte
	out = appendLengthPrefixedString(out, v.DeviceType)
	out = appendLengthPrefixedString(out, v.DeviceID)
	out = appendLengthPrefixedString(out, v.Name)
	out = appendLengthPrefixedString(out, v.Version)
	return out
}

func appendLengthPrefixedString(buf []byte, s string) []byte {
	var l [2]byte
	binary.BigEndian.PutUint16(l[:], uint16(len(s)))
	buf = append(buf, l[:]...)
	buf = append(buf, s...)
	return buf
}

func readLengthPrefixedString(data []byte, pos int) (string, int, error) {
	if pos+2 > len(data) {
		return "", pos, &DecodeError{Field: "string", Reason: "truncated length prefix"}
	}
	l := int(binary.BigEndian.Uint16(data[pos : pos+2]))
	pos += 2
	if pos+l > len(data) {
		return "", pos, &DecodeError{Field: "string", Reason: "truncated body"}
	}
	return string(data[pos : pos+l]), pos + l, nil
}
