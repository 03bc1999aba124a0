// Package codec implements the wire formats described in the protocol
// section of the driver station spec: outbound control datagrams, inbound
// telemetry datagrams, and length-prefixed stream frames. Every exported
// type is a value, not an owned resource: encode/decode never blocks and
// never touches a socket.
package codec

import "fmt"

// Mode is the robot operating mode, encoded as a 2-bit field.
type Mode uint8

const (
	ModeTeleop Mode = iota
	ModeTest
	ModeAutonomous
)

func (m Mode) String() string {
	switch m {
	case ModeTeleop:
		return "Teleop"
	case ModeTest:
		return "Test"
	case ModeAutonomous:
		return "Autonomous"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// AllianceColor is Red or Blue.
type AllianceColor uint8

const (
	AllianceRed AllianceColor = iota
	AllianceBlue
)

// Alliance is a color plus a driver station number in 1..3.
type Alliance struct {
	Color   AllianceColor
	Station uint8 // 1, 2, or 3
}

// Encode packs the alliance into the single-byte wire representation:
// Red1..Red3 -> 0..2, Blue1..Blue3 -> 3..5.
func (a Alliance) Encode() byte {
	base := byte(0)
	if a.Color == AllianceBlue {
		base = 3
	}
	return base + (a.Station - 1)
}

// DecodeAlliance inverts Alliance.Encode. Values 6..255 are invalid.
func DecodeAlliance(b byte) (Alliance, error) {
	if b > 5 {
		return Alliance{}, &DecodeError{Field: "alliance", Reason: fmt.Sprintf("value %d out of range 0..5", b)}
	}
	color := AllianceRed
	station := b
	if b >= 3 {
		color = AllianceBlue
		station = b - 3
	}
	return Alliance{Color: color, Station: station + 1}, nil
}

// ControlFlags is the outbound control-state byte (§3, §4.1).
//
// Invariant: once EStop is set true, the engine must keep sending it true
// until an explicit external reset; Enabled is forced false whenever EStop
// is true. That invariant is enforced by the coordinator, not here: Encode
// is a pure mapping and will happily encode an inconsistent value if asked.
type ControlFlags struct {
	EStop        bool
	FMSConnected bool
	Enabled      bool
	Mode         Mode
}

const (
	bitEStop   = 1 << 7
	bitFMS     = 1 << 3
	bitEnabled = 1 << 2
	maskMode   = 0x03
)

// Encode packs ControlFlags into a single byte: bit7 estop, bit3 fms,
// bit2 enabled, bits1-0 mode.
func (c ControlFlags) Encode() byte {
	var b byte
	if c.EStop {
		b |= bitEStop
	}
	if c.FMSConnected {
		b |= bitFMS
	}
	if c.Enabled {
		b |= bitEnabled
	}
	b |= byte(c.Mode) & maskMode
	return b
}

// DecodeControlFlags inverts Encode.
func DecodeControlFlags(b byte) ControlFlags {
	return ControlFlags{
		EStop:        b&bitEStop != 0,
		FMSConnected: b&bitFMS != 0,
		Enabled:      b&bitEnabled != 0,
		Mode:         Mode(b & maskMode),
	}
}

// RequestFlags carries one-shot controller maintenance requests.
type RequestFlags struct {
	RebootController bool
	RestartUserCode  bool
}

const (
	bitReboot  = 1 << 3
	bitRestart = 1 << 2
)

// Encode packs RequestFlags: bit3 reboot, bit2 restart.
func (r RequestFlags) Encode() byte {
	var b byte
	if r.RebootController {
		b |= bitReboot
	}
	if r.RestartUserCode {
		b |= bitRestart
	}
	return b
}

// DecodeRequestFlags inverts Encode.
func DecodeRequestFlags(b byte) RequestFlags {
	return RequestFlags{
		RebootController: b&bitReboot != 0,
		RestartUserCode:  b&bitRestart != 0,
	}
}

// StatusFlags is the inbound status byte reported by the robot.
type StatusFlags struct {
	EStop           bool
	CodeInitializing bool
	Brownout        bool
	Enabled         bool
	Mode            Mode
}

const (
	bitStatusEStop     = 1 << 7
	bitCodeInit        = 1 << 4
	bitBrownout        = 1 << 3
	bitStatusEnabled   = 1 << 2
)

// Encode packs StatusFlags into the inbound status byte. Exported so tests
// (and a fake-robot harness) can build well-formed inbound datagrams.
func (s StatusFlags) Encode() byte {
	var b byte
	if s.EStop {
		b |= bitStatusEStop
	}
	if s.CodeInitializing {
		b |= bitCodeInit
	}
	if s.Brownout {
		b |= bitBrownout
	}
	if s.Enabled {
		b |= bitStatusEnabled
	}
	b |= byte(s.Mode) & maskMode
	return b
}

// DecodeStatusFlags inverts Encode.
func DecodeStatusFlags(b byte) StatusFlags {
	return StatusFlags{
		EStop:            b&bitStatusEStop != 0,
		CodeInitializing: b&bitCodeInit != 0,
		Brownout:         b&bitBrownout != 0,
		Enabled:          b&bitStatusEnabled != 0,
		Mode:             Mode(b & maskMode),
	}
}

// EncodeVoltage packs a battery voltage into (integer part, fractional
// 256ths), matching the round-trip law decode(encode(v)) within 1/256.
func EncodeVoltage(v float64) (whole, frac byte) {
	if v < 0 {
		v = 0
	}
	w := byte(v)
	f := byte((v - float64(w)) * 256)
	return w, f
}

// DecodeVoltage inverts EncodeVoltage.
func DecodeVoltage(whole, frac byte) float64 {
	return float64(whole) + float64(frac)/256.0
}

// DecodeError is returned for malformed input. It is always a value error,
// never a panic: decoders must tolerate garbage on the wire.
type DecodeError struct {
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("codec: decode %s: %s", e.Field, e.Reason)
}
