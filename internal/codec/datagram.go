package codec

import "encoding/binary"

// CommVersion is the single supported comm-version byte. Any other value
// on an inbound datagram is a protocol-version mismatch, treated as a
// decode error (§7).
const CommVersion byte = 0x01

// OutboundDatagram is everything the send loop emits each tick (§4.1).
type OutboundDatagram struct {
	Sequence     uint16
	Control      ControlFlags
	Request      RequestFlags
	Alliance     Alliance
	Joysticks    []JoystickData // one per connected slot, in slot order
	SendDateTime bool           // emit tag 0x0F this tick
	DateTimeUTC  []byte         // pre-built tag-0x0F payload, if SendDateTime
	Timezone     string         // non-empty emits tag 0x10 once
	Countdown    *float32       // non-nil emits tag 0x07
}

// Encode serializes the outbound control datagram in exactly the byte
// order specified in §4.1: sequence, comm version, control, request,
// alliance, then zero or more tagged sections.
func Encode(d OutboundDatagram) []byte {
	out := make([]byte, 0, 8+32)
	var seq [2]byte
	binary.BigEndian.PutUint16(seq[:], d.Sequence)
	out = append(out, seq[0], seq[1])
	out = append(out, CommVersion)
	out = append(out, d.Control.Encode())
	out = append(out, d.Request.Encode())
	out = append(out, d.Alliance.Encode())

	for _, j := range d.Joysticks {
		out = appendSection(out, TagJoystick, EncodeJoystickSection(j))
	}
	if d.SendDateTime {
		out = appendSection(out, TagDateTime, d.DateTimeUTC)
	}
	if d.Timezone != "" {
		out = appendSection(out, TagTimezone, EncodeTimezoneSection(d.Timezone))
	}
	if d.Countdown != nil {
		out = appendSection(out, TagCountdown, EncodeCountdownSection(*d.Countdown))
	}
	return out
}

// DecodeOutbound parses a datagram built by Encode. It exists primarily so
// a fake-robot test harness can assert on what the send loop actually put
// on the wire, and is held to the same "never abort on garbage" contract
// as the inbound decoders.
func DecodeOutbound(data []byte) (OutboundDatagram, error) {
	var d OutboundDatagram
	if len(data) < 6 {
		return d, &DecodeError{Field: "outbound", Reason: "too short for header"}
	}
	d.Sequence = binary.BigEndian.Uint16(data[0:2])
	if data[2] != CommVersion {
		return d, &DecodeError{Field: "outbound.version", Reason: "unsupported comm version"}
	}
	d.Control = DecodeControlFlags(data[3])
	d.Request = DecodeRequestFlags(data[4])
	alliance, err := DecodeAlliance(data[5])
	if err != nil {
		return d, err
	}
	d.Alliance = alliance

	for _, s := range readSections(data[6:]) {
		switch s.tag {
		case TagJoystick:
			j, err := DecodeJoystickSection(s.payload)
			if err == nil {
				d.Joysticks = append(d.Joysticks, j)
			}
		case TagDateTime:
			d.SendDateTime = true
			d.DateTimeUTC = append([]byte(nil), s.payload...)
		case TagTimezone:
			d.Timezone = string(s.payload)
		case TagCountdown:
			if v, err := DecodeCountdownSection(s.payload); err == nil {
				d.Countdown = &v
			}
		}
		// Unknown tags are skipped by readSections' length framing already.
	}
	return d, nil
}

// InboundDatagram is everything the receive loop parses from one telemetry
// packet (§4.1).
type InboundDatagram struct {
	Sequence        uint16
	Status          StatusFlags
	Trace           byte
	VoltageWhole    byte
	VoltageFrac     byte
	RequestDate     bool
	Telemetry       TelemetryData
	HaveCAN         bool
	HavePDP         bool
	HaveCPU         bool
	HaveRAM         bool
	HaveDisk        bool
}

// Voltage decodes the packed battery voltage into a float.
func (d InboundDatagram) Voltage() float64 {
	return DecodeVoltage(d.VoltageWhole, d.VoltageFrac)
}

// DecodeInbound parses an inbound telemetry datagram per §4.1. Malformed
// input yields a *DecodeError, never a panic; trailing bytes and unknown
// tags are tolerated.
func DecodeInbound(data []byte) (InboundDatagram, error) {
	var d InboundDatagram
	if len(data) < 8 {
		return d, &DecodeError{Field: "inbound", Reason: "too short for header"}
	}
	d.Sequence = binary.BigEndian.Uint16(data[0:2])
	if data[2] != CommVersion {
		return d, &DecodeError{Field: "inbound.version", Reason: "unsupported comm version"}
	}
	d.Status = DecodeStatusFlags(data[3])
	d.Trace = data[4]
	d.VoltageWhole = data[5]
	d.VoltageFrac = data[6]
	d.RequestDate = data[7] != 0

	for _, s := range readSections(data[8:]) {
		switch s.tag {
		case TagCANMetrics:
			if m, err := DecodeCANMetrics(s.payload); err == nil {
				d.Telemetry.CAN = m
				d.HaveCAN = true
			}
		case TagPDP:
			if c, err := DecodePDPCurrents(s.payload); err == nil {
				d.Telemetry.PDPCurrents = c
				d.HavePDP = true
			}
		case TagCPU:
			if c, err := DecodeCPUUtilization(s.payload); err == nil {
				d.Telemetry.CPUCores = c
				d.HaveCPU = true
			}
		case TagRAM:
			if v, err := DecodeRAMBytesUsed(s.payload); err == nil {
				d.Telemetry.RAMBytes = v
				d.HaveRAM = true
			}
		case TagDiskFree:
			if v, err := DecodeDiskBytesFree(s.payload); err == nil {
				d.Telemetry.DiskBytesFree = v
				d.HaveDisk = true
			}
		}
	}
	return d, nil
}

// EncodeInbound builds a well-formed inbound datagram; used by the
// fake-robot test harness and by anything that needs to round-trip test
// DecodeInbound.
func EncodeInbound(d InboundDatagram) []byte {
	out := make([]byte, 0, 8+32)
	var seq [2]byte
	binary.BigEndian.PutUint16(seq[:], d.Sequence)
	out = append(out, seq[0], seq[1])
	out = append(out, CommVersion)
	out = append(out, d.Status.Encode())
	out = append(out, d.Trace)
	out = append(out, d.VoltageWhole, d.VoltageFrac)
	if d.RequestDate {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	if d.HaveCAN {
		out = appendSection(out, TagCANMetrics, EncodeCANMetrics(d.Telemetry.CAN))
	}
	if d.HavePDP {
		out = appendSection(out, TagPDP, EncodePDPCurrents(d.Telemetry.PDPCurrents))
	}
	if d.HaveCPU {
		out = appendSection(out, TagCPU, EncodeCPUUtilization(d.Telemetry.CPUCores))
	}
	if d.HaveRAM {
		out = appendSection(out, TagRAM, EncodeRAMBytesUsed(d.Telemetry.RAMBytes))
	}
	if d.HaveDisk {
		out = appendSection(out, TagDiskFree, EncodeDiskBytesFree(d.Telemetry.DiskBytesFree))
	}
	return out
}
