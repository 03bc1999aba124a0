package codec

import "encoding/binary"
import "math"

// CANMetrics is decoded from inbound tag 0x0E.
type CANMetrics struct {
	UtilizationPct float32
	BusOffCount    uint32
	TxFullCount    uint32
	RxErrorCount   uint8
	TxErrorCount   uint8
}

// EncodeCANMetrics builds the tag-0x0E payload (used by the fake-robot test
// harness to synthesize inbound datagrams).
func EncodeCANMetrics(m CANMetrics) []byte {
	out := make([]byte, 4+4+4+1+1)
	binary.BigEndian.PutUint32(out[0:4], math.Float32bits(m.UtilizationPct))
	binary.BigEndian.PutUint32(out[4:8], m.BusOffCount)
	binary.BigEndian.PutUint32(out[8:12], m.TxFullCount)
	out[12] = m.RxErrorCount
	out[13] = m.TxErrorCount
	return out
}

// DecodeCANMetrics inverts EncodeCANMetrics.
func DecodeCANMetrics(payload []byte) (CANMetrics, error) {
	if len(payload) < 14 {
		return CANMetrics{}, &DecodeError{Field: "can", Reason: "short payload"}
	}
	return CANMetrics{
		UtilizationPct: math.Float32frombits(binary.BigEndian.Uint32(payload[0:4])),
		BusOffCount:    binary.BigEndian.Uint32(payload[4:8]),
		TxFullCount:    binary.BigEndian.Uint32(payload[8:12]),
		RxErrorCount:   payload[12],
		TxErrorCount:   payload[13],
	}, nil
}

const PDPChannelCount = 16

// DecodePDPCurrents unpacks 16 channels of 10-bit current values packed
// into 21 bytes (tag 0x08), each raw channel value counting eighths of an
// amp (raw/8.0 A per the vendor's documented PDP encoding).
func DecodePDPCurrents(payload []byte) ([PDPChannelCount]float32, error) {
	var out [PDPChannelCount]float32
	if len(payload) < 21 {
		return out, &DecodeError{Field: "pdp", Reason: "short payload"}
	}
	// 16 * 10 bits = 160 bits = 20 bytes; the 21st byte is reserved/unused
	// padding in the vendor layout, kept for symmetry with EncodePDPCurrents.
	bitPos := 0
	for ch := 0; ch < PDPChannelCount; ch++ {
		raw := readBits10(payload, bitPos)
		bitPos += 10
		out[ch] = float32(raw) / 8.0
	}
	return out, nil
}

// EncodePDPCurrents inverts DecodePDPCurrents closely enough for round-trip
// tests: amp floats are quantized back to the 10-bit raw domain.
func EncodePDPCurrents(currents [PDPChannelCount]float32) []byte {
	out := make([]byte, 21)
	bitPos := 0
	for ch := 0; ch < PDPChannelCount; ch++ {
		raw := uint16(currents[ch] * 8.0)
		if raw > 0x3FF {
			raw = 0x3FF
		}
		writeBits10(out, bitPos, raw)
		bitPos += 10
	}
	return out
}

func readBits10(data []byte, bitPos int) uint16 {
	var v uint16
	for i := 0; i < 10; i++ {
		byteIdx := (bitPos + i) / 8
		bitIdx := (bitPos + i) % 8
		bit := (data[byteIdx] >> uint(bitIdx)) & 1
		v |= uint16(bit) << uint(i)
	}
	return v
}

func writeBits10(data []byte, bitPos int, v uint16) {
	for i := 0; i < 10; i++ {
		byteIdx := (bitPos + i) / 8
		bitIdx := (bitPos + i) % 8
		bit := byte((v >> uint(i)) & 1)
		data[byteIdx] |= bit << uint(bitIdx)
	}
}

// DecodeCPUUtilization parses tag 0x05: [count byte][f32_be * count].
//
// The vendor layout for this tag is not publicly documented; this follows
// the commonly observed layout (count-prefixed big-endian float32 per
// core) and should be checked against a captured datagram before relying
// on it in the field.
func DecodeCPUUtilization(payload []byte) ([]float32, error) {
	if len(payload) < 1 {
		return nil, &DecodeError{Field: "cpu", Reason: "empty payload"}
	}
	count := int(payload[0])
	if len(payload) < 1+4*count {
		return nil, &DecodeError{Field: "cpu", Reason: "truncated"}
	}
	out := make([]float32, count)
	for i := 0; i < count; i++ {
		off := 1 + 4*i
		out[i] = math.Float32frombits(binary.BigEndian.Uint32(payload[off : off+4]))
	}
	return out, nil
}

// EncodeCPUUtilization inverts DecodeCPUUtilization.
func EncodeCPUUtilization(cores []float32) []byte {
	out := make([]byte, 1+4*len(cores))
	out[0] = byte(len(cores))
	for i, v := range cores {
		off := 1 + 4*i
		binary.BigEndian.PutUint32(out[off:off+4], math.Float32bits(v))
	}
	return out
}

// DecodeRAMBytesUsed parses tag 0x06: a big-endian u32.
func DecodeRAMBytesUsed(payload []byte) (uint32, error) {
	if len(payload) < 4 {
		return 0, &DecodeError{Field: "ram", Reason: "short payload"}
	}
	return binary.BigEndian.Uint32(payload[:4]), nil
}

// EncodeRAMBytesUsed inverts DecodeRAMBytesUsed.
func EncodeRAMBytesUsed(v uint32) []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, v)
	return out
}

// DecodeDiskBytesFree parses tag 0x04: a big-endian u32.
func DecodeDiskBytesFree(payload []byte) (uint32, error) {
	if len(payload) < 4 {
		return 0, &DecodeError{Field: "disk", Reason: "short payload"}
	}
	return binary.BigEndian.Uint32(payload[:4]), nil
}

// EncodeDiskBytesFree inverts DecodeDiskBytesFree.
func EncodeDiskBytesFree(v uint32) []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, v)
	return out
}

// TelemetryData is the flattened set of all robot telemetry tags (§3).
type TelemetryData struct {
	CAN         CANMetrics
	PDPCurrents [PDPChannelCount]float32
	CPUCores    []float32
	RAMBytes    uint32
	DiskBytesFree uint32
}
