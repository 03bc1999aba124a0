package codec

import (
	"encoding/binary"
	"math"
	"time"
)

// EncodeDateTimeSection builds the tag-0x0F payload: microseconds u32,
// second, minute, hour, day, month, two-digit year.
func EncodeDateTimeSection(t time.Time) []byte {
	out := make([]byte, 4+6)
	binary.BigEndian.PutUint32(out[0:4], uint32(t.Nanosecond()/1000))
	out[4] = byte(t.Second())
	out[5] = byte(t.Minute())
	out[6] = byte(t.Hour())
	out[7] = byte(t.Day())
	out[8] = byte(t.Month())
	out[9] = byte(t.Year() % 100)
	return out
}

// EncodeTimezoneSection builds the tag-0x10 payload: a raw ASCII string.
func EncodeTimezoneSection(tz string) []byte {
	return []byte(tz)
}

// EncodeCountdownSection builds the tag-0x07 payload: f32 big-endian
// remaining seconds, used during practice phases.
func EncodeCountdownSection(remaining float32) []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, math.Float32bits(remaining))
	return out
}

// DecodeCountdownSection inverts EncodeCountdownSection.
func DecodeCountdownSection(payload []byte) (float32, error) {
	if len(payload) < 4 {
		return 0, &DecodeError{Field: "countdown", Reason: "short payload"}
	}
	return math.Float32frombits(binary.BigEndian.Uint32(payload[:4])), nil
}
