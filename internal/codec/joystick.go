package codec

import "encoding/binary"

const (
	MaxAxes    = 12
	MaxButtons = 32
	MaxHats    = 2
)

// JoystickData is one device's axis/button/hat state on the wire (§3).
type JoystickData struct {
	Axes    []int8  // -128..127
	Buttons []bool  // logical button states
	Hats    []int16 // degrees clockwise from north, or -1 if released
}

// EncodeJoystickSection builds the payload for outbound tag 0x0C:
// [axis_count][axes...][button_count_bits][button_bytes...][hat_count][hat_be...].
// Buttons are packed LSB-first into ceil(count/8) bytes.
func EncodeJoystickSection(j JoystickData) []byte {
	axes := j.Axes
	if len(axes) > MaxAxes {
		axes = axes[:MaxAxes]
	}
	buttons := j.Buttons
	if len(buttons) > MaxButtons {
		buttons = buttons[:MaxButtons]
	}
	hats := j.Hats
	if len(hats) > MaxHats {
		hats = hats[:MaxHats]
	}

	buttonBytes := packButtons(buttons)

	out := make([]byte, 0, 1+len(axes)+1+len(buttonBytes)+1+2*len(hats))
	out = append(out, byte(len(axes)))
	for _, a := range axes {
		out = append(out, byte(a))
	}
	out = append(out, byte(len(buttons)))
	out = append(out, buttonBytes...)
	out = append(out, byte(len(hats)))
	for _, h := range hats {
		var hb [2]byte
		binary.BigEndian.PutUint16(hb[:], uint16(h))
		out = append(out, hb[:]...)
	}
	return out
}

// DecodeJoystickSection inverts EncodeJoystickSection. It tolerates a
// truncated payload by returning whatever prefix it could parse.
func DecodeJoystickSection(payload []byte) (JoystickData, error) {
	var j JoystickData
	if len(payload) < 1 {
		return j, &DecodeError{Field: "joystick", Reason: "empty payload"}
	}
	pos := 0
	axisCount := int(payload[pos])
	pos++
	if pos+axisCount > len(payload) {
		return j, &DecodeError{Field: "joystick.axes", Reason: "truncated"}
	}
	j.Axes = make([]int8, axisCount)
	for i := 0; i < axisCount; i++ {
		j.Axes[i] = int8(payload[pos])
		pos++
	}

	if pos >= len(payload) {
		return j, &DecodeError{Field: "joystick.buttons", Reason: "truncated"}
	}
	buttonCount := int(payload[pos])
	pos++
	buttonByteLen := (buttonCount + 7) / 8
	if pos+buttonByteLen > len(payload) {
		return j, &DecodeError{Field: "joystick.buttons", Reason: "truncated"}
	}
	j.Buttons = unpackButtons(payload[pos:pos+buttonByteLen], buttonCount)
	pos += buttonByteLen

	if pos >= len(payload) {
		return j, &DecodeError{Field: "joystick.hats", Reason: "truncated"}
	}
	hatCount := int(payload[pos])
	pos++
	if pos+2*hatCount > len(payload) {
		return j, &DecodeError{Field: "joystick.hats", Reason: "truncated"}
	}
	j.Hats = make([]int16, hatCount)
	for i := 0; i < hatCount; i++ {
		j.Hats[i] = int16(binary.BigEndian.Uint16(payload[pos : pos+2]))
		pos += 2
	}
	return j, nil
}

// packButtons packs logical button states LSB-first into ceil(n/8) bytes.
func packButtons(buttons []bool) []byte {
	n := len(buttons)
	out := make([]byte, (n+7)/8)
	for i, set := range buttons {
		if set {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

// unpackButtons inverts packButtons, reading exactly count logical bits.
func unpackButtons(data []byte, count int) []bool {
	out := make([]bool, count)
	for i := 0; i < count; i++ {
		out[i] = data[i/8]&(1<<uint(i%8)) != 0
	}
	return out
}

// HatDegrees maps a 4-direction pad reading to the wire's clockwise-from-
// north degree value, or -1 if released (§4.3).
func HatDegrees(up, down, left, right bool) int16 {
	switch {
	case up && right:
		return 45
	case down && right:
		return 135
	case down && left:
		return 225
	case up && left:
		return 315
	case up:
		return 0
	case right:
		return 90
	case down:
		return 180
	case left:
		return 270
	default:
		return -1
	}
}

// SaturatingAxis converts a host float axis reading in -1.0..1.0 to a
// signed-byte wire value in -128..127, with -1.0 mapping to -128 (§4.3).
func SaturatingAxis(v float32) int8 {
	if v <= -1 {
		return -128
	}
	if v >= 1 {
		return 127
	}
	scaled := v * 128
	if scaled < 0 {
		return int8(scaled - 0.5)
	}
	if scaled+0.5 >= 127 {
		return 127
	}
	return int8(scaled + 0.5)
}
