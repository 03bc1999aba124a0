package input

import "station/internal/codec"

// VendorAxis identifies a named analog axis a host gamepad backend
// recognizes (§4.3's fixed axis table).
type VendorAxis int

const (
	AxisLeftX VendorAxis = iota
	AxisLeftY
	AxisLeftTrigger
	AxisRightTrigger
	AxisRightX
	AxisRightY
)

// axisWirePosition is the fixed vendor-axis -> wire-position table (§4.3).
var axisWirePosition = map[VendorAxis]int{
	AxisLeftX:        0,
	AxisLeftY:        1,
	AxisLeftTrigger:  2,
	AxisRightTrigger: 3,
	AxisRightX:       4,
	AxisRightY:       5,
}

// VendorButton identifies a named button a host gamepad backend recognizes
// (§4.3's fixed button table).
type VendorButton int

const (
	ButtonSouth VendorButton = iota
	ButtonEast
	ButtonWest
	ButtonNorth
	ButtonLeftBumper
	ButtonRightBumper
	ButtonBack
	ButtonStart
	ButtonLeftStick
	ButtonRightStick
)

var buttonWirePosition = map[VendorButton]int{
	ButtonSouth:      0,
	ButtonEast:       1,
	ButtonWest:       2,
	ButtonNorth:      3,
	ButtonLeftBumper: 4,
	ButtonRightBumper: 5,
	ButtonBack:       6,
	ButtonStart:      7,
	ButtonLeftStick:  8,
	ButtonRightStick: 9,
}

// RawAxisReading is one named or unnamed axis sample in host float range
// -1.0..1.0.
type RawAxisReading struct {
	Named   VendorAxis
	IsNamed bool
	Value   float32
}

// RawButtonReading is one named or unnamed button sample.
type RawButtonReading struct {
	Named   VendorButton
	IsNamed bool
	Pressed bool
}

// RawHat is the 4-direction pad reading a backend reports; DPad devices
// with no hat report all four false.
type RawHat struct {
	Up, Down, Left, Right bool
}

// RawDeviceState is one poll sample from a gamepad backend before mapping
// to the wire layout.
type RawDeviceState struct {
	UUID    string
	Name    string
	Axes    []RawAxisReading
	Buttons []RawButtonReading
	Hats    []RawHat
}

// MapToWire maps a raw device sample to codec.JoystickData following the
// fixed position table for named axes/buttons, appending any unmapped
// axes/buttons in enumeration order, and folding each hat's 4-direction
// reading down to a single clockwise-degree value (§4.3).
func MapToWire(raw RawDeviceState) codec.JoystickData {
	axes := make([]int8, len(axisWirePosition))
	axisSet := make([]bool, len(axes))
	var extra []int8

	for _, a := range raw.Axes {
		v := codec.SaturatingAxis(a.Value)
		if a.IsNamed {
			if pos, ok := axisWirePosition[a.Named]; ok && pos < len(axes) {
				axes[pos] = v
				axisSet[pos] = true
				continue
			}
		}
		extra = append(extra, v)
	}
	axes = append(axes, extra...)

	buttons := make([]bool, len(buttonWirePosition))
	var extraButtons []bool
	for _, b := range raw.Buttons {
		if b.IsNamed {
			if pos, ok := buttonWirePosition[b.Named]; ok && pos < len(buttons) {
				buttons[pos] = b.Pressed
				continue
			}
		}
		extraButtons = append(extraButtons, b.Pressed)
	}
	buttons = append(buttons, extraButtons...)

	hats := make([]int16, len(raw.Hats))
	for i, h := range raw.Hats {
		hats[i] = codec.HatDegrees(h.Up, h.Down, h.Left, h.Right)
	}

	if len(axes) > codec.MaxAxes {
		axes = axes[:codec.MaxAxes]
	}
	if len(buttons) > codec.MaxButtons {
		buttons = buttons[:codec.MaxButtons]
	}
	if len(hats) > codec.MaxHats {
		hats = hats[:codec.MaxHats]
	}

	return codec.JoystickData{Axes: axes, Buttons: buttons, Hats: hats}
}

// HasNonZeroInput reports whether data contains any pressed button,
// deflected axis, or active hat. Used by the disconnect-safety check
// (§4.3): a slot supplying non-zero input that disconnects while enabled
// forces a Disable intent.
func HasNonZeroInput(data codec.JoystickData) bool {
	for _, a := range data.Axes {
		if a != 0 {
			return true
		}
	}
	for _, b := range data.Buttons {
		if b {
			return true
		}
	}
	for _, h := range data.Hats {
		if h != -1 {
			return true
		}
	}
	return false
}
