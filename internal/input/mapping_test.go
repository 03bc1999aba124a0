package input

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"station/internal/codec"
)

func TestMapToWirePlacesNamedAxesAtFixedPositions(t *testing.T) {
	raw := RawDeviceState{
		UUID: "abc",
		Axes: []RawAxisReading{
			{Named: AxisRightY, IsNamed: true, Value: 1.0},
			{Named: AxisLeftX, IsNamed: true, Value: -1.0},
		},
	}
	wire := MapToWire(raw)
	assert.Equal(t, int8(-128), wire.Axes[0]) // left-X
	assert.Equal(t, int8(127), wire.Axes[5])  // right-Y
}

func TestMapToWireAppendsUnnamedAxesAfterFixedTable(t *testing.T) {
	raw := RawDeviceState{
		Axes: []RawAxisReading{
			{IsNamed: false, Value: 0.5},
		},
	}
	wire := MapToWire(raw)
	assert.Len(t, wire.Axes, 7) // 6 fixed slots + 1 unnamed
}

func TestMapToWireNamedButtonPositions(t *testing.T) {
	raw := RawDeviceState{
		Buttons: []RawButtonReading{
			{Named: ButtonStart, IsNamed: true, Pressed: true},
		},
	}
	wire := MapToWire(raw)
	assert.True(t, wire.Buttons[7])
	assert.False(t, wire.Buttons[0])
}

func TestMapToWireHatFromFourDirections(t *testing.T) {
	raw := RawDeviceState{Hats: []RawHat{{Up: true, Right: true}}}
	wire := MapToWire(raw)
	assert.Equal(t, int16(45), wire.Hats[0])
}

func TestMapToWireClampsToCodecMax(t *testing.T) {
	var axes []RawAxisReading
	for i := 0; i < 20; i++ {
		axes = append(axes, RawAxisReading{Value: 0.1})
	}
	wire := MapToWire(RawDeviceState{Axes: axes})
	assert.LessOrEqual(t, len(wire.Axes), 12)
}

func TestHasNonZeroInputDetectsAxisButtonAndHat(t *testing.T) {
	assert.False(t, HasNonZeroInput(wireOf(0, false, -1)))
	assert.True(t, HasNonZeroInput(wireOf(5, false, -1)))
	assert.True(t, HasNonZeroInput(wireOf(0, true, -1)))
	assert.True(t, HasNonZeroInput(wireOf(0, false, 90)))
}

func wireOf(axis int8, button bool, hat int16) codec.JoystickData {
	return codec.JoystickData{
		Axes:    []int8{axis},
		Buttons: []bool{button},
		Hats:    []int16{hat},
	}
}
