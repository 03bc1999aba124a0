package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModeEncoding(t *testing.T) {
	assert.Equal(t, byte(0), byte(ModeTeleop))
	assert.Equal(t, byte(1), byte(ModeTest))
	assert.Equal(t, byte(2), byte(ModeAutonomous))
}

func TestAllianceEncoding(t *testing.T) {
	cases := []struct {
		alliance Alliance
		want     byte
	}{
		{Alliance{AllianceRed, 1}, 0},
		{Alliance{AllianceRed, 2}, 1},
		{Alliance{AllianceRed, 3}, 2},
		{Alliance{AllianceBlue, 1}, 3},
		{Alliance{AllianceBlue, 2}, 4},
		{Alliance{AllianceBlue, 3}, 5},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.alliance.Encode())
		decoded, err := DecodeAlliance(c.want)
		assert.NoError(t, err)
		assert.Equal(t, c.alliance, decoded)
	}
}

func TestAllianceDecodeInvalid(t *testing.T) {
	for _, b := range []byte{6, 42, 255} {
		_, err := DecodeAlliance(b)
		assert.Error(t, err)
	}
}

func TestControlFlagsRoundTrip(t *testing.T) {
	cases := []ControlFlags{
		{},
		{EStop: true},
		{Enabled: true, Mode: ModeTeleop},
		{FMSConnected: true, Enabled: true, Mode: ModeAutonomous},
		{EStop: true, Enabled: true, Mode: ModeTest}, // encode is pure; invariant lives in coordinator
	}
	for _, c := range cases {
		got := DecodeControlFlags(c.Encode())
		assert.Equal(t, c, got)
	}
}

func TestRequestFlagsRoundTripAndLatch(t *testing.T) {
	r := RequestFlags{RebootController: true, RestartUserCode: true}
	assert.Equal(t, r, DecodeRequestFlags(r.Encode()))
	assert.Equal(t, RequestFlags{}, DecodeRequestFlags(0))
}

func TestStatusFlagsRoundTrip(t *testing.T) {
	s := StatusFlags{EStop: true, CodeInitializing: true, Brownout: true, Enabled: false, Mode: ModeAutonomous}
	assert.Equal(t, s, DecodeStatusFlags(s.Encode()))
}

func TestVoltageRoundTrip(t *testing.T) {
	for v := 0.0; v < 16.0; v += 0.01 {
		whole, frac := EncodeVoltage(v)
		got := DecodeVoltage(whole, frac)
		assert.Less(t, math.Abs(got-v), 1.0/256.0)
	}
}

func TestVoltageExample(t *testing.T) {
	whole, frac := EncodeVoltage(12.34)
	got := DecodeVoltage(whole, frac)
	assert.InDelta(t, 12.34, got, 0.01)
}

func TestEStopLatchIsCoordinatorConcern(t *testing.T) {
	// The codec itself has no memory between calls; it just encodes whatever
	// ControlFlags it's given. This test documents that boundary so nobody
	// later "fixes" Encode to latch estop itself.
	c := ControlFlags{EStop: true, Enabled: true}
	b := c.Encode()
	assert.NotEqual(t, byte(0), b&bitEnabled, "Encode is a pure mapping, not a state machine")
}

func TestOutboundDatagramRoundTrip(t *testing.T) {
	countdown := float32(12.5)
	d := OutboundDatagram{
		Sequence: 42,
		Control:  ControlFlags{Enabled: true, Mode: ModeTeleop},
		Request:  RequestFlags{RebootController: true},
		Alliance: Alliance{AllianceBlue, 2},
		Joysticks: []JoystickData{
			{Axes: []int8{-128, 0, 127}, Buttons: []bool{true, false, true, true}, Hats: []int16{-1, 90}},
		},
		Timezone:  "America/New_York",
		Countdown: &countdown,
	}
	encoded := Encode(d)
	decoded, err := DecodeOutbound(encoded)
	assert.NoError(t, err)
	assert.Equal(t, d.Sequence, decoded.Sequence)
	assert.Equal(t, d.Control, decoded.Control)
	assert.Equal(t, d.Request, decoded.Request)
	assert.Equal(t, d.Alliance, decoded.Alliance)
	assert.Equal(t, d.Joysticks, decoded.Joysticks)
	assert.Equal(t, d.Timezone, decoded.Timezone)
	assert.InDelta(t, *d.Countdown, *decoded.Countdown, 0.001)
}

func TestInboundDatagramRoundTrip(t *testing.T) {
	whole, frac := EncodeVoltage(12.34)
	d := InboundDatagram{
		Sequence:     7,
		Status:       StatusFlags{Enabled: true, Mode: ModeAutonomous},
		Trace:        3,
		VoltageWhole: whole,
		VoltageFrac:  frac,
		RequestDate:  true,
		Telemetry: TelemetryData{
			CAN:         CANMetrics{UtilizationPct: 12.5, BusOffCount: 2, TxFullCount: 1, RxErrorCount: 1, TxErrorCount: 0},
			PDPCurrents: [PDPChannelCount]float32{0: 1.5, 1: 2.0},
			CPUCores:    []float32{0.1, 0.2, 0.3, 0.4},
			RAMBytes:    1024,
			DiskBytesFree: 2048,
		},
		HaveCAN:  true,
		HavePDP:  true,
		HaveCPU:  true,
		HaveRAM:  true,
		HaveDisk: true,
	}
	encoded := EncodeInbound(d)
	decoded, err := DecodeInbound(encoded)
	assert.NoError(t, err)
	assert.Equal(t, d.Sequence, decoded.Sequence)
	assert.Equal(t, d.Status, decoded.Status)
	assert.InDelta(t, 12.34, decoded.Voltage(), 0.01)
	assert.True(t, decoded.RequestDate)
	assert.Equal(t, d.Telemetry.CAN, decoded.Telemetry.CAN)
	assert.InDelta(t, 1.5, decoded.Telemetry.PDPCurrents[0], 0.13) // 10-bit quantization
	assert.Equal(t, len(d.Telemetry.CPUCores), len(decoded.Telemetry.CPUCores))
	assert.Equal(t, d.Telemetry.RAMBytes, decoded.Telemetry.RAMBytes)
	assert.Equal(t, d.Telemetry.DiskBytesFree, decoded.Telemetry.DiskBytesFree)
}

func TestDecodeToleratesTrailingBytesAndUnknownTags(t *testing.T) {
	d := OutboundDatagram{Sequence: 1, Alliance: Alliance{AllianceRed, 1}}
	encoded := Encode(d)
	encoded = appendSection(encoded, 0xFE, []byte{1, 2, 3}) // unknown tag
	encoded = append(encoded, 0xDE, 0xAD)                   // garbage trailing bytes
	decoded, err := DecodeOutbound(encoded)
	assert.NoError(t, err)
	assert.Equal(t, d.Sequence, decoded.Sequence)
}

func TestDecodeNeverPanicsOnGarbage(t *testing.T) {
	garbage := [][]byte{
		nil,
		{0x00},
		{0xFF, 0xFF, 0xFF},
		{1, 2, 3, 4, 5, 6, 7, 0xFF},
	}
	for _, g := range garbage {
		assert.NotPanics(t, func() {
			_, _ = DecodeOutbound(g)
			_, _ = DecodeInbound(g)
		})
	}
}

func TestProtocolVersionMismatchIsDecodeError(t *testing.T) {
	d := EncodeInbound(InboundDatagram{Sequence: 1})
	d[2] = 0x02 // wrong comm version
	_, err := DecodeInbound(d)
	assert.Error(t, err)
	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}
