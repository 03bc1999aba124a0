package connection

import (
	"time"

	"station/internal/codec"
)

// ControlSnapshot is the single atomic read the send loop takes from the
// coordinator each tick (§4.2 step 1).
type ControlSnapshot struct {
	Control   codec.ControlFlags
	Request   codec.RequestFlags
	Alliance  codec.Alliance
	Joysticks []codec.JoystickData
}

// ControlSource is implemented by the coordinator: it hands the send loop
// a consistent snapshot and lets the loop clear one-shot request bits
// after they've been transmitted (§4.2 step 4, §4.6's request latching).
type ControlSource interface {
	Snapshot() ControlSnapshot
	ClearRequestFlags()
}

// InboundUpdate is everything one decoded inbound datagram contributes to
// the published RobotState.
type InboundUpdate struct {
	Status      codec.StatusFlags
	Voltage     float64
	Telemetry   codec.TelemetryData
	RequestDate bool
}

// Sink is implemented by the coordinator: the connection layer pushes
// state transitions, inbound data, liveness measurements, and stream
// messages through it rather than owning the published snapshot itself.
type Sink interface {
	SetState(state State)
	ApplyInbound(update InboundUpdate)
	SetTripTime(d time.Duration)
	SetLostPackets(n uint32)
	PushMessage(msg codec.TcpMessage)
}
