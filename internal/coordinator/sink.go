package coordinator

import (
	"time"

	"station/internal/codec"
	"station/internal/connection"
)

// Snapshot implements connection.ControlSource: the send loop's single
// atomic read of everything it needs to build one outbound datagram
// (§4.2 step 1).
func (c *Coordinator) Snapshot() connection.ControlSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	var joysticks []codec.JoystickData
	for _, s := range c.Slots.ConnectedSlots() {
		joysticks = append(joysticks, s.Data)
	}

	return connection.ControlSnapshot{
		Control:   c.control,
		Request:   c.request,
		Alliance:  c.alliance,
		Joysticks: joysticks,
	}
}

// ClearRequestFlags implements connection.ControlSource: the one-shot
// reboot/restart bits are cleared once the send loop has transmitted them
// (§4.6's request latching: a request fires exactly once, not on every
// subsequent datagram).
func (c *Coordinator) ClearRequestFlags() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.request = codec.RequestFlags{}
}

// SetState implements connection.Sink.
func (c *Coordinator) SetState(state connection.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connState = state
	if state != connection.CodeRunning && state != connection.Connected {
		// Lost the robot: the send loop keeps transmitting to the last
		// known address, but nothing we publish should claim an enabled
		// robot we can no longer reach.
		c.status.Enabled = false
	}
	c.publishLocked()
}

// ApplyInbound implements connection.Sink: folds one decoded inbound
// datagram's contents into the published state (§4.2 step 3).
func (c *Coordinator) ApplyInbound(update connection.InboundUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = update.Status
	c.voltage = update.Voltage
	c.telemetry = update.Telemetry
	c.publishLocked()
}

// SetTripTime implements connection.Sink.
func (c *Coordinator) SetTripTime(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tripTime = d
	c.publishLocked()
}

// SetLostPackets implements connection.Sink.
func (c *Coordinator) SetLostPackets(n uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lostCount = n
	c.publishLocked()
}

// PushMessage implements connection.Sink: routes a decoded stream message
// to the stdout feed, the raw tcp feed, or both (§3's tagged union: a
// stdout line is also a TcpMessage, so both consumers see it).
func (c *Coordinator) PushMessage(msg codec.TcpMessage) {
	if msg.Kind == codec.MessageStdout {
		c.stdout.push(msg.Text)
	}
	c.tcp.push(msg)
}
