// Package connection implements the address resolution, socket lifecycle,
// fixed-rate send loop, receive loop, and stream channel of §4.2: the
// piece of the engine that actually talks to the robot over the network.
package connection

// State is one stage of the connection lifecycle (§4.2).
type State int

const (
	Disconnected State = iota
	Resolving
	Connected
	CodeRunning
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Resolving:
		return "Resolving"
	case Connected:
		return "Connected"
	case CodeRunning:
		return "CodeRunning"
	default:
		return "Unknown"
	}
}
