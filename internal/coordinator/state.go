// Package coordinator owns every piece of mutable session state: control
// flags, practice clock, joystick table, connection status, and stream
// messages. Control and connection state sit behind the coordinator's
// mutex; the joystick table and practice sequencer each keep their own
// lock. It is the one place that knows how operator commands, the
// practice sequencer, hotkey actions, and the input poller's
// disconnect-safety intents merge into the datagrams
// the engine actually sends (§4.6).
package coordinator

import (
	"sync"
	"time"

	"station/internal/codec"
	"station/internal/connection"
	"station/internal/input"
	"station/internal/practice"
)

// PracticeState is the practice-clock slice of a published RobotState.
type PracticeState struct {
	Running   bool
	Phase     practice.Phase
	Elapsed   time.Duration
	Remaining time.Duration
}

// RobotState is the full snapshot published after coordinator state
// changes and connection-layer updates, and on every practice-clock tick
// (§5). Changes made directly on the joystick table publish nothing
// themselves and appear in the next publication. It holds everything a
// dev console or future dashboard needs to render without touching the
// coordinator's mutex directly.
type RobotState struct {
	PublicationSeq uint64

	ConnectionState connection.State
	Control         codec.ControlFlags
	Alliance        codec.Alliance
	Team            int
	UseUSB          bool
	GameData        string

	Status    codec.StatusFlags
	Voltage   float64
	Telemetry codec.TelemetryData
	TripTime  time.Duration
	LostCount uint32

	Practice PracticeState

	Slots [input.SlotCount]input.Slot
}

// Publisher is a single-producer, multi-consumer, coalescing broadcast of
// the latest RobotState (§5). A plain buffered channel can only ever feed
// one consumer past its buffer; this instead holds the latest value under
// a mutex plus a "changed" channel that is closed and replaced on every
// Publish, so any number of independent watchers can block on the current
// changed channel and each wakes exactly once per round of publications it
// missed, picking up the latest value rather than every intermediate one.
type Publisher struct {
	mu      sync.Mutex
	latest  RobotState
	changed chan struct{}
}

// NewPublisher returns a Publisher seeded with an initial state.
func NewPublisher(initial RobotState) *Publisher {
	return &Publisher{latest: initial, changed: make(chan struct{})}
}

// Publish replaces the latest state and wakes every waiting consumer.
func (p *Publisher) Publish(state RobotState) {
	p.mu.Lock()
	p.latest = state
	old := p.changed
	p.changed = make(chan struct{})
	p.mu.Unlock()
	close(old)
}

// Latest returns the most recently published state plus a channel that
// closes the next time Publish is called. A consumer loop reads state,
// does its work, then selects on changed (and ctx.Done()) before calling
// Latest again. If several Publish calls happened while it was busy, it
// simply observes the newest one, never a backlog.
func (p *Publisher) Latest() (RobotState, <-chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.changed
}
