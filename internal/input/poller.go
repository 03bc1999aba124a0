package input

import (
	"context"
	"time"
)

// PollInterval is the input poll cadence (§4.2).
const PollInterval = 5 * time.Millisecond

// Intent is a safety-driven instruction the poller hands up to whatever
// owns enable state (the coordinator), distinct from operator commands.
type Intent int

const (
	// IntentNone means nothing changed that the coordinator must react to.
	IntentNone Intent = iota
	// IntentForceDisable fires when a slot that was supplying non-zero
	// input disconnects while the robot is enabled (§4.3).
	IntentForceDisable
)

// EnabledState is queried by the poller to decide whether a disconnect is
// safety-relevant; the coordinator implements this.
type EnabledState interface {
	Enabled() bool
}

// Poller drives one Source at PollInterval, reconciling attach/detach into
// a Table and surfacing safety intents. It holds no lock of its own: all
// shared state lives in the Table, one owning mutex per shared struct
// rather than one per goroutine.
type Poller struct {
	Source Source
	Table  *Table
	Robot  EnabledState

	lastSeen map[string]bool
}

// NewPoller builds a Poller ready to Run.
func NewPoller(source Source, table *Table, robot EnabledState) *Poller {
	return &Poller{Source: source, Table: table, Robot: robot, lastSeen: make(map[string]bool)}
}

// Run polls Source every PollInterval until ctx is canceled, reconciling
// attach/detach events into Table and writing any resulting Intent to
// intents. intents is never closed; callers select on ctx.Done() to stop
// reading.
func (p *Poller) Run(ctx context.Context, intents chan<- Intent) {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if p.Source != nil {
				_ = p.Source.Close()
			}
			return
		case <-ticker.C:
			p.pollOnce(intents)
		}
	}
}

func (p *Poller) pollOnce(intents chan<- Intent) {
	states, err := p.Source.Poll()
	if err != nil {
		return
	}

	seen := make(map[string]bool, len(states))
	for _, raw := range states {
		seen[raw.UUID] = true
		wire := MapToWire(raw)
		if !p.lastSeen[raw.UUID] {
			p.Table.Attach(raw.UUID, raw.Name, len(raw.Axes), len(raw.Buttons), len(raw.Hats))
		}
		p.Table.UpdateData(raw.UUID, wire)
	}

	for uuid := range p.lastSeen {
		if seen[uuid] {
			continue
		}
		if p.forceDisableOnDetach(uuid) && intents != nil {
			select {
			case intents <- IntentForceDisable:
			default:
			}
		}
		p.Table.Detach(uuid)
	}

	p.lastSeen = seen
}

// forceDisableOnDetach implements §4.3's disconnect-safety rule: a slot
// that was supplying non-zero input when it vanished forces a disable if
// the robot is currently enabled.
func (p *Poller) forceDisableOnDetach(uuid string) bool {
	if p.Robot == nil || !p.Robot.Enabled() {
		return false
	}
	for _, s := range p.Table.Snapshot() {
		if s.UUID == uuid {
			return HasNonZeroInput(s.Data)
		}
	}
	return false
}
