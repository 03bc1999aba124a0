package hotkey

import (
	"context"
	"sync"
	"time"
)

// Debounce is the minimum gap between two deliveries of the same action
// (§4.5).
const Debounce = 50 * time.Millisecond

// RescanFunc is the signature of a device-rescan hook. The Dispatcher
// holds and calls none: F1 is queued as ActionRescan like every other
// action, and whoever drains the queue performs the rescan.
type RescanFunc func()

// Dispatcher turns raw key events from a Backend into queued Actions,
// applying the 50 ms debounce and the simultaneous-chord rule for Enable
// (§4.5). State (held keys, last-fired times) is guarded by one mutex,
// consistent with the rest of this codebase's one-lock-per-owned-struct
// idiom.
type Dispatcher struct {
	Queue *ActionQueue

	mu       sync.Mutex
	held     map[Key]bool
	lastFire map[Action]time.Time
	now      func() time.Time
}

// NewDispatcher returns a Dispatcher delivering into queue.
func NewDispatcher(queue *ActionQueue) *Dispatcher {
	return &Dispatcher{
		Queue:    queue,
		held:     make(map[Key]bool),
		lastFire: make(map[Action]time.Time),
		now:      time.Now,
	}
}

// Run reads from backend until ctx is canceled, translating each event via
// Handle.
func (d *Dispatcher) Run(ctx context.Context, backend Backend) error {
	events := make(chan Event, 64)
	errs := make(chan error, 1)
	go func() { errs <- backend.Run(ctx, events) }()

	for {
		select {
		case <-ctx.Done():
			return <-errs
		case ev := <-events:
			d.Handle(ev)
		}
	}
}

// Handle applies one key event, updating chord state and firing any
// resulting action through Queue. Exported directly so tests (and a fake
// Backend) can drive the dispatcher without a goroutine.
func (d *Dispatcher) Handle(ev Event) {
	d.mu.Lock()
	d.held[ev.Key] = ev.Down

	var fire Action
	var hasFire bool

	switch ev.Key {
	case KeySpace:
		if ev.Down {
			fire, hasFire = ActionEStop, true
		}
	case KeyEnter:
		if ev.Down {
			fire, hasFire = ActionDisable, true
		}
	case KeyBackspace:
		if ev.Down {
			fire, hasFire = ActionAStop, true
		}
	case KeyF1:
		if ev.Down {
			fire, hasFire = ActionRescan, true
		}
	case KeyLeftBracket, KeyRightBracket, KeyBackslash:
		if ev.Down && d.held[KeyLeftBracket] && d.held[KeyRightBracket] && d.held[KeyBackslash] {
			fire, hasFire = ActionEnable, true
		}
	}

	if hasFire && !d.debounced(fire) {
		d.Queue.Push(fire)
	}
	d.mu.Unlock()
}

// debounced reports whether action fired within the last Debounce window,
// and records now as its new last-fire time when it did not. Caller holds
// d.mu. EStop is exempt from debouncing: §4.5 requires it bypass any
// queueing or delay, and a held Space key repeating faster than the
// debounce window must still keep the estop asserted in the coordinator.
func (d *Dispatcher) debounced(a Action) bool {
	if a == ActionEStop {
		return false
	}
	now := d.now()
	last, ok := d.lastFire[a]
	if ok && now.Sub(last) < Debounce {
		return true
	}
	d.lastFire[a] = now
	return false
}
