package hotkey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestDispatcher(start time.Time) (*Dispatcher, *ActionQueue) {
	q := NewActionQueue()
	d := NewDispatcher(q)
	cur := start
	d.now = func() time.Time { return cur }
	return d, q
}

func TestSpaceDownFiresEStop(t *testing.T) {
	d, q := newTestDispatcher(time.Now())
	d.Handle(Event{Key: KeySpace, Down: true, At: time.Now()})
	a, ok := q.TryPop()
	assert.True(t, ok)
	assert.Equal(t, ActionEStop, a)
}

func TestEnterDownFiresDisable(t *testing.T) {
	d, q := newTestDispatcher(time.Now())
	d.Handle(Event{Key: KeyEnter, Down: true})
	a, _ := q.TryPop()
	assert.Equal(t, ActionDisable, a)
}

func TestBackspaceDownFiresAStop(t *testing.T) {
	d, q := newTestDispatcher(time.Now())
	d.Handle(Event{Key: KeyBackspace, Down: true})
	a, _ := q.TryPop()
	assert.Equal(t, ActionAStop, a)
}

func TestF1DownFiresRescan(t *testing.T) {
	d, q := newTestDispatcher(time.Now())
	d.Handle(Event{Key: KeyF1, Down: true})
	a, _ := q.TryPop()
	assert.Equal(t, ActionRescan, a)
}

func TestChordFiresEnableOnlyWhenAllThreeHeld(t *testing.T) {
	d, q := newTestDispatcher(time.Now())
	d.Handle(Event{Key: KeyLeftBracket, Down: true})
	_, ok := q.TryPop()
	assert.False(t, ok, "no chord yet")

	d.Handle(Event{Key: KeyRightBracket, Down: true})
	_, ok = q.TryPop()
	assert.False(t, ok, "still missing backslash")

	d.Handle(Event{Key: KeyBackslash, Down: true})
	a, ok := q.TryPop()
	assert.True(t, ok)
	assert.Equal(t, ActionEnable, a)
}

func TestKeyUpDoesNotFireAnything(t *testing.T) {
	d, q := newTestDispatcher(time.Now())
	d.Handle(Event{Key: KeySpace, Down: false})
	_, ok := q.TryPop()
	assert.False(t, ok)
}

func TestDebounceSuppressesRapidRepeat(t *testing.T) {
	start := time.Now()
	d, q := newTestDispatcher(start)
	d.Handle(Event{Key: KeyEnter, Down: true})
	_, ok := q.TryPop()
	assert.True(t, ok)

	d.Handle(Event{Key: KeyEnter, Down: true}) // within debounce window
	_, ok = q.TryPop()
	assert.False(t, ok)
}

func TestDebounceAllowsAfterWindow(t *testing.T) {
	start := time.Now()
	d, q := newTestDispatcher(start)
	d.Handle(Event{Key: KeyEnter, Down: true})
	q.TryPop()

	d.now = func() time.Time { return start.Add(Debounce + time.Millisecond) }
	d.Handle(Event{Key: KeyEnter, Down: true})
	a, ok := q.TryPop()
	assert.True(t, ok)
	assert.Equal(t, ActionDisable, a)
}

func TestEStopIsNeverDebounced(t *testing.T) {
	start := time.Now()
	d, q := newTestDispatcher(start)
	d.Handle(Event{Key: KeySpace, Down: true})
	q.TryPop()
	d.Handle(Event{Key: KeySpace, Down: true}) // immediately again
	a, ok := q.TryPop()
	assert.True(t, ok)
	assert.Equal(t, ActionEStop, a)
}

func TestEStopJumpsAheadOfQueuedActions(t *testing.T) {
	q := NewActionQueue()
	q.Push(ActionDisable)
	q.Push(ActionRescan)
	q.Push(ActionEStop)

	a, _ := q.TryPop()
	assert.Equal(t, ActionEStop, a)
	a, _ = q.TryPop()
	assert.Equal(t, ActionDisable, a)
	a, _ = q.TryPop()
	assert.Equal(t, ActionRescan, a)
}
