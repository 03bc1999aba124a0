package hotkey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestActionQueueFIFOOrderForNonEStop(t *testing.T) {
	q := NewActionQueue()
	q.Push(ActionDisable)
	q.Push(ActionEnable)
	a, _ := q.TryPop()
	assert.Equal(t, ActionDisable, a)
	a, _ = q.TryPop()
	assert.Equal(t, ActionEnable, a)
}

func TestActionQueueTryPopEmpty(t *testing.T) {
	q := NewActionQueue()
	_, ok := q.TryPop()
	assert.False(t, ok)
}

func TestActionQueueWaitWakesOnPush(t *testing.T) {
	q := NewActionQueue()
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		q.Wait(stop)
		close(done)
	}()
	q.Push(ActionRescan)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not wake up after Push")
	}
}

func TestActionQueueWaitStopsOnStopChannel(t *testing.T) {
	q := NewActionQueue()
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		q.Wait(stop)
		close(done)
	}()
	close(stop)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after stop closed")
	}
}
