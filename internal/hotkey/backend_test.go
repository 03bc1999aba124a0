package hotkey

import (
	"context"
	"testing"
	"time"
)

// fakeBackend lets tests drive Dispatcher.Run with scripted events instead
// of a real OS hook.
type fakeBackend struct {
	events []Event
}

func (f *fakeBackend) Run(ctx context.Context, out chan<- Event) error {
	for _, ev := range f.events {
		select {
		case out <- ev:
		case <-ctx.Done():
			return nil
		}
	}
	<-ctx.Done()
	return nil
}

func TestDispatcherRunDeliversEventsFromBackend(t *testing.T) {
	q := NewActionQueue()
	d := NewDispatcher(q)
	backend := &fakeBackend{events: []Event{{Key: KeySpace, Down: true}}}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	done := make(chan struct{})
	go func() {
		d.Run(ctx, backend)
		close(done)
	}()

	q.Wait(ctx.Done())
	a, ok := q.TryPop()
	if !ok || a != ActionEStop {
		t.Fatalf("expected ActionEStop, got %v ok=%v", a, ok)
	}
	<-done
}

func TestStubBackendNeverProducesEvents(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	out := make(chan Event, 1)
	_ = StubBackend{}.Run(ctx, out)
	select {
	case ev := <-out:
		t.Fatalf("expected no events, got %v", ev)
	default:
	}
}
