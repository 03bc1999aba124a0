package hotkey

import (
	"context"
	"time"
)

// Key identifies one of the physical keys the dispatcher recognizes
// (§4.5). A platform backend only needs to report these; anything else is
// ignored.
type Key int

const (
	KeySpace Key = iota
	KeyEnter
	KeyBackspace
	KeyF1
	KeyLeftBracket
	KeyRightBracket
	KeyBackslash
)

// Event is one key transition reported by a Backend.
type Event struct {
	Key  Key
	Down bool
	At   time.Time
}

// Backend is the host OS's global-hook facility: it must observe key
// events process-globally, including while the application window has no
// focus (§4.5). Run blocks, pushing events to out, until ctx is canceled.
// The only Backend in this package is StubBackend, which reports no
// events; no OS-specific hook implementation is included, so no keys are
// captured while the application window is unfocused.
type Backend interface {
	Run(ctx context.Context, out chan<- Event) error
}
