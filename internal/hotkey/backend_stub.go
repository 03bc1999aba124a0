package hotkey

import (
	"context"
)

// StubBackend is a Backend that never produces events; it exists so the
// engine can run on a build with no global-hook implementation wired yet
// (or in CI/headless environments with no display/input subsystem to hook
// into) without the hotkey task crashing the rest of the coordinator
// pipeline. Operators on such a build still have the dev console and any
// dashboard command bindings; only the OS-global key bindings are
// unavailable.
type StubBackend struct{}

// Run blocks until ctx is canceled, emitting nothing.
func (StubBackend) Run(ctx context.Context, out chan<- Event) error {
	<-ctx.Done()
	return nil
}
