// Package practice implements the clock-driven practice-mode sequencer
// (§4.4): Idle -> Countdown -> Autonomous -> Delay -> Teleop -> Done,
// synthesizing mode/enable intents the coordinator merges with operator
// input. The sequencer never reads the wall clock itself; callers drive
// it with Tick(now), the same seeded-clock-friendly shape the connection
// package's send-loop scheduling uses, so tests can jump time
// deterministically instead of sleeping.
package practice

import (
	"sync"
	"time"

	"station/internal/codec"
)

// Phase is one state of the practice sequence (§4.4).
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCountdown
	PhaseAutonomous
	PhaseDelay
	PhaseTeleop
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseCountdown:
		return "Countdown"
	case PhaseAutonomous:
		return "Autonomous"
	case PhaseDelay:
		return "Delay"
	case PhaseTeleop:
		return "Teleop"
	case PhaseDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Timing holds the per-phase durations (§4.4's default schedule: 3, 15, 1,
// 135 seconds).
type Timing struct {
	Countdown time.Duration
	Autonomous time.Duration
	Delay      time.Duration
	Teleop     time.Duration
}

// DefaultTiming returns the default practice schedule (§4.4: 3, 15, 1,
// 135 seconds).
func DefaultTiming() Timing {
	return Timing{
		Countdown:  3 * time.Second,
		Autonomous: 15 * time.Second,
		Delay:      1 * time.Second,
		Teleop:     135 * time.Second,
	}
}

func (t Timing) duration(p Phase) time.Duration {
	switch p {
	case PhaseCountdown:
		return t.Countdown
	case PhaseAutonomous:
		return t.Autonomous
	case PhaseDelay:
		return t.Delay
	case PhaseTeleop:
		return t.Teleop
	default:
		return 0
	}
}

// Intent is the mode/enable change a phase transition or A-Stop produces.
// Either field may be unset: SetMode/SetEnabled gate whether Mode/Enabled
// should be applied by whatever merges this into ControlFlags.
type Intent struct {
	SetMode    bool
	Mode       codec.Mode
	SetEnabled bool
	Enabled    bool
}

// Tick is one sampling of the sequencer: the phase as of now, how far into
// it, how much remains (zero in PhaseDone/PhaseIdle), and any intent
// produced by a phase transition crossed since the previous Tick call.
// Intent is the zero value (no Set* flags) when no transition occurred.
type Tick struct {
	Phase     Phase
	Elapsed   time.Duration
	Remaining time.Duration
	Intent    Intent
}

// Sequencer drives the practice clock. It holds its own mutex rather than
// sharing the coordinator's, because Tick/AStop/Stop are called from a
// dedicated practice-clock task while the coordinator only reads the most
// recent Tick's Intent: each independently-scheduled concern gets its own
// lock rather than widening one mutex to cover unrelated tasks.
type Sequencer struct {
	mu sync.Mutex

	timing     Timing
	running    bool
	phase      Phase
	phaseStart time.Time
	aStopped   bool
}

// NewSequencer returns an idle sequencer with the given timing.
func NewSequencer(timing Timing) *Sequencer {
	return &Sequencer{timing: timing, phase: PhaseIdle}
}

// SetTiming replaces the phase durations. Tick reads them on every call,
// so a sequence already in progress uses the new durations from its next
// Tick on, measured from the start of its current phase.
func (s *Sequencer) SetTiming(timing Timing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timing = timing
}

// Start begins the sequence at now, entering Countdown and returning its
// entry intent (mode=Autonomous, enabled=false).
func (s *Sequencer) Start(now time.Time) Intent {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	s.aStopped = false
	s.phase = PhaseCountdown
	s.phaseStart = now
	return entryIntent(PhaseCountdown)
}

// Stop returns to Idle from any phase and forces enabled=false.
func (s *Sequencer) Stop() Intent {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.phase = PhaseIdle
	s.aStopped = false
	return Intent{SetEnabled: true, Enabled: false}
}

// AStop forces enabled=false for the remainder of the current Autonomous
// phase (§4.4). Outside Autonomous it has no effect. A-Stop does not latch
// into Delay or Teleop; the next phase transition re-enables normally.
func (s *Sequencer) AStop() Intent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseAutonomous {
		return Intent{}
	}
	s.aStopped = true
	return Intent{SetEnabled: true, Enabled: false}
}

// Running reports whether a sequence is in progress (not Idle and not
// Done).
func (s *Sequencer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Tick advances the sequencer to now, crossing as many phase boundaries as
// elapsed time demands (so a coarse or delayed caller still lands on the
// correct phase rather than getting stuck), and reports the resulting
// state. phaseStart advances by each phase's exact duration rather than
// snapping to now, bounding drift the same way the connection package's
// send loop schedules its next tick off the previous deadline instead of
// off time.Now().
func (s *Sequencer) Tick(now time.Time) Tick {
	s.mu.Lock()
	defer s.mu.Unlock()

	var last Intent
	transitioned := false

	for s.running && s.phase != PhaseDone {
		dur := s.timing.duration(s.phase)
		elapsed := now.Sub(s.phaseStart)
		if elapsed < dur {
			break
		}
		s.phaseStart = s.phaseStart.Add(dur)
		s.phase = nextPhase(s.phase)
		s.aStopped = false
		last = entryIntent(s.phase)
		transitioned = true
		if s.phase == PhaseDone {
			s.running = false
		}
	}

	var elapsed, remaining time.Duration
	if s.phase != PhaseIdle && s.phase != PhaseDone {
		elapsed = now.Sub(s.phaseStart)
		remaining = s.timing.duration(s.phase) - elapsed
		if remaining < 0 {
			remaining = 0
		}
	}

	tick := Tick{Phase: s.phase, Elapsed: elapsed, Remaining: remaining}
	if transitioned {
		tick.Intent = last
	}
	return tick
}

func nextPhase(p Phase) Phase {
	switch p {
	case PhaseCountdown:
		return PhaseAutonomous
	case PhaseAutonomous:
		return PhaseDelay
	case PhaseDelay:
		return PhaseTeleop
	case PhaseTeleop:
		return PhaseDone
	default:
		return PhaseDone
	}
}

func entryIntent(p Phase) Intent {
	switch p {
	case PhaseCountdown:
		return Intent{SetMode: true, Mode: codec.ModeAutonomous, SetEnabled: true, Enabled: false}
	case PhaseAutonomous:
		return Intent{SetEnabled: true, Enabled: true}
	case PhaseDelay:
		return Intent{SetEnabled: true, Enabled: false}
	case PhaseTeleop:
		return Intent{SetMode: true, Mode: codec.ModeTeleop, SetEnabled: true, Enabled: true}
	case PhaseDone:
		return Intent{SetEnabled: true, Enabled: false}
	default:
		return Intent{}
	}
}
