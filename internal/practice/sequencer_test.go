package practice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"station/internal/codec"
)

var base = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestStartEntersCountdownWithAutonomousModeDisabled(t *testing.T) {
	s := NewSequencer(DefaultTiming())
	intent := s.Start(base)
	assert.Equal(t, Intent{SetMode: true, Mode: codec.ModeAutonomous, SetEnabled: true, Enabled: false}, intent)
	assert.Equal(t, PhaseCountdown, s.Tick(base).Phase)
}

// TestDefaultSequenceMatchesWorkedExample reproduces §8's worked example:
// starting Practice with default timing at t=0 produces phases
// {Countdown: [0,3), Autonomous: [3,18), Delay: [18,19), Teleop: [19,154),
// Done: [154,inf)}; the enabled intent trace is (false, true, false, true, false).
func TestDefaultSequenceMatchesWorkedExample(t *testing.T) {
	s := NewSequencer(DefaultTiming())
	s.Start(base)

	cases := []struct {
		offset    time.Duration
		wantPhase Phase
	}{
		{0, PhaseCountdown},
		{2999 * time.Millisecond, PhaseCountdown},
		{3 * time.Second, PhaseAutonomous},
		{17999 * time.Millisecond, PhaseAutonomous},
		{18 * time.Second, PhaseDelay},
		{18999 * time.Millisecond, PhaseDelay},
		{19 * time.Second, PhaseTeleop},
		{153999 * time.Millisecond, PhaseTeleop},
		{154 * time.Second, PhaseDone},
		{200 * time.Second, PhaseDone},
	}
	for _, c := range cases {
		got := s.Tick(base.Add(c.offset))
		assert.Equal(t, c.wantPhase, got.Phase, "at offset %v", c.offset)
	}
}

func TestEnabledIntentTraceMatchesWorkedExample(t *testing.T) {
	s := NewSequencer(DefaultTiming())
	var trace []bool

	start := s.Start(base)
	trace = append(trace, start.Enabled)

	for _, offset := range []time.Duration{3 * time.Second, 18 * time.Second, 19 * time.Second, 154 * time.Second} {
		tick := s.Tick(base.Add(offset))
		if tick.Intent.SetEnabled {
			trace = append(trace, tick.Intent.Enabled)
		}
	}

	assert.Equal(t, []bool{false, true, false, true, false}, trace)
}

func TestRemainingCountsDownWithinPhase(t *testing.T) {
	s := NewSequencer(DefaultTiming())
	s.Start(base)
	tick := s.Tick(base.Add(1 * time.Second))
	assert.Equal(t, PhaseCountdown, tick.Phase)
	assert.Equal(t, 1*time.Second, tick.Elapsed)
	assert.Equal(t, 2*time.Second, tick.Remaining)
}

func TestAStopDuringAutonomousForcesDisableButPhaseClockContinues(t *testing.T) {
	s := NewSequencer(DefaultTiming())
	s.Start(base)
	s.Tick(base.Add(3 * time.Second)) // enters Autonomous

	intent := s.AStop()
	assert.Equal(t, Intent{SetEnabled: true, Enabled: false}, intent)

	// Still in Autonomous, clock unaffected.
	mid := s.Tick(base.Add(10 * time.Second))
	assert.Equal(t, PhaseAutonomous, mid.Phase)

	// A-Stop does not latch: Delay and Teleop proceed normally.
	delay := s.Tick(base.Add(18 * time.Second))
	assert.Equal(t, PhaseDelay, delay.Phase)
	assert.True(t, delay.Intent.SetEnabled)
	assert.False(t, delay.Intent.Enabled)

	teleop := s.Tick(base.Add(19 * time.Second))
	assert.Equal(t, PhaseTeleop, teleop.Phase)
	assert.True(t, teleop.Intent.Enabled)
}

func TestAStopOutsideAutonomousIsNoop(t *testing.T) {
	s := NewSequencer(DefaultTiming())
	s.Start(base)
	intent := s.AStop() // still in Countdown
	assert.Equal(t, Intent{}, intent)
}

func TestStopFromAnyPhaseReturnsToIdleDisabled(t *testing.T) {
	s := NewSequencer(DefaultTiming())
	s.Start(base)
	s.Tick(base.Add(10 * time.Second)) // somewhere in Autonomous
	intent := s.Stop()
	assert.Equal(t, Intent{SetEnabled: true, Enabled: false}, intent)
	assert.Equal(t, PhaseIdle, s.Tick(base.Add(11*time.Second)).Phase)
	assert.False(t, s.Running())
}

func TestCustomTimingAppliesOnNextStart(t *testing.T) {
	s := NewSequencer(DefaultTiming())
	s.SetTiming(Timing{Countdown: 1 * time.Second, Autonomous: 2 * time.Second, Delay: 1 * time.Second, Teleop: 3 * time.Second})
	s.Start(base)
	assert.Equal(t, PhaseCountdown, s.Tick(base).Phase)
	assert.Equal(t, PhaseAutonomous, s.Tick(base.Add(1*time.Second)).Phase)
	assert.Equal(t, PhaseDone, s.Tick(base.Add(7*time.Second)).Phase)
}
