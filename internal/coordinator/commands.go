package coordinator

import (
	"station/internal/codec"
	"station/internal/connection"
	"station/internal/hotkey"
	"station/internal/practice"
)

// Enable turns the robot on, refusing if EStop is latched or the robot
// isn't running code (§4.6's canEnable rule: enabling without a confirmed
// connection is meaningless and dangerous). Reports whether the enable
// took effect.
func (c *Coordinator) Enable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.canEnableLocked() {
		return false
	}
	c.control.Enabled = true
	c.publishLocked()
	return true
}

// Disable turns the robot off. It also stops any in-progress practice
// sequence: practice intents only apply while running, so stopping
// practice here is how the merge-order rule "operator Disable beats
// Practice Enable" (§4.6) is satisfied without separate per-tick
// priority bookkeeping; there is simply nothing left to re-enable the
// robot until the operator starts practice again.
func (c *Coordinator) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.control.Enabled = false
	if c.Practice.Running() {
		c.Practice.Stop()
		c.practicePhase = practice.PhaseIdle
		c.practiceElapsed = 0
		c.practiceRemaining = 0
	}
	c.publishLocked()
}

// EStop latches the emergency stop: Enabled is forced false and Enable
// refuses to take effect again until ResetEStop (§3's codec-level
// invariant note, enforced here rather than in the codec).
func (c *Coordinator) EStop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.estopped = true
	c.control.EStop = true
	c.control.Enabled = false
	c.publishLocked()
}

// ResetEStop clears the latch. It does not re-enable the robot; the
// operator (or practice sequencer) must issue a fresh Enable.
func (c *Coordinator) ResetEStop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.estopped = false
	c.control.EStop = false
	c.publishLocked()
}

// SetMode changes the robot operating mode.
func (c *Coordinator) SetMode(mode codec.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.control.Mode = mode
	c.publishLocked()
}

// SetTeam updates the team number used for address resolution (§4.2).
func (c *Coordinator) SetTeam(team int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.team = team
	c.publishLocked()
}

// Team returns the current team number.
func (c *Coordinator) Team() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.team
}

// SetAlliance updates the alliance color/station.
func (c *Coordinator) SetAlliance(a codec.Alliance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alliance = a
	c.publishLocked()
}

// SetGameData sets the game-data string (FMS/operator, §4.1/§6),
// truncating to the 3-byte field the wire format allows, and forwards it
// to the stream channel if one is wired so the robot's running code
// actually receives it.
func (c *Coordinator) SetGameData(data string) {
	if len(data) > 3 {
		data = data[:3]
	}
	c.mu.Lock()
	c.gameData = data
	stream := c.Stream
	c.publishLocked()
	c.mu.Unlock()

	if stream != nil {
		stream.SendStreamFrame(codec.StreamFrame{
			Tag:     codec.StreamTagGameData,
			Payload: codec.EncodeGameDataSection(data),
		})
	}
}

// SetUSBMode switches between tethered-USB and network address
// resolution (§4.2).
func (c *Coordinator) SetUSBMode(useUSB bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.useUSB = useUSB
	c.publishLocked()
}

// UseUSB reports the current address-resolution mode.
func (c *Coordinator) UseUSB() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.useUSB
}

// RebootController latches a one-shot controller reboot request (§4.6).
func (c *Coordinator) RebootController() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.request.RebootController = true
	c.publishLocked()
}

// RestartUserCode latches a one-shot user-code restart request (§4.6).
func (c *Coordinator) RestartUserCode() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.request.RestartUserCode = true
	c.publishLocked()
}

// ReorderJoysticks applies a manual joystick reordering (§4.3).
func (c *Coordinator) ReorderJoysticks(order []string) {
	c.Slots.Reorder(order)
	c.mu.Lock()
	c.publishLocked()
	c.mu.Unlock()
}

// LockJoystick pins uuid to slot (§4.3).
func (c *Coordinator) LockJoystick(uuid string, slot int) {
	c.Slots.Lock(uuid, slot)
	c.mu.Lock()
	c.publishLocked()
	c.mu.Unlock()
}

// UnlockJoystick releases any lock held by uuid.
func (c *Coordinator) UnlockJoystick(uuid string) {
	c.Slots.Unlock(uuid)
	c.mu.Lock()
	c.publishLocked()
	c.mu.Unlock()
}

// RescanJoysticks triggers a fresh device enumeration pass, if a rescan
// hook is wired.
func (c *Coordinator) RescanJoysticks() {
	if c.Rescan != nil {
		c.Rescan()
	}
}

// StartPractice begins a practice sequence from Idle (§4.4). While
// EStopped the phase transitions still run, but applyPracticeIntent
// suppresses any enable they would otherwise produce.
func (c *Coordinator) StartPractice() {
	intent := c.Practice.Start(c.now())
	c.mu.Lock()
	c.practicePhase = practice.PhaseCountdown
	c.applyPracticeIntentLocked(intent)
	c.publishLocked()
	c.mu.Unlock()
}

// StopPractice cancels any in-progress practice sequence and forces
// disabled (§4.4).
func (c *Coordinator) StopPractice() {
	intent := c.Practice.Stop()
	c.mu.Lock()
	c.practicePhase = practice.PhaseIdle
	c.practiceElapsed = 0
	c.practiceRemaining = 0
	c.applyPracticeIntentLocked(intent)
	c.publishLocked()
	c.mu.Unlock()
}

// SetPracticeTiming replaces the phase durations (§4.4). A sequence
// already in progress uses the new durations from its next tick on.
func (c *Coordinator) SetPracticeTiming(timing practice.Timing) {
	c.Practice.SetTiming(timing)
}

// AStop forces disabled for the remainder of the current Autonomous
// phase without canceling the sequence (§4.4).
func (c *Coordinator) AStop() {
	intent := c.Practice.AStop()
	c.mu.Lock()
	c.applyPracticeIntentLocked(intent)
	c.publishLocked()
	c.mu.Unlock()
}

// canEnableLocked implements §4.6's enable gate: the robot must not be
// EStopped and must be confirmed running code. Callers must hold c.mu.
func (c *Coordinator) canEnableLocked() bool {
	return !c.estopped && c.connState == connection.CodeRunning
}

// applyPracticeIntentLocked folds a practice.Intent into control state.
// Callers must hold c.mu. An EStop in effect suppresses a practice-driven
// enable (§4.6's "EStop beats all" rule) without needing the sequencer
// itself to know about EStop.
func (c *Coordinator) applyPracticeIntentLocked(intent practice.Intent) {
	if intent.SetMode {
		c.control.Mode = intent.Mode
	}
	if intent.SetEnabled {
		if intent.Enabled && c.estopped {
			return
		}
		c.control.Enabled = intent.Enabled
	}
}

// handleHotkeyAction dispatches one dequeued hotkey action to the
// corresponding coordinator effect (§4.5).
func (c *Coordinator) handleHotkeyAction(a hotkey.Action) {
	switch a {
	case hotkey.ActionEStop:
		c.EStop()
	case hotkey.ActionDisable:
		c.Disable()
	case hotkey.ActionEnable:
		c.Enable()
	case hotkey.ActionAStop:
		c.AStop()
	case hotkey.ActionRescan:
		c.RescanJoysticks()
	}
}
