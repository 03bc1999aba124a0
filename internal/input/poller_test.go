package input

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeEnabled struct{ enabled bool }

func (f *fakeEnabled) Enabled() bool { return f.enabled }

func TestPollerAttachesNewDevice(t *testing.T) {
	src := &FakeSource{Devices: []RawDeviceState{{UUID: "xyz", Name: "pad"}}}
	tbl := NewTable()
	p := NewPoller(src, tbl, &fakeEnabled{})

	p.pollOnce(nil)

	snap := tbl.Snapshot()
	assert.Equal(t, "xyz", snap[0].UUID)
	assert.True(t, snap[0].Connected)
}

func TestPollerDetachesMissingDevice(t *testing.T) {
	src := &FakeSource{Devices: []RawDeviceState{{UUID: "xyz", Name: "pad"}}}
	tbl := NewTable()
	p := NewPoller(src, tbl, &fakeEnabled{})
	p.pollOnce(nil)

	src.Devices = nil
	p.pollOnce(nil)

	snap := tbl.Snapshot()
	assert.Equal(t, "", snap[0].UUID)
}

// TestPollerForcesDisableOnUnsafeDisconnect reproduces the disconnect-safety
// scenario from §4.3/§8: a connected slot supplying non-zero input vanishes
// while the robot is enabled, which must surface IntentForceDisable.
func TestPollerForcesDisableOnUnsafeDisconnect(t *testing.T) {
	src := &FakeSource{Devices: []RawDeviceState{
		{UUID: "xyz", Name: "pad", Buttons: []RawButtonReading{{Named: ButtonSouth, IsNamed: true, Pressed: true}}},
	}}
	tbl := NewTable()
	p := NewPoller(src, tbl, &fakeEnabled{enabled: true})
	p.pollOnce(nil)

	src.Devices = nil
	intents := make(chan Intent, 1)
	p.pollOnce(intents)

	select {
	case got := <-intents:
		assert.Equal(t, IntentForceDisable, got)
	default:
		t.Fatal("expected IntentForceDisable, got nothing")
	}
}

func TestPollerNoIntentWhenDisconnectingIdlePad(t *testing.T) {
	src := &FakeSource{Devices: []RawDeviceState{{UUID: "xyz", Name: "pad"}}}
	tbl := NewTable()
	p := NewPoller(src, tbl, &fakeEnabled{enabled: true})
	p.pollOnce(nil)

	src.Devices = nil
	intents := make(chan Intent, 1)
	p.pollOnce(intents)

	select {
	case got := <-intents:
		t.Fatalf("expected no intent, got %v", got)
	default:
	}
}

func TestPollerNoIntentWhenRobotNotEnabled(t *testing.T) {
	src := &FakeSource{Devices: []RawDeviceState{
		{UUID: "xyz", Name: "pad", Buttons: []RawButtonReading{{Named: ButtonSouth, IsNamed: true, Pressed: true}}},
	}}
	tbl := NewTable()
	p := NewPoller(src, tbl, &fakeEnabled{enabled: false})
	p.pollOnce(nil)

	src.Devices = nil
	intents := make(chan Intent, 1)
	p.pollOnce(intents)

	select {
	case got := <-intents:
		t.Fatalf("expected no intent, got %v", got)
	default:
	}
}

func TestPollerRunStopsOnContextCancel(t *testing.T) {
	src := &FakeSource{}
	tbl := NewTable()
	p := NewPoller(src, tbl, &fakeEnabled{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx, nil)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancel")
	}
}
