package connection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTripMeterRecordsFirstRTTExactly(t *testing.T) {
	m := NewTripMeter()
	t0 := time.Now()
	m.RecordSend(1, t0)
	got := m.RecordReceive(1, t0.Add(40*time.Millisecond))
	assert.Equal(t, 40*time.Millisecond, got)
}

func TestTripMeterEWMAConverges(t *testing.T) {
	m := NewTripMeter()
	t0 := time.Now()
	m.RecordSend(1, t0)
	m.RecordReceive(1, t0.Add(100*time.Millisecond))

	for i := uint16(2); i < 50; i++ {
		sendAt := t0.Add(time.Duration(i) * time.Second)
		m.RecordSend(i, sendAt)
		m.RecordReceive(i, sendAt.Add(10*time.Millisecond))
	}

	// After many samples at 10ms, the EWMA should have settled close to
	// 10ms even though it started at 100ms.
	got := m.TripTime()
	assert.Less(t, got, 20*time.Millisecond)
}

func TestTripMeterCountsLostPacketsFromSequenceGaps(t *testing.T) {
	m := NewTripMeter()
	now := time.Now()
	m.RecordReceive(1, now)
	m.RecordReceive(2, now)
	m.RecordReceive(5, now) // skipped 3, 4
	assert.Equal(t, uint32(2), m.LostPackets())
}

func TestTripMeterNoLossOnConsecutiveSequences(t *testing.T) {
	m := NewTripMeter()
	now := time.Now()
	for i := uint16(0); i < 10; i++ {
		m.RecordReceive(i, now)
	}
	assert.Equal(t, uint32(0), m.LostPackets())
}

func TestTripMeterHandlesSequenceWraparound(t *testing.T) {
	m := NewTripMeter()
	now := time.Now()
	m.RecordReceive(65534, now)
	m.RecordReceive(65535, now)
	m.RecordReceive(0, now)
	assert.Equal(t, uint32(0), m.LostPackets())
}

func TestTripMeterIgnoresReceiveWithNoMatchingSend(t *testing.T) {
	m := NewTripMeter()
	got := m.RecordReceive(7, time.Now())
	assert.Equal(t, time.Duration(0), got)
}

func TestTripMeterTrimsPendingSendsBeyondHorizon(t *testing.T) {
	m := NewTripMeter()
	base := time.Now()
	for i := 0; i < pendingHorizon+10; i++ {
		m.RecordSend(uint16(i), base)
	}
	m.mu.Lock()
	size := len(m.sent)
	m.mu.Unlock()
	assert.LessOrEqual(t, size, pendingHorizon)
}
