package connection

import (
	"sync"
	"time"
)

// tripAlpha is the EWMA smoothing factor for trip-time measurement (§4.2).
const tripAlpha = 0.2

// pendingHorizon bounds how many in-flight sequence numbers TripMeter
// remembers send timestamps for, so a peer that stops replying entirely
// doesn't grow this map forever.
const pendingHorizon = 256

// TripMeter records send timestamps keyed by sequence number and, on each
// matching inbound packet, updates an exponentially-weighted average trip
// time and a running lost-packet count derived from sequence gaps (§4.2).
// One instance is owned per connection attempt, guarded by its own mutex
// since it is written from both the send loop and the receive loop.
type TripMeter struct {
	mu sync.Mutex

	sent map[uint16]time.Time
	ewma time.Duration
	has  bool

	lastSeq    uint16
	haveLast   bool
	lost       uint32
}

// NewTripMeter returns an empty meter.
func NewTripMeter() *TripMeter {
	return &TripMeter{sent: make(map[uint16]time.Time)}
}

// RecordSend notes that sequence was transmitted at t, for later trip-time
// computation when (if) its reply arrives.
func (m *TripMeter) RecordSend(sequence uint16, t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[sequence] = t
	if len(m.sent) > pendingHorizon {
		// Drop entries in map-iteration order (not necessarily the
		// oldest) down to half the horizon rather than scanning for a
		// true minimum; this only matters once the peer has stopped
		// answering at all.
		for k := range m.sent {
			delete(m.sent, k)
			if len(m.sent) <= pendingHorizon/2 {
				break
			}
		}
	}
}

// RecordReceive matches an inbound sequence number against a prior
// RecordSend, folding the resulting round trip into the EWMA, and updates
// the lost-packet counter from any gap since the last received sequence.
// It returns the current EWMA trip time.
func (m *TripMeter) RecordReceive(sequence uint16, now time.Time) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sent, ok := m.sent[sequence]; ok {
		delete(m.sent, sequence)
		rtt := now.Sub(sent)
		if !m.has {
			m.ewma = rtt
			m.has = true
		} else {
			m.ewma = time.Duration(float64(m.ewma)*(1-tripAlpha) + float64(rtt)*tripAlpha)
		}
	}

	if m.haveLast {
		gap := seqGap(m.lastSeq, sequence)
		if gap > 1 {
			m.lost += uint32(gap - 1)
		}
	}
	m.lastSeq = sequence
	m.haveLast = true

	return m.ewma
}

// TripTime returns the current EWMA trip time.
func (m *TripMeter) TripTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ewma
}

// LostPackets returns the running count of sequence-gap-inferred lost
// packets.
func (m *TripMeter) LostPackets() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lost
}

// seqGap returns how many sequence numbers separate prev and cur, modulo
// 2^16, treating cur as always "after" prev (wraps are expected at 50 Hz
// roughly every 22 minutes).
func seqGap(prev, cur uint16) uint16 {
	return cur - prev
}
