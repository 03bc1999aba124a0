package connection

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"station/internal/codec"
)

// sendPeriod is the send loop's fixed period (§4.2, 50 Hz).
const sendPeriod = 20 * time.Millisecond

// livenessTimeout is how long with no inbound datagram before the
// connection is considered lost (§4.2).
const livenessTimeout = 1 * time.Second

// maxDatagramSize comfortably bounds one control or telemetry datagram;
// real payloads (a handful of joystick/telemetry tags) are well under 1 KB.
const maxDatagramSize = 2048

// Engine owns the two datagram sockets and the stream socket (§3's
// lifecycle note) and runs the address-resolution loop, send loop, receive
// loop, and stream-channel task described in §4.2. Dial functions and the
// clock are overridable so tests can run the whole state machine against
// fake sockets and a seeded clock instead of a real network and wall time.
type Engine struct {
	Sink     Sink
	Source   ControlSource
	Resolver MDNSResolver
	Team     func() int
	UseUSB   func() bool
	Timezone func() string
	Now      func() time.Time

	DialOutbound DatagramDialer
	DialInbound  DatagramDialer
	DialStream   StreamDialer

	sendDateNext atomic.Bool
	streamOut    chan codec.StreamFrame
}

// streamOutCapacity bounds the outbound stream frame queue (game data,
// match info, joystick descriptor: §4.1, §6). Small: these are
// operator-triggered, not periodic, traffic.
const streamOutCapacity = 16

// SendStreamFrame enqueues an outbound stream frame for the next connected
// stream session to write, implementing coordinator.StreamSender. Best
// effort: if the queue is full the frame is dropped rather than blocking
// the caller, since a replacement value (e.g. a later set_game_data call)
// supersedes it anyway.
func (e *Engine) SendStreamFrame(f codec.StreamFrame) {
	select {
	case e.streamOut <- f:
	default:
	}
}

// NewEngine returns an Engine wired to real UDP/TCP sockets and the system
// clock, ready to have its Dial*/Now fields overridden by tests.
func NewEngine(sink Sink, source ControlSource, team func() int, useUSB func() bool) *Engine {
	return &Engine{
		Sink:      sink,
		Source:    source,
		Resolver:  PionMDNSResolver{},
		Team:      team,
		UseUSB:    useUSB,
		Timezone:  func() string { return time.Local.String() },
		Now:       time.Now,
		streamOut: make(chan codec.StreamFrame, streamOutCapacity),
		DialOutbound: func() (net.PacketConn, error) {
			return net.ListenUDP("udp4", &net.UDPAddr{})
		},
		DialInbound: func() (net.PacketConn, error) {
			return net.ListenUDP("udp4", &net.UDPAddr{Port: InboundPort})
		},
		DialStream: DialStream,
	}
}

// Run drives address resolution, the datagram sockets, and the stream
// channel until ctx is canceled. It returns once every task has wound
// down, after the send loop has emitted one final disabled datagram
// (§5's cancellation contract).
func (e *Engine) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); e.runDatagram(ctx) }()
	go func() { defer wg.Done(); e.runStream(ctx) }()
	wg.Wait()
}

// RequestDateTimeNextSend flags that the next outbound datagram should
// carry the date/time tag (§4.2's request-date handshake). Safe to call
// from the receive loop while the send loop is running concurrently.
func (e *Engine) RequestDateTimeNextSend() {
	e.sendDateNext.Store(true)
}

func (e *Engine) runDatagram(ctx context.Context) {
	backoff := NewBackoff()
	for ctx.Err() == nil {
		e.Sink.SetState(Resolving)
		addr := ResolveAddress(ctx, e.UseUSB(), e.Team(), e.Resolver)

		outConn, err := e.DialOutbound()
		if err != nil {
			e.Sink.SetState(Disconnected)
			if !sleepCtx(ctx, backoff.Duration()) {
				return
			}
			continue
		}
		inConn, err := e.DialInbound()
		if err != nil {
			outConn.Close()
			e.Sink.SetState(Disconnected)
			if !sleepCtx(ctx, backoff.Duration()) {
				return
			}
			continue
		}

		peerAddr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(addr, strconv.Itoa(OutboundPort)))
		if err != nil {
			outConn.Close()
			inConn.Close()
			e.Sink.SetState(Disconnected)
			if !sleepCtx(ctx, backoff.Duration()) {
				return
			}
			continue
		}

		backoff.Reset()
		e.runDatagramSession(ctx, outConn, inConn, peerAddr)
		outConn.Close()
		inConn.Close()
	}
}

// runDatagramSession runs the send and receive loops on one pair of
// sockets until the receive loop hits a hard I/O error or ctx is done.
func (e *Engine) runDatagramSession(ctx context.Context, outConn, inConn net.PacketConn, peerAddr net.Addr) {
	trip := NewTripMeter()
	sessionDone := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		e.sendLoop(ctx, outConn, peerAddr, trip, sessionDone)
	}()
	go func() {
		defer wg.Done()
		e.recvLoop(ctx, inConn, trip, sessionDone)
	}()
	wg.Wait()
}

func (e *Engine) sendLoop(ctx context.Context, conn net.PacketConn, peerAddr net.Addr, trip *TripMeter, sessionDone <-chan struct{}) {
	var seq uint16
	deadline := e.Now()

	for {
		select {
		case <-ctx.Done():
			e.sendOne(conn, peerAddr, &seq, trip, true)
			return
		case <-sessionDone:
			return
		default:
		}

		deadline = deadline.Add(sendPeriod)
		if !sleepUntil(ctx, sessionDone, e.Now, deadline) {
			if ctx.Err() != nil {
				e.sendOne(conn, peerAddr, &seq, trip, true)
			}
			return
		}
		e.sendOne(conn, peerAddr, &seq, trip, false)
	}
}

func (e *Engine) sendOne(conn net.PacketConn, peerAddr net.Addr, seq *uint16, trip *TripMeter, final bool) {
	snap := e.Source.Snapshot()
	if final {
		snap.Control.Enabled = false
	}

	datagram := codec.OutboundDatagram{
		Sequence:  *seq,
		Control:   snap.Control,
		Request:   snap.Request,
		Alliance:  snap.Alliance,
		Joysticks: snap.Joysticks,
	}
	if e.sendDateNext.CompareAndSwap(true, false) {
		datagram.SendDateTime = true
		datagram.DateTimeUTC = codec.EncodeDateTimeSection(e.Now().UTC())
		if e.Timezone != nil {
			datagram.Timezone = e.Timezone()
		}
	}

	buf := codec.Encode(datagram)
	_, _ = conn.WriteTo(buf, peerAddr)
	trip.RecordSend(*seq, e.Now())
	e.Source.ClearRequestFlags()
	*seq++
}

func (e *Engine) recvLoop(ctx context.Context, conn net.PacketConn, trip *TripMeter, sessionDone chan<- struct{}) {
	buf := make([]byte, maxDatagramSize)
	sessionStart := e.Now()
	lastInboundAt := sessionStart
	connected := false
	everConnected := false

	for {
		select {
		case <-ctx.Done():
			close(sessionDone)
			return
		default:
		}

		_ = conn.SetReadDeadline(e.Now().Add(readTimeout))
		n, _, err := conn.ReadFrom(buf)
		now := e.Now()

		if err != nil {
			if isTimeout(err) {
				if connected && now.Sub(lastInboundAt) >= livenessTimeout {
					// A session that has connected before and then goes
					// quiet is only flagged Disconnected in place; the
					// send loop keeps transmitting to the last known
					// address and this same session stays open waiting
					// for inbound traffic to resume.
					connected = false
					e.Sink.SetState(Disconnected)
				}
				if !everConnected && now.Sub(sessionStart) >= livenessTimeout {
					// Never heard from a peer at this address at all: treat
					// like a resolution failure and let the caller resolve
					// a fresh address, rather than parking here forever
					// (§4.2's retry-from-step-1 rule). The caller resolves
					// again at once; its backoff delay is not applied here.
					e.Sink.SetState(Disconnected)
					close(sessionDone)
					return
				}
				continue
			}
			close(sessionDone)
			return
		}

		lastInboundAt = now
		inbound, decodeErr := codec.DecodeInbound(buf[:n])
		if decodeErr != nil {
			continue // malformed datagram: dropped without logging or a state change (it still refreshed lastInboundAt)
		}

		connected = true
		everConnected = true
		if inbound.Status.CodeInitializing {
			e.Sink.SetState(Connected)
		} else {
			e.Sink.SetState(CodeRunning)
		}

		tripTime := trip.RecordReceive(inbound.Sequence, now)
		e.Sink.SetTripTime(tripTime)
		e.Sink.SetLostPackets(trip.LostPackets())

		update := InboundUpdate{
			Status:      inbound.Status,
			Voltage:     inbound.Voltage(),
			Telemetry:   inbound.Telemetry,
			RequestDate: inbound.RequestDate,
		}
		e.Sink.ApplyInbound(update)
		if inbound.RequestDate {
			e.RequestDateTimeNextSend()
		}
	}
}

func (e *Engine) runStream(ctx context.Context) {
	backoff := NewBackoff()
	for ctx.Err() == nil {
		addr := ResolveAddress(ctx, e.UseUSB(), e.Team(), e.Resolver)
		conn, err := e.DialStream(ctx, addr)
		if err != nil {
			if !sleepCtx(ctx, backoff.Duration()) {
				return
			}
			continue
		}
		backoff.Reset()
		e.runStreamSession(ctx, conn)
		conn.Close()
	}
}

func (e *Engine) runStreamSession(ctx context.Context, conn net.Conn) {
	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		conn.Close()
		close(done)
	}()
	go e.runStreamWriter(done, conn)

	var reader codec.FrameReader
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			<-done
			return
		}
		reader.Feed(buf[:n])
		for {
			frame, ok := reader.Next()
			if !ok {
				break
			}
			msg, decodeErr := codec.DecodeFrame(frame)
			if decodeErr != nil {
				continue
			}
			e.Sink.PushMessage(msg)
		}
	}
}

// runStreamWriter drains queued outbound stream frames onto conn for as
// long as the session lives. A write error ends the goroutine; the read
// side of the same session will observe the broken connection and tear
// the session down.
func (e *Engine) runStreamWriter(done <-chan struct{}, conn net.Conn) {
	for {
		select {
		case <-done:
			return
		case frame := <-e.streamOut:
			if _, err := conn.Write(codec.EncodeFrame(frame)); err != nil {
				return
			}
		}
	}
}

// sleepCtx sleeps for d or until ctx is done, whichever comes first. It
// reports whether the sleep completed normally (false means ctx ended it).
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// sleepUntil blocks until deadline, ctx is done, or sessionDone closes,
// reporting whether it reached the deadline normally.
func sleepUntil(ctx context.Context, sessionDone <-chan struct{}, now func() time.Time, deadline time.Time) bool {
	d := deadline.Sub(now())
	if d < 0 {
		d = 0
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	case <-sessionDone:
		return false
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}
