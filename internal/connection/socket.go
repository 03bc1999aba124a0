package connection

import (
	"context"
	"net"
	"strconv"
	"time"
)

// Well-known control-system ports this protocol uses: the DS sends control
// datagrams to OutboundPort on the resolved controller address and
// receives telemetry datagrams on InboundPort; the stream channel dials
// StreamPort. Not specified on the wire (the codec only describes payload
// layout), so these follow the real-world FRC control system's own port
// assignments, the closest available convention for this protocol family.
const (
	OutboundPort = 1110
	InboundPort  = 1150
	StreamPort   = 1740
)

// readTimeout is the receive-loop's per-read deadline (§4.2).
const readTimeout = 100 * time.Millisecond

// DatagramDialer opens a local UDP socket. The engine uses two: one from
// DialOutbound for the send loop and one from DialInbound for the receive
// loop. Abstracted so tests can substitute an in-memory net.PacketConn instead of
// a real kernel socket.
type DatagramDialer func() (net.PacketConn, error)

// DialUDP opens an ephemeral local UDP4 socket for datagram exchange.
func DialUDP() (net.PacketConn, error) {
	return net.ListenUDP("udp4", &net.UDPAddr{})
}

// StreamDialer opens the TCP stream channel to addr. Abstracted the same
// way as DatagramDialer.
type StreamDialer func(ctx context.Context, addr string) (net.Conn, error)

// DialStream opens a TCP connection to addr:StreamPort.
func DialStream(ctx context.Context, addr string) (net.Conn, error) {
	d := net.Dialer{}
	return d.DialContext(ctx, "tcp4", net.JoinHostPort(addr, strconv.Itoa(StreamPort)))
}
