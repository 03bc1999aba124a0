package connection

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/pion/mdns/v2"
	"golang.org/x/net/ipv4"
)

// mdnsLookupTimeout bounds a single query; a roboRIO-style controller
// typically answers a local-segment mDNS query in well under this.
const mdnsLookupTimeout = 750 * time.Millisecond

// PionMDNSResolver is the concrete MDNSResolver backend, built on
// github.com/pion/mdns/v2 for LAN peer discovery: finding a roboRIO-style
// host by name rather than by a known IP.
type PionMDNSResolver struct{}

// Resolve performs a one-shot mDNS query for name, opening and closing a
// fresh multicast socket per call since lookups here are infrequent
// (only on (re)connect), unlike a long-lived mDNS responder.
func (PionMDNSResolver) Resolve(ctx context.Context, name string) (string, error) {
	addr4, err := net.ResolveUDPAddr("udp4", mdns.DefaultAddressIPv4)
	if err != nil {
		return "", fmt.Errorf("mdns: resolve multicast addr: %w", err)
	}
	conn, err := net.ListenUDP("udp4", addr4)
	if err != nil {
		return "", fmt.Errorf("mdns: listen: %w", err)
	}
	defer conn.Close()

	server, err := mdns.Server(ipv4.NewPacketConn(conn), nil, &mdns.Config{})
	if err != nil {
		return "", fmt.Errorf("mdns: start server: %w", err)
	}
	defer server.Close()

	queryCtx, cancel := context.WithTimeout(ctx, mdnsLookupTimeout)
	defer cancel()

	_, src, err := server.QueryAddr(queryCtx, name)
	if err != nil {
		return "", fmt.Errorf("mdns: query %s: %w", name, err)
	}
	host, _, err := net.SplitHostPort(src.String())
	if err != nil {
		return src.String(), nil
	}
	return host, nil
}
