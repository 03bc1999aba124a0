package connection

import (
	"context"
	"fmt"
)

// USBAddress is the fixed peer address used when USB mode is enabled
// (§4.2 step 1).
const USBAddress = "172.22.11.2"

// MDNSResolver looks up a single mDNS name and returns an IPv4 address
// string, or an error if nothing answered. The concrete implementation
// wraps github.com/pion/mdns/v2; kept behind this narrow interface so the
// resolution-order logic below is testable without a real multicast
// socket.
type MDNSResolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// MDNSName is the hostname a roboRIO-style controller advertises for a
// given team number.
func MDNSName(team int) string {
	return fmt.Sprintf("roboRIO-%d-FRC.local", team)
}

// TeamAddress computes the fallback IP address for team from its number
// (§4.2 step 3, §8's worked examples: 1234 -> 10.12.34.2, 9 -> 10.0.9.2).
func TeamAddress(team int) string {
	return fmt.Sprintf("10.%d.%d.2", team/100, team%100)
}

// ResolveAddress applies the fixed fallback order of §4.2: USB address if
// useUSB is set, else an mDNS lookup, else the team-number-derived address.
// It always returns a usable address, since the computed team address can
// never itself fail to format. "Resolution failure" in §4.2's retry rule
// refers to the connection attempt as a whole (no inbound datagram ever
// arriving at the resolved address). The caller ends such a session after
// the liveness window and resolves again at once; its backoff delay applies
// only when opening the sockets or resolving the peer's UDP address fails.
// This function never returns an error.
func ResolveAddress(ctx context.Context, useUSB bool, team int, resolver MDNSResolver) string {
	if useUSB {
		return USBAddress
	}
	if resolver != nil {
		if addr, err := resolver.Resolve(ctx, MDNSName(team)); err == nil && addr != "" {
			return addr
		}
	}
	return TeamAddress(team)
}
