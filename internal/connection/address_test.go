package connection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeResolver struct {
	addr string
	err  error
}

func (f fakeResolver) Resolve(ctx context.Context, name string) (string, error) {
	return f.addr, f.err
}

func TestTeamAddressWorkedExamples(t *testing.T) {
	assert.Equal(t, "10.12.34.2", TeamAddress(1234))
	assert.Equal(t, "10.0.9.2", TeamAddress(9))
}

func TestMDNSNameFormat(t *testing.T) {
	assert.Equal(t, "roboRIO-1234-FRC.local", MDNSName(1234))
}

func TestResolveAddressUSBModeShortCircuits(t *testing.T) {
	resolver := fakeResolver{addr: "10.1.2.2"}
	addr := ResolveAddress(context.Background(), true, 1234, resolver)
	assert.Equal(t, USBAddress, addr)
}

func TestResolveAddressPrefersMDNSWhenAvailable(t *testing.T) {
	resolver := fakeResolver{addr: "10.9.9.9"}
	addr := ResolveAddress(context.Background(), false, 1234, resolver)
	assert.Equal(t, "10.9.9.9", addr)
}

func TestResolveAddressFallsBackToTeamAddressOnMDNSFailure(t *testing.T) {
	resolver := fakeResolver{err: errors.New("no answer")}
	addr := ResolveAddress(context.Background(), false, 1234, resolver)
	assert.Equal(t, "10.12.34.2", addr)
}

func TestResolveAddressFallsBackWithNilResolver(t *testing.T) {
	addr := ResolveAddress(context.Background(), false, 9, nil)
	assert.Equal(t, "10.0.9.2", addr)
}

func TestResolveAddressTreatsEmptyAddressAsFailure(t *testing.T) {
	resolver := fakeResolver{addr: ""}
	addr := ResolveAddress(context.Background(), false, 1234, resolver)
	assert.Equal(t, "10.12.34.2", addr)
}
