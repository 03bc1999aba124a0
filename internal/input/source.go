package input

// Source is a gamepad backend that can be polled for the current set of
// attached devices and their raw readings. Separating this from Table lets
// the slot-assignment logic in slot.go and mapping.go be tested without
// any real hardware.
type Source interface {
	// Poll returns one RawDeviceState per currently attached device.
	// A device missing from one call that was present in the previous call
	// is considered detached.
	Poll() ([]RawDeviceState, error)

	// Close releases any backend resources (USB contexts, file handles).
	Close() error
}

// FakeSource is a Source driven entirely by test-supplied data, used by
// poller_test.go.
type FakeSource struct {
	Devices []RawDeviceState
	Err     error
}

func (f *FakeSource) Poll() ([]RawDeviceState, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Devices, nil
}

func (f *FakeSource) Close() error { return nil }
