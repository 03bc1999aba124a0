package input

import (
	"context"
	"fmt"
	"time"

	"github.com/google/gousb"
)

// hidReportLen is the size of the raw interrupt-IN report this backend
// expects from a gamepad: 6 axes (1 byte each, already in -128..127 host
// range) + 2 packed button bytes + 1 hat nibble pair.
const hidReportLen = 9

// readTimeout bounds each interrupt transfer so a single unresponsive pad
// never stalls the poll loop (§4.2's 5ms cadence).
const readTimeout = 4 * time.Millisecond

// usbGamepad tracks one open HID interrupt-IN endpoint alongside the handle
// chain that must be closed in reverse acquisition order.
type usbGamepad struct {
	uuid   string
	name   string
	device *gousb.Device
	config *gousb.Config
	intf   *gousb.Interface
	epIn   *gousb.InEndpoint
}

func (g *usbGamepad) Close() {
	if g.intf != nil {
		g.intf.Close()
	}
	if g.config != nil {
		g.config.Close()
	}
	if g.device != nil {
		g.device.Close()
	}
}

// USBSource enumerates HID-class gamepads over raw USB using gousb,
// bypassing the OS joystick subsystem entirely. Devices that disappear
// between polls are dropped from Poll's result, which is the only
// detach signal the slot table needs.
type USBSource struct {
	ctx     *gousb.Context
	vendor  gousb.ID
	product gousb.ID
	open    map[string]*usbGamepad
}

// NewUSBSource opens a USB context scoped to devices matching vendor/product
// (§4.3's hardware enumeration; vendor/product come from the persisted
// configuration document rather than a hardcoded ID, since this backend
// must support whatever gamepad the driver station operator plugs in).
func NewUSBSource(vendor, product gousb.ID) *USBSource {
	return &USBSource{
		ctx:     gousb.NewContext(),
		vendor:  vendor,
		product: product,
		open:    make(map[string]*usbGamepad),
	}
}

// Poll re-enumerates matching USB devices and returns one RawDeviceState per
// device currently reachable. Devices present last poll but now gone are
// closed and omitted; callers infer detachment from absence (see
// poller.go).
func (s *USBSource) Poll() ([]RawDeviceState, error) {
	devices, err := s.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == s.vendor && desc.Product == s.product
	})
	if err != nil {
		return nil, fmt.Errorf("usb source: enumerate: %w", err)
	}

	seen := make(map[string]bool, len(devices))
	var out []RawDeviceState
	for _, dev := range devices {
		uuid := usbDeviceUUID(dev)
		seen[uuid] = true

		g, ok := s.open[uuid]
		if !ok {
			opened, err := openGamepad(uuid, dev)
			if err != nil {
				dev.Close()
				continue
			}
			g = opened
			s.open[uuid] = g
		} else {
			dev.Close() // already held the handle from a previous poll
		}

		report := make([]byte, hidReportLen)
		ctx, cancel := newReadContext()
		n, err := g.epIn.ReadContext(ctx, report)
		cancel()
		if err != nil || n < hidReportLen {
			continue
		}
		out = append(out, decodeHIDReport(uuid, g.name, report))
	}

	for uuid, g := range s.open {
		if !seen[uuid] {
			g.Close()
			delete(s.open, uuid)
		}
	}

	return out, nil
}

// Close releases every open device handle and the USB context.
func (s *USBSource) Close() error {
	for uuid, g := range s.open {
		g.Close()
		delete(s.open, uuid)
	}
	return s.ctx.Close()
}

func openGamepad(uuid string, dev *gousb.Device) (*usbGamepad, error) {
	config, err := dev.Config(1)
	if err != nil {
		return nil, fmt.Errorf("usb source: config: %w", err)
	}
	intf, err := config.Interface(0, 0)
	if err != nil {
		config.Close()
		return nil, fmt.Errorf("usb source: interface: %w", err)
	}
	epIn, err := intf.InEndpoint(1)
	if err != nil {
		intf.Close()
		config.Close()
		return nil, fmt.Errorf("usb source: in endpoint: %w", err)
	}

	name, _ := dev.Manufacturer()
	product, _ := dev.Product()
	if product != "" {
		if name != "" {
			name = name + " " + product
		} else {
			name = product
		}
	}
	if name == "" {
		name = "USB gamepad"
	}

	return &usbGamepad{uuid: uuid, name: name, device: dev, config: config, intf: intf, epIn: epIn}, nil
}

func usbDeviceUUID(dev *gousb.Device) string {
	return fmt.Sprintf("usb:%s", dev.String())
}

func newReadContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), readTimeout)
}

// decodeHIDReport maps the fixed report layout this backend expects onto
// RawDeviceState: bytes 0-5 are signed axis samples already in host range,
// byte 6 and the low two bits of byte 7 are the 10 button bits, and the low
// nibble of byte 8 selects the hat: codes 0-7 are the 8 directions, any
// other code means released.
func decodeHIDReport(uuid, name string, report []byte) RawDeviceState {
	axes := make([]RawAxisReading, 6)
	for i := 0; i < 6; i++ {
		axes[i] = RawAxisReading{Named: VendorAxis(i), IsNamed: true, Value: float32(int8(report[i])) / 128.0}
	}

	var buttons []RawButtonReading
	bits := uint16(report[6]) | uint16(report[7]&0x0F)<<8
	for i := 0; i < 10; i++ {
		pressed := bits&(1<<uint(i)) != 0
		buttons = append(buttons, RawButtonReading{Named: VendorButton(i), IsNamed: true, Pressed: pressed})
	}

	hatCode := report[8] & 0x0F
	hats := []RawHat{hatCodeToDirections(hatCode)}

	return RawDeviceState{UUID: uuid, Name: name, Axes: axes, Buttons: buttons, Hats: hats}
}

func hatCodeToDirections(code byte) RawHat {
	switch code {
	case 0:
		return RawHat{Up: true}
	case 1:
		return RawHat{Up: true, Right: true}
	case 2:
		return RawHat{Right: true}
	case 3:
		return RawHat{Down: true, Right: true}
	case 4:
		return RawHat{Down: true}
	case 5:
		return RawHat{Down: true, Left: true}
	case 6:
		return RawHat{Left: true}
	case 7:
		return RawHat{Up: true, Left: true}
	default:
		return RawHat{}
	}
}
