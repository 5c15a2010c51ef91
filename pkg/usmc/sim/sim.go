// Package sim emulates USMC controllers behind the usb.Transport
// contract, so the driver and the interactive harness run without
// hardware. Faults can be injected per device to exercise probe
// rollback and transport error paths.
package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/motionworks/usmc.go/pkg/usmc/usb"
	"github.com/motionworks/usmc.go/pkg/usmc/wire"
)

const (
	vendorID  uint16 = 0x10C4
	productID uint16 = 0x0230
)

// Write is one recorded OUT transfer.
type Write struct {
	Request byte
	Value   uint16
	Index   uint16
	Payload []byte
}

// Device is one emulated controller.
type Device struct {
	Serial  string
	Version uint32

	// Raw readings reported by the state snapshot.
	TempRaw    uint16
	VoltageRaw uint16

	// Injected faults. Err is the error used when a fault fires;
	// zero means usb.ErrIO.
	FailOpen    bool
	FailSerial  bool
	FailVersion bool
	FailWrites  bool
	ShortReads  bool // truncate state/encoder replies by one byte
	Err         usb.Errno

	// OnTransfer, when set, runs inside every control transfer while
	// the device is busy. Tests use it to observe serialization.
	OnTransfer func(request byte)

	mu       sync.Mutex
	inFlight int
	overlap  bool
	position uint32 // wire units
	m1, m2   bool
	running  bool
	writes   []Write
}

// Writes returns a copy of all recorded OUT transfers.
func (d *Device) Writes() []Write {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Write, len(d.writes))
	copy(out, d.writes)
	return out
}

// WritesFor returns the recorded OUT transfers for one request.
func (d *Device) WritesFor(request byte) []Write {
	var out []Write
	for _, w := range d.Writes() {
		if w.Request == request {
			out = append(out, w)
		}
	}
	return out
}

// Overlapped reports whether two transfers were ever in flight at once.
func (d *Device) Overlapped() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.overlap
}

func (d *Device) reply(data, img []byte) int {
	n := copy(data, img)
	if d.ShortReads && n > 0 {
		n--
	}
	return n
}

func (d *Device) errno() usb.Errno {
	if d.Err != 0 {
		return d.Err
	}
	return usb.ErrIO
}

// Transport emulates enumeration and device access.
type Transport struct {
	Devices []*Device

	// EnumerateErr, when set, fails enumeration itself.
	EnumerateErr error
}

// New creates a transport over the given devices.
func New(devices ...*Device) *Transport {
	return &Transport{Devices: devices}
}

// Enumerate implements usb.Transport.
func (t *Transport) Enumerate() ([]usb.Description, error) {
	if t.EnumerateErr != nil {
		return nil, t.EnumerateErr
	}
	descs := make([]usb.Description, len(t.Devices))
	for i := range t.Devices {
		descs[i] = usb.Description{
			Vendor:  vendorID,
			Product: productID,
			Path:    fmt.Sprintf("sim:%d", i),
		}
	}
	return descs, nil
}

// Open implements usb.Transport.
func (t *Transport) Open(desc usb.Description) (usb.Handle, error) {
	for i, dev := range t.Devices {
		if desc.Path == fmt.Sprintf("sim:%d", i) {
			if dev.FailOpen {
				return nil, dev.errno()
			}
			return &handle{dev: dev}, nil
		}
	}
	return nil, usb.ErrNotFound
}

type handle struct {
	dev    *Device
	mu     sync.Mutex
	closed bool
}

// Close implements usb.Handle.
func (h *handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

// ControlTransfer implements usb.Handle.
func (h *handle) ControlTransfer(requestType, request byte, value, index uint16, data []byte, timeout time.Duration) (int, error) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return 0, usb.ErrNoDevice
	}

	d := h.dev
	d.mu.Lock()
	d.inFlight++
	if d.inFlight > 1 {
		d.overlap = true
	}
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.inFlight--
		d.mu.Unlock()
	}()

	if d.OnTransfer != nil {
		d.OnTransfer(request)
	}

	if requestType&usb.DirIn != 0 {
		return d.transferIn(requestType, request, value, index, data)
	}
	return d.transferOut(request, value, index, data)
}

func (d *Device) transferIn(requestType, request byte, value, index uint16, data []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if requestType&usb.TypeVendor == 0 {
		// Standard request: only the version descriptor is emulated.
		if request != usb.ReqGetDescriptor || value != usb.VersionValue {
			return 0, usb.ErrNotSupported
		}
		if d.FailVersion {
			return 0, d.errno()
		}
		data[0] = byte(usb.VersionLen)
		data[1] = 0x03 // string descriptor
		copy(data[2:], fmt.Sprintf("%04X", d.Version))
		return len(data), nil
	}

	switch request {
	case usb.ReqGetSerial:
		if d.FailSerial {
			return 0, d.errno()
		}
		for i := range data {
			data[i] = 0
		}
		copy(data, d.Serial)
		return len(data), nil

	case usb.ReqGetState:
		pkt := wire.StatePacket{
			CurPos:  d.position,
			Temp:    d.TempRaw,
			M1:      d.m1,
			M2:      d.m2,
			Reset:   true,
			Run:     d.running,
			Working: true,
			Voltage: d.VoltageRaw,
		}
		return d.reply(data, pkt.Pack()), nil

	case usb.ReqGetEncoder:
		pkt := wire.EncoderPacket{
			ECurPos:    d.position,
			EncoderPos: d.position,
		}
		return d.reply(data, pkt.Pack()), nil
	}
	return 0, usb.ErrNotSupported
}

func (d *Device) transferOut(request byte, value, index uint16, data []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.FailWrites {
		return 0, d.errno()
	}

	w := Write{Request: request, Value: value, Index: index}
	if len(data) > 0 {
		w.Payload = append([]byte(nil), data...)
	}
	d.writes = append(d.writes, w)

	switch request {
	case usb.ReqGoTo:
		// Setup words carry the destination: low word in wIndex,
		// high word in wValue. A move completes instantly.
		d.position = uint32(index) | uint32(value)<<16
		var pkt wire.GoToPacket
		pkt.Unpack(append([]byte{byte(index), byte(index >> 8), byte(value), byte(value >> 8)}, data...))
		d.m1, d.m2 = pkt.M1, pkt.M2
		d.running = false

	case usb.ReqSetPosition:
		d.position = uint32(index) | uint32(value)<<16

	case usb.ReqStop:
		d.running = false
	}
	return len(data), nil
}
