package usmc

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/motionworks/usmc.go/pkg/usmc/units"
	"github.com/motionworks/usmc.go/pkg/usmc/usb"
	"github.com/motionworks/usmc.go/pkg/usmc/wire"
)

// USB identity of USMC controllers.
const (
	VendorID  uint16 = 0x10C4
	ProductID uint16 = 0x0230
)

// DefaultTimeout bounds a single control transfer.
const DefaultTimeout = 10 * time.Second

// record aggregates everything the driver tracks for one device. The
// lock serializes wire transactions and guards the cached structures;
// cache mutation happens only under the same lock that performed the
// corresponding write, so readers never observe a torn value.
type record struct {
	handle  usb.Handle
	serial  string
	version uint32

	lock   sync.Mutex
	mode   Mode
	params Parameters
	start  StartParameters
	speed  float64
}

// Driver is the device registry. Device ids are stable indices in
// [0,Count()) for the session, compacted only when a candidate is
// rolled back during Probe.
//
// Probe and Close mutate the record list and must not overlap
// per-device operations; everything else is safe to call concurrently,
// with same-device operations serialized by the record lock.
type Driver struct {
	transport usb.Transport
	timeout   time.Duration
	log       Logger
	recs      []*record
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger injects a logging capability.
func WithLogger(l Logger) Option {
	return func(d *Driver) { d.log = l }
}

// WithTimeout overrides the control transfer timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Driver) { d.timeout = timeout }
}

// NewDriver creates a driver over the given transport. No hardware is
// touched until Probe.
func NewDriver(transport usb.Transport, opts ...Option) *Driver {
	d := &Driver{
		transport: transport,
		timeout:   DefaultTimeout,
		log:       glogLogger{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Probe enumerates USMC devices and attaches every one it can fully
// initialize: open, read serial and firmware version, install defaults
// and push them to hardware. A candidate failing any step is closed and
// discarded without aborting the remaining candidates. Returns the
// number of devices attached by this call; the error is non-nil only
// when enumeration itself fails.
func (d *Driver) Probe() (int, error) {
	descs, err := d.transport.Enumerate()
	if err != nil {
		d.log.Errorf("enumeration failed: %v", err)
		return 0, err
	}

	count := 0
	for _, desc := range descs {
		if desc.Vendor != VendorID || desc.Product != ProductID {
			continue
		}
		handle, err := d.transport.Open(desc)
		if err != nil {
			d.log.Errorf("open %s: %v", desc.Path, err)
			continue
		}
		rec := &record{
			handle: handle,
			mode:   DefaultMode(),
			params: DefaultParameters(),
			start:  DefaultStartParameters(),
			speed:  DefaultSpeed,
		}
		if err := d.initRecord(rec); err != nil {
			d.log.Errorf("init %s: %v", desc.Path, err)
			handle.Close()
			continue
		}
		d.recs = append(d.recs, rec)
		count++
		d.log.Infof("attached device %d serial=%q version=%#x", len(d.recs)-1, rec.serial, rec.version)
	}
	return count, nil
}

// initRecord reads identity and pushes the default configuration so the
// cache and the hardware agree from the start.
func (d *Driver) initRecord(rec *record) error {
	serial, err := d.readSerial(rec.handle)
	if err != nil {
		return err
	}
	rec.serial = serial

	version, err := d.readVersion(rec.handle)
	if err != nil {
		return err
	}
	rec.version = version

	if err := d.writeMode(rec, &rec.mode); err != nil {
		return err
	}
	return d.writeParams(rec, &rec.params)
}

// Count returns the number of attached devices.
func (d *Driver) Count() int {
	return len(d.recs)
}

// DeviceID returns the id of the first device with the given serial
// number, or -1 when absent.
func (d *Driver) DeviceID(serial string) int {
	for id, rec := range d.recs {
		if rec.serial == serial {
			return id
		}
	}
	return -1
}

// Serial returns the device serial number read at probe time.
func (d *Driver) Serial(id int) (string, error) {
	rec, err := d.record(id)
	if err != nil {
		return "", err
	}
	return rec.serial, nil
}

// Version returns the firmware version read at probe time.
func (d *Driver) Version(id int) (uint32, error) {
	rec, err := d.record(id)
	if err != nil {
		return 0, err
	}
	return rec.version, nil
}

// Mode returns the cached soft configuration without touching hardware.
func (d *Driver) Mode(id int) (Mode, error) {
	rec, err := d.record(id)
	if err != nil {
		return Mode{}, err
	}
	rec.lock.Lock()
	defer rec.lock.Unlock()
	return rec.mode, nil
}

// SetMode writes the soft configuration to hardware and updates the
// cache only after the write is acknowledged.
func (d *Driver) SetMode(id int, m *Mode) error {
	rec, err := d.record(id)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrInvalidParam
	}
	rec.lock.Lock()
	defer rec.lock.Unlock()
	if err := d.writeMode(rec, m); err != nil {
		return err
	}
	rec.mode = *m
	return nil
}

// Parameters returns the cached limits without touching hardware.
func (d *Driver) Parameters(id int) (Parameters, error) {
	rec, err := d.record(id)
	if err != nil {
		return Parameters{}, err
	}
	rec.lock.Lock()
	defer rec.lock.Unlock()
	return rec.params, nil
}

// SetParameters validates every field against its documented range,
// writes to hardware, and updates the cache only after the write is
// acknowledged. A rejected write leaves hardware and cache untouched.
func (d *Driver) SetParameters(id int, p *Parameters) error {
	rec, err := d.record(id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrInvalidParam
	}
	if err := validateParameters(p); err != nil {
		return err
	}
	rec.lock.Lock()
	defer rec.lock.Unlock()
	if err := d.writeParams(rec, p); err != nil {
		return err
	}
	rec.params = *p
	return nil
}

// StartParameters returns the cached move configuration.
func (d *Driver) StartParameters(id int) (StartParameters, error) {
	rec, err := d.record(id)
	if err != nil {
		return StartParameters{}, err
	}
	rec.lock.Lock()
	defer rec.lock.Unlock()
	return rec.start, nil
}

// SetStartParameters updates the cached move configuration. The
// controller has no dedicated write for it; the values travel with the
// next MoveTo.
func (d *Driver) SetStartParameters(id int, p *StartParameters) error {
	rec, err := d.record(id)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrInvalidParam
	}
	if err := validateStartParameters(p); err != nil {
		return err
	}
	rec.lock.Lock()
	defer rec.lock.Unlock()
	rec.start = *p
	return nil
}

// Speed returns the cached move speed in steps/sec.
func (d *Driver) Speed(id int) (float64, error) {
	rec, err := d.record(id)
	if err != nil {
		return 0, err
	}
	rec.lock.Lock()
	defer rec.lock.Unlock()
	return rec.speed, nil
}

// SetSpeed updates the cached move speed. Like the move configuration
// it travels with the next MoveTo.
func (d *Driver) SetSpeed(id int, speed float64) error {
	rec, err := d.record(id)
	if err != nil {
		return err
	}
	if err := validateSpeed(speed); err != nil {
		return err
	}
	rec.lock.Lock()
	defer rec.lock.Unlock()
	rec.speed = speed
	return nil
}

// State queries a fresh state snapshot from hardware. Never cached.
func (d *Driver) State(id int) (State, error) {
	rec, err := d.record(id)
	if err != nil {
		return State{}, err
	}
	rec.lock.Lock()
	defer rec.lock.Unlock()
	buf := make([]byte, wire.StateLen)
	if err := d.vendorIn(rec.handle, usb.ReqGetState, buf); err != nil {
		d.log.Errorf("get state: %v", err)
		return State{}, err
	}
	var pkt wire.StatePacket
	pkt.Unpack(buf)
	return stateFromPacket(&pkt, rec.version), nil
}

// EncoderState queries a fresh encoder snapshot from hardware. Never
// cached.
func (d *Driver) EncoderState(id int) (EncoderState, error) {
	rec, err := d.record(id)
	if err != nil {
		return EncoderState{}, err
	}
	rec.lock.Lock()
	defer rec.lock.Unlock()
	buf := make([]byte, wire.EncoderLen)
	if err := d.vendorIn(rec.handle, usb.ReqGetEncoder, buf); err != nil {
		d.log.Errorf("get encoder state: %v", err)
		return EncoderState{}, err
	}
	var pkt wire.EncoderPacket
	pkt.Unpack(buf)
	return encoderFromPacket(&pkt), nil
}

// MoveTo starts a move to the destination in steps, using the cached
// speed and move configuration.
func (d *Driver) MoveTo(id int, dest int) error {
	rec, err := d.record(id)
	if err != nil {
		return err
	}
	rec.lock.Lock()
	defer rec.lock.Unlock()
	pkt := goToPacket(dest, rec.speed, &rec.start)
	value, index, payload := pkt.Setup(pkt.Pack())
	if err := d.vendorOut(rec.handle, usb.ReqGoTo, value, index, payload); err != nil {
		d.log.Errorf("move to %d: %v", dest, err)
		return err
	}
	return nil
}

// Stop halts the motor immediately.
func (d *Driver) Stop(id int) error {
	rec, err := d.record(id)
	if err != nil {
		return err
	}
	rec.lock.Lock()
	defer rec.lock.Unlock()
	if err := d.vendorOut(rec.handle, usb.ReqStop, 0, 0, nil); err != nil {
		d.log.Errorf("stop: %v", err)
		return err
	}
	return nil
}

// SetCurrentPosition redefines the current position to the given value
// in steps. The wire value is aligned down to 4 full steps by the
// controller's encoding.
func (d *Driver) SetCurrentPosition(id int, steps int) error {
	rec, err := d.record(id)
	if err != nil {
		return err
	}
	rec.lock.Lock()
	defer rec.lock.Unlock()
	value, index := wire.PositionWords(units.SetPosWire(steps))
	if err := d.vendorOut(rec.handle, usb.ReqSetPosition, value, index, nil); err != nil {
		d.log.Errorf("set position %d: %v", steps, err)
		return err
	}
	return nil
}

// SaveToFlash asks the controller to persist its configuration.
// Fire-and-forget: the command carries no payload and no reply.
func (d *Driver) SaveToFlash(id int) error {
	rec, err := d.record(id)
	if err != nil {
		return err
	}
	rec.lock.Lock()
	defer rec.lock.Unlock()
	if err := d.vendorOut(rec.handle, usb.ReqSaveToFlash, 0, 0, nil); err != nil {
		d.log.Errorf("save to flash: %v", err)
		return err
	}
	return nil
}

// Close releases all handles and caches. Idempotent.
func (d *Driver) Close() error {
	var firstErr error
	for id, rec := range d.recs {
		if err := rec.handle.Close(); err != nil {
			d.log.Errorf("close device %d: %v", id, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	d.recs = nil
	return firstErr
}

func (d *Driver) record(id int) (*record, error) {
	if id < 0 || id >= len(d.recs) {
		return nil, ErrInvalidID
	}
	return d.recs[id], nil
}

func (d *Driver) writeMode(rec *record, m *Mode) error {
	pkt := modePacket(m)
	value, index, payload := pkt.Setup(pkt.Pack())
	if err := d.vendorOut(rec.handle, usb.ReqSetMode, value, index, payload); err != nil {
		d.log.Errorf("set mode: %v", err)
		return err
	}
	return nil
}

func (d *Driver) writeParams(rec *record, p *Parameters) error {
	pkt := paramsPacket(p, rec.version)
	value, index, payload := pkt.Setup(pkt.Pack())
	if err := d.vendorOut(rec.handle, usb.ReqSetParams, value, index, payload); err != nil {
		d.log.Errorf("set parameters: %v", err)
		return err
	}
	return nil
}

func (d *Driver) readSerial(h usb.Handle) (string, error) {
	buf := make([]byte, usb.SerialLen)
	if _, err := h.ControlTransfer(usb.DirIn|usb.TypeVendor|usb.RecipientDevice,
		usb.ReqGetSerial, 0, 0, buf, d.timeout); err != nil {
		return "", err
	}
	return strings.TrimRight(string(buf), "\x00"), nil
}

// readVersion reads the firmware version through the standard string
// descriptor the controller repurposes for it: 4 hex digits after the
// 2-byte descriptor header.
func (d *Driver) readVersion(h usb.Handle) (uint32, error) {
	buf := make([]byte, usb.VersionLen)
	if _, err := h.ControlTransfer(usb.DirIn|usb.TypeStandard|usb.RecipientDevice,
		usb.ReqGetDescriptor, usb.VersionValue, usb.VersionIndex, buf, d.timeout); err != nil {
		return 0, err
	}
	s := strings.TrimRight(string(buf[2:]), "\x00")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, usb.ErrIO
	}
	return uint32(v), nil
}

func (d *Driver) vendorIn(h usb.Handle, req byte, buf []byte) error {
	n, err := h.ControlTransfer(usb.DirIn|usb.TypeVendor|usb.RecipientDevice,
		req, 0, 0, buf, d.timeout)
	if err != nil {
		return err
	}
	// A short reply would leave trailing bytes unpacked as real state.
	if n != len(buf) {
		return usb.ErrIO
	}
	return nil
}

func (d *Driver) vendorOut(h usb.Handle, req byte, value, index uint16, payload []byte) error {
	_, err := h.ControlTransfer(usb.DirOut|usb.TypeVendor|usb.RecipientDevice,
		req, value, index, payload, d.timeout)
	return err
}
