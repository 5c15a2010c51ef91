// Package usb defines the control-transfer transport contract consumed
// by the driver. Implementations talk to real hardware (libusb-style
// backends) or emulate it; the driver never opens devices itself.
package usb

import "time"

// Request type bits, composed the same way as the USB bmRequestType field.
const (
	DirOut byte = 0x00
	DirIn  byte = 0x80

	TypeStandard byte = 0x00
	TypeVendor   byte = 0x40

	RecipientDevice byte = 0x00
)

// Vendor requests understood by USMC controllers.
const (
	ReqGoTo        byte = 0x80
	ReqSetMode     byte = 0x81
	ReqGetState    byte = 0x82
	ReqSetParams   byte = 0x83
	ReqSaveToFlash byte = 0x84
	ReqGetEncoder  byte = 0x85
	ReqGetSerial   byte = 0xC9
	ReqSetPosition byte = 0x01
	ReqStop        byte = 0x07
)

// Standard GET_DESCRIPTOR request used to read the firmware version string.
const (
	ReqGetDescriptor byte   = 0x06
	VersionValue     uint16 = 0x0304
	VersionIndex     uint16 = 0x0409
	VersionLen       int    = 6
)

// SerialLen is the length of the serial number transfer.
const SerialLen = 16

// Description identifies one enumerated USB device before it is opened.
type Description struct {
	Vendor  uint16
	Product uint16
	// Path disambiguates devices with equal identity (bus address,
	// sysfs path or similar). Opaque to the driver.
	Path string
}

// Handle is an open device able to execute control transfers.
type Handle interface {
	// ControlTransfer executes one control transfer. Direction is
	// carried in bit 7 of requestType. For IN transfers data receives
	// the result; for OUT transfers data is sent (may be nil for
	// zero-length commands). Returns the number of bytes transferred.
	ControlTransfer(requestType, request byte, value, index uint16, data []byte, timeout time.Duration) (int, error)

	Close() error
}

// Transport enumerates and opens devices.
type Transport interface {
	Enumerate() ([]Description, error)
	Open(desc Description) (Handle, error)
}
