package usb

// Errno is a transport-level error, numerically compatible with the
// libusb error codes. Transports surface these verbatim; the driver
// never retries or remaps them.
type Errno int

// Transport error codes.
const (
	ErrIO           Errno = -1
	ErrInvalidParam Errno = -2
	ErrAccess       Errno = -3
	ErrNoDevice     Errno = -4
	ErrNotFound     Errno = -5
	ErrBusy         Errno = -6
	ErrTimeout      Errno = -7
	ErrOverflow     Errno = -8
	ErrPipe         Errno = -9
	ErrInterrupted  Errno = -10
	ErrNoMem        Errno = -11
	ErrNotSupported Errno = -12
	ErrOther        Errno = -99
)

var errnoText = map[Errno]string{
	ErrIO:           "input/output error",
	ErrInvalidParam: "invalid parameter",
	ErrAccess:       "access denied",
	ErrNoDevice:     "no such device",
	ErrNotFound:     "entity not found",
	ErrBusy:         "resource busy",
	ErrTimeout:      "operation timed out",
	ErrOverflow:     "overflow",
	ErrPipe:         "pipe error",
	ErrInterrupted:  "interrupted",
	ErrNoMem:        "insufficient memory",
	ErrNotSupported: "operation not supported",
	ErrOther:        "other error",
}

// Error implements error.
func (e Errno) Error() string {
	if s, ok := errnoText[e]; ok {
		return "usb: " + s
	}
	return "usb: unknown error"
}

// Code returns the numeric error code.
func (e Errno) Code() int {
	return int(e)
}
