package usmc

import (
	"fmt"

	"github.com/motionworks/usmc.go/pkg/usmc/usb"
)

// Legacy numeric result codes. Transport errors keep their usb.Errno
// codes; these cover everything detected before a wire transaction.
const (
	CodeSuccess      = 0
	CodeInvalidID    = -40
	CodeInvalidParam = -41
	CodeInvalidValue = -42
)

// Error is a driver error carrying a legacy result code.
type Error struct {
	ResultCode int
	Text       string
}

// Error implements error.
func (e *Error) Error() string {
	return e.Text
}

var (
	// ErrInvalidID indicates a device id out of bounds.
	ErrInvalidID = &Error{CodeInvalidID, "invalid device id"}
	// ErrInvalidParam indicates a missing required argument.
	ErrInvalidParam = &Error{CodeInvalidParam, "missing required argument"}
)

// ValueError indicates a field outside its documented range. It is
// detected before any wire transaction; a rejected write never mutates
// hardware or cache.
type ValueError struct {
	Field string
}

// Error implements error.
func (e *ValueError) Error() string {
	return fmt.Sprintf("value out of range: %s", e.Field)
}

// Code maps an operation result to the legacy numeric code: 0 for
// success, the usb.Errno code for transport errors passed through
// verbatim, and the CodeInvalid* constants for pre-wire rejections.
func Code(err error) int {
	switch e := err.(type) {
	case nil:
		return CodeSuccess
	case *Error:
		return e.ResultCode
	case *ValueError:
		return CodeInvalidValue
	case usb.Errno:
		return e.Code()
	}
	return usb.ErrOther.Code()
}
