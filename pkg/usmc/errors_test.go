package usmc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/motionworks/usmc.go/pkg/usmc/usb"
)

func TestCode(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		code int
	}{
		{"success", nil, CodeSuccess},
		{"invalid id", ErrInvalidID, CodeInvalidID},
		{"invalid param", ErrInvalidParam, CodeInvalidParam},
		{"invalid value", &ValueError{Field: "AccelT"}, CodeInvalidValue},
		{"transport io", usb.ErrIO, -1},
		{"transport no device", usb.ErrNoDevice, -4},
		{"transport timeout", usb.ErrTimeout, -7},
		{"unknown", errors.New("boom"), -99},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.code, Code(tc.err))
		})
	}
}

func TestValueErrorText(t *testing.T) {
	err := &ValueError{Field: "MaxTemp"}
	require.Equal(t, "value out of range: MaxTemp", err.Error())
}
