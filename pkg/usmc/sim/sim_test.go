package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/motionworks/usmc.go/pkg/usmc/usb"
)

func TestEnumerateAndOpen(t *testing.T) {
	tr := New(&Device{Serial: "AAAA"}, &Device{Serial: "BBBB"})
	descs, err := tr.Enumerate()
	require.NoError(t, err)
	require.Len(t, descs, 2)
	for _, desc := range descs {
		require.Equal(t, uint16(0x10C4), desc.Vendor)
		require.Equal(t, uint16(0x0230), desc.Product)
	}

	h, err := tr.Open(descs[0])
	require.NoError(t, err)
	require.NoError(t, h.Close())

	_, err = tr.Open(usb.Description{Path: "sim:99"})
	require.Equal(t, usb.ErrNotFound, err)
}

func TestOpenFault(t *testing.T) {
	dev := &Device{Serial: "AAAA", FailOpen: true, Err: usb.ErrAccess}
	tr := New(dev)
	descs, err := tr.Enumerate()
	require.NoError(t, err)
	_, err = tr.Open(descs[0])
	require.Equal(t, usb.ErrAccess, err)
}

func TestClosedHandleRejectsTransfers(t *testing.T) {
	tr := New(&Device{Serial: "AAAA"})
	descs, _ := tr.Enumerate()
	h, err := tr.Open(descs[0])
	require.NoError(t, err)
	require.NoError(t, h.Close())
	_, err = h.ControlTransfer(usb.DirIn|usb.TypeVendor|usb.RecipientDevice,
		usb.ReqGetSerial, 0, 0, make([]byte, usb.SerialLen), time.Second)
	require.Equal(t, usb.ErrNoDevice, err)
}

func TestSerialAndVersionReads(t *testing.T) {
	dev := &Device{Serial: "0000000000123456", Version: 0x2407}
	tr := New(dev)
	descs, _ := tr.Enumerate()
	h, err := tr.Open(descs[0])
	require.NoError(t, err)
	defer h.Close()

	buf := make([]byte, usb.SerialLen)
	_, err = h.ControlTransfer(usb.DirIn|usb.TypeVendor|usb.RecipientDevice,
		usb.ReqGetSerial, 0, 0, buf, time.Second)
	require.NoError(t, err)
	require.Equal(t, "0000000000123456", string(buf))

	vbuf := make([]byte, usb.VersionLen)
	_, err = h.ControlTransfer(usb.DirIn|usb.TypeStandard|usb.RecipientDevice,
		usb.ReqGetDescriptor, usb.VersionValue, usb.VersionIndex, vbuf, time.Second)
	require.NoError(t, err)
	require.Equal(t, "2407", string(vbuf[2:]))
}

func TestWriteRecording(t *testing.T) {
	dev := &Device{Serial: "AAAA"}
	tr := New(dev)
	descs, _ := tr.Enumerate()
	h, err := tr.Open(descs[0])
	require.NoError(t, err)
	defer h.Close()

	// Destination 0x00000320 arrives split across the setup words.
	_, err = h.ControlTransfer(usb.DirOut|usb.TypeVendor|usb.RecipientDevice,
		usb.ReqGoTo, 0, 0x0320, []byte{0xEC, 0x78, 0x00}, time.Second)
	require.NoError(t, err)

	writes := dev.WritesFor(usb.ReqGoTo)
	require.Len(t, writes, 1)
	require.Equal(t, uint16(0x0320), writes[0].Index)

	buf := make([]byte, 11)
	_, err = h.ControlTransfer(usb.DirIn|usb.TypeVendor|usb.RecipientDevice,
		usb.ReqGetState, 0, 0, buf, time.Second)
	require.NoError(t, err)
	// CurPos occupies the first 4 bytes little-endian.
	require.Equal(t, []byte{0x20, 0x03, 0x00, 0x00}, buf[0:4])
}
