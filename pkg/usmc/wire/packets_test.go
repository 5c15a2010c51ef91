package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// roundTrip unpacks and repacks an image and requires identity.
func roundTrip(t *testing.T, img []byte, codec func([]byte) []byte) {
	t.Helper()
	require.Equal(t, img, codec(img))
}

// singleBitImages yields one image per bit over the first n mapped bytes
// of a size-byte packet.
func singleBitImages(size, n int) [][]byte {
	var imgs [][]byte
	for i := 0; i < n; i++ {
		for bit := uint(0); bit < 8; bit++ {
			img := make([]byte, size)
			img[i] = 1 << bit
			imgs = append(imgs, img)
		}
	}
	return imgs
}

func TestStatePacketRoundTrip(t *testing.T) {
	codec := func(img []byte) []byte {
		var p StatePacket
		p.Unpack(img)
		return p.Pack()
	}
	roundTrip(t, make([]byte, StateLen), codec)
	ones := make([]byte, StateLen)
	for i := range ones {
		ones[i] = 0xFF
	}
	roundTrip(t, ones, codec)
	for _, img := range singleBitImages(StateLen, StateLen) {
		roundTrip(t, img, codec)
	}
}

func TestEncoderPacketRoundTrip(t *testing.T) {
	codec := func(img []byte) []byte {
		var p EncoderPacket
		p.Unpack(img)
		return p.Pack()
	}
	roundTrip(t, make([]byte, EncoderLen), codec)
	ones := make([]byte, EncoderLen)
	for i := range ones {
		ones[i] = 0xFF
	}
	roundTrip(t, ones, codec)
	for _, img := range singleBitImages(EncoderLen, EncoderLen) {
		roundTrip(t, img, codec)
	}
}

func TestGoToPacketRoundTrip(t *testing.T) {
	codec := func(img []byte) []byte {
		var p GoToPacket
		p.Unpack(img)
		return p.Pack()
	}
	roundTrip(t, make([]byte, GoToLen), codec)
	ones := make([]byte, GoToLen)
	for i := range ones {
		ones[i] = 0xFF
	}
	roundTrip(t, ones, codec)
	for _, img := range singleBitImages(GoToLen, GoToLen) {
		roundTrip(t, img, codec)
	}
}

func TestModePacketRoundTrip(t *testing.T) {
	codec := func(img []byte) []byte {
		var p ModePacket
		p.Unpack(img)
		return p.Pack()
	}
	roundTrip(t, make([]byte, ModeLen), codec)
	// Bytes 5-6 are always zero on the wire; only bytes 0-4 carry data.
	ones := make([]byte, ModeLen)
	for i := 0; i < 5; i++ {
		ones[i] = 0xFF
	}
	roundTrip(t, ones, codec)
	for _, img := range singleBitImages(ModeLen, 5) {
		roundTrip(t, img, codec)
	}
}

func TestParamsPacketRoundTrip(t *testing.T) {
	codec := func(img []byte) []byte {
		var p ParamsPacket
		p.Unpack(img)
		return p.Pack()
	}
	roundTrip(t, make([]byte, ParamsLen), codec)
	// The trailing 15 reserved bytes are always zero.
	ones := make([]byte, ParamsLen)
	for i := 0; i < 42; i++ {
		ones[i] = 0xFF
	}
	roundTrip(t, ones, codec)
	for _, img := range singleBitImages(ParamsLen, 42) {
		roundTrip(t, img, codec)
	}
}

func TestModePacketBitPositions(t *testing.T) {
	testCases := []struct {
		name   string
		set    func(p *ModePacket)
		offset int
		bit    uint
	}{
		{"PMode", func(p *ModePacket) { p.PMode = true }, 0, 0},
		{"RegEn", func(p *ModePacket) { p.RegEn = true }, 0, 1},
		{"ResetD", func(p *ModePacket) { p.ResetD = true }, 0, 2},
		{"EmReset", func(p *ModePacket) { p.EmReset = true }, 0, 3},
		{"Tr1T", func(p *ModePacket) { p.Tr1T = true }, 0, 4},
		{"Tr2T", func(p *ModePacket) { p.Tr2T = true }, 0, 5},
		{"RotTrT", func(p *ModePacket) { p.RotTrT = true }, 0, 6},
		{"TrSwap", func(p *ModePacket) { p.TrSwap = true }, 0, 7},
		{"Tr1En", func(p *ModePacket) { p.Tr1En = true }, 1, 0},
		{"Tr2En", func(p *ModePacket) { p.Tr2En = true }, 1, 1},
		{"RotTrEn", func(p *ModePacket) { p.RotTrEn = true }, 1, 2},
		{"RotTrOp", func(p *ModePacket) { p.RotTrOp = true }, 1, 3},
		{"Butt1T", func(p *ModePacket) { p.Butt1T = true }, 1, 4},
		{"Butt2T", func(p *ModePacket) { p.Butt2T = true }, 1, 5},
		{"ButSwap", func(p *ModePacket) { p.ButSwap = true }, 1, 6},
		{"ResetRT", func(p *ModePacket) { p.ResetRT = true }, 1, 7},
		{"SyncOutEn", func(p *ModePacket) { p.SyncOutEn = true }, 2, 0},
		{"SyncOutR", func(p *ModePacket) { p.SyncOutR = true }, 2, 1},
		{"SyncInOp", func(p *ModePacket) { p.SyncInOp = true }, 2, 2},
		{"SyncInvert", func(p *ModePacket) { p.SyncInvert = true }, 2, 3},
		{"EncoderEn", func(p *ModePacket) { p.EncoderEn = true }, 2, 4},
		{"EncoderInv", func(p *ModePacket) { p.EncoderInv = true }, 2, 5},
		{"ResBEnc", func(p *ModePacket) { p.ResBEnc = true }, 2, 6},
		{"ResEnc", func(p *ModePacket) { p.ResEnc = true }, 2, 7},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var p ModePacket
			tc.set(&p)
			b := p.Pack()
			for i, v := range b {
				if i == tc.offset {
					require.Equal(t, byte(1)<<tc.bit, v, "flag byte")
				} else {
					require.Zero(t, v, "byte %d must stay clear", i)
				}
			}
			var back ModePacket
			back.Unpack(b)
			require.Equal(t, p, back)
		})
	}
}

func TestGoToPacketBitPositions(t *testing.T) {
	testCases := []struct {
		name string
		set  func(p *GoToPacket)
		bit  uint
	}{
		{"M1", func(p *GoToPacket) { p.M1 = true }, 0},
		{"M2", func(p *GoToPacket) { p.M2 = true }, 1},
		{"DefDir", func(p *GoToPacket) { p.DefDir = true }, 2},
		{"LoftEn", func(p *GoToPacket) { p.LoftEn = true }, 3},
		{"SlStart", func(p *GoToPacket) { p.SlStart = true }, 4},
		{"WSyncIn", func(p *GoToPacket) { p.WSyncIn = true }, 5},
		{"SyncOutR", func(p *GoToPacket) { p.SyncOutR = true }, 6},
		{"ForceLoft", func(p *GoToPacket) { p.ForceLoft = true }, 7},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var p GoToPacket
			tc.set(&p)
			b := p.Pack()
			require.Equal(t, byte(1)<<tc.bit, b[6])
			for i := 0; i < 6; i++ {
				require.Zero(t, b[i])
			}
		})
	}
}

func TestGoToSetup(t *testing.T) {
	p := GoToPacket{DestPos: 0x11223344, TimerPeriod: 0xEC78, ForceLoft: true}
	b := p.Pack()
	require.Equal(t, []byte{0x44, 0x33, 0x22, 0x11, 0xEC, 0x78, 0x80}, b)

	value, index, payload := p.Setup(b)
	require.Equal(t, uint16(0x1122), value, "high word in natural order")
	require.Equal(t, uint16(0x3344), index, "low word in natural order")
	require.Equal(t, []byte{0xEC, 0x78, 0x80}, payload)
}

func TestModeSetup(t *testing.T) {
	p := ModePacket{PMode: true, Tr1En: true, SyncCount: 0x1234}
	b := p.Pack()
	require.Equal(t, []byte{0x01, 0x01, 0x00, 0x12, 0x34, 0x00, 0x00}, b)

	value, index, payload := p.Setup(b)
	require.Equal(t, uint16(0x0101), value, "bytes 0-1 MSB first")
	require.Equal(t, uint16(0x0012), index, "bytes 2-3 MSB first")
	require.Equal(t, []byte{0x34, 0x00, 0x00}, payload)
}

func TestParamsSetupAndLayout(t *testing.T) {
	p := ParamsPacket{
		Delay1:       2,
		Delay2:       3,
		RefInTimeout: 0x0102,
		BTimeout1:    0x0A0B,
		MaxLoft:      0x0800,
		StartPos:     0x11223344,
		MaxTemp:      0x5D17,
		SyncOutP:     1,
		LoftPeriod:   0xF0BC,
		EncVSCP:      10,
	}
	b := p.Pack()
	require.Len(t, b, ParamsLen)
	require.Equal(t, byte(2), b[0])
	require.Equal(t, byte(3), b[1])
	require.Equal(t, []byte{0x02, 0x01}, b[2:4], "RefInTimeout is little-endian")
	require.Equal(t, []byte{0x0A, 0x0B}, b[4:6], "BTimeout1 is big-endian")
	require.Equal(t, []byte{0x11, 0x22, 0x33, 0x44}, b[28:32], "StartPos is big-endian")
	require.Equal(t, []byte{0x5D, 0x17}, b[36:38], "MaxTemp is big-endian")
	require.Equal(t, byte(1), b[38])
	require.Equal(t, []byte{0xF0, 0xBC}, b[39:41], "LoftPeriod is big-endian")
	require.Equal(t, byte(10), b[41])
	for i := 42; i < ParamsLen; i++ {
		require.Zero(t, b[i], "reserved byte %d", i)
	}

	value, index, payload := p.Setup(b)
	require.Equal(t, uint16(0x0203), value, "delays MSB first")
	require.Equal(t, uint16(0x0102), index, "timeout in natural order")
	require.Equal(t, b[4:ParamsLen], payload)
}

func TestPositionWords(t *testing.T) {
	value, index := PositionWords(0x11223344)
	require.Equal(t, uint16(0x1122), value)
	require.Equal(t, uint16(0x3344), index)
}
