package wire

// Packet image sizes in bytes.
const (
	StateLen   = 11
	EncoderLen = 8
	GoToLen    = 7
	ModeLen    = 7
	ParamsLen  = 57
)

func bit(set bool, n uint) byte {
	if set {
		return 1 << n
	}
	return 0
}

func has(v byte, n uint) bool {
	return v&(1<<n) != 0
}

func getU16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

func putU16(b []byte, v uint16) {
	b[0], b[1] = byte(v), byte(v>>8)
}

func getU16BE(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

func putU16BE(b []byte, v uint16) {
	b[0], b[1] = byte(v>>8), byte(v)
}

func getU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func putU32(b []byte, v uint32) {
	b[0], b[1], b[2], b[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
}

func getU32BE(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func putU32BE(b []byte, v uint32) {
	b[0], b[1], b[2], b[3] = byte(v>>24), byte(v>>16), byte(v>>8), byte(v)
}

// wordsNatural splits the first 4 image bytes into setup words with both
// words in natural (little-endian) order: index from bytes 0-1, value
// from bytes 2-3.
func wordsNatural(b []byte) (value, index uint16) {
	return getU16(b[2:]), getU16(b[:2])
}

// wordsSwapped composes both setup words most-significant-byte-first:
// value from bytes 0-1, index from bytes 2-3.
func wordsSwapped(b []byte) (value, index uint16) {
	return getU16BE(b[:2]), getU16BE(b[2:])
}

// StatePacket is the 11-byte state snapshot returned by the controller.
type StatePacket struct {
	CurPos uint32 // current position, 1/8 step units
	Temp   uint16 // raw driver temperature

	// Byte 6.
	M1         bool // | microstep code, divisor is 1<<(M2<<1|M1)
	M2         bool // |
	Loft       bool // backlash state
	RefIn      bool // full power
	CWCCW      bool // current direction, relative
	Reset      bool // motor power is on
	FullSpeed  bool // full speed, valid in slow-start mode
	AfterReset bool // set after device reset, cleared by set-position

	// Byte 7.
	Run      bool
	SyncIn   bool
	SyncOut  bool
	RotTr    bool
	RotTrErr bool
	EmReset  bool
	Trailer1 bool
	Trailer2 bool

	// Byte 8.
	USBPowered bool
	Unknown    byte // bits 1-6, undocumented
	Working    bool // always set on a healthy controller

	Voltage uint16 // raw +40V input voltage
}

// Pack encodes the packet image.
func (p *StatePacket) Pack() []byte {
	b := make([]byte, StateLen)
	putU32(b[0:], p.CurPos)
	putU16(b[4:], p.Temp)
	b[6] = bit(p.M1, 0) | bit(p.M2, 1) | bit(p.Loft, 2) | bit(p.RefIn, 3) |
		bit(p.CWCCW, 4) | bit(p.Reset, 5) | bit(p.FullSpeed, 6) | bit(p.AfterReset, 7)
	b[7] = bit(p.Run, 0) | bit(p.SyncIn, 1) | bit(p.SyncOut, 2) | bit(p.RotTr, 3) |
		bit(p.RotTrErr, 4) | bit(p.EmReset, 5) | bit(p.Trailer1, 6) | bit(p.Trailer2, 7)
	b[8] = bit(p.USBPowered, 0) | (p.Unknown&0x3f)<<1 | bit(p.Working, 7)
	putU16(b[9:], p.Voltage)
	return b
}

// Unpack decodes the packet image. b must hold at least StateLen bytes.
func (p *StatePacket) Unpack(b []byte) {
	p.CurPos = getU32(b[0:])
	p.Temp = getU16(b[4:])
	p.M1, p.M2, p.Loft, p.RefIn = has(b[6], 0), has(b[6], 1), has(b[6], 2), has(b[6], 3)
	p.CWCCW, p.Reset, p.FullSpeed, p.AfterReset = has(b[6], 4), has(b[6], 5), has(b[6], 6), has(b[6], 7)
	p.Run, p.SyncIn, p.SyncOut, p.RotTr = has(b[7], 0), has(b[7], 1), has(b[7], 2), has(b[7], 3)
	p.RotTrErr, p.EmReset, p.Trailer1, p.Trailer2 = has(b[7], 4), has(b[7], 5), has(b[7], 6), has(b[7], 7)
	p.USBPowered = has(b[8], 0)
	p.Unknown = (b[8] >> 1) & 0x3f
	p.Working = has(b[8], 7)
	p.Voltage = getU16(b[9:])
}

// EncoderPacket is the 8-byte encoder snapshot.
type EncoderPacket struct {
	ECurPos    uint32 // motor position in encoder units
	EncoderPos uint32 // encoder counter
}

// Pack encodes the packet image.
func (p *EncoderPacket) Pack() []byte {
	b := make([]byte, EncoderLen)
	putU32(b[0:], p.ECurPos)
	putU32(b[4:], p.EncoderPos)
	return b
}

// Unpack decodes the packet image. b must hold at least EncoderLen bytes.
func (p *EncoderPacket) Unpack(b []byte) {
	p.ECurPos = getU32(b[0:])
	p.EncoderPos = getU32(b[4:])
}

// GoToPacket is the 7-byte move command.
type GoToPacket struct {
	DestPos     uint32 // destination, 1/8 step units
	TimerPeriod uint16 // step timer period, big-endian on the wire

	// Byte 6.
	M1        bool // | microstep code, divisor is 1<<(M2<<1|M1)
	M2        bool // |
	DefDir    bool // default direction for anti-backlash
	LoftEn    bool // enable automatic anti-backlash
	SlStart   bool // slow start/stop mode
	WSyncIn   bool // wait for input sync signal to start
	SyncOutR  bool // reset output sync counter
	ForceLoft bool // force anti-backlash even when already at target
}

// Pack encodes the packet image.
func (p *GoToPacket) Pack() []byte {
	b := make([]byte, GoToLen)
	putU32(b[0:], p.DestPos)
	putU16BE(b[4:], p.TimerPeriod)
	b[6] = bit(p.M1, 0) | bit(p.M2, 1) | bit(p.DefDir, 2) | bit(p.LoftEn, 3) |
		bit(p.SlStart, 4) | bit(p.WSyncIn, 5) | bit(p.SyncOutR, 6) | bit(p.ForceLoft, 7)
	return b
}

// Unpack decodes the packet image. b must hold at least GoToLen bytes.
func (p *GoToPacket) Unpack(b []byte) {
	p.DestPos = getU32(b[0:])
	p.TimerPeriod = getU16BE(b[4:])
	p.M1, p.M2, p.DefDir, p.LoftEn = has(b[6], 0), has(b[6], 1), has(b[6], 2), has(b[6], 3)
	p.SlStart, p.WSyncIn, p.SyncOutR, p.ForceLoft = has(b[6], 4), has(b[6], 5), has(b[6], 6), has(b[6], 7)
}

// Setup splits a packed image into the setup words and the data-stage
// payload. The move command sends both words in natural order, low word
// in wIndex.
func (p *GoToPacket) Setup(b []byte) (value, index uint16, payload []byte) {
	value, index = wordsNatural(b)
	return value, index, b[4:GoToLen]
}

// ModePacket is the 7-byte soft-configuration command.
type ModePacket struct {
	// Byte 0.
	PMode   bool // buttons disabled
	RegEn   bool // current reduction regime
	ResetD  bool // power off and make a whole step
	EmReset bool
	Tr1T    bool
	Tr2T    bool
	RotTrT  bool
	TrSwap  bool

	// Byte 1.
	Tr1En   bool
	Tr2En   bool
	RotTrEn bool
	RotTrOp bool
	Butt1T  bool
	Butt2T  bool
	ButSwap bool
	ResetRT bool

	// Byte 2.
	SyncOutEn  bool
	SyncOutR   bool
	SyncInOp   bool
	SyncInvert bool
	EncoderEn  bool
	EncoderInv bool
	ResBEnc    bool
	ResEnc     bool

	SyncCount uint16 // big-endian on the wire
}

// Pack encodes the packet image. Bytes 5-6 are always zero.
func (p *ModePacket) Pack() []byte {
	b := make([]byte, ModeLen)
	b[0] = bit(p.PMode, 0) | bit(p.RegEn, 1) | bit(p.ResetD, 2) | bit(p.EmReset, 3) |
		bit(p.Tr1T, 4) | bit(p.Tr2T, 5) | bit(p.RotTrT, 6) | bit(p.TrSwap, 7)
	b[1] = bit(p.Tr1En, 0) | bit(p.Tr2En, 1) | bit(p.RotTrEn, 2) | bit(p.RotTrOp, 3) |
		bit(p.Butt1T, 4) | bit(p.Butt2T, 5) | bit(p.ButSwap, 6) | bit(p.ResetRT, 7)
	b[2] = bit(p.SyncOutEn, 0) | bit(p.SyncOutR, 1) | bit(p.SyncInOp, 2) | bit(p.SyncInvert, 3) |
		bit(p.EncoderEn, 4) | bit(p.EncoderInv, 5) | bit(p.ResBEnc, 6) | bit(p.ResEnc, 7)
	putU16BE(b[3:], p.SyncCount)
	return b
}

// Unpack decodes the packet image. b must hold at least ModeLen bytes.
func (p *ModePacket) Unpack(b []byte) {
	p.PMode, p.RegEn, p.ResetD, p.EmReset = has(b[0], 0), has(b[0], 1), has(b[0], 2), has(b[0], 3)
	p.Tr1T, p.Tr2T, p.RotTrT, p.TrSwap = has(b[0], 4), has(b[0], 5), has(b[0], 6), has(b[0], 7)
	p.Tr1En, p.Tr2En, p.RotTrEn, p.RotTrOp = has(b[1], 0), has(b[1], 1), has(b[1], 2), has(b[1], 3)
	p.Butt1T, p.Butt2T, p.ButSwap, p.ResetRT = has(b[1], 4), has(b[1], 5), has(b[1], 6), has(b[1], 7)
	p.SyncOutEn, p.SyncOutR, p.SyncInOp, p.SyncInvert = has(b[2], 0), has(b[2], 1), has(b[2], 2), has(b[2], 3)
	p.EncoderEn, p.EncoderInv, p.ResBEnc, p.ResEnc = has(b[2], 4), has(b[2], 5), has(b[2], 6), has(b[2], 7)
	p.SyncCount = getU16BE(b[3:])
}

// Setup splits a packed image into the setup words and the data-stage
// payload. The mode command sends both words most-significant-byte-first.
func (p *ModePacket) Setup(b []byte) (value, index uint16, payload []byte) {
	value, index = wordsSwapped(b)
	return value, index, b[4:ModeLen]
}

// ParamsPacket is the 57-byte timing/limit configuration command. All
// fields are raw device units; unit conversion happens upstream.
type ParamsPacket struct {
	Delay1       uint8  // acceleration time multiplier
	Delay2       uint8  // deceleration time multiplier
	RefInTimeout uint16 // current reduction timeout, ticks
	BTimeout1    uint16 // | button timeouts, ticks, big-endian
	BTimeout2    uint16 // |
	BTimeout3    uint16 // |
	BTimeout4    uint16 // |
	BTimeoutR    uint16 // reset command timeout, ticks, big-endian
	BTimeoutD    uint16 // double click timeout, ticks, big-endian
	MinPeriod    uint16 // standard timer period, big-endian
	BTO1P        uint16 // | button rotation timer periods, big-endian
	BTO2P        uint16 // |
	BTO3P        uint16 // |
	BTO4P        uint16 // |
	MaxLoft      uint16 // max backlash, 1/64 full steps, big-endian
	StartPos     uint32 // flash start position, big-endian
	RTDelta      uint16 // revolution distance, 1/64 full steps, big-endian
	RTMinError   uint16 // min transducer error, 1/64 full steps, big-endian
	MaxTemp      uint16 // raw temperature limit, big-endian
	SyncOutP     uint8  // output sync pulse duration
	LoftPeriod   uint16 // backlash last-phase timer period, big-endian
	EncVSCP      uint8  // 4x encoder steps per full motor step
}

// Pack encodes the packet image. The 15 trailing reserved bytes are zero.
func (p *ParamsPacket) Pack() []byte {
	b := make([]byte, ParamsLen)
	b[0] = p.Delay1
	b[1] = p.Delay2
	putU16(b[2:], p.RefInTimeout)
	putU16BE(b[4:], p.BTimeout1)
	putU16BE(b[6:], p.BTimeout2)
	putU16BE(b[8:], p.BTimeout3)
	putU16BE(b[10:], p.BTimeout4)
	putU16BE(b[12:], p.BTimeoutR)
	putU16BE(b[14:], p.BTimeoutD)
	putU16BE(b[16:], p.MinPeriod)
	putU16BE(b[18:], p.BTO1P)
	putU16BE(b[20:], p.BTO2P)
	putU16BE(b[22:], p.BTO3P)
	putU16BE(b[24:], p.BTO4P)
	putU16BE(b[26:], p.MaxLoft)
	putU32BE(b[28:], p.StartPos)
	putU16BE(b[32:], p.RTDelta)
	putU16BE(b[34:], p.RTMinError)
	putU16BE(b[36:], p.MaxTemp)
	b[38] = p.SyncOutP
	putU16BE(b[39:], p.LoftPeriod)
	b[41] = p.EncVSCP
	return b
}

// Unpack decodes the packet image. b must hold at least ParamsLen bytes.
func (p *ParamsPacket) Unpack(b []byte) {
	p.Delay1 = b[0]
	p.Delay2 = b[1]
	p.RefInTimeout = getU16(b[2:])
	p.BTimeout1 = getU16BE(b[4:])
	p.BTimeout2 = getU16BE(b[6:])
	p.BTimeout3 = getU16BE(b[8:])
	p.BTimeout4 = getU16BE(b[10:])
	p.BTimeoutR = getU16BE(b[12:])
	p.BTimeoutD = getU16BE(b[14:])
	p.MinPeriod = getU16BE(b[16:])
	p.BTO1P = getU16BE(b[18:])
	p.BTO2P = getU16BE(b[20:])
	p.BTO3P = getU16BE(b[22:])
	p.BTO4P = getU16BE(b[24:])
	p.MaxLoft = getU16BE(b[26:])
	p.StartPos = getU32BE(b[28:])
	p.RTDelta = getU16BE(b[32:])
	p.RTMinError = getU16BE(b[34:])
	p.MaxTemp = getU16BE(b[36:])
	p.SyncOutP = b[38]
	p.LoftPeriod = getU16BE(b[39:])
	p.EncVSCP = b[41]
}

// Setup splits a packed image into the setup words and the data-stage
// payload. The parameters command sends wValue most-significant-byte-first
// and wIndex in natural order.
func (p *ParamsPacket) Setup(b []byte) (value, index uint16, payload []byte) {
	return getU16BE(b[:2]), getU16(b[2:]), b[4:ParamsLen]
}

// PositionWords splits a raw wire position into the setup words of the
// set-position command: low word in wIndex, high word in wValue, both in
// natural order. The command carries no data stage.
func PositionWords(pos uint32) (value, index uint16) {
	return uint16(pos >> 16), uint16(pos)
}
