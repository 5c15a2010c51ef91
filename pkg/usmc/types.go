package usmc

// Mode is the controller's soft configuration. It is cached
// write-through: the local copy changes only after the hardware
// acknowledged the matching write.
type Mode struct {
	PMode      bool   // buttons disabled
	PReg       bool   // current reduction regime enabled
	ResetD     bool   // power off and make a whole step
	EmReset    bool   // quick power off
	Tr1T       bool   // trailer 1 active-high
	Tr2T       bool   // trailer 2 active-high
	RotTrT     bool   // rotary transducer active-high
	TrSwap     bool   // trailers swapped
	Tr1En      bool   // trailer 1 enabled
	Tr2En      bool   // trailer 2 enabled
	RotTrEn    bool   // rotary transducer enabled
	RotTrOp    bool   // stop on transducer error
	Butt1T     bool   // button 1 active-high
	Butt2T     bool   // button 2 active-high
	ResetRT    bool   // reset transducer check positions
	SyncOutEn  bool   // output synchronization enabled
	SyncOutR   bool   // reset output sync counter
	SyncInOp   bool   // input sync moves once to DestPos instead of by DestPos
	SyncCount  uint16 // steps between output sync pulses
	SyncInvert bool   // invert output sync polarity
	EncoderEn  bool   // encoder on {SyncIn,RotTr} pins
	EncoderInv bool   // invert encoder direction
	ResBEnc    bool   // reset both encoder counters to 0
	ResEnc     bool   // reset motor position in encoder units to encoder counter
}

// Parameters are the controller's timing, speed and temperature limits.
// Every field has a documented range checked before any wire write.
type Parameters struct {
	AccelT     float64 // acceleration time, ms, [49,1518]
	DecelT     float64 // deceleration time, ms, [49,1518]
	PTimeout   float64 // current reduction timeout, ms, [1,9961]
	BTimeout1  float64 // | button speed stage timeouts, ms, [1,9961]
	BTimeout2  float64 // |
	BTimeout3  float64 // |
	BTimeout4  float64 // |
	BTimeoutR  float64 // reset command timeout, ms, [1,9961]
	BTimeoutD  float64 // double click timeout, ms, [1,9961]
	MinP       float64 // reset operation speed, steps/sec, [2,625]
	BTO1P      float64 // | button stage speeds, steps/sec, [2,625]
	BTO2P      float64 // |
	BTO3P      float64 // |
	BTO4P      float64 // |
	MaxLoft    uint16  // backlash distance, full steps, [1,1023]
	StartPos   uint32  // position saved to flash
	RTDelta    uint16  // full steps per revolution, [4,1023]
	RTMinError uint16  // full steps missed to raise the error flag, [4,1023]
	MaxTemp    float64 // temperature limit, degrees C, [0,100]
	SyncOutP   uint8   // output sync pulse duration
	LoftPeriod float64 // backlash last-phase speed, steps/sec, 0 or [16,5000]
	EncMult    float64 // encoder steps per motor step, multiple of 0.25
}

// StartParameters configure individual moves. They are cached locally
// and never read back from hardware.
type StartParameters struct {
	SDivisor  uint8 // step divisor, one of 1,2,4,8
	DefDir    bool  // direction for backlash operation
	LoftEn    bool  // automatic backlash operation
	SlStart   bool  // slow start/stop mode
	WSyncIn   bool  // wait for input sync signal to start
	SyncOutR  bool  // reset output sync counter
	ForceLoft bool  // force backlash when already at target
}

// State is a read-only snapshot of the controller, queried fresh on
// every call and never cached.
type State struct {
	CurPos     int     // current position, steps (wire unit is 1/8 step)
	Temp       float64 // driver temperature, degrees C
	SDivisor   uint8   // current step divisor
	Loft       bool    // backlash state
	FullPower  bool
	CWCCW      bool // current rotation direction, relative
	Power      bool // motor power on
	FullSpeed  bool // valid in slow-start mode only
	AfterReset bool // set after reset, cleared by set-position
	Running    bool
	SyncIn     bool // input sync pin state
	SyncOut    bool // output sync pin state
	RotTr      bool
	RotTrErr   bool
	EmReset    bool
	Trailer1   bool
	Trailer2   bool
	Voltage    float64 // +40V input voltage
}

// EncoderState is a read-only snapshot of the encoder counters.
type EncoderState struct {
	EncoderPos int // encoder counter
	ECurPos    int // motor position in encoder units
}

// DefaultSpeed is the per-device move speed installed at probe time.
const DefaultSpeed = 200.0

// DefaultMode returns the soft configuration installed at probe time.
func DefaultMode() Mode {
	return Mode{
		PReg:      true,
		Tr1En:     true,
		Tr2En:     true,
		RotTrOp:   true,
		SyncOutEn: true,
		SyncInOp:  true,
		SyncCount: 4,
	}
}

// DefaultParameters returns the limits installed at probe time.
func DefaultParameters() Parameters {
	return Parameters{
		AccelT:     200,
		DecelT:     200,
		PTimeout:   100,
		BTimeout1:  500,
		BTimeout2:  500,
		BTimeout3:  500,
		BTimeout4:  500,
		BTimeoutR:  500,
		BTimeoutD:  500,
		MinP:       500,
		BTO1P:      200,
		BTO2P:      300,
		BTO3P:      400,
		BTO4P:      500,
		MaxLoft:    32,
		RTDelta:    200,
		RTMinError: 15,
		MaxTemp:    70,
		SyncOutP:   1,
		LoftPeriod: 32,
		EncMult:    2.5,
	}
}

// DefaultStartParameters returns the move configuration installed at
// probe time.
func DefaultStartParameters() StartParameters {
	return StartParameters{
		SDivisor: 8,
		LoftEn:   true,
		SlStart:  true,
	}
}
