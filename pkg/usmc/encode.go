package usmc

import (
	"github.com/motionworks/usmc.go/pkg/usmc/units"
	"github.com/motionworks/usmc.go/pkg/usmc/wire"
)

// modePacket maps the semantic mode to its wire image. The ButSwap wire
// bit has no semantic counterpart and stays at the hardware default.
func modePacket(m *Mode) *wire.ModePacket {
	return &wire.ModePacket{
		PMode:   m.PMode,
		RegEn:   m.PReg,
		ResetD:  m.ResetD,
		EmReset: m.EmReset,
		Tr1T:    m.Tr1T,
		Tr2T:    m.Tr2T,
		RotTrT:  m.RotTrT,
		TrSwap:  m.TrSwap,

		Tr1En:   m.Tr1En,
		Tr2En:   m.Tr2En,
		RotTrEn: m.RotTrEn,
		RotTrOp: m.RotTrOp,
		Butt1T:  m.Butt1T,
		Butt2T:  m.Butt2T,
		ResetRT: m.ResetRT,

		SyncOutEn:  m.SyncOutEn,
		SyncOutR:   m.SyncOutR,
		SyncInOp:   m.SyncInOp,
		SyncInvert: m.SyncInvert,
		EncoderEn:  m.EncoderEn,
		EncoderInv: m.EncoderInv,
		ResBEnc:    m.ResBEnc,
		ResEnc:     m.ResEnc,

		SyncCount: m.SyncCount,
	}
}

// paramsPacket maps the semantic parameters to raw device units for the
// given firmware version.
func paramsPacket(p *Parameters, version uint32) *wire.ParamsPacket {
	return &wire.ParamsPacket{
		Delay1:       units.DelayFromMillis(p.AccelT),
		Delay2:       units.DelayFromMillis(p.DecelT),
		RefInTimeout: units.TicksFromMillis(p.PTimeout),
		BTimeout1:    units.TicksFromMillis(p.BTimeout1),
		BTimeout2:    units.TicksFromMillis(p.BTimeout2),
		BTimeout3:    units.TicksFromMillis(p.BTimeout3),
		BTimeout4:    units.TicksFromMillis(p.BTimeout4),
		BTimeoutR:    units.TicksFromMillis(p.BTimeoutR),
		BTimeoutD:    units.TicksFromMillis(p.BTimeoutD),
		MinPeriod:    units.ButtonPeriodFromSpeed(p.MinP),
		BTO1P:        units.ButtonPeriodFromSpeed(p.BTO1P),
		BTO2P:        units.ButtonPeriodFromSpeed(p.BTO2P),
		BTO3P:        units.ButtonPeriodFromSpeed(p.BTO3P),
		BTO4P:        units.ButtonPeriodFromSpeed(p.BTO4P),
		MaxLoft:      units.ScaleSteps64(int(p.MaxLoft), 1, 1023),
		StartPos:     units.StartPosWire(p.StartPos, version),
		RTDelta:      units.ScaleSteps64(int(p.RTDelta), 4, 1023),
		RTMinError:   units.ScaleSteps64(int(p.RTMinError), 4, 1023),
		MaxTemp:      units.RawFromTemp(p.MaxTemp, version),
		SyncOutP:     p.SyncOutP,
		LoftPeriod:   units.LoftPeriodFromSpeed(p.LoftPeriod),
		EncVSCP:      units.EncVSCP(p.EncMult),
	}
}

// goToPacket builds a move command from the destination, the cached
// speed and the cached move configuration.
func goToPacket(dest int, speed float64, sp *StartParameters) *wire.GoToPacket {
	m1, m2 := units.DivisorCode(sp.SDivisor)
	return &wire.GoToPacket{
		DestPos:     units.WirePos(dest),
		TimerPeriod: units.PeriodFromSpeed(speed),
		M1:          m1,
		M2:          m2,
		DefDir:      sp.DefDir,
		LoftEn:      sp.LoftEn,
		SlStart:     sp.SlStart,
		WSyncIn:     sp.WSyncIn,
		SyncOutR:    sp.SyncOutR,
		ForceLoft:   sp.ForceLoft,
	}
}

// stateFromPacket converts a raw state snapshot to semantic units.
func stateFromPacket(pkt *wire.StatePacket, version uint32) State {
	return State{
		CurPos:     units.StepsFromWire(pkt.CurPos),
		Temp:       units.TempFromRaw(pkt.Temp, version),
		SDivisor:   units.DivisorFromCode(pkt.M1, pkt.M2),
		Loft:       pkt.Loft,
		FullPower:  pkt.RefIn,
		CWCCW:      pkt.CWCCW,
		Power:      pkt.Reset,
		FullSpeed:  pkt.FullSpeed,
		AfterReset: pkt.AfterReset,
		Running:    pkt.Run,
		SyncIn:     pkt.SyncIn,
		SyncOut:    pkt.SyncOut,
		RotTr:      pkt.RotTr,
		RotTrErr:   pkt.RotTrErr,
		EmReset:    pkt.EmReset,
		Trailer1:   pkt.Trailer1,
		Trailer2:   pkt.Trailer2,
		Voltage:    units.VoltsFromRaw(pkt.Voltage),
	}
}

// encoderFromPacket converts a raw encoder snapshot.
func encoderFromPacket(pkt *wire.EncoderPacket) EncoderState {
	return EncoderState{
		EncoderPos: int(int32(pkt.EncoderPos)),
		ECurPos:    int(int32(pkt.ECurPos)),
	}
}
