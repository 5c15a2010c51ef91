// Package units converts between human units and raw USMC device
// values. Conversions clamp unconditionally to keep the wire encoding
// in range; rejecting out-of-range input is the caller's job.
package units

import "math"

// Firmware version thresholds selecting between formula families.
const (
	// VersionTempLinear is the first firmware reporting temperature
	// through the linear sensor formula; older firmware uses a
	// thermistor curve.
	VersionTempLinear = 0x2400
	// VersionStartPos is the first firmware honoring the flash start
	// position field; older firmware requires zero there.
	VersionStartPos = 0x2407
)

// Speed limits in steps/sec.
const (
	MinSpeed = 16
	MaxSpeed = 5000

	// Button/reset rotation speeds use a slower timer.
	MinButtonSpeed = 2
	MaxButtonSpeed = 625
)

// Timeout limits in milliseconds.
const (
	MinTimeout = 1
	MaxTimeout = 9961
)

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// PeriodFromSpeed converts a move speed in steps/sec to the 16-bit step
// timer period: round(65536 - 1000000/speed), speed clamped to
// [MinSpeed, MaxSpeed].
func PeriodFromSpeed(speed float64) uint16 {
	return uint16(math.Floor(65536 - 1000000/clamp(speed, MinSpeed, MaxSpeed) + 0.5))
}

// ButtonPeriodFromSpeed converts a button rotation speed in steps/sec to
// a timer period on the 125kHz divisor, speed clamped to
// [MinButtonSpeed, MaxButtonSpeed].
func ButtonPeriodFromSpeed(speed float64) uint16 {
	return uint16(math.Floor(65536 - 125000/clamp(speed, MinButtonSpeed, MaxButtonSpeed) + 0.5))
}

// LoftPeriodFromSpeed converts the backlash last-phase speed to a timer
// period on the 125kHz divisor, clamped to [MinSpeed, MaxSpeed]. Zero
// means the phase is disabled and maps to zero.
func LoftPeriodFromSpeed(speed float64) uint16 {
	if speed == 0 {
		return 0
	}
	return uint16(math.Floor(65536 - 125000/clamp(speed, MinSpeed, MaxSpeed) + 0.5))
}

// DelayFromMillis converts an acceleration/deceleration time in ms to
// the 4-bit delay multiplier (98ms granularity, [1,15]).
func DelayFromMillis(ms float64) uint8 {
	return uint8(clampInt(int(ms/98+0.5), 1, 15))
}

// TicksFromMillis converts a timeout in ms to 0.152ms device ticks,
// clamped to [MinTimeout, MaxTimeout].
func TicksFromMillis(ms float64) uint16 {
	return uint16(clamp(ms, MinTimeout, MaxTimeout)/0.152 + 0.5)
}

// TempFromRaw converts a raw temperature reading to degrees Celsius.
// Firmware at or above VersionTempLinear reports through a linear
// sensor; older firmware reports a thermistor voltage resolved through
// the inverted beta equation (beta 3950K, 298K reference).
func TempFromRaw(raw uint16, version uint32) float64 {
	t := float64(raw)
	if version >= VersionTempLinear {
		return t*3.3*100/65536 - 50
	}
	t = t * 3.3 / 65536
	t = t * 10 / (5 - t)
	t = 1/298.0 + math.Log(t/10)/3950
	return 1/t - 273
}

// RawFromTemp converts a temperature limit in degrees Celsius to the
// raw device value, the algebraic inverse of TempFromRaw, rounded.
// Input is clamped to [0,100]. The thermistor curve cannot encode
// temperatures below roughly 10.8C; those saturate at 65535, the
// coldest representable reading.
func RawFromTemp(degC float64, version uint32) uint16 {
	t := clamp(degC, 0, 100)
	if version >= VersionTempLinear {
		return uint16((t+50)/330*65536 + 0.5)
	}
	t = 10 * math.Exp(3950*(1/(t+273)-1/298.0))
	raw := (5*t/(10+t))*65536/3.3 + 0.5
	if raw > 65535 {
		return 65535
	}
	return uint16(raw)
}

// VoltsFromRaw converts a raw voltage reading to volts. Readings below
// 5.0V are measurement noise on an unpowered input and floor to zero.
func VoltsFromRaw(raw uint16) float64 {
	v := float64(raw) / 65536 * 3.3 * 20
	if v < 5.0 {
		return 0
	}
	return v
}

// WirePos converts a position in user steps to wire units (1/8 step).
func WirePos(steps int) uint32 {
	return uint32(int32(steps * 8))
}

// StepsFromWire converts a wire position back to user steps. Division
// truncates toward zero for negative positions.
func StepsFromWire(pos uint32) int {
	return int(int32(pos)) / 8
}

// SetPosWire converts a position in user steps to the wire value of the
// set-position command: 1/8 step units aligned down to 32 wire units.
func SetPosWire(steps int) uint32 {
	return uint32(int32(steps*8)) & 0xFFFFFFE0
}

// StartPosWire converts the flash start position for the given firmware.
// Firmware below VersionStartPos ignores the field and requires zero;
// newer firmware takes 1/8 step units with the low byte masked.
func StartPosWire(steps uint32, version uint32) uint32 {
	if version < VersionStartPos {
		return 0
	}
	return (steps * 8) & 0xFFFFFF00
}

// DivisorCode converts a step divisor in {1,2,4,8} to its 2-bit M1/M2
// code. Callers validate the divisor; anything else maps to full step.
func DivisorCode(div uint8) (m1, m2 bool) {
	switch div {
	case 2:
		return true, false
	case 4:
		return false, true
	case 8:
		return true, true
	}
	return false, false
}

// DivisorFromCode converts the 2-bit M1/M2 code back to the divisor.
func DivisorFromCode(m1, m2 bool) uint8 {
	n := uint(0)
	if m1 {
		n |= 1
	}
	if m2 {
		n |= 2
	}
	return 1 << n
}

// ScaleSteps64 converts a full-step count to the 1/64 full-step wire
// unit used by the backlash and transducer fields, clamping to the
// documented range first.
func ScaleSteps64(steps, min, max int) uint16 {
	return uint16(clampInt(steps, min, max) * 64)
}

// EncVSCP converts the encoder multiplier to its wire form, 4x the
// multiplier rounded.
func EncVSCP(mult float64) uint8 {
	return uint8(mult*4 + 0.5)
}
