package usmc

import "github.com/motionworks/usmc.go/pkg/usmc/units"

func inRange(v, min, max float64) bool {
	return v >= min && v <= max
}

// validateParameters checks every field against its documented range.
// It returns the first violation so a rejected write never partially
// mutates anything.
func validateParameters(p *Parameters) error {
	type check struct {
		field    string
		v        float64
		min, max float64
	}
	checks := []check{
		{"AccelT", p.AccelT, 49, 1518},
		{"DecelT", p.DecelT, 49, 1518},
		{"PTimeout", p.PTimeout, units.MinTimeout, units.MaxTimeout},
		{"BTimeout1", p.BTimeout1, units.MinTimeout, units.MaxTimeout},
		{"BTimeout2", p.BTimeout2, units.MinTimeout, units.MaxTimeout},
		{"BTimeout3", p.BTimeout3, units.MinTimeout, units.MaxTimeout},
		{"BTimeout4", p.BTimeout4, units.MinTimeout, units.MaxTimeout},
		{"BTimeoutR", p.BTimeoutR, units.MinTimeout, units.MaxTimeout},
		{"BTimeoutD", p.BTimeoutD, units.MinTimeout, units.MaxTimeout},
		{"MaxLoft", float64(p.MaxLoft), 1, 1023},
		{"RTDelta", float64(p.RTDelta), 4, 1023},
		{"RTMinError", float64(p.RTMinError), 4, 1023},
		{"MaxTemp", p.MaxTemp, 0, 100},
		{"MinP", p.MinP, units.MinButtonSpeed, units.MaxButtonSpeed},
		{"BTO1P", p.BTO1P, units.MinButtonSpeed, units.MaxButtonSpeed},
		{"BTO2P", p.BTO2P, units.MinButtonSpeed, units.MaxButtonSpeed},
		{"BTO3P", p.BTO3P, units.MinButtonSpeed, units.MaxButtonSpeed},
		{"BTO4P", p.BTO4P, units.MinButtonSpeed, units.MaxButtonSpeed},
	}
	for _, c := range checks {
		if !inRange(c.v, c.min, c.max) {
			return &ValueError{Field: c.field}
		}
	}
	// Zero disables the last backlash phase.
	if p.LoftPeriod != 0 && !inRange(p.LoftPeriod, units.MinSpeed, units.MaxSpeed) {
		return &ValueError{Field: "LoftPeriod"}
	}
	return nil
}

// validateStartParameters checks the move configuration. Only the step
// divisor is constrained: it must encode into the 2-bit M1/M2 code.
func validateStartParameters(p *StartParameters) error {
	switch p.SDivisor {
	case 1, 2, 4, 8:
		return nil
	}
	return &ValueError{Field: "SDivisor"}
}

// validateSpeed checks a move speed in steps/sec.
func validateSpeed(speed float64) error {
	if !inRange(speed, units.MinSpeed, units.MaxSpeed) {
		return &ValueError{Field: "Speed"}
	}
	return nil
}
