package ema

import "github.com/cockroachdb/errors"

// Mode selects how an Accumulator weighs new observations. It is fixed at
// construction.
type Mode int

const (
	// FixedWeight blends every observation with the same weight. Suited to
	// evenly spaced series.
	FixedWeight Mode = iota
	// TimeWeighted recomputes the weight from the time elapsed since the
	// previous observation. Suited to irregular series.
	TimeWeighted
)

func (m Mode) String() string {
	switch m {
	case FixedWeight:
		return "fixed"
	case TimeWeighted:
		return "timed"
	default:
		return "unknown"
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "fixed":
		return FixedWeight, nil
	case "timed":
		return TimeWeighted, nil
	default:
		return 0, errors.Newf("unknown mode %q (want fixed or timed)", s)
	}
}
