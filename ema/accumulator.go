// Package ema computes exponential moving averages over scalar observations,
// either with a fixed smoothing weight or with a weight decayed by the time
// elapsed between observations.
package ema

import (
	"math"

	"github.com/cockroachdb/errors"
)

// Accumulator holds a running exponential moving average.
//
// An Accumulator is not safe for concurrent use; see Locked.
type Accumulator struct {
	weight   float64
	value    float64
	count    uint64
	lastTime float64
	mode     Mode
}

// New returns an empty Accumulator. The weight is stored as given; values
// outside [0, 1] are accepted.
func New(weight float64, mode Mode) *Accumulator {
	return &Accumulator{weight: weight, mode: mode}
}

// Update feeds an observation to a FixedWeight accumulator and returns the
// new average. The first observation seeds the average.
func (a *Accumulator) Update(observation float64) (float64, error) {
	if a.mode != FixedWeight {
		return a.value, errors.Wrapf(ErrModeMismatch, "Update called on %s accumulator", a.mode)
	}

	a.count++
	if a.count == 1 {
		a.value = observation
		return a.value, nil
	}
	a.value = a.weight*observation + (1-a.weight)*a.value
	return a.value, nil
}

// UpdateAt feeds an observation taken at timestamp to a TimeWeighted
// accumulator and returns the new average. The weight applied is
// exp(-elapsed/n), where n is the observation count including this one.
//
// A timestamp earlier than the last accepted one fails with ErrStaleData and
// leaves the accumulator untouched. An equal timestamp replaces the average.
func (a *Accumulator) UpdateAt(observation, timestamp float64) (float64, error) {
	if a.mode != TimeWeighted {
		return a.value, errors.Wrapf(ErrModeMismatch, "UpdateAt called on %s accumulator", a.mode)
	}

	if a.count == 0 {
		a.count = 1
		a.value = observation
		a.lastTime = timestamp
		return a.value, nil
	}

	elapsed := timestamp - a.lastTime
	if elapsed < 0 {
		return a.value, errors.Wrapf(ErrStaleData, "timestamp %g precedes last accepted %g", timestamp, a.lastTime)
	}

	count := a.count + 1
	w := decayWeight(elapsed, count)
	a.count = count
	a.value = w*observation + (1-w)*a.value
	a.lastTime = timestamp
	return a.value, nil
}

func decayWeight(elapsed float64, count uint64) float64 {
	return math.Exp(-elapsed / float64(count))
}

// Value returns the current average, or zero before the first observation.
func (a *Accumulator) Value() float64 { return a.value }

// Count returns the number of accepted observations.
func (a *Accumulator) Count() uint64 { return a.count }

// LastTime returns the timestamp of the last accepted UpdateAt call.
func (a *Accumulator) LastTime() float64 { return a.lastTime }

func (a *Accumulator) Mode() Mode { return a.mode }

func (a *Accumulator) Weight() float64 { return a.weight }
