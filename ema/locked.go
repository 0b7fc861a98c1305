package ema

import "sync"

// Locked guards an Accumulator with a read/write mutex. Updates are
// exclusive; reads never observe a half-applied update.
type Locked struct {
	mu  sync.RWMutex
	acc *Accumulator
}

func NewLocked(acc *Accumulator) *Locked {
	return &Locked{acc: acc}
}

func (l *Locked) Update(observation float64) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.acc.Update(observation)
}

func (l *Locked) UpdateAt(observation, timestamp float64) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.acc.UpdateAt(observation, timestamp)
}

func (l *Locked) Value() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.acc.Value()
}

func (l *Locked) Count() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.acc.Count()
}
