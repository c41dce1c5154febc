package testutil

import (
	"sync"
	"time"
)

// DefaultEpoch is where a DeterministicClock starts when none is given.
var DefaultEpoch = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

// DeterministicClock returns evenly spaced wall times for tests.
//
// The first call to Now() returns the epoch plus one step; each later call
// advances by another step. Reset rewinds it so the same scenario can run
// again with identical timestamps.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	epoch time.Time
	step  time.Duration
	ticks int64
}

// NewDeterministicClock creates a clock at epoch advancing by step.
// A zero epoch selects DefaultEpoch and a non-positive step selects one minute.
func NewDeterministicClock(epoch time.Time, step time.Duration) *DeterministicClock {
	if epoch.IsZero() {
		epoch = DefaultEpoch
	}
	if step <= 0 {
		step = time.Minute
	}
	return &DeterministicClock{epoch: epoch.UTC(), step: step}
}

// Now advances the clock and returns the new time.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks++
	return c.epoch.Add(time.Duration(c.ticks) * c.step)
}

// Ticks returns how many times Now has been called.
func (c *DeterministicClock) Ticks() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

// Reset rewinds the clock to its epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks = 0
}
