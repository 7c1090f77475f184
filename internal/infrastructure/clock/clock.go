package clock

import (
	"sync"
	"time"
)

// SystemClock is a ports.Clock reading the wall clock.
type SystemClock struct{}

// NewSystemClock returns a SystemClock.
func NewSystemClock() SystemClock {
	return SystemClock{}
}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock is a ports.Clock that moves only when told to. Useful for
// tests and simulations.
type ManualClock struct {
	lock sync.RWMutex
	now  time.Time
}

// NewManualClock returns a clock set at the given time.
func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Now() time.Time {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.now
}

// Set moves the clock at the given time.
func (c *ManualClock) Set(now time.Time) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = c.now.Add(d)
}
