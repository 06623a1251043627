// Package joint defines the contracts between the controller and the
// hardware (or simulation) it drives.
package joint

import "time"

// Handle exposes one controllable joint. Velocity is live feedback read
// every cycle; AddEffort accumulates onto the commanded actuator effort so
// several controllers can co-contribute within the same cycle.
type Handle interface {
	Name() string
	Velocity() float64
	AddEffort(delta float64)
	Calibrated() bool
}

// Provider resolves joint handles by name.
type Provider interface {
	Joint(name string) (Handle, bool)
}

// Clock supplies the control-cycle timestamps.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock is a clock advanced by hand, for offline sessions and tests.
type ManualClock struct {
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time { return c.now }

func (c *ManualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// Set rewinds or jumps the clock, including backwards.
func (c *ManualClock) Set(t time.Time) { c.now = t }
