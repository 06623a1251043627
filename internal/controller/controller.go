// Package controller implements the per-cycle joint velocity controller:
// a fixed-order joint registry bound at init, one PID regulator per joint,
// and a control cycle that turns velocity error into incremental effort.
package controller

import (
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/san-kum/armctl/internal/config"
	"github.com/san-kum/armctl/internal/joint"
	"github.com/san-kum/armctl/internal/msg"
	"github.com/san-kum/armctl/internal/pid"
)

var (
	ErrUnknownJoint  = errors.New("controller: joint not found")
	ErrNotCalibrated = errors.New("controller: joint not calibrated")
)

// Controller regulates the velocity of a fixed set of joints. Tick is
// driven at a fixed rate by the host loop while Apply ingests commands
// asynchronously; one mutex covers the state both paths touch (targets,
// cycle clock, and regulator state via the empty-command reset).
type Controller struct {
	joints []joint.Handle
	pids   []*pid.Regulator
	clock  joint.Clock
	logger golog.Logger

	mu      sync.Mutex
	targets []float64
	last    time.Time
}

// New binds the configured joints against the provider and builds one
// regulator per joint. Any unresolved name, uncalibrated joint, or bad
// gain set fails the whole initialization; no partial controller is
// ever returned.
func New(provider joint.Provider, clock joint.Clock, cfg *config.Config, logger golog.Logger) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{clock: clock, logger: logger}

	for _, jc := range cfg.Joints {
		h, ok := provider.Joint(jc.Name)
		if !ok {
			return nil, errors.Wrap(ErrUnknownJoint, jc.Name)
		}
		c.joints = append(c.joints, h)
	}

	for _, h := range c.joints {
		if !h.Calibrated() {
			return nil, errors.Wrap(ErrNotCalibrated, h.Name())
		}
	}

	for _, jc := range cfg.Joints {
		reg, err := pid.New(jc.Gains)
		if err != nil {
			return nil, errors.Wrapf(err, "pid for joint %s", jc.Name)
		}
		g := reg.Gains()
		logger.Debugf("pid for joint %s: p=%g i=%g d=%g i_max=%g i_min=%g",
			jc.Name, g.Kp, g.Ki, g.Kd, g.IMax, g.IMin)
		c.pids = append(c.pids, reg)
	}

	// registry order is the permanent index space; targets are sized to
	// it once and never resized
	c.targets = make([]float64, len(c.joints))
	c.last = clock.Now()

	return c, nil
}

// Len returns the number of registered joints.
func (c *Controller) Len() int { return len(c.joints) }

// Names returns the joint names in registry order.
func (c *Controller) Names() []string {
	names := make([]string, len(c.joints))
	for i, h := range c.joints {
		names[i] = h.Name()
	}
	return names
}

// Targets returns a copy of the current target velocity vector.
func (c *Controller) Targets() []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]float64, len(c.targets))
	copy(out, c.targets)
	return out
}

// Starting resets every regulator and restarts the cycle clock. The host
// loop calls it once before the first Tick and on every restart.
func (c *Controller) Starting() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startingLocked()
}

func (c *Controller) startingLocked() {
	for _, r := range c.pids {
		r.Reset()
	}
	c.last = c.clock.Now()
}

// Tick runs one control cycle: it computes the elapsed interval since the
// previous cycle and, for every joint in registry order, feeds the velocity
// error through that joint's regulator and accumulates the resulting effort
// increment onto the joint. It never fails and never blocks beyond the
// shared-state mutex.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	dt := now.Sub(c.last).Seconds()
	c.last = now
	if dt < 0 {
		// clock skew; regulate as if no time passed rather than feeding
		// a negative interval into the integral and derivative terms
		dt = 0
	}

	for i, h := range c.joints {
		err := c.targets[i] - h.Velocity()
		h.AddEffort(c.pids[i].Update(err, dt))
	}
}

// Apply ingests one velocity command. An empty command is a stop request
// and behaves exactly like Starting; stored targets are left untouched.
// Otherwise each registered joint takes the first matching entry by name.
// Unmatched joints keep their previous target, and a unit mismatch is
// reported but the value is applied anyway.
func (c *Controller) Apply(cmd msg.JointVelocities) {
	if cmd.Empty() {
		c.logger.Debug("empty velocity command, resetting")
		c.Starting()
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, h := range c.joints {
		found := false
		for _, v := range cmd.Velocities {
			if v.JointURI != h.Name() {
				continue
			}
			if v.Unit != msg.RadianPerSecond {
				c.logger.Warnf("joint %s commanded in %q, expected %q",
					h.Name(), v.Unit, msg.RadianPerSecond)
			}
			c.targets[i] = v.Value
			found = true
			break
		}
		if !found {
			c.logger.Warnf("unable to locate joint %s in the commanded velocities", h.Name())
		}
	}
}
