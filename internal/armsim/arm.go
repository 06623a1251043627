// Package armsim is a kinematics-free stand-in for arm hardware. Each
// joint holds a persistent commanded effort and a velocity that follows
// it with a first-order lag, which is enough to close the loop against
// the velocity controller in tests and offline sessions.
package armsim

import (
	"sync"

	"github.com/san-kum/armctl/internal/joint"
)

type Joint struct {
	name string

	mu         sync.Mutex
	velocity   float64
	effort     float64
	calibrated bool
}

func (j *Joint) Name() string { return j.name }

func (j *Joint) Velocity() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.velocity
}

func (j *Joint) AddEffort(delta float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.effort += delta
}

func (j *Joint) Effort() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.effort
}

func (j *Joint) Calibrated() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.calibrated
}

// SetCalibrated flips the readiness flag, for exercising the init gate.
func (j *Joint) SetCalibrated(ok bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.calibrated = ok
}

// Arm owns a set of simulated joints.
type Arm struct {
	joints  []*Joint
	byName  map[string]*Joint
	inertia float64
	damping float64
}

func New(names []string, inertia, damping float64) *Arm {
	a := &Arm{
		byName:  make(map[string]*Joint, len(names)),
		inertia: inertia,
		damping: damping,
	}
	for _, n := range names {
		j := &Joint{name: n, calibrated: true}
		a.joints = append(a.joints, j)
		a.byName[n] = j
	}
	return a
}

// Joint implements joint.Provider.
func (a *Arm) Joint(name string) (joint.Handle, bool) {
	j, ok := a.byName[name]
	if !ok {
		return nil, false
	}
	return j, true
}

// Named returns the concrete simulated joint, for tests.
func (a *Arm) Named(name string) (*Joint, bool) {
	j, ok := a.byName[name]
	return j, ok
}

// Step advances every joint by dt seconds with a forward Euler step of
//
//	v' = (effort - damping*v) / inertia
func (a *Arm) Step(dt float64) {
	for _, j := range a.joints {
		j.mu.Lock()
		j.velocity += dt * (j.effort - a.damping*j.velocity) / a.inertia
		j.mu.Unlock()
	}
}

// Snapshot returns the live velocities and commanded efforts in the
// arm's joint order.
func (a *Arm) Snapshot() (velocities, efforts []float64) {
	velocities = make([]float64, len(a.joints))
	efforts = make([]float64, len(a.joints))
	for i, j := range a.joints {
		j.mu.Lock()
		velocities[i] = j.velocity
		efforts[i] = j.effort
		j.mu.Unlock()
	}
	return velocities, efforts
}
