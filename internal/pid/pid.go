package pid

import "github.com/pkg/errors"

// Gains holds the five tunable parameters of one regulator. IMax and IMin
// bound the integral accumulator, not the final output.
type Gains struct {
	Kp   float64 `yaml:"kp"`
	Ki   float64 `yaml:"ki"`
	Kd   float64 `yaml:"kd"`
	IMax float64 `yaml:"i_max"`
	IMin float64 `yaml:"i_min"`
}

func (g Gains) Validate() error {
	if g.IMin > g.IMax {
		return errors.Errorf("integral bounds inverted: [%g, %g]", g.IMin, g.IMax)
	}
	return nil
}

// Regulator is a single-joint PID velocity regulator. It is not safe for
// concurrent use; the control cycle guarantees one caller at a time.
type Regulator struct {
	gains    Gains
	integral float64
	prevErr  float64
}

func New(g Gains) (*Regulator, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &Regulator{gains: g}, nil
}

func (r *Regulator) Gains() Gains { return r.gains }

// Reset clears the integral accumulator and the previous-error memory.
func (r *Regulator) Reset() {
	r.integral = 0
	r.prevErr = 0
}

// Update advances the regulator by one cycle and returns the effort
// increment for the elapsed interval dt (seconds). A negative dt is
// treated as zero, and at dt == 0 the derivative term is suppressed
// instead of dividing by zero.
func (r *Regulator) Update(err, dt float64) float64 {
	if dt < 0 {
		dt = 0
	}

	r.integral += err * dt
	if r.integral > r.gains.IMax {
		r.integral = r.gains.IMax
	}
	if r.integral < r.gains.IMin {
		r.integral = r.gains.IMin
	}

	derivative := 0.0
	if dt > 0 {
		derivative = (err - r.prevErr) / dt
	}

	out := r.gains.Kp*err + r.gains.Ki*r.integral + r.gains.Kd*derivative
	r.prevErr = err
	return out
}
