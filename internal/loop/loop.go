// Package loop is the host runtime for offline control sessions: it
// drives the controller at a fixed rate against a plant, feeding it
// commands from an asynchronous channel, and records the trace.
package loop

import (
	"context"
	"time"

	"github.com/san-kum/armctl/internal/controller"
	"github.com/san-kum/armctl/internal/joint"
	"github.com/san-kum/armctl/internal/metrics"
	"github.com/san-kum/armctl/internal/msg"
)

// Plant is the simulated hardware advanced between control cycles.
type Plant interface {
	Step(dt float64)
	Snapshot() (velocities, efforts []float64)
}

type Observer interface {
	OnTick(s metrics.Sample)
}

type Config struct {
	Rate     float64
	Duration float64
}

type Result struct {
	Samples []metrics.Sample
	Metrics map[string]float64
	Ticks   int
}

type Runner struct {
	ctrl      *controller.Controller
	plant     Plant
	clock     *joint.ManualClock
	metrics   []metrics.Metric
	observers []Observer
	commands  chan msg.JointVelocities
}

func New(ctrl *controller.Controller, plant Plant, clock *joint.ManualClock) *Runner {
	return &Runner{
		ctrl:     ctrl,
		plant:    plant,
		clock:    clock,
		commands: make(chan msg.JointVelocities, 16),
	}
}

func (r *Runner) AddMetric(m metrics.Metric) { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer)     { r.observers = append(r.observers, o) }

// Send queues one velocity command for the loop to apply. It mirrors the
// asynchronous command transport: delivery is decoupled from the cycle.
func (r *Runner) Send(cmd msg.JointVelocities) {
	r.commands <- cmd
}

// Run executes a fixed-duration session at the configured rate, stepping
// simulated time with the manual clock. Pending commands are applied
// between cycles, never inside one.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	steps := int(cfg.Duration * cfg.Rate)
	period := time.Duration(float64(time.Second) / cfg.Rate)
	dt := period.Seconds()

	result := &Result{
		Samples: make([]metrics.Sample, 0, steps),
		Metrics: make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}
	r.ctrl.Starting()

	t := 0.0
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		r.drainCommands()

		r.clock.Advance(period)
		r.ctrl.Tick()
		r.plant.Step(dt)
		t += dt

		velocities, efforts := r.plant.Snapshot()
		sample := metrics.Sample{
			T:          t,
			Velocities: velocities,
			Targets:    r.ctrl.Targets(),
			Efforts:    efforts,
		}

		for _, m := range r.metrics {
			m.Observe(sample)
		}
		for _, o := range r.observers {
			o.OnTick(sample)
		}

		result.Samples = append(result.Samples, sample)
		result.Ticks++
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

func (r *Runner) drainCommands() {
	for {
		select {
		case cmd := <-r.commands:
			r.ctrl.Apply(cmd)
		default:
			return
		}
	}
}
