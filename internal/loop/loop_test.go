package loop

import (
	"context"
	"testing"
	"time"

	"github.com/edaniels/golog"

	"github.com/san-kum/armctl/internal/armsim"
	"github.com/san-kum/armctl/internal/config"
	"github.com/san-kum/armctl/internal/controller"
	"github.com/san-kum/armctl/internal/joint"
	"github.com/san-kum/armctl/internal/metrics"
	"github.com/san-kum/armctl/internal/msg"
	"github.com/san-kum/armctl/internal/pid"
)

func newRunner(t *testing.T) (*Runner, *armsim.Arm) {
	t.Helper()
	cfg := &config.Config{
		Rate: 100,
		Joints: []config.JointConfig{
			{Name: "a", Gains: pid.Gains{Kp: 0.5, IMax: 1, IMin: -1}},
			{Name: "b", Gains: pid.Gains{Kp: 0.5, IMax: 1, IMin: -1}},
		},
	}
	arm := armsim.New(cfg.JointNames(), 1.0, 1.0)
	clock := joint.NewManualClock(time.Unix(0, 0))
	ctrl, err := controller.New(arm, clock, cfg, golog.NewTestLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	return New(ctrl, arm, clock), arm
}

func TestRunProducesTrace(t *testing.T) {
	r, _ := newRunner(t)
	for _, m := range metrics.Defaults() {
		r.AddMetric(m)
	}
	r.Send(msg.JointVelocities{Velocities: []msg.JointValue{
		msg.Velocity("a", 0.5),
		msg.Velocity("b", -0.5),
	}})

	result, err := r.Run(context.Background(), Config{Rate: 100, Duration: 1.0})
	if err != nil {
		t.Fatal(err)
	}
	if result.Ticks != 100 {
		t.Errorf("expected 100 ticks, got %d", result.Ticks)
	}
	if len(result.Samples) != 100 {
		t.Fatalf("expected 100 samples, got %d", len(result.Samples))
	}
	if len(result.Samples[0].Velocities) != 2 {
		t.Errorf("expected 2 joints per sample, got %d", len(result.Samples[0].Velocities))
	}
	if _, ok := result.Metrics["tracking_error_rms"]; !ok {
		t.Error("expected tracking_error_rms in metrics")
	}

	// the command was applied before the first recorded cycle
	if result.Samples[0].Targets[0] != 0.5 {
		t.Errorf("expected target 0.5 recorded, got %f", result.Samples[0].Targets[0])
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	r, _ := newRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := r.Run(ctx, Config{Rate: 100, Duration: 10})
	if err == nil {
		t.Fatal("expected context error")
	}
	if result.Ticks != 0 {
		t.Errorf("expected no ticks after immediate cancel, got %d", result.Ticks)
	}
}

type tickCounter struct{ n int }

func (c *tickCounter) OnTick(metrics.Sample) { c.n++ }

func TestObserverSeesEveryTick(t *testing.T) {
	r, _ := newRunner(t)
	c := &tickCounter{}
	r.AddObserver(c)

	if _, err := r.Run(context.Background(), Config{Rate: 100, Duration: 0.5}); err != nil {
		t.Fatal(err)
	}
	if c.n != 50 {
		t.Errorf("expected 50 observations, got %d", c.n)
	}
}
