package pid

import (
	"math"
	"testing"
)

func TestProportionalOnly(t *testing.T) {
	r, err := New(Gains{Kp: 2.0, IMax: 10, IMin: -10})
	if err != nil {
		t.Fatal(err)
	}

	out := r.Update(0.5, 0.01)
	if out != 1.0 {
		t.Errorf("expected 1.0, got %f", out)
	}
}

func TestIntegralAccumulates(t *testing.T) {
	r, _ := New(Gains{Ki: 1.0, IMax: 10, IMin: -10})

	out := r.Update(1.0, 0.5)
	if out != 0.5 {
		t.Errorf("expected 0.5 after first step, got %f", out)
	}

	out = r.Update(1.0, 0.5)
	if out != 1.0 {
		t.Errorf("expected 1.0 after second step, got %f", out)
	}
}

func TestIntegralClamp(t *testing.T) {
	r, _ := New(Gains{Ki: 1.0, IMax: 0.2, IMin: -0.2})

	for i := 0; i < 100; i++ {
		r.Update(1.0, 1.0)
	}
	if out := r.Update(0, 0); out != 0.2 {
		t.Errorf("accumulator should clamp at 0.2, got %f", out)
	}

	for i := 0; i < 100; i++ {
		r.Update(-1.0, 1.0)
	}
	if out := r.Update(0, 0); out != -0.2 {
		t.Errorf("accumulator should clamp at -0.2, got %f", out)
	}
}

func TestZeroDt(t *testing.T) {
	r, _ := New(Gains{Kp: 1.0, Kd: 5.0, IMax: 10, IMin: -10})

	r.Update(1.0, 0.01)
	out := r.Update(2.0, 0)
	if math.IsNaN(out) || math.IsInf(out, 0) {
		t.Fatalf("dt=0 must not produce NaN/Inf, got %f", out)
	}
	if out != 2.0 {
		t.Errorf("derivative should be suppressed at dt=0, got %f", out)
	}
}

func TestNegativeDtClamped(t *testing.T) {
	r, _ := New(Gains{Ki: 1.0, Kd: 1.0, IMax: 10, IMin: -10})

	r.Update(1.0, 0.01)
	out := r.Update(1.0, -0.5)

	// integral unchanged from the first step, derivative suppressed
	if out != 0.01 {
		t.Errorf("negative dt should behave like dt=0, got %f", out)
	}
}

func TestDerivative(t *testing.T) {
	r, _ := New(Gains{Kd: 1.0, IMax: 10, IMin: -10})

	r.Update(0.0, 0.1)
	out := r.Update(1.0, 0.1)
	if math.Abs(out-10.0) > 1e-12 {
		t.Errorf("expected derivative 10.0, got %f", out)
	}
}

func TestResetClearsState(t *testing.T) {
	r, _ := New(Gains{Kp: 1.0, Ki: 1.0, Kd: 1.0, IMax: 10, IMin: -10})

	r.Update(3.0, 0.5)
	r.Update(1.0, 0.5)
	r.Reset()

	// after reset the regulator must behave like a fresh instance
	fresh, _ := New(Gains{Kp: 1.0, Ki: 1.0, Kd: 1.0, IMax: 10, IMin: -10})
	if got, want := r.Update(1.0, 0.5), fresh.Update(1.0, 0.5); got != want {
		t.Errorf("reset regulator diverges from fresh one: %f vs %f", got, want)
	}
}

func TestInvertedBoundsRejected(t *testing.T) {
	if _, err := New(Gains{IMax: -1, IMin: 1}); err == nil {
		t.Error("expected error for inverted integral bounds")
	}
}
