package store

import (
	"testing"

	"github.com/san-kum/armctl/internal/metrics"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	samples := []metrics.Sample{
		{T: 0.00, Velocities: []float64{0.0, 0.0}, Targets: []float64{1.0, -1.0}, Efforts: []float64{0.5, -0.5}},
		{T: 0.01, Velocities: []float64{0.1, -0.1}, Targets: []float64{1.0, -1.0}, Efforts: []float64{0.9, -0.9}},
	}
	vals := map[string]float64{"tracking_error_rms": 0.95}

	runID, err := st.Save([]string{"a", "b"}, 100, 0.02, samples, vals)
	if err != nil {
		t.Fatal(err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Rate != 100 {
		t.Errorf("expected rate 100, got %f", meta.Rate)
	}
	if len(meta.Joints) != 2 {
		t.Errorf("expected 2 joints, got %v", meta.Joints)
	}
	if meta.Metrics["tracking_error_rms"] != 0.95 {
		t.Errorf("metrics not round-tripped: %v", meta.Metrics)
	}

	header, times, rows, err := st.LoadTrace(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(header) != 6 {
		t.Fatalf("expected 6 trace columns, got %v", header)
	}
	if header[0] != "vel_a" || header[1] != "tgt_a" || header[2] != "eff_a" {
		t.Errorf("unexpected header layout: %v", header)
	}
	if len(times) != 2 || len(rows) != 2 {
		t.Fatalf("expected 2 trace rows, got %d/%d", len(times), len(rows))
	}
	if rows[1][0] != 0.1 {
		t.Errorf("expected vel_a 0.1 in second row, got %f", rows[1][0])
	}
}

func TestListEmpty(t *testing.T) {
	st := New(t.TempDir() + "/missing")
	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}
