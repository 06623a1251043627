// Package metrics scores control sessions from the per-cycle trace.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Sample is one control cycle's trace record, index-aligned to the
// joint registry.
type Sample struct {
	T          float64
	Velocities []float64
	Targets    []float64
	Efforts    []float64
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// TrackingError reports the RMS velocity error across all joints
// and cycles.
type TrackingError struct {
	name    string
	squares []float64
}

func NewTrackingError() *TrackingError {
	return &TrackingError{name: "tracking_error_rms"}
}

func (m *TrackingError) Name() string { return m.name }

func (m *TrackingError) Observe(s Sample) {
	for i, v := range s.Velocities {
		if i >= len(s.Targets) {
			break
		}
		e := s.Targets[i] - v
		m.squares = append(m.squares, e*e)
	}
}

func (m *TrackingError) Value() float64 {
	if len(m.squares) == 0 {
		return 0
	}
	return math.Sqrt(stat.Mean(m.squares, nil))
}

func (m *TrackingError) Reset() { m.squares = nil }

// ControlEffort reports the mean absolute commanded effort.
type ControlEffort struct {
	name string
	abs  []float64
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{name: "control_effort"}
}

func (m *ControlEffort) Name() string { return m.name }

func (m *ControlEffort) Observe(s Sample) {
	for _, e := range s.Efforts {
		m.abs = append(m.abs, math.Abs(e))
	}
}

func (m *ControlEffort) Value() float64 {
	if len(m.abs) == 0 {
		return 0
	}
	return stat.Mean(m.abs, nil)
}

func (m *ControlEffort) Reset() { m.abs = nil }

// EffortVariance reports the variance of the commanded effort, a cheap
// proxy for actuator chatter.
type EffortVariance struct {
	name    string
	efforts []float64
}

func NewEffortVariance() *EffortVariance {
	return &EffortVariance{name: "effort_variance"}
}

func (m *EffortVariance) Name() string { return m.name }

func (m *EffortVariance) Observe(s Sample) {
	m.efforts = append(m.efforts, s.Efforts...)
}

func (m *EffortVariance) Value() float64 {
	if len(m.efforts) < 2 {
		return 0
	}
	return stat.Variance(m.efforts, nil)
}

func (m *EffortVariance) Reset() { m.efforts = nil }

// Defaults returns the metric set recorded for every session.
func Defaults() []Metric {
	return []Metric{NewTrackingError(), NewControlEffort(), NewEffortVariance()}
}
