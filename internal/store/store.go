// Package store persists control-session traces: one directory per run
// with a metadata.json and a trace.csv of per-joint velocity, target,
// and effort columns.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/armctl/internal/metrics"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Rate      float64            `json:"rate"`
	Duration  float64            `json:"duration"`
	Joints    []string           `json:"joints"`
	Metrics   map[string]float64 `json:"metrics"`
}

func (s *Store) Save(joints []string, rate, duration float64, samples []metrics.Sample, metricValues map[string]float64) (string, error) {
	runID := fmt.Sprintf("run_%d", time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Timestamp: time.Now(),
		Rate:      rate,
		Duration:  duration,
		Joints:    joints,
		Metrics:   metricValues,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "trace.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := []string{"time"}
	for _, n := range joints {
		header = append(header, "vel_"+n, "tgt_"+n, "eff_"+n)
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, sm := range samples {
		row := []string{strconv.FormatFloat(sm.T, 'f', 6, 64)}
		for i := range joints {
			row = append(row,
				column(sm.Velocities, i),
				column(sm.Targets, i),
				column(sm.Efforts, i),
			)
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func column(vals []float64, i int) string {
	if i >= len(vals) {
		return "0"
	}
	return strconv.FormatFloat(vals[i], 'f', 6, 64)
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrace returns the trace header (minus the time column) and the
// timestamps and rows of a saved run.
func (s *Store) LoadTrace(runID string) (header []string, times []float64, rows [][]float64, err error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "trace.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) < 1 {
		return nil, nil, nil, fmt.Errorf("store: empty trace for %s", runID)
	}

	header = records[0][1:]
	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		row := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				val = 0
			}
			row = append(row, val)
		}
		times = append(times, t)
		rows = append(rows, row)
	}
	return header, times, rows, nil
}

type ExportData struct {
	RunMetadata
	Times  []float64   `json:"times"`
	Header []string    `json:"header"`
	Rows   [][]float64 `json:"rows"`
}

// ExportJSON writes a full run (metadata plus trace) to stdout.
func (s *Store) ExportJSON(runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	header, times, rows, err := s.LoadTrace(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{
		RunMetadata: *meta,
		Times:       times,
		Header:      header,
		Rows:        rows,
	})
}
