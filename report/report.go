// Package report exports the results of a run: a JSON document, a text tree
// summary, an HTML chart page and a diff between two exported runs.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/pipesim/log"
	"github.com/sarchlab/pipesim/timing/analysis"
	"github.com/sarchlab/pipesim/timing/config"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

// Report is the exported record of one run.
type Report struct {
	Timestamp        time.Time                 `json:"timestamp"`
	Metrics          analysis.Metrics          `json:"metrics"`
	DetailedAnalysis analysis.DetailedAnalysis `json:"detailedAnalysis"`
	Comparison       analysis.Comparison       `json:"comparison"`
	Hazards          []pipeline.Hazard         `json:"hazards"`
	Settings         config.Settings           `json:"settings"`
}

// New builds the report of s. Metrics are rounded for display. settings may
// be nil, in which case the engine flags of s are recorded over the
// defaults.
func New(s pipeline.SimulationState, settings *config.Settings, now time.Time) *Report {
	if settings == nil {
		settings = config.DefaultSettings()
		settings.ForwardingEnabled = s.ForwardingEnabled
		settings.BranchPredictionEnabled = s.BranchPredictionEnabled
	}

	hazards := append([]pipeline.Hazard{}, s.Hazards...)

	return &Report{
		Timestamp:        now.UTC(),
		Metrics:          analysis.CalculateMetrics(s).Rounded(),
		DetailedAnalysis: analysis.Analyze(s),
		Comparison:       analysis.CompareExecution(s),
		Hazards:          hazards,
		Settings:         *settings.Clone(),
	}
}

// WriteJSON writes r as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// ReadJSON decodes a report written by WriteJSON.
func ReadJSON(rd io.Reader) (*Report, error) {
	var r Report
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &r, nil
}

// Save writes r to a JSON file.
func (r *Report) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	if err := r.WriteJSON(f); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close report file: %w", err)
	}

	log.Info(log.ReportModule, "report saved", "path", path)

	return nil
}

// Load reads a report from a JSON file.
func Load(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ReadJSON(f)
}
