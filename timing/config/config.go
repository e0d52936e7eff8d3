// Package config holds the user-facing settings of a simulation run.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Speed bounds. The run loop steps once every 1100-100*speed milliseconds.
const (
	MinSpeed     = 1
	MaxSpeed     = 10
	DefaultSpeed = 5
)

// ErrInvalidSpeed is returned by Validate for a speed outside 1..10.
var ErrInvalidSpeed = errors.New("speed must be between 1 and 10")

// Settings configures the engine and the run loop.
type Settings struct {
	// ForwardingEnabled lets ALU results bypass to a dependent instruction
	// in EX. Default: true.
	ForwardingEnabled bool `json:"forwarding_enabled"`

	// BranchPredictionEnabled marks control hazards as resolved.
	// Default: false.
	BranchPredictionEnabled bool `json:"branch_prediction_enabled"`

	// Speed of the timer-driven run loop, 1 (slowest) to 10. Default: 5.
	Speed int `json:"speed"`

	// StepMode makes the front end advance one cycle per user action
	// instead of running on a timer.
	StepMode bool `json:"step_mode"`

	// Seed drives the initial register and memory contents. 0 picks a
	// time-based seed.
	Seed int64 `json:"seed"`
}

// DefaultSettings returns the settings a fresh simulator starts with.
func DefaultSettings() *Settings {
	return &Settings{
		ForwardingEnabled:       true,
		BranchPredictionEnabled: false,
		Speed:                   DefaultSpeed,
	}
}

// LoadConfig loads Settings from a JSON file. Fields missing from the file
// keep their defaults.
func LoadConfig(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return settings, nil
}

// SaveConfig writes Settings to a JSON file.
func (s *Settings) SaveConfig(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// Validate checks that the settings are usable.
func (s *Settings) Validate() error {
	if s.Speed < MinSpeed || s.Speed > MaxSpeed {
		return fmt.Errorf("%w, got %d", ErrInvalidSpeed, s.Speed)
	}
	return nil
}

// StepInterval is the wall-clock time between two cycles of the run loop.
func (s *Settings) StepInterval() time.Duration {
	speed := s.Speed
	if speed < MinSpeed {
		speed = MinSpeed
	}
	if speed > MaxSpeed {
		speed = MaxSpeed
	}
	return time.Duration(1100-speed*100) * time.Millisecond
}

// Clone returns a copy of the settings.
func (s *Settings) Clone() *Settings {
	c := *s
	return &c
}
