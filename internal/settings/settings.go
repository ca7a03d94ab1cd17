// Package settings is the local fallback persistence layer: the focus
// preferences and the in-flight timer snapshot live as small files in
// the data directory, so the timer survives a restart without any
// backend. Reads degrade to defaults instead of failing.
package settings

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"focustui/internal/session"
)

const (
	settingsFileName   = "settings.yaml"
	timerStateFileName = "timer_state.json"
)

// Settings mirrors the focus preferences the user can edit. Durations
// are whole minutes.
type Settings struct {
	Mode             session.Mode `yaml:"mode"`
	FocusDuration    int          `yaml:"focus_duration"`
	BreakDuration    int          `yaml:"break_duration"`
	Iterations       int          `yaml:"iterations"`
	LongBreakEnabled bool         `yaml:"long_break_enabled"`
}

func Default() Settings {
	return Settings{
		Mode:          session.ModeTimer,
		FocusDuration: 25,
		BreakDuration: 5,
		Iterations:    1,
	}
}

// TimerState is the persisted countdown snapshot, written on every tick
// so a restart can deduct the wall-clock time spent away.
type TimerState struct {
	TimeLeftSeconds int       `json:"time_left"`
	Active          bool      `json:"is_active"`
	LastUpdated     time.Time `json:"last_updated"`
}

// Store reads and writes the settings blob and the timer snapshot
// inside dir, creating the directory on first use.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Load returns the saved settings, or defaults when the file is missing
// or unreadable. Zero-value fields from older files fall back too, so a
// partial blob never produces a zero-duration timer.
func (s *Store) Load() Settings {
	cfg := Default()
	data, err := os.ReadFile(filepath.Join(s.dir, settingsFileName))
	if err != nil {
		return cfg
	}
	var saved Settings
	if err := yaml.Unmarshal(data, &saved); err != nil {
		return cfg
	}
	if saved.Mode == session.ModeTimer || saved.Mode == session.ModeStopwatch {
		cfg.Mode = saved.Mode
	}
	if saved.FocusDuration > 0 {
		cfg.FocusDuration = saved.FocusDuration
	}
	if saved.BreakDuration > 0 {
		cfg.BreakDuration = saved.BreakDuration
	}
	if saved.Iterations > 0 {
		cfg.Iterations = saved.Iterations
	}
	cfg.LongBreakEnabled = saved.LongBreakEnabled
	return cfg
}

func (s *Store) Save(cfg Settings) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, settingsFileName), data, 0o644)
}

// LoadTimerState returns the persisted snapshot, if one exists.
func (s *Store) LoadTimerState() (TimerState, bool) {
	data, err := os.ReadFile(filepath.Join(s.dir, timerStateFileName))
	if err != nil {
		return TimerState{}, false
	}
	var ts TimerState
	if err := json.Unmarshal(data, &ts); err != nil {
		return TimerState{}, false
	}
	return ts, true
}

func (s *Store) SaveTimerState(ts TimerState) error {
	data, err := json.Marshal(ts)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, timerStateFileName), data, 0o644)
}

// ClearTimerState removes the snapshot after a session ends.
func (s *Store) ClearTimerState() error {
	err := os.Remove(filepath.Join(s.dir, timerStateFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
