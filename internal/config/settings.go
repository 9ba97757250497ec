package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/metrics/calendar"
	metricsModel "github.com/ArakelyanK/dev-insights-dashboard-sub000/internal/metrics/model"
)

// Settings holds the analysis settings loaded from the settings file: the
// working calendar and the raw-to-canonical state mapping.
//
// A running analysis keeps the snapshot it started with; only new jobs pick
// up reloaded settings.
type Settings struct {
	Calendar calendar.Config   `json:"calendar" yaml:"calendar"`
	States   map[string]string `json:"states"   yaml:"states"`
}

// DefaultSettings returns the built-in calendar and state mapping.
func DefaultSettings() Settings {
	states := metricsModel.DefaultStateMap()
	raw := make(map[string]string, len(states))
	for name, canonical := range states {
		raw[name] = string(canonical)
	}
	return Settings{
		Calendar: calendar.DefaultConfig(),
		States:   raw,
	}
}

// Validate validates the settings.
func (s Settings) Validate() error {
	if err := s.Calendar.Validate(); err != nil {
		return fmt.Errorf("calendar settings validation failed: %w", err)
	}
	for raw, canonical := range s.States {
		if raw == "" {
			return fmt.Errorf("state mapping contains an empty tracker state name")
		}
		if canonical == "" {
			return fmt.Errorf("state mapping for %q maps to an empty canonical state", raw)
		}
	}
	return nil
}

// StateMap converts the raw mapping into the engine's state map.
func (s Settings) StateMap() metricsModel.StateMap {
	m := make(metricsModel.StateMap, len(s.States))
	for raw, canonical := range s.States {
		m[raw] = metricsModel.State(canonical)
	}
	return m
}

// settingsFile mirrors Settings with optional sections so a file may
// override the calendar, the state mapping, or both.
type settingsFile struct {
	Calendar *calendar.Config  `yaml:"calendar"`
	States   map[string]string `yaml:"states"`
}

// LoadSettings reads and validates settings from a YAML file. An empty path
// returns the defaults; a section missing from the file keeps its default.
func LoadSettings(path string) (Settings, error) {
	if path == "" {
		return DefaultSettings(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}

	var file settingsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings file: %w", err)
	}

	settings := DefaultSettings()
	if file.Calendar != nil {
		settings.Calendar = *file.Calendar
	}
	if file.States != nil {
		settings.States = file.States
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

// SettingsStore holds the current settings snapshot behind a mutex so reloads
// and readers never race. Snapshots are value copies.
type SettingsStore struct {
	mu      sync.RWMutex
	current Settings
}

// NewSettingsStore creates a store seeded with the given settings.
func NewSettingsStore(settings Settings) *SettingsStore {
	return &SettingsStore{current: settings}
}

// Snapshot returns the current settings.
func (s *SettingsStore) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Replace swaps in new settings.
func (s *SettingsStore) Replace(settings Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = settings
}
