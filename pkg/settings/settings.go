// Package settings manages persistent user settings for the rtstat CLI.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Settings holds persistent user preferences
type Settings struct {
	// DefaultModel is the router model used when -m is not specified
	DefaultModel string `json:"default_model,omitempty"`

	// DefaultHost is the router address used when -r is not specified
	DefaultHost string `json:"default_host,omitempty"`

	// InventoryPath is the router inventory file used when --inventory
	// is not specified
	InventoryPath string `json:"inventory_path,omitempty"`
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "rtstat_settings.json"
	}
	return filepath.Join(home, ".rtstat", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty settings if file doesn't exist
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
