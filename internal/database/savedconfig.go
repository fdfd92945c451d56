package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SavedConfig is the externally reachable connection profile persisted
// between dump runs. The password is deliberately absent; fields that were
// never recorded stay nil.
type SavedConfig struct {
	Host     *string `json:"host"`
	Port     *int    `json:"port"`
	Database *string `json:"database"`
	User     *string `json:"user"`
}

// IsZero reports whether no field has been recorded.
func (c SavedConfig) IsZero() bool {
	return c.Host == nil && c.Port == nil && c.Database == nil && c.User == nil
}

func (c SavedConfig) String() string {
	b, err := json.Marshal(c)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// DefaultSavedConfigPath returns the per-user location of the saved external
// profile.
func DefaultSavedConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".pgsteward", "external.json"), nil
}

// SavedConfigStore reads and writes the saved external profile.
type SavedConfigStore struct {
	path string
}

// NewSavedConfigStore returns a store backed by the file at path.
func NewSavedConfigStore(path string) *SavedConfigStore {
	return &SavedConfigStore{path: path}
}

// Load returns the saved profile. A missing or unreadable file yields the
// zero profile.
func (s *SavedConfigStore) Load() SavedConfig {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return SavedConfig{}
	}
	var cfg SavedConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return SavedConfig{}
	}
	return cfg
}

// Save persists the profile, creating the parent directory when needed.
func (s *SavedConfigStore) Save(cfg SavedConfig) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode saved config: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write saved config: %w", err)
	}
	return nil
}
