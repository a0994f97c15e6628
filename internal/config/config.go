package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

var (
	// ErrLoad indicates the config file could not be read or parsed.
	// The process cannot proceed without its config, so this is fatal.
	ErrLoad = errors.New("config load failed")

	// ErrWrite indicates a config mutation could not be persisted.
	ErrWrite = errors.New("config write failed")
)

// Manager owns the companion config file. Values are addressed by
// section and key; mutations are written through to disk immediately.
type Manager struct {
	v    *viper.Viper
	path string
	mu   sync.RWMutex
}

// NewManager loads the config file from configDir, creating an empty one
// on a pristine device. The file must be written into this directory,
// that is where the setup installer looks for it.
func NewManager(configDir string) (*Manager, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create config dir: %v", ErrLoad, err)
	}

	path := filepath.Join(configDir, ConfigFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			return nil, fmt.Errorf("%w: create config file: %v", ErrLoad, err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	return &Manager{v: v, path: path}, nil
}

// Path returns the absolute path of the backing config file.
func (m *Manager) Path() string {
	return m.path
}

// Has reports whether section/key is present in the config file at all,
// even with an empty value. Callers that need to tell "never written"
// from "written empty" use this alongside GetString.
func (m *Manager) Has(section, key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.IsSet(section + "." + key)
}

// GetString returns the value at section/key, or def when unset or empty.
func (m *Manager) GetString(section, key, def string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value := m.v.GetString(section + "." + key)
	if value == "" {
		return def
	}
	return value
}

// GetInt returns the integer value at section/key, or def when unset or
// not parseable as an integer.
func (m *Manager) GetInt(section, key string, def int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	full := section + "." + key
	if !m.v.IsSet(full) || m.v.GetString(full) == "" {
		return def
	}
	if value := m.v.GetInt(full); value != 0 || m.v.GetString(full) == "0" {
		return value
	}
	return def
}

// SetString sets section/key and writes the config file through to disk.
// An unsaved value must never be treated as saved, so any write failure
// is returned to the caller.
func (m *Manager) SetString(section, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.v.Set(section+"."+key, value)
	if err := m.v.WriteConfigAs(m.path); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// Reload re-reads the backing file, picking up external edits.
func (m *Manager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.v.ReadInConfig(); err != nil {
		return fmt.Errorf("%w: %v", ErrLoad, err)
	}
	return nil
}
