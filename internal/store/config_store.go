package store

import (
	"fmt"

	"github.com/octoeverywhere/companion/internal/config"
)

// ConfigStore keeps the identity in the server section of the companion
// config file. Used by hosts that predate the secrets file.
type ConfigStore struct {
	cm *config.Manager
}

// NewConfigStore creates a Store backed by the given config manager.
func NewConfigStore(cm *config.Manager) *ConfigStore {
	return &ConfigStore{cm: cm}
}

// GetPrinterID reports a key that was written empty as present, so the
// bootstrap regenerates it without treating the device as brand new.
func (s *ConfigStore) GetPrinterID() (string, bool) {
	value := s.cm.GetString(config.ServerSection, config.PrinterIDKey, "")
	return value, s.cm.Has(config.ServerSection, config.PrinterIDKey)
}

func (s *ConfigStore) GetPrivateKey() (string, bool) {
	value := s.cm.GetString(config.ServerSection, config.PrivateKeyKey, "")
	return value, s.cm.Has(config.ServerSection, config.PrivateKeyKey)
}

func (s *ConfigStore) SetPrinterID(value string) error {
	if err := s.cm.SetString(config.ServerSection, config.PrinterIDKey, value); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

func (s *ConfigStore) SetPrivateKey(value string) error {
	if err := s.cm.SetString(config.ServerSection, config.PrivateKeyKey, value); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}
