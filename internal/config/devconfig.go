package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// DevConfig carries optional developer overrides loaded from a TOML file
// passed on the command line. Production installs never ship one.
type DevConfig struct {
	LogLevel           string `toml:"log_level"`
	LocalServerAddress string `toml:"local_server_address"`
}

// LoadDevConfig parses a dev config file. A missing or empty path returns
// nil without error, overrides are strictly opt-in.
func LoadDevConfig(path string) (*DevConfig, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	var dc DevConfig
	if _, err := toml.DecodeFile(path, &dc); err != nil {
		return nil, fmt.Errorf("parse dev config %s: %w", path, err)
	}
	return &dc, nil
}
