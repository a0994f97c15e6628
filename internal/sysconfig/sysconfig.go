// Package sysconfig maintains the Moonraker-side config files the
// companion needs: the update-manager include that lets frontends update
// the plugin, and the allowed-services file that lets Moonraker restart it.
package sysconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// UpdateManagerFileName is the update-manager fragment written next to
	// the Moonraker config.
	UpdateManagerFileName = "octoeverywhere-system.cfg"

	// AllowedServicesFileName lists service units Moonraker may manage.
	AllowedServicesFileName = "moonraker.asvc"

	moonrakerConfigFileName = "moonraker.conf"
)

// EnsureUpdateManagerFilesSetup writes the update-manager fragment and
// makes sure the Moonraker config includes it. Idempotent. Failures are
// fatal for startup: the install must not report success while the
// update path is broken.
func EnsureUpdateManagerFilesSetup(configDir, serviceName, repoRoot string) error {
	fragment := fmt.Sprintf(`[update_manager %s]
type: git_repo
channel: beta
path: %s
origin: https://github.com/QuinnDamerell/OctoPrint-OctoEverywhere.git
env: %s
requirements: requirements.txt
install_script: install.sh
managed_services:
  %s
`, serviceName, repoRoot, filepath.Join(repoRoot, ".venv", "bin", "python"), serviceName)

	fragmentPath := filepath.Join(configDir, UpdateManagerFileName)
	if err := os.WriteFile(fragmentPath, []byte(fragment), 0o644); err != nil {
		return fmt.Errorf("write update manager fragment: %w", err)
	}

	// Add the include to moonraker.conf when the file is present and does
	// not reference the fragment yet.
	confPath := filepath.Join(configDir, moonrakerConfigFileName)
	data, err := os.ReadFile(confPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read moonraker config: %w", err)
	}

	include := fmt.Sprintf("[include %s]", UpdateManagerFileName)
	if strings.Contains(string(data), include) {
		return nil
	}

	content := string(data)
	if !strings.HasSuffix(content, "\n") && content != "" {
		content += "\n"
	}
	content += include + "\n"
	if err := os.WriteFile(confPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("append include to moonraker config: %w", err)
	}
	return nil
}

// EnsureAllowedServicesFile allow-lists serviceName in the Moonraker
// allowed-services file, creating it if needed. Idempotent; one service
// name per line.
func EnsureAllowedServicesFile(configDir, serviceName string) error {
	path := filepath.Join(configDir, AllowedServicesFileName)

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read allowed services file: %w", err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == serviceName {
			return nil
		}
	}

	content := string(data)
	if !strings.HasSuffix(content, "\n") && content != "" {
		content += "\n"
	}
	content += serviceName + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write allowed services file: %w", err)
	}
	return nil
}
