// Package version resolves the installed plugin version from the shared
// repository checkout.
package version

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// PackagingFileName is the packaging descriptor under the repo root that
// carries the authoritative version string.
const PackagingFileName = "setup.py"

var versionPattern = regexp.MustCompile(`version\s*=\s*["']([^"']+)["']`)

// GetPluginVersion reads the packaging descriptor under repoRoot and
// extracts the version value. The result is an opaque display string.
func GetPluginVersion(repoRoot string) (string, error) {
	path := filepath.Join(repoRoot, PackagingFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read packaging descriptor: %w", err)
	}

	match := versionPattern.FindSubmatch(data)
	if match == nil {
		return "", fmt.Errorf("no version found in %s", path)
	}
	return string(match[1]), nil
}
