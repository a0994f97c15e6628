// Package updater restarts every locally installed companion service
// after new code has been deployed to the shared repository checkout.
// It runs in its own short-lived process, launched by the repo's
// update.sh, never by a live host.
package updater

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/octoeverywhere/companion/internal/version"
	"github.com/rs/zerolog"
)

// DefaultServiceDir is where systemd unit files live on the target platforms.
const DefaultServiceDir = "/etc/systemd/system"

// DefaultServicePrefix is the product family's common service name prefix.
// Companions are discovered purely by this naming convention; there is no
// cached inventory, the installed set can change between upgrades.
const DefaultServicePrefix = "octoeverywhere"

// UpdateScriptName is the convenience script placed in the user's home.
const UpdateScriptName = "update-octoeverywhere.sh"

// ErrNoServicesFound means the update found nothing to restart. That is
// a broken installation, not a no-op success.
var ErrNoServicesFound = errors.New("no local plugins or companions were found")

// Result aggregates one update run.
type Result struct {
	// Attempted lists every matched service, in restart order.
	Attempted []string
	// Failed lists the services whose restart returned a non-zero exit code.
	Failed []string
	// Version is the plugin version after the update, or "Unknown".
	Version string
}

// Orchestrator performs fleet updates.
type Orchestrator struct {
	Runner   CommandRunner
	RepoRoot string
	Log      *zerolog.Logger
}

// RunUpdate discovers every service belonging to the product family in
// serviceDir and restarts each one. Restarts are best-effort per entry:
// a failed unit is reported in the result, never aborts the loop.
func (o *Orchestrator) RunUpdate(ctx context.Context, serviceDir, prefix string) (*Result, error) {
	o.Log.Info().Msg("Starting Update Logic")

	entries, err := os.ReadDir(serviceDir)
	if err != nil {
		return nil, fmt.Errorf("list service directory %s: %w", serviceDir, err)
	}

	// Sorted for deterministic, user-presentable ordering.
	var services []string
	for _, entry := range entries {
		name := entry.Name()
		o.Log.Debug().Str("entry", name).Msg("Searching for services to update")
		if strings.HasPrefix(strings.ToLower(name), strings.ToLower(prefix)) {
			services = append(services, name)
		}
	}
	sort.Strings(services)

	if len(services) == 0 {
		o.Log.Warn().Msg("No local plugins or companions were found.")
		return nil, ErrNoServicesFound
	}

	o.Log.Info().Strs("services", services).Msg("We found the following plugins to update")
	o.Log.Info().Msg("Restarting services...")

	result := &Result{Attempted: services}
	for _, service := range services {
		exitCode, output, err := o.Runner.Run(ctx, "systemctl", "restart", service)
		if err != nil || exitCode != 0 {
			o.Log.Warn().
				Str("service", service).
				Int("exit_code", exitCode).
				Str("output", output).
				Err(err).
				Msg("Service might have failed to restart.")
			result.Failed = append(result.Failed, service)
		}
	}

	result.Version = "Unknown"
	if v, err := version.GetPluginVersion(o.RepoRoot); err == nil {
		result.Version = v
	} else {
		o.Log.Warn().Err(err).Msg("Failed to resolve the plugin version.")
	}

	o.Log.Info().
		Str("new_version", result.Version).
		Int("restarted", len(result.Attempted)-len(result.Failed)).
		Int("failed", len(result.Failed)).
		Msg("Update complete. Happy Printing!")

	return result, nil
}

// PlaceUpdateScriptInRoot writes the convenience update script into the
// user's home directory and marks it executable. Best-effort: a failure
// is logged and reported as false, the update itself is unaffected.
func (o *Orchestrator) PlaceUpdateScriptInRoot(repoRoot, homeDir string) bool {
	script := fmt.Sprintf(`#!/bin/bash

#
# This script will update all of the OctoEverywhere instances on this device!
#
# If you need help, feel free to contact us at support@octoeverywhere.com
#

# The update and install scripts need to be ran from the repo root.
# So just cd and execute our update script! Easy peasy!
startingDir=$(pwd)
cd %s
./update.sh
cd $startingDir
`, repoRoot)

	path := filepath.Join(homeDir, UpdateScriptName)
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		o.Log.Error().Err(err).Msg("Failed to write updater script to user home.")
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		o.Log.Error().Err(err).Msg("Failed to stat updater script.")
		return false
	}
	if err := os.Chmod(path, info.Mode()|0o111); err != nil {
		o.Log.Error().Err(err).Msg("Failed to mark updater script executable.")
		return false
	}
	return true
}
