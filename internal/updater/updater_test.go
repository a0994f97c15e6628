package updater

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/octoeverywhere/companion/internal/logger"
	"github.com/stretchr/testify/require"
)

// fakeRunner records restart commands and fails the configured services.
type fakeRunner struct {
	commands [][]string
	failFor  map[string]int
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (int, string, error) {
	f.commands = append(f.commands, append([]string{name}, args...))
	service := args[len(args)-1]
	if code, ok := f.failFor[service]; ok {
		return code, "Job for " + service + " failed.", nil
	}
	return 0, "", nil
}

func newTestOrchestrator(t *testing.T, runner CommandRunner) *Orchestrator {
	t.Helper()
	repoRoot := t.TempDir()
	content := "setup(name='octoeverywhere', version=\"2.5.0\")\n"
	require.NoError(t, os.WriteFile(filepath.Join(repoRoot, "setup.py"), []byte(content), 0o644))

	return &Orchestrator{
		Runner:   runner,
		RepoRoot: repoRoot,
		Log:      logger.NewLogger("error", ""),
	}
}

func writeServiceFiles(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("[Unit]\n"), 0o644))
	}
	return dir
}

func TestRunUpdate(t *testing.T) {
	t.Run("restarts matching services case-insensitively in sorted order", func(t *testing.T) {
		dir := writeServiceFiles(t,
			"octoeverywhere-bambu.service",
			"other-app.service",
			"OctoEverywhere-companion.service",
		)
		runner := &fakeRunner{}
		o := newTestOrchestrator(t, runner)

		result, err := o.RunUpdate(context.Background(), dir, DefaultServicePrefix)
		require.NoError(t, err)
		require.Equal(t, []string{"OctoEverywhere-companion.service", "octoeverywhere-bambu.service"}, result.Attempted)
		require.Empty(t, result.Failed)

		require.Equal(t, [][]string{
			{"systemctl", "restart", "OctoEverywhere-companion.service"},
			{"systemctl", "restart", "octoeverywhere-bambu.service"},
		}, runner.commands)
	})

	t.Run("no matching services fails without restarts", func(t *testing.T) {
		dir := writeServiceFiles(t, "other-app.service", "klipper.service")
		runner := &fakeRunner{}
		o := newTestOrchestrator(t, runner)

		_, err := o.RunUpdate(context.Background(), dir, DefaultServicePrefix)
		require.ErrorIs(t, err, ErrNoServicesFound)
		require.Empty(t, runner.commands)
	})

	t.Run("one failed restart does not abort the loop", func(t *testing.T) {
		dir := writeServiceFiles(t,
			"octoeverywhere-bambu.service",
			"octoeverywhere-moonraker.service",
		)
		runner := &fakeRunner{failFor: map[string]int{"octoeverywhere-bambu.service": 1}}
		o := newTestOrchestrator(t, runner)

		result, err := o.RunUpdate(context.Background(), dir, DefaultServicePrefix)
		require.NoError(t, err)
		require.Len(t, runner.commands, 2)
		require.Equal(t, []string{"octoeverywhere-bambu.service"}, result.Failed)
		require.Equal(t, []string{"octoeverywhere-bambu.service", "octoeverywhere-moonraker.service"}, result.Attempted)
	})

	t.Run("resolves version from repo root", func(t *testing.T) {
		dir := writeServiceFiles(t, "octoeverywhere-bambu.service")
		o := newTestOrchestrator(t, &fakeRunner{})

		result, err := o.RunUpdate(context.Background(), dir, DefaultServicePrefix)
		require.NoError(t, err)
		require.Equal(t, "2.5.0", result.Version)
	})

	t.Run("version resolution failure degrades to Unknown", func(t *testing.T) {
		dir := writeServiceFiles(t, "octoeverywhere-bambu.service")
		o := newTestOrchestrator(t, &fakeRunner{})
		o.RepoRoot = t.TempDir() // no setup.py

		result, err := o.RunUpdate(context.Background(), dir, DefaultServicePrefix)
		require.NoError(t, err)
		require.Equal(t, "Unknown", result.Version)
	})

	t.Run("missing service directory fails", func(t *testing.T) {
		o := newTestOrchestrator(t, &fakeRunner{})

		_, err := o.RunUpdate(context.Background(), filepath.Join(t.TempDir(), "missing"), DefaultServicePrefix)
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrNoServicesFound)
	})
}

func TestPlaceUpdateScriptInRoot(t *testing.T) {
	t.Run("writes executable script with cd into repo root", func(t *testing.T) {
		homeDir := t.TempDir()
		o := newTestOrchestrator(t, &fakeRunner{})

		ok := o.PlaceUpdateScriptInRoot("/home/user/octoeverywhere", homeDir)
		require.True(t, ok)

		path := filepath.Join(homeDir, UpdateScriptName)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		content := string(data)
		require.True(t, strings.HasPrefix(content, "#!/bin/bash\n"))
		require.Contains(t, content, "cd /home/user/octoeverywhere\n")
		require.Contains(t, content, "./update.sh\n")
		require.Contains(t, content, "cd $startingDir\n")

		info, err := os.Stat(path)
		require.NoError(t, err)
		require.NotZero(t, info.Mode()&0o111)
	})

	t.Run("unwritable home degrades to false", func(t *testing.T) {
		o := newTestOrchestrator(t, &fakeRunner{})

		ok := o.PlaceUpdateScriptInRoot("/home/user/octoeverywhere", filepath.Join(t.TempDir(), "missing"))
		require.False(t, ok)
	})
}
