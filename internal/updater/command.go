package updater

import (
	"context"
	"os/exec"
	"time"
)

// DefaultRestartTimeout bounds a single service restart. systemctl can
// hang on a wedged unit; one stuck companion must not stall the whole
// fleet update.
const DefaultRestartTimeout = 2 * time.Minute

// CommandRunner executes a local command and captures its exit code and
// combined output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (exitCode int, output string, err error)
}

// ShellRunner is the real CommandRunner, shelling out with a bounded
// per-command timeout.
type ShellRunner struct {
	Timeout time.Duration
}

// NewShellRunner creates a ShellRunner with the default timeout.
func NewShellRunner() *ShellRunner {
	return &ShellRunner{Timeout: DefaultRestartTimeout}
}

func (r *ShellRunner) Run(ctx context.Context, name string, args ...string) (int, string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultRestartTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), string(output), nil
		}
		return -1, string(output), err
	}
	return 0, string(output), nil
}
