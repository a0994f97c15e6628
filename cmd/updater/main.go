package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/octoeverywhere/companion/internal/logger"
	"github.com/octoeverywhere/companion/internal/updater"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		repoRoot   string
		serviceDir string
		homeDir    string
		logLevel   string
	)

	rootCmd := &cobra.Command{
		Use:   "octoeverywhere-updater",
		Short: "Restarts every OctoEverywhere plugin and companion service after an update",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer cancel()

			log := logger.NewLogger(logLevel, "")

			if homeDir == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("resolve home dir: %w", err)
				}
				homeDir = home
			}

			o := &updater.Orchestrator{
				Runner:   updater.NewShellRunner(),
				RepoRoot: repoRoot,
				Log:      log,
			}

			result, err := o.RunUpdate(ctx, serviceDir, updater.DefaultServicePrefix)
			if err != nil {
				return err
			}
			// The script is a convenience; a failed copy never fails the
			// update itself.
			o.PlaceUpdateScriptInRoot(repoRoot, homeDir)

			if len(result.Failed) > 0 {
				return fmt.Errorf("%d of %d services failed to restart", len(result.Failed), len(result.Attempted))
			}
			return nil
		},
	}

	rootCmd.Flags().StringVar(&repoRoot, "repo-root", ".", "root of the plugin repo checkout")
	rootCmd.Flags().StringVar(&serviceDir, "service-dir", updater.DefaultServiceDir, "systemd unit directory to scan for plugin services")
	rootCmd.Flags().StringVar(&homeDir, "home-dir", "", "home directory that receives the update helper script (default current user's)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")
	return rootCmd
}
