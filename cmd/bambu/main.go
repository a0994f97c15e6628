package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/octoeverywhere/companion/internal/config"
	"github.com/octoeverywhere/companion/internal/crypto"
	"github.com/octoeverywhere/companion/internal/host"
	"github.com/octoeverywhere/companion/internal/relay"
	"github.com/octoeverywhere/companion/internal/store"
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
		configDir     string
		logDir        string
		repoRoot      string
		devConfigPath string
	)

	rootCmd := &cobra.Command{
		Use:   "octoeverywhere-bambu",
		Short: "OctoEverywhere companion host for Bambu Lab printers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer cancel()

			if configDir == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("resolve home dir: %w", err)
				}
				configDir = filepath.Join(home, "octoeverywhere-bambu")
			}
			// Optional .env overrides for dev boxes, kept with the config.
			_ = godotenv.Load(filepath.Join(configDir, ".env"))
			if logDir == "" {
				logDir = filepath.Join(configDir, "logs")
			}

			controller := host.NewController(host.Options{
				ConfigDir:     configDir,
				LogDir:        logDir,
				RepoRoot:      repoRoot,
				DevConfigPath: devConfigPath,
				// Bambu hosts have no plugin web frontend to keep secrets
				// out of, but the access code and identity still must not
				// sit in a world-readable config file.
				NewStore: func(cm *config.Manager) (store.Store, error) {
					return store.NewSecretsStore(configDir, crypto.NewAESProvider(), store.MachineKeyMaterial())
				},
				NewRelayClient: func(p host.RelayParams) relay.Client {
					return &relay.OfflineClient{}
				},
			})
			return controller.Run(ctx)
		},
	}

	rootCmd.Flags().StringVar(&configDir, "config-dir", "", "directory holding the config file and local storage (default ~/octoeverywhere-bambu)")
	rootCmd.Flags().StringVar(&logDir, "log-dir", "", "directory for log files (default <config-dir>/logs)")
	rootCmd.Flags().StringVar(&repoRoot, "repo-root", ".", "root of the plugin repo checkout, used to resolve the plugin version")
	rootCmd.Flags().StringVar(&devConfigPath, "dev-config", "", "optional developer config file")
	return rootCmd
}
