package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/octoeverywhere/companion/internal/config"
	"github.com/octoeverywhere/companion/internal/host"
	"github.com/octoeverywhere/companion/internal/relay"
	"github.com/octoeverywhere/companion/internal/store"
	"github.com/octoeverywhere/companion/internal/sysconfig"
	"github.com/rs/zerolog"
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
		moonrakerDir  string
		serviceName   string
	)

	rootCmd := &cobra.Command{
		Use:   "octoeverywhere-moonraker",
		Short: "OctoEverywhere companion host for Klipper printers running Moonraker",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer cancel()

			if configDir == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("resolve home dir: %w", err)
				}
				configDir = filepath.Join(home, "printer_data", "config")
			}
			// Optional .env overrides for dev boxes, kept with the config.
			_ = godotenv.Load(filepath.Join(configDir, ".env"))
			if logDir == "" {
				logDir = filepath.Join(filepath.Dir(configDir), "logs")
			}
			if moonrakerDir == "" {
				moonrakerDir = configDir
			}

			popupLog := zerolog.New(os.Stderr).With().Timestamp().Logger()

			controller := host.NewController(host.Options{
				ConfigDir:     configDir,
				LogDir:        logDir,
				RepoRoot:      repoRoot,
				DevConfigPath: devConfigPath,
				// Moonraker installs keep the identity in the shared
				// config file, where Mainsail and Fluidd can surface it.
				NewStore: func(cm *config.Manager) (store.Store, error) {
					return store.NewConfigStore(cm), nil
				},
				// The update-manager files are re-ensured on every boot so
				// a deleted fragment or a moved repo root heals on restart.
				BootSetup: func(cm *config.Manager) error {
					return sysconfig.EnsureUpdateManagerFilesSetup(moonrakerDir, serviceName, repoRoot)
				},
				// A pristine device needs Moonraker told about us before
				// it will manage the plugin's service.
				FirstRunSetup: func(cm *config.Manager) error {
					return sysconfig.EnsureAllowedServicesFile(moonrakerDir, serviceName)
				},
				NewRelayClient: func(p host.RelayParams) relay.Client {
					return &relay.OfflineClient{}
				},
				Popup: host.LogPopupInvoker{Log: &popupLog},
			})
			return controller.Run(ctx)
		},
	}

	rootCmd.Flags().StringVar(&configDir, "config-dir", "", "directory holding the config file (default ~/printer_data/config)")
	rootCmd.Flags().StringVar(&logDir, "log-dir", "", "directory for log files (default sibling logs dir of --config-dir)")
	rootCmd.Flags().StringVar(&repoRoot, "repo-root", ".", "root of the plugin repo checkout, used to resolve the plugin version")
	rootCmd.Flags().StringVar(&devConfigPath, "dev-config", "", "optional developer config file")
	rootCmd.Flags().StringVar(&moonrakerDir, "moonraker-config-dir", "", "directory holding moonraker.conf and moonraker.asvc (default --config-dir)")
	rootCmd.Flags().StringVar(&serviceName, "service-name", "octoeverywhere", "systemd service name of this plugin instance")
	return rootCmd
}
