// Package host owns process-wide startup ordering for a companion host:
// config, identity bootstrap, supporting subsystems, then the relay
// client's blocking run loop.
package host

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/octoeverywhere/companion/internal/bootstrap"
	"github.com/octoeverywhere/companion/internal/config"
	"github.com/octoeverywhere/companion/internal/logger"
	"github.com/octoeverywhere/companion/internal/relay"
	"github.com/octoeverywhere/companion/internal/scheduler"
	"github.com/octoeverywhere/companion/internal/store"
	"github.com/octoeverywhere/companion/internal/telemetry"
	"github.com/octoeverywhere/companion/internal/version"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// State is the lifecycle controller's current phase.
type State string

const (
	StateInitializing    State = "initializing"
	StateConfigLoaded    State = "config_loaded"
	StateIdentityReady   State = "identity_ready"
	StateSubsystemsReady State = "subsystems_ready"
	StateConnected       State = "connected"
	StateExited          State = "exited"
	StateFailed          State = "failed"
)

// PrinterClient is the downstream print-host client that depends on an
// active relay session (Moonraker, Bambu MQTT, ...). External
// collaborator; the host only starts it.
type PrinterClient interface {
	StartRunningIfNotAlready(octoKey string)
}

// RelayParams carries everything the external relay client needs from us.
type RelayParams struct {
	PrinterID     string
	PrivateKey    string
	PluginVersion string
	Handler       relay.StatusHandler
	Popup         relay.UiPopupInvoker
}

// Options wires a Controller. NewStore and NewRelayClient are required,
// everything else is optional.
type Options struct {
	ConfigDir     string
	LogDir        string
	RepoRoot      string
	DevConfigPath string

	// NewStore builds the identity store once config is loaded. Hosts
	// choose the config-backed or the secrets-backed variant here.
	NewStore func(cm *config.Manager) (store.Store, error)

	// BootSetup runs on every boot, before the identity bootstrap. Hosts
	// use it to repair system integration files that external tooling
	// may have removed or that a changed repo root invalidates. Errors
	// are fatal; the installer waits on the boot and must not report
	// success while the update path is broken.
	BootSetup func(cm *config.Manager) error

	// FirstRunSetup runs once when a brand-new device got its identity.
	FirstRunSetup func(cm *config.Manager) error

	// NewRelayClient builds the external relay client for this boot.
	NewRelayClient func(p RelayParams) relay.Client

	// Printer is started on the first established session, if set.
	Printer PrinterClient

	// Popup handles operator-facing UI popups. Nil means no frontend.
	Popup relay.UiPopupInvoker
}

// Controller is the host lifecycle state machine.
type Controller struct {
	opts Options

	mu               sync.Mutex
	state            State
	printerID        string
	log              *zerolog.Logger
	reporter         telemetry.Reporter
	downstreamActive bool
}

// NewController creates a Controller in the Initializing state.
func NewController(opts Options) *Controller {
	return &Controller{opts: opts, state: StateInitializing}
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Run walks the lifecycle to completion and blocks until the relay
// client exits or ctx is cancelled. Fatal startup errors (config,
// identity persistence) are returned so the launcher can exit non-zero;
// relay runtime failures are reported and end in an orderly Exited state.
func (c *Controller) Run(ctx context.Context) error {
	// Config first: nothing below can run without it.
	cm, err := config.NewManager(c.opts.ConfigDir)
	if err != nil {
		c.failEarly(err)
		return err
	}

	devConfig, err := config.LoadDevConfig(c.opts.DevConfigPath)
	if err != nil {
		c.failEarly(err)
		return err
	}

	logLevel := cm.LogLevel()
	if devConfig != nil && devConfig.LogLevel != "" {
		logLevel = devConfig.LogLevel
	}
	ctx, log := logger.InitLogger(ctx, logLevel, c.opts.LogDir)
	c.mu.Lock()
	c.log = log
	c.reporter = telemetry.NewLogReporter(log)
	c.mu.Unlock()
	c.setState(StateConfigLoaded)

	log.Info().Msg("##################################")
	log.Info().Msg("#### OctoEverywhere Starting #####")
	log.Info().Msg("##################################")

	for _, warning := range cm.Validate() {
		log.Warn().Msg(warning)
	}
	if devConfig != nil && devConfig.LocalServerAddress != "" {
		log.Warn().Str("address", devConfig.LocalServerAddress).Msg("~~~ Using Local Dev Server Address ~~~")
	}

	pluginVersion := "Unknown"
	if v, err := version.GetPluginVersion(c.opts.RepoRoot); err == nil {
		pluginVersion = v
	} else {
		log.Warn().Err(err).Msg("Failed to resolve the plugin version.")
	}
	log.Info().Str("version", pluginVersion).Msg("Plugin Version")

	// System integration files are repaired on every boot, not just the
	// first: external tooling can delete them, and a moved repo root
	// invalidates their contents.
	if c.opts.BootSetup != nil {
		if err := c.opts.BootSetup(cm); err != nil {
			c.fail(err)
			return err
		}
	}

	// Identity next. Persistence failures are fatal: the relay client
	// must never start with an unsaved identity.
	st, err := c.opts.NewStore(cm)
	if err != nil {
		c.fail(err)
		return err
	}
	seq := &bootstrap.Sequencer{Store: st}
	if c.opts.FirstRunSetup != nil {
		seq.OnFirstRun = func() error { return c.opts.FirstRunSetup(cm) }
	}
	if _, err := seq.EnsureValidIdentity(log); err != nil {
		c.fail(err)
		return err
	}
	printerID, _ := st.GetPrinterID()
	privateKey, _ := st.GetPrivateKey()
	c.mu.Lock()
	c.printerID = printerID
	c.mu.Unlock()
	c.setState(StateIdentityReady)

	log.Info().Int("frontend_port", cm.RelayFrontEndPort()).Msg("Setting up relay frontend")

	// Supporting subsystems are best-effort; none of them make the relay
	// meaningless when absent.
	subCtx, cancelSubsystems := context.WithCancel(ctx)
	g, subCtx := errgroup.WithContext(subCtx)
	c.startSubsystems(subCtx, g, cm, log, printerID)
	c.setState(StateSubsystemsReady)

	// Hand the goroutine to the relay client for the rest of the process
	// lifetime. A panic or error out of the run loop is reported, never
	// propagated: the process always gets its orderly exit lines.
	c.setState(StateConnected)
	c.runRelay(ctx, RelayParams{
		PrinterID:     printerID,
		PrivateKey:    privateKey,
		PluginVersion: pluginVersion,
		Handler:       c,
		Popup:         c.popup(),
	})

	cancelSubsystems()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Msg("Subsystem exited with error")
	}

	c.setState(StateExited)
	log.Info().Msg("##################################")
	log.Info().Msg("#### OctoEverywhere Exiting ######")
	log.Info().Msg("##################################")
	return nil
}

func (c *Controller) runRelay(ctx context.Context, params RelayParams) {
	log := c.logger()
	defer func() {
		if r := recover(); r != nil {
			c.reporter.ReportException("!! Panic thrown out of main host run function.", fmt.Errorf("%v", r))
		}
	}()

	client := c.opts.NewRelayClient(params)
	if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		c.reporter.ReportException("!! Exception thrown out of main host run function.", err)
		return
	}
	log.Info().Msg("Relay client run loop returned")
}

func (c *Controller) startSubsystems(ctx context.Context, g *errgroup.Group, cm *config.Manager, log *zerolog.Logger, printerID string) {
	// Diagnostics endpoint (prometheus + pprof), localhost only.
	metricsAddr := cm.GetString(config.AppSection, config.MetricsAddrKey, config.DefaultMetricsAddr)
	metricsSrv := telemetry.NewMetricsServer(metricsAddr)
	g.Go(func() error {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn().Err(err).Msg("Metrics server failed to start")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return metricsSrv.Close()
	})

	// Heartbeat with host stats on the configured interval.
	heartbeat := telemetry.NewHeartbeatProcess(log, printerID)
	if sched, err := scheduler.NewSchedulerWithInterval(cm.HeartbeatInterval(), heartbeat, log); err != nil {
		log.Warn().Err(err).Msg("Failed to create heartbeat scheduler")
	} else {
		g.Go(func() error {
			sched.Run(ctx)
			return nil
		})
	}

	// Config hot reload: external edits to the config file update the
	// log level without a restart.
	events := make(chan struct{}, 1)
	g.Go(func() error {
		if err := config.WatchChanges(ctx, log, cm.Path(), events); err != nil {
			log.Warn().Err(err).Msg("Config watcher failed to start")
		}
		return nil
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-events:
				if err := cm.Reload(); err != nil {
					log.Warn().Err(err).Msg("Failed to reload config")
					continue
				}
				logger.SetGlobalLevel(cm.LogLevel())
				log.Info().Str("log_level", cm.LogLevel()).Msg("Config reloaded")
			}
		}
	})
}

func (c *Controller) popup() relay.UiPopupInvoker {
	if c.opts.Popup != nil {
		return c.opts.Popup
	}
	return NoopPopupInvoker{}
}

func (c *Controller) logger() *zerolog.Logger {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.log
}

// failEarly handles failures before the logger exists.
func (c *Controller) failEarly(err error) {
	c.setState(StateFailed)
	fmt.Printf("Failed to init host! %v\n", err)
}

func (c *Controller) fail(err error) {
	c.setState(StateFailed)
	log := c.logger()
	log.Error().Err(err).Msg("Fatal error during host startup")
	c.reporter.ReportException("Fatal error during host startup", err)
}
