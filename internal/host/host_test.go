package host

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/octoeverywhere/companion/internal/config"
	"github.com/octoeverywhere/companion/internal/identity"
	"github.com/octoeverywhere/companion/internal/relay"
	"github.com/octoeverywhere/companion/internal/store"
	"github.com/octoeverywhere/companion/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakePrinterClient struct {
	starts []string
}

func (f *fakePrinterClient) StartRunningIfNotAlready(octoKey string) {
	f.starts = append(f.starts, octoKey)
}

// writeTestConfig keeps test runs quiet and off fixed ports.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	content := "[app]\nlog_level = \"error\"\nheartbeat_interval = \"@every 1h\"\nmetrics_addr = \"127.0.0.1:0\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte(content), 0o600))
	return dir
}

func testOptions(t *testing.T, st store.Store, client relay.Client) Options {
	t.Helper()
	return Options{
		ConfigDir: writeTestConfig(t),
		LogDir:    t.TempDir(),
		RepoRoot:  t.TempDir(),
		NewStore:  func(*config.Manager) (store.Store, error) { return st, nil },
		NewRelayClient: func(p RelayParams) relay.Client {
			if mock, ok := client.(*relay.MockClient); ok {
				mock.Handler = p.Handler
			}
			return client
		},
	}
}

func TestControllerRun_FullLifecycle(t *testing.T) {
	st := store.NewMockStore()
	printer := &fakePrinterClient{}
	client := &relay.MockClient{
		FireConnected:     true,
		SessionToken:      "session-token",
		ConnectedAccounts: []string{"account-1"},
		RunErr:            context.Canceled,
	}

	opts := testOptions(t, st, client)
	opts.Printer = printer
	c := NewController(opts)
	require.Equal(t, StateInitializing, c.State())

	err := c.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateExited, c.State())

	// Identity was bootstrapped before the relay client started.
	id, found := st.GetPrinterID()
	require.True(t, found)
	require.True(t, identity.IsPrinterIDValid(id))
	key, found := st.GetPrivateKey()
	require.True(t, found)
	require.True(t, identity.IsPrivateKeyValid(key))

	require.Equal(t, 1, client.RunCalls)
	require.Equal(t, []string{"session-token"}, printer.starts)
}

func TestControllerRun_FirstRunSetup(t *testing.T) {
	st := store.NewMockStore()
	client := &relay.MockClient{RunErr: context.Canceled}

	calls := 0
	opts := testOptions(t, st, client)
	opts.FirstRunSetup = func(*config.Manager) error { calls++; return nil }

	require.NoError(t, NewController(opts).Run(context.Background()))
	require.Equal(t, 1, calls)

	// A second boot on the same store is not a first run.
	opts2 := testOptions(t, st, &relay.MockClient{RunErr: context.Canceled})
	opts2.FirstRunSetup = func(*config.Manager) error { calls++; return nil }
	require.NoError(t, NewController(opts2).Run(context.Background()))
	require.Equal(t, 1, calls)
}

func TestControllerRun_BootSetupRunsEveryBoot(t *testing.T) {
	st := store.NewMockStore()

	bootRuns := 0
	firstRuns := 0
	boot := func(t *testing.T) {
		t.Helper()
		opts := testOptions(t, st, &relay.MockClient{RunErr: context.Canceled})
		opts.BootSetup = func(*config.Manager) error { bootRuns++; return nil }
		opts.FirstRunSetup = func(*config.Manager) error { firstRuns++; return nil }
		require.NoError(t, NewController(opts).Run(context.Background()))
	}

	// An already-provisioned device must still repair its system
	// integration files on restart.
	boot(t)
	boot(t)
	require.Equal(t, 2, bootRuns)
	require.Equal(t, 1, firstRuns)
}

func TestControllerRun_BootSetupFailureIsFatal(t *testing.T) {
	st := store.NewMockStore()
	client := &relay.MockClient{}
	setupErr := errors.New("moonraker config unwritable")

	opts := testOptions(t, st, client)
	opts.BootSetup = func(*config.Manager) error { return setupErr }

	c := NewController(opts)
	err := c.Run(context.Background())
	require.ErrorIs(t, err, setupErr)
	require.Equal(t, StateFailed, c.State())
	require.Zero(t, client.RunCalls)
	// Setup failed before the identity bootstrap ran.
	require.Zero(t, st.SetPrinterIDCalls)
}

func TestControllerRun_IdentityPersistenceFailure(t *testing.T) {
	st := store.NewMockStore()
	st.SetErr = store.ErrPersist
	client := &relay.MockClient{}

	c := NewController(testOptions(t, st, client))
	err := c.Run(context.Background())
	require.ErrorIs(t, err, store.ErrPersist)
	require.Equal(t, StateFailed, c.State())
	require.Zero(t, client.RunCalls)
}

func TestControllerRun_ConfigLoadFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte("[[[broken"), 0o600))

	c := NewController(Options{
		ConfigDir: dir,
		LogDir:    t.TempDir(),
		NewStore:  func(*config.Manager) (store.Store, error) { return store.NewMockStore(), nil },
		NewRelayClient: func(RelayParams) relay.Client {
			return &relay.MockClient{}
		},
	})
	err := c.Run(context.Background())
	require.ErrorIs(t, err, config.ErrLoad)
	require.Equal(t, StateFailed, c.State())
}

func TestControllerRun_RelayRuntimeErrorIsOrderly(t *testing.T) {
	st := store.NewMockStore()
	client := &relay.MockClient{RunErr: errors.New("relay blew up")}

	c := NewController(testOptions(t, st, client))
	err := c.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateExited, c.State())
}

func TestControllerRun_CancelledContext(t *testing.T) {
	st := store.NewMockStore()
	client := &relay.MockClient{}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	c := NewController(testOptions(t, st, client))
	require.NoError(t, c.Run(ctx))
	require.Equal(t, StateExited, c.State())
}

func newTestController(buf *bytes.Buffer) *Controller {
	// Earlier tests may have lowered the process-wide level.
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log := zerolog.New(buf)
	c := NewController(Options{})
	c.log = &log
	c.reporter = telemetry.NewLogReporter(&log)
	c.printerID = "TESTPRINTERID0000000000000000000000000A1"
	return c
}

func TestOnPrimaryConnectionEstablished(t *testing.T) {
	t.Run("no linked accounts warns with printer id", func(t *testing.T) {
		var buf bytes.Buffer
		c := newTestController(&buf)

		c.OnPrimaryConnectionEstablished("key", nil)

		out := buf.String()
		require.Contains(t, out, "This Plugin Isn't Connected To OctoEverywhere!")
		require.Contains(t, out, c.printerID)
	})

	t.Run("linked accounts stay silent", func(t *testing.T) {
		var buf bytes.Buffer
		c := newTestController(&buf)

		c.OnPrimaryConnectionEstablished("key", []string{"account-1"})

		require.NotContains(t, buf.String(), "Isn't Connected")
	})

	t.Run("downstream starts once per process", func(t *testing.T) {
		var buf bytes.Buffer
		c := newTestController(&buf)
		printer := &fakePrinterClient{}
		c.opts.Printer = printer

		c.OnPrimaryConnectionEstablished("key-1", []string{"account-1"})
		c.OnPrimaryConnectionEstablished("key-2", []string{"account-1"})

		require.Equal(t, []string{"key-1"}, printer.starts)
	})
}

func TestOnPluginUpdateRequired(t *testing.T) {
	var buf bytes.Buffer
	c := newTestController(&buf)

	c.OnPluginUpdateRequired()

	require.Contains(t, buf.String(), "A Plugin Update Is Required")
}
