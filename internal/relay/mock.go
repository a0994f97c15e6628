package relay

import "context"

// MockClient is a Client for tests. It fires the configured events into
// the handler, then returns RunErr (or waits for cancellation).
type MockClient struct {
	Handler StatusHandler

	// SessionToken and ConnectedAccounts describe the session event fired
	// when FireConnected is true.
	FireConnected     bool
	SessionToken      string
	ConnectedAccounts []string

	// FireUpdateRequired fires OnPluginUpdateRequired before returning.
	FireUpdateRequired bool

	RunErr   error
	RunCalls int
}

func (m *MockClient) Run(ctx context.Context) error {
	m.RunCalls++
	if m.Handler != nil {
		if m.FireConnected {
			m.Handler.OnPrimaryConnectionEstablished(m.SessionToken, m.ConnectedAccounts)
		}
		if m.FireUpdateRequired {
			m.Handler.OnPluginUpdateRequired()
		}
	}
	if m.RunErr != nil {
		return m.RunErr
	}
	<-ctx.Done()
	return ctx.Err()
}
