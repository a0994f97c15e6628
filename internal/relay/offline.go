package relay

import (
	"context"

	"github.com/octoeverywhere/companion/internal/logger"
)

// OfflineClient stands in for the relay transport in builds that do not
// link it (development, install verification). It holds the run loop
// open until cancellation so the host lifecycle behaves normally, but
// never establishes a session.
type OfflineClient struct{}

func (c *OfflineClient) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Warn().Msg("Relay transport is not linked into this build; running offline.")
	<-ctx.Done()
	return ctx.Err()
}
