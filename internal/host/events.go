package host

import (
	"github.com/octoeverywhere/companion/internal/relay"
	"github.com/octoeverywhere/companion/internal/telemetry"
)

// OnPrimaryConnectionEstablished is invoked by the relay client, from
// inside its run loop, when the primary session is up. Must return
// quickly; anything slow is handed off.
func (c *Controller) OnPrimaryConnectionEstablished(octoKey string, connectedAccounts []string) {
	log := c.logger()
	log.Info().Msg("Primary Connection To OctoEverywhere Established - We Are Ready To Go!")
	telemetry.ConnectionsEstablished.Inc()

	// An unlinked printer still relays fine, the user just never sees it.
	// Make the finish-setup link easy to find in the log.
	if len(connectedAccounts) == 0 {
		c.mu.Lock()
		printerID := c.printerID
		c.mu.Unlock()
		url := relay.AddPrinterURL(printerID)

		log.Warn().Msg("~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~")
		log.Warn().Msg("          This Plugin Isn't Connected To OctoEverywhere!          ")
		log.Warn().Msg(" Use the following link to finish the setup and get remote access:")
		log.Warn().Str("url", url).Msg("")
		log.Warn().Msg("~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~")
	}

	// Start the downstream printer client now that a session exists, in
	// case it wants to send notifications on startup. Once per process;
	// re-established sessions find it already running.
	c.mu.Lock()
	alreadyActive := c.downstreamActive
	c.downstreamActive = true
	c.mu.Unlock()
	if !alreadyActive && c.opts.Printer != nil {
		c.opts.Printer.StartRunningIfNotAlready(octoKey)
	}
}

// OnPluginUpdateRequired is invoked by the relay client when the server
// mandates an update. Non-fatal: the client decides on its own whether
// to keep running degraded.
func (c *Controller) OnPluginUpdateRequired() {
	log := c.logger()
	telemetry.UpdateRequiredEvents.Inc()
	log.Error().Msg("!!! A Plugin Update Is Required -- If This Plugin Isn't Updated It Might Stop Working !!!")
	log.Error().Msg("!!! Please run the update script in your user home directory to update this plugin    !!!")
}
