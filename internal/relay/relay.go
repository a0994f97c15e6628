// Package relay declares the narrow surface the companion shares with the
// external relay client. The wire protocol itself lives outside this
// repository; everything here is the contract the host codes against.
package relay

import (
	"context"
	"fmt"
)

// OctoClientWsURI is the websocket endpoint the relay client dials.
const OctoClientWsURI = "wss://starport-v1.octoeverywhere.com/octoclientws"

const addPrinterURLFormat = "https://octoeverywhere.com/getstarted?printerid=%s"

// AddPrinterURL returns the self-service linking URL for a printer id.
func AddPrinterURL(printerID string) string {
	return fmt.Sprintf(addPrinterURLFormat, printerID)
}

// Client is the blocking run loop of the external relay client. Run owns
// the calling goroutine until the context is cancelled, the connection is
// permanently lost, or the relay tells the client to stop.
type Client interface {
	Run(ctx context.Context) error
}

// StatusHandler receives connection lifecycle events from the relay
// client. Callbacks are invoked synchronously from inside the client's
// run loop and must not block for long, doing so stalls relay processing.
type StatusHandler interface {
	// OnPrimaryConnectionEstablished fires when the primary relay session
	// is up. octoKey is the session token; connectedAccounts lists the
	// user accounts this printer is linked to, and is empty for an
	// unlinked printer.
	OnPrimaryConnectionEstablished(octoKey string, connectedAccounts []string)

	// OnPluginUpdateRequired fires when the relay mandates a plugin
	// update. The client decides independently whether to keep running
	// degraded or disconnect.
	OnPluginUpdateRequired()
}

// PopupKind classifies UI popup messages.
type PopupKind string

const (
	PopupNotice  PopupKind = "notice"
	PopupInfo    PopupKind = "info"
	PopupSuccess PopupKind = "success"
	PopupError   PopupKind = "error"
)

// UiPopupInvoker shows operator-facing popups in the printer's frontend.
// Fire and forget: implementations swallow their own errors, a failed
// popup must never disturb the relay session. Hosts without a frontend
// implement this as a no-op.
type UiPopupInvoker interface {
	ShowUiPopup(title, text string, kind PopupKind, actionText, actionLink string, showForSec int, onlyIfLoadedViaRelay bool)
}
