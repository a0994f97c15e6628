package host

import (
	"github.com/octoeverywhere/companion/internal/relay"
	"github.com/rs/zerolog"
)

// NoopPopupInvoker drops every popup. Used by hosts without a web
// frontend to show anything on.
type NoopPopupInvoker struct{}

func (NoopPopupInvoker) ShowUiPopup(string, string, relay.PopupKind, string, string, int, bool) {}

// LogPopupInvoker writes popups to the log. Used where the frontend
// integration is handled entirely relay-side and the local host only
// keeps an operator trail.
type LogPopupInvoker struct {
	Log *zerolog.Logger
}

func (p LogPopupInvoker) ShowUiPopup(title, text string, kind relay.PopupKind, actionText, actionLink string, showForSec int, onlyIfLoadedViaRelay bool) {
	p.Log.Info().
		Str("kind", string(kind)).
		Str("title", title).
		Str("text", text).
		Str("action_text", actionText).
		Str("action_link", actionLink).
		Int("show_for_sec", showForSec).
		Bool("only_if_loaded_via_relay", onlyIfLoadedViaRelay).
		Msg("UI popup")
}
