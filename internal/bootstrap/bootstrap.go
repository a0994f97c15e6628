// Package bootstrap guarantees a valid printer identity exists before any
// networked component starts.
package bootstrap

import (
	"fmt"

	"github.com/octoeverywhere/companion/internal/identity"
	"github.com/octoeverywhere/companion/internal/store"
	"github.com/rs/zerolog"
)

// Sequencer drives the first-run identity setup on every process start.
type Sequencer struct {
	Store store.Store

	// OnFirstRun, when set, runs once after a brand-new device got its
	// identity. Hosts use it for one-time companion setup such as
	// allow-listing the service name. Errors are fatal: the installer
	// waits on this setup and must not report success without it.
	OnFirstRun func() error
}

// EnsureValidIdentity checks the stored printer id and private key,
// regenerating and persisting each one independently when absent or
// malformed. It returns true only when the printer id was absent before
// the call, which is what distinguishes a brand-new device from one
// recovering from corruption.
//
// Every generated value is persisted before the boot continues. A store
// write failure is returned as-is (wrapping store.ErrPersist) and must
// abort the boot: proceeding with an unsaved identity would regenerate
// it again on every restart, forever.
func (s *Sequencer) EnsureValidIdentity(log *zerolog.Logger) (bool, error) {
	firstRun := false

	printerID, found := s.Store.GetPrinterID()
	if !identity.IsPrinterIDValid(printerID) {
		if !found {
			log.Info().Msg("No printer id was found, generating one now!")
			firstRun = true
		} else {
			log.Info().Str("printer_id", printerID).Msg("An invalid printer id was found, regenerating!")
		}

		newID, err := identity.GeneratePrinterID()
		if err != nil {
			return false, fmt.Errorf("generate printer id: %w", err)
		}
		if err := s.Store.SetPrinterID(newID); err != nil {
			return false, err
		}
		log.Info().Str("printer_id", newID).Msg("New printer id created")
	}

	privateKey, found := s.Store.GetPrivateKey()
	if !identity.IsPrivateKeyValid(privateKey) {
		if !found {
			log.Info().Msg("No private key was found, generating one now!")
		} else {
			log.Info().Msg("An invalid private key was found, regenerating!")
		}

		newKey, err := identity.GeneratePrivateKey()
		if err != nil {
			return false, fmt.Errorf("generate private key: %w", err)
		}
		if err := s.Store.SetPrivateKey(newKey); err != nil {
			return false, err
		}
		log.Info().Msg("New private key created.")
	}

	if firstRun && s.OnFirstRun != nil {
		if err := s.OnFirstRun(); err != nil {
			return true, fmt.Errorf("first run setup: %w", err)
		}
	}

	return firstRun, nil
}
