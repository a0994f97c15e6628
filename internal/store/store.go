// Package store persists the printer identity. Two backends share one
// contract: a section of the companion config file, and an encrypted
// secrets file for hosts whose config files get backed up publicly.
package store

import "errors"

// ErrPersist indicates an identity write did not reach durable storage.
// Callers must treat this as fatal for the current boot; an unsaved
// identity would silently regenerate on every restart otherwise.
var ErrPersist = errors.New("identity persistence failed")

// Store is the durable key/value home of the printer identity.
type Store interface {
	// GetPrinterID returns the stored printer id, and false when absent.
	GetPrinterID() (string, bool)

	// GetPrivateKey returns the stored private key, and false when absent.
	GetPrivateKey() (string, bool)

	// SetPrinterID persists a new printer id, wrapping ErrPersist on failure.
	SetPrinterID(value string) error

	// SetPrivateKey persists a new private key, wrapping ErrPersist on failure.
	SetPrivateKey(value string) error
}
