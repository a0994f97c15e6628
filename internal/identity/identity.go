package identity

import (
	"crypto/rand"
	"fmt"
)

const (
	// PrinterIDLength is the exact length the relay expects for a printer id.
	PrinterIDLength = 40

	// PrivateKeyLength is the length of newly generated private keys.
	PrivateKeyLength = 80

	// PrivateKeyMinLength is the shortest private key accepted as valid.
	// Existing keys only need to clear this bar, they are never rewritten
	// to the new length.
	PrivateKeyMinLength = 32
)

const (
	printerIDCharset  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	privateKeyCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
)

// IsPrinterIDValid reports whether value is a well formed printer id.
// The relay expects a fixed-length token from the id charset, anything
// else (empty, truncated, foreign characters) is invalid.
func IsPrinterIDValid(value string) bool {
	if len(value) != PrinterIDLength {
		return false
	}
	for i := 0; i < len(value); i++ {
		if !charsetContains(printerIDCharset, value[i]) {
			return false
		}
	}
	return true
}

// IsPrivateKeyValid reports whether value is acceptable as a private key.
// Any non-trivially-short string passes, so keys generated by older
// versions remain valid.
func IsPrivateKeyValid(value string) bool {
	return len(value) >= PrivateKeyMinLength
}

// GeneratePrinterID returns a new printer id from a cryptographically
// strong random source. The result always passes IsPrinterIDValid.
func GeneratePrinterID() (string, error) {
	id, err := randomString(printerIDCharset, PrinterIDLength)
	if err != nil {
		return "", fmt.Errorf("generate printer id: %w", err)
	}
	return id, nil
}

// GeneratePrivateKey returns a new private key, independent of any
// printer id. The result always passes IsPrivateKeyValid.
func GeneratePrivateKey() (string, error) {
	key, err := randomString(privateKeyCharset, PrivateKeyLength)
	if err != nil {
		return "", fmt.Errorf("generate private key: %w", err)
	}
	return key, nil
}

func randomString(charset string, length int) (string, error) {
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	out := make([]byte, length)
	for i, b := range raw {
		out[i] = charset[int(b)%len(charset)]
	}
	return string(out), nil
}

func charsetContains(charset string, c byte) bool {
	for i := 0; i < len(charset); i++ {
		if charset[i] == c {
			return true
		}
	}
	return false
}
