package crypto

import "errors"

var (
	ErrDecryptionFailed = errors.New("decryption failed")
	ErrInvalidKey       = errors.New("invalid key")
	ErrInvalidKeyLength = errors.New("invalid key length")
	ErrInvalidInput     = errors.New("invalid input")
)

// Provider abstracts the symmetric crypto used to protect the secrets
// store at rest. The interface exists so tests can swap in a failing
// implementation.
type Provider interface {
	// Encrypt encrypts plaintext data using the provided key.
	Encrypt(plaintext, key []byte) ([]byte, error)

	// Decrypt decrypts ciphertext using the provided key.
	Decrypt(ciphertext, key []byte) ([]byte, error)

	// DeriveKey derives a cryptographic key from input material using a KDF.
	// salt should be random or unique per derivation.
	DeriveKey(input, salt []byte, keyLen int) ([]byte, error)

	// RandomBytes generates cryptographically secure random bytes.
	RandomBytes(n int) ([]byte, error)
}
