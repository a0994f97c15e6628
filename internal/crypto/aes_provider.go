package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math"

	"golang.org/x/crypto/argon2"
)

const (
	// AES-256-GCM key size
	aesKeySize = 32
	// GCM nonce size
	nonceSize = 12
	// Argon2 parameters (OWASP recommended)
	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
)

// AESProvider implements Provider using AES-GCM for encryption
// and Argon2id for key derivation.
type AESProvider struct{}

// NewAESProvider creates a new AESProvider instance.
func NewAESProvider() *AESProvider {
	return &AESProvider{}
}

func (p *AESProvider) Encrypt(plaintext, key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrInvalidKey
	}

	derivedKey := p.ensureKeySize(key)

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (p *AESProvider) Decrypt(ciphertext, key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrInvalidKey
	}

	if len(ciphertext) < nonceSize {
		return nil, ErrDecryptionFailed
	}

	derivedKey := p.ensureKeySize(key)

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	nonce := ciphertext[:nonceSize]
	ciphertext = ciphertext[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}

func (p *AESProvider) DeriveKey(input, salt []byte, keyLen int) ([]byte, error) {
	if len(input) == 0 {
		return nil, ErrInvalidInput
	}
	if keyLen <= 0 || keyLen > math.MaxUint32 {
		return nil, ErrInvalidKeyLength
	}

	return argon2.IDKey(input, salt, argon2Time, argon2Memory, argon2Threads, uint32(keyLen)), nil
}

func (p *AESProvider) RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate random bytes: %w", err)
	}
	return b, nil
}

func (p *AESProvider) ensureKeySize(key []byte) []byte {
	if len(key) == aesKeySize {
		return key
	}
	hash := sha256.Sum256(key)
	return hash[:]
}
