package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/octoeverywhere/companion/internal/crypto"
)

// SecretsFileName is the identity file inside the local storage directory.
const SecretsFileName = "octoeverywhere.secrets"

const (
	secretsVersion = 1
	saltSize       = 16
	keySize        = 32
)

// secrets is the plaintext payload of the secrets file.
type secrets struct {
	PrinterID  string `json:"printer_id,omitempty"`
	PrivateKey string `json:"private_key,omitempty"`
}

// encryptedEnvelope wraps the encrypted payload with its derivation salt.
type encryptedEnvelope struct {
	Version int    `json:"version"`
	Salt    []byte `json:"salt"`
	Data    []byte `json:"data"`
}

// SecretsStore keeps the identity in a dedicated file encrypted at rest.
// The encryption key is derived from machine-local key material, so the
// file is useless when copied off the device with a config backup.
type SecretsStore struct {
	path        string
	provider    crypto.Provider
	keyMaterial []byte

	mu      sync.Mutex
	secrets secrets
}

// NewSecretsStore opens (or lazily creates) the secrets file under
// localStorageDir. An unreadable or undecryptable file is treated as
// absent; the bootstrap sequencer will regenerate and overwrite it.
func NewSecretsStore(localStorageDir string, provider crypto.Provider, keyMaterial []byte) (*SecretsStore, error) {
	if err := os.MkdirAll(localStorageDir, 0o700); err != nil {
		return nil, fmt.Errorf("create local storage dir: %w", err)
	}

	s := &SecretsStore{
		path:        filepath.Join(localStorageDir, SecretsFileName),
		provider:    provider,
		keyMaterial: keyMaterial,
	}
	s.load()
	return s, nil
}

func (s *SecretsStore) GetPrinterID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.secrets.PrinterID, s.secrets.PrinterID != ""
}

func (s *SecretsStore) GetPrivateKey() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.secrets.PrivateKey, s.secrets.PrivateKey != ""
}

func (s *SecretsStore) SetPrinterID(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.secrets.PrinterID
	s.secrets.PrinterID = value
	if err := s.write(); err != nil {
		s.secrets.PrinterID = old
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

func (s *SecretsStore) SetPrivateKey(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.secrets.PrivateKey
	s.secrets.PrivateKey = value
	if err := s.write(); err != nil {
		s.secrets.PrivateKey = old
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// load reads the secrets file into memory. Corruption is not fatal here,
// the validators upstream will reject the empty values and regenerate.
func (s *SecretsStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}

	var env encryptedEnvelope
	if err := json.Unmarshal(data, &env); err == nil && env.Version > 0 && len(env.Data) > 0 {
		key, err := s.provider.DeriveKey(s.keyMaterial, env.Salt, keySize)
		if err != nil {
			return
		}
		plaintext, err := s.provider.Decrypt(env.Data, key)
		if err != nil {
			return
		}
		_ = json.Unmarshal(plaintext, &s.secrets)
		return
	}

	// Plaintext legacy file from before encryption at rest. Read it as-is;
	// the next write upgrades it to the encrypted envelope.
	_ = json.Unmarshal(data, &s.secrets)
}

func (s *SecretsStore) write() error {
	plaintext, err := json.Marshal(s.secrets)
	if err != nil {
		return err
	}

	salt, err := s.provider.RandomBytes(saltSize)
	if err != nil {
		return err
	}
	key, err := s.provider.DeriveKey(s.keyMaterial, salt, keySize)
	if err != nil {
		return err
	}
	ciphertext, err := s.provider.Encrypt(plaintext, key)
	if err != nil {
		return err
	}

	data, err := json.Marshal(encryptedEnvelope{Version: secretsVersion, Salt: salt, Data: ciphertext})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// MachineKeyMaterial returns stable machine-local bytes for deriving the
// secrets encryption key. Falls back to the hostname on systems without
// a machine id; the goal is binding to the device, not a hardware root
// of trust.
func MachineKeyMaterial() []byte {
	if data, err := os.ReadFile("/etc/machine-id"); err == nil && len(data) > 0 {
		return data
	}
	if host, err := os.Hostname(); err == nil {
		return []byte(host)
	}
	return []byte("octoeverywhere-companion")
}
