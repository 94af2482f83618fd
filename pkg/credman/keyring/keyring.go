// Package keyring keeps the daemon's RPC bearer secret in the operating
// system keyring, with a file-based fallback.
package keyring

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/zalando/go-keyring"
)

// keySize is the secret length in bytes. Stores hold it hex encoded.
const keySize = 32

// Keyring stores the secret under Service/Account in the OS keyring
// (Secret Service, Keychain or Credential Manager).
type Keyring struct {
	Service string
	Account string
}

var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
	randRead      = rand.Read
)

// NewKeyring returns the keyring entry used by the warptimer daemon.
func NewKeyring() *Keyring {
	return &Keyring{
		Service: "warptimer",
		Account: "rpc-secret",
	}
}

// SetKey generates a fresh secret and stores it, replacing any previous one.
func (k *Keyring) SetKey() ([]byte, error) {
	key, err := newKey()
	if err != nil {
		return nil, err
	}
	if err := keyringSet(k.Service, k.Account, hex.EncodeToString(key)); err != nil {
		return nil, fmt.Errorf("keyring set %s/%s: %w", k.Service, k.Account, err)
	}
	return key, nil
}

// GetKey returns the stored secret.
func (k *Keyring) GetKey() ([]byte, error) {
	encoded, err := keyringGet(k.Service, k.Account)
	if err != nil {
		return nil, err
	}
	return decodeKey(encoded)
}

func (k *Keyring) DeleteKey() error {
	return keyringDelete(k.Service, k.Account)
}

func newKey() ([]byte, error) {
	key := make([]byte, keySize)
	if _, err := randRead(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}

func decodeKey(encoded string) ([]byte, error) {
	key, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid key format: %w", err)
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("invalid key length: expected %d, got %d", keySize, len(key))
	}
	return key, nil
}
