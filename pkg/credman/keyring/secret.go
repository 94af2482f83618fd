package keyring

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// KeyStore is implemented by Keyring and FileKeyStore.
type KeyStore interface {
	SetKey() ([]byte, error)
	GetKey() ([]byte, error)
	DeleteKey() error
}

// ErrNoKeyStore is returned by LoadOrCreate when called without stores.
var ErrNoKeyStore = errors.New("keyring: no key store available")

// LoadOrCreate returns the hex encoded key held by the first store that has
// one. If none has a key, a new one is saved in the first store that accepts
// it.
func LoadOrCreate(stores ...KeyStore) (string, error) {
	if len(stores) == 0 {
		return "", ErrNoKeyStore
	}
	for _, s := range stores {
		if key, err := s.GetKey(); err == nil {
			return hex.EncodeToString(key), nil
		}
	}
	var errs []error
	for _, s := range stores {
		key, err := s.SetKey()
		if err == nil {
			return hex.EncodeToString(key), nil
		}
		errs = append(errs, err)
	}
	return "", fmt.Errorf("keyring: store secret: %w", errors.Join(errs...))
}
