package keyring

import (
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	keyFileName = "rpc.key"
	keyFileMode = 0600
)

// FileKeyStore stores the key as a hex string in a 0600 file. It is used when
// the system keyring is unavailable, e.g. on headless machines.
type FileKeyStore struct {
	fs        afero.Fs
	configDir string
}

// NewFileKeyStore creates a FileKeyStore keeping its file in configDir.
func NewFileKeyStore(fs afero.Fs, configDir string) *FileKeyStore {
	return &FileKeyStore{fs: fs, configDir: configDir}
}

func (f *FileKeyStore) keyPath() string {
	return filepath.Join(f.configDir, keyFileName)
}

// SetKey generates a new key and writes it atomically through a temp file
// and rename.
func (f *FileKeyStore) SetKey() ([]byte, error) {
	if err := f.fs.MkdirAll(f.configDir, 0755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	key, err := newKey()
	if err != nil {
		return nil, err
	}

	tmpFile, err := afero.TempFile(f.fs, f.configDir, ".rpc.key.tmp.*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.WriteString(hex.EncodeToString(key)); err != nil {
		tmpFile.Close()
		f.fs.Remove(tmpPath)
		return nil, fmt.Errorf("write key: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		f.fs.Remove(tmpPath)
		return nil, fmt.Errorf("close temp file: %w", err)
	}
	if err := f.fs.Chmod(tmpPath, keyFileMode); err != nil {
		f.fs.Remove(tmpPath)
		return nil, fmt.Errorf("set permissions: %w", err)
	}
	if err := f.fs.Rename(tmpPath, f.keyPath()); err != nil {
		f.fs.Remove(tmpPath)
		return nil, fmt.Errorf("rename key file: %w", err)
	}
	return key, nil
}

// GetKey reads and decodes the stored key.
func (f *FileKeyStore) GetKey() ([]byte, error) {
	data, err := afero.ReadFile(f.fs, f.keyPath())
	if err != nil {
		return nil, err
	}
	return decodeKey(string(data))
}

// DeleteKey removes the key file.
func (f *FileKeyStore) DeleteKey() error {
	return f.fs.Remove(f.keyPath())
}
