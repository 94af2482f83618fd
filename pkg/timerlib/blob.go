package timerlib

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// BlobStore is an opaque key-value store. The timer store keeps the whole
// collection under a single key.
type BlobStore interface {
	// Get returns the bytes stored under key, or ErrBlobNotFound.
	Get(key string) ([]byte, error)
	// Put replaces the bytes stored under key.
	Put(key string, data []byte) error
}

// FileBlobStore keeps one JSON file per key in a directory.
type FileBlobStore struct {
	fs  afero.Fs
	dir string
}

// NewFileBlobStore creates a file-backed blob store rooted at dir on fs.
func NewFileBlobStore(fs afero.Fs, dir string) *FileBlobStore {
	return &FileBlobStore{fs: fs, dir: dir}
}

func (b *FileBlobStore) path(key string) string {
	return filepath.Join(b.dir, key+".json")
}

func (b *FileBlobStore) Get(key string) ([]byte, error) {
	data, err := afero.ReadFile(b.fs, b.path(key))
	if os.IsNotExist(err) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Put writes atomically via a temp file and rename. Identical content is not rewritten.
func (b *FileBlobStore) Put(key string, data []byte) error {
	if err := b.fs.MkdirAll(b.dir, 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	target := b.path(key)
	if existing, err := afero.ReadFile(b.fs, target); err == nil {
		if bytes.Equal(existing, data) {
			return nil
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", key, err)
	}

	tmp, err := afero.TempFile(b.fs, b.dir, filepath.Base(target)+".tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	_, err = tmp.Write(data)
	if err1 := tmp.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err != nil {
		_ = b.fs.Remove(name)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := b.fs.Rename(name, target); err != nil {
		_ = b.fs.Remove(name)
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

var _ BlobStore = (*FileBlobStore)(nil)
