package server

import (
	"os"
	"path/filepath"

	"github.com/warpdl/warptimer/common"
)

func socketPath() string {
	if path := os.Getenv(common.SocketPathEnv); path != "" {
		return path
	}
	return filepath.Join(os.TempDir(), common.SocketName)
}

// boundSocket remembers the socket file a listener created, so shutdown
// removes that file and not whatever sits at the path later.
type boundSocket struct {
	path string
	info os.FileInfo
}

func newBoundSocket(path string) *boundSocket {
	info, err := os.Stat(path)
	if err != nil {
		return &boundSocket{path: path}
	}
	return &boundSocket{path: path, info: info}
}

// remove deletes the socket file if it is still the one that was bound.
// A nil receiver or a missing file is not an error.
func (b *boundSocket) remove() error {
	if b == nil || b.info == nil {
		return nil
	}
	cur, err := os.Stat(b.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !os.SameFile(cur, b.info) {
		return nil
	}
	if err := os.Remove(b.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
