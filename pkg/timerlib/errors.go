package timerlib

import "errors"

var (
	ErrTimerNotFound   = errors.New("timer not found")
	ErrEmptyName       = errors.New("timer name is empty")
	ErrInvalidDuration = errors.New("timer duration is invalid")
	ErrUnknownSound    = errors.New("unknown sound")
	ErrInvalidOrder    = errors.New("reorder must list every timer exactly once")

	// ErrBlobNotFound is returned by a BlobStore when nothing is stored under a key.
	ErrBlobNotFound = errors.New("blob not found")
)
