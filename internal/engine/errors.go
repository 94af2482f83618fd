package engine

import "errors"

var (
	// ErrZeroDuration is returned when starting a timer whose total is zero.
	ErrZeroDuration = errors.New("timer has zero duration")
	// ErrClosed is returned by intents submitted after Close.
	ErrClosed = errors.New("engine is closed")
	// ErrNoStore is returned by New when Options.Store is nil.
	ErrNoStore = errors.New("engine: store is required")
)
