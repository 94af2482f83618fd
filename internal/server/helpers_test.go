package server

import (
	"context"
	"testing"

	"github.com/warpdl/warptimer/internal/engine"
	"github.com/warpdl/warptimer/pkg/timerlib"
)

// newTestEngine starts a memory-only engine rendering into a fresh notifier.
func newTestEngine(t *testing.T) (*engine.Engine, *RPCNotifier) {
	t.Helper()
	n := NewRPCNotifier(nil)
	e, err := engine.New(context.Background(), engine.Options{
		Store:    timerlib.NewStore(nil, nil),
		Renderer: n,
	})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	t.Cleanup(e.Close)
	return e, n
}
