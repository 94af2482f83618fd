// Package daemon assembles and runs the warptimer daemon: the timer store,
// the engine, the sound player and the JSON-RPC server.
package daemon

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
	"github.com/warpdl/warptimer/internal/clock"
	"github.com/warpdl/warptimer/internal/config"
	"github.com/warpdl/warptimer/internal/engine"
	"github.com/warpdl/warptimer/internal/server"
	"github.com/warpdl/warptimer/internal/sound"
	"github.com/warpdl/warptimer/pkg/logger"
	"github.com/warpdl/warptimer/pkg/timerlib"
)

// Sentinel errors for the daemon runner.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running daemon.
	ErrAlreadyRunning = errors.New("daemon is already running")

	// ErrNotRunning is returned when Shutdown() is called on a stopped daemon.
	ErrNotRunning = errors.New("daemon is not running")

	// ErrShutdownTimeout is returned when shutdown exceeds the configured timeout.
	ErrShutdownTimeout = errors.New("shutdown timed out")

	// ErrNoSettings is returned by New without a loaded configuration.
	ErrNoSettings = errors.New("daemon: configuration is required")
)

// SQLiteFileName is the database file used by the sqlite store backend.
const SQLiteFileName = "timers.db"

// Config holds the configuration for the daemon runner.
type Config struct {
	// Settings is the loaded configuration file.
	Settings *config.Config

	// RPC carries the bearer secret and build information.
	RPC server.RPCConfig

	// AutoVisibility derives visibility from attached websocket viewers.
	// The daemon then starts hidden.
	AutoVisibility bool

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// A zero value means no timeout.
	ShutdownTimeout time.Duration
}

// Dependencies holds the external dependencies for the daemon runner.
type Dependencies struct {
	// Fs backs the file store. If nil, the OS filesystem is used.
	Fs afero.Fs

	// Log receives daemon logs. If nil, logs are discarded.
	Log logger.Logger

	// Player overrides the player chosen by Settings.Player.
	Player sound.Player

	// Bell is where the terminal bell player writes. If nil, os.Stdout.
	Bell io.Writer

	// NewClock overrides the clock goroutine factory.
	NewClock engine.ClockFactory
}

// Runner manages the daemon lifecycle.
type Runner struct {
	config  *Config
	deps    *Dependencies
	running bool
	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	engine  *engine.Engine
}

// New creates a new daemon runner. deps may be nil.
func New(cfg *Config, deps *Dependencies) (*Runner, error) {
	if cfg == nil || cfg.Settings == nil {
		return nil, ErrNoSettings
	}
	return &Runner{
		config: cfg,
		deps:   applyDependencyDefaults(deps),
	}, nil
}

// applyDependencyDefaults returns Dependencies with default values applied.
func applyDependencyDefaults(deps *Dependencies) *Dependencies {
	if deps == nil {
		deps = &Dependencies{}
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.Log == nil {
		deps.Log = logger.NewNopLogger()
	}
	if deps.Bell == nil {
		deps.Bell = os.Stdout
	}
	return deps
}

// Start builds the daemon components and serves until ctx is cancelled or
// Shutdown is called. Components are released before Start returns.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, r.cancel = context.WithCancel(ctx)
	log := r.deps.Log
	s := r.config.Settings

	blobs, closeBlobs := r.openBlobStore()
	store := timerlib.NewStore(blobs, log)
	notifier := server.NewRPCNotifier(log)
	eng, err := engine.New(ctx, engine.Options{
		Store:        store,
		NewClock:     r.clockFactory(ctx),
		Renderer:     notifier,
		Player:       r.player(),
		Log:          log,
		Hidden:       r.config.AutoVisibility,
		PingInterval: s.PingInterval,
		PingTimeout:  s.PingTimeout,
	})
	if err != nil {
		r.cancel()
		closeBlobs()
		r.mu.Unlock()
		return err
	}
	srv := server.NewServer(log, eng, notifier, &server.Config{
		RPCConfig:      r.config.RPC,
		Port:           s.TCPPort,
		AutoVisibility: r.config.AutoVisibility,
	})
	r.engine = eng
	r.done = make(chan struct{})
	r.running = true
	done := r.done
	r.mu.Unlock()

	err = srv.Start(ctx)

	// stop the notifier and anything else bound to ctx, also when the
	// listener could not be created
	r.cancel()
	eng.Close()
	if store.MemoryOnly() {
		log.Warning("daemon: persistence was disabled, timers from this session were not saved")
	}
	closeBlobs()
	r.mu.Lock()
	r.running = false
	r.engine = nil
	r.mu.Unlock()
	close(done)
	return err
}

// openBlobStore opens the configured backend. A backend that cannot be
// opened leaves the store memory-only for the session.
func (r *Runner) openBlobStore() (timerlib.BlobStore, func()) {
	s := r.config.Settings
	if s.Store != config.StoreSQLite {
		return timerlib.NewFileBlobStore(r.deps.Fs, s.Dir), func() {}
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		r.deps.Log.Error("daemon: create %s: %v; timers will not be saved", s.Dir, err)
		return nil, func() {}
	}
	b, err := timerlib.OpenSQLiteBlobStore(filepath.Join(s.Dir, SQLiteFileName))
	if err != nil {
		r.deps.Log.Error("daemon: %v; timers will not be saved", err)
		return nil, func() {}
	}
	return b, func() {
		if err := b.Close(); err != nil {
			r.deps.Log.Warning("daemon: close store: %v", err)
		}
	}
}

func (r *Runner) clockFactory(ctx context.Context) engine.ClockFactory {
	if r.deps.NewClock != nil {
		return r.deps.NewClock
	}
	s := r.config.Settings
	return engine.SourceFactory(ctx, clock.Options{
		FastInterval: s.FastInterval,
		SlowInterval: s.SlowInterval,
		SendTimeout:  s.PingTimeout,
		Log:          r.deps.Log,
	})
}

func (r *Runner) player() sound.Player {
	if r.deps.Player != nil {
		return r.deps.Player
	}
	return NewPlayer(r.config.Settings, r.deps.Bell)
}

// NewPlayer returns the player selected by s.Player.
func NewPlayer(s *config.Config, bell io.Writer) sound.Player {
	switch s.Player {
	case config.PlayerBell:
		return sound.NewBellPlayer(bell)
	case config.PlayerNone:
		return sound.NopPlayer{}
	default:
		return sound.NewCommandPlayer(s.SoundCommand, s.SoundDir)
	}
}

// Engine returns the running engine, or nil when stopped.
func (r *Runner) Engine() *engine.Engine {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine
}

// Shutdown stops a running daemon and waits for Start to return.
// Returns ErrNotRunning if the daemon is not running and ErrShutdownTimeout
// if teardown exceeds the configured timeout.
func (r *Runner) Shutdown() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return ErrNotRunning
	}
	r.cancel()
	done := r.done
	r.mu.Unlock()

	if r.config.ShutdownTimeout <= 0 {
		<-done
		return nil
	}
	select {
	case <-done:
		return nil
	case <-time.After(r.config.ShutdownTimeout):
		return ErrShutdownTimeout
	}
}

// IsRunning returns true if the daemon is currently running.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
