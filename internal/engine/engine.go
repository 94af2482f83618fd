// Package engine owns the running state of every timer. A single goroutine
// applies user intents, clock events and chain hops one at a time, so nothing
// inside the engine needs locking.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/warpdl/warptimer/internal/clock"
	"github.com/warpdl/warptimer/internal/sound"
	"github.com/warpdl/warptimer/pkg/logger"
	"github.com/warpdl/warptimer/pkg/timerlib"
)

// Clock is the background tick source the engine drives.
type Clock interface {
	Start(id string, run uint64, remaining int)
	Stop(id string)
	SetVisibility(hidden bool)
	Ping(nonce uint64)
	Events() <-chan clock.Event
	Close()
}

// ClockFactory creates a running Clock with the given initial cadence.
type ClockFactory func(hidden bool) Clock

// SourceFactory returns a ClockFactory producing clock.Source instances
// bound to ctx.
func SourceFactory(ctx context.Context, opts clock.Options) ClockFactory {
	return func(hidden bool) Clock {
		o := opts
		o.Hidden = hidden
		return clock.New(ctx, o)
	}
}

// Renderer receives everything a viewing surface needs to redraw.
// Calls are made from the engine goroutine and must not block for long.
type Renderer interface {
	Render(p timerlib.Projection)
	Removed(id string)
	Reordered(ids []string)
}

// NopRenderer discards every render.
type NopRenderer struct{}

func (NopRenderer) Render(timerlib.Projection) {}
func (NopRenderer) Removed(string)             {}
func (NopRenderer) Reordered([]string)         {}

// Default liveness settings.
const (
	DefaultPingInterval = 30 * time.Second
	DefaultPingTimeout  = time.Second
)

// Options configures an Engine.
type Options struct {
	Store    *timerlib.Store
	NewClock ClockFactory
	Renderer Renderer
	Player   sound.Player
	Log      logger.Logger
	// Hidden is the initial visibility.
	Hidden bool
	// PingInterval and PingTimeout tune the liveness monitor.
	PingInterval time.Duration
	PingTimeout  time.Duration
}

// Engine applies intents and clock events to the timer store.
type Engine struct {
	store    *timerlib.Store
	newClock ClockFactory
	clock    Clock
	renderer Renderer
	player   sound.Player
	log      logger.Logger
	live     *monitor

	intents chan func()
	// runs holds the token of the countdown the clock is running per timer.
	runs    map[string]uint64
	lastRun uint64
	// pending holds chained starts waiting for their own loop turn.
	pending []string
	hidden  bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	sounds sync.WaitGroup
}

// New hydrates the store, restarts every timer persisted as running and
// starts the engine goroutine. It exits when ctx is cancelled or Close is
// called.
func New(ctx context.Context, opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, ErrNoStore
	}
	if opts.NewClock == nil {
		opts.NewClock = SourceFactory(ctx, clock.Options{Log: opts.Log})
	}
	if opts.Renderer == nil {
		opts.Renderer = NopRenderer{}
	}
	if opts.Player == nil {
		opts.Player = sound.NopPlayer{}
	}
	if opts.Log == nil {
		opts.Log = logger.NewNopLogger()
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = DefaultPingInterval
	}
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = DefaultPingTimeout
	}
	ctx, cancel := context.WithCancel(ctx)
	e := &Engine{
		store:    opts.Store,
		newClock: opts.NewClock,
		renderer: opts.Renderer,
		player:   opts.Player,
		log:      opts.Log,
		live:     newMonitor(opts.PingInterval, opts.PingTimeout),
		intents:  make(chan func()),
		runs:     make(map[string]uint64),
		hidden:   opts.Hidden,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	e.clock = e.newClock(e.hidden)
	e.boot()
	go e.run()
	return e, nil
}

// boot loads the persisted collection and resumes running timers.
func (e *Engine) boot() {
	e.store.Hydrate()
	resumed := 0
	for _, t := range e.store.List() {
		if t.IsRunning {
			e.startClock(t.ID, t.RemainingSeconds)
			resumed++
		}
	}
	e.log.Info("engine: loaded %d timers, resumed %d", e.store.Len(), resumed)
}

// Close stops the engine goroutine and the clock, waits for in-flight
// sounds to finish or be cancelled and flushes the store once more.
func (e *Engine) Close() {
	e.cancel()
	<-e.done
	e.sounds.Wait()
	if err := e.store.Persist(); err != nil {
		e.log.Warning("engine: final persist: %v", err)
	}
}

var hopReady = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

func (e *Engine) run() {
	defer close(e.done)
	defer func() {
		e.live.stop()
		e.clock.Close()
	}()
	for {
		var hop <-chan struct{}
		if len(e.pending) > 0 {
			hop = hopReady
		}
		select {
		case <-e.ctx.Done():
			return
		case fn := <-e.intents:
			fn()
		case ev := <-e.clock.Events():
			e.dispatch(ev)
		case <-hop:
			id := e.pending[0]
			e.pending = e.pending[1:]
			e.startChained(id)
		case <-e.live.tick():
			e.ping()
		case <-e.live.expired():
			e.replaceClock()
		}
	}
}

// do runs fn on the engine goroutine and waits for it to finish.
// ctx only bounds the wait for the goroutine to accept fn.
func (e *Engine) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}
	select {
	case e.intents <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return ErrClosed
	}
	<-finished
	return nil
}

func (e *Engine) project(t timerlib.Timer, progress float64) timerlib.Projection {
	return timerlib.Project(t, progress, e.store.FindByID)
}

func (e *Engine) emit(t timerlib.Timer, progress float64) timerlib.Projection {
	p := e.project(t, progress)
	e.renderer.Render(p)
	return p
}

func (e *Engine) startClock(id string, remaining int) {
	e.lastRun++
	e.runs[id] = e.lastRun
	e.clock.Start(id, e.lastRun, remaining)
}

func (e *Engine) stopClock(id string) {
	if _, ok := e.runs[id]; ok {
		delete(e.runs, id)
		e.clock.Stop(id)
	}
	e.dropPending(id)
}

func (e *Engine) dropPending(id string) {
	kept := e.pending[:0]
	for _, p := range e.pending {
		if p != id {
			kept = append(kept, p)
		}
	}
	e.pending = kept
}

// Create adds a stopped timer and renders it.
func (e *Engine) Create(ctx context.Context, name string, totalSeconds int, s timerlib.Sound) (timerlib.Projection, error) {
	var (
		p     timerlib.Projection
		opErr error
	)
	if err := e.do(ctx, func() {
		var t timerlib.Timer
		t, opErr = e.store.Create(name, totalSeconds, s)
		if opErr == nil {
			p = e.emit(t, 0)
		}
	}); err != nil {
		return timerlib.Projection{}, err
	}
	return p, opErr
}

// Get returns the projection of one timer.
func (e *Engine) Get(ctx context.Context, id string) (timerlib.Projection, error) {
	var (
		p     timerlib.Projection
		opErr error
	)
	if err := e.do(ctx, func() {
		t, ok := e.store.FindByID(id)
		if !ok {
			opErr = timerlib.ErrTimerNotFound
			return
		}
		p = e.project(t, timerlib.RestingProgress(t))
	}); err != nil {
		return timerlib.Projection{}, err
	}
	return p, opErr
}

// List returns projections of every timer in display order.
func (e *Engine) List(ctx context.Context) ([]timerlib.Projection, error) {
	var out []timerlib.Projection
	if err := e.do(ctx, func() {
		timers := e.store.List()
		out = make([]timerlib.Projection, len(timers))
		for i, t := range timers {
			out[i] = e.project(t, timerlib.RestingProgress(t))
		}
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// Start begins counting down id. Starting a running timer is a no-op and a
// finished timer restarts from its total.
func (e *Engine) Start(ctx context.Context, id string) (timerlib.Projection, error) {
	return e.timerIntent(ctx, id, e.start)
}

// Pause stops id where it is.
func (e *Engine) Pause(ctx context.Context, id string) (timerlib.Projection, error) {
	return e.timerIntent(ctx, id, e.pause)
}

// Reset stops id and restores its full duration.
func (e *Engine) Reset(ctx context.Context, id string) (timerlib.Projection, error) {
	return e.timerIntent(ctx, id, e.reset)
}

// SetLink chains fromID to toID. An empty toID removes the link.
func (e *Engine) SetLink(ctx context.Context, fromID, toID string) (timerlib.Projection, error) {
	return e.timerIntent(ctx, fromID, func(id string) (timerlib.Projection, error) {
		return e.setLink(id, toID)
	})
}

func (e *Engine) timerIntent(ctx context.Context, id string, fn func(string) (timerlib.Projection, error)) (timerlib.Projection, error) {
	var (
		p     timerlib.Projection
		opErr error
	)
	if err := e.do(ctx, func() { p, opErr = fn(id) }); err != nil {
		return timerlib.Projection{}, err
	}
	return p, opErr
}

// ResetChain resets id and every timer reachable through its links, each at
// most once. It returns the reset projections in chain order.
func (e *Engine) ResetChain(ctx context.Context, id string) ([]timerlib.Projection, error) {
	var (
		out   []timerlib.Projection
		opErr error
	)
	if err := e.do(ctx, func() { out, opErr = e.resetChain(id) }); err != nil {
		return nil, err
	}
	return out, opErr
}

// Delete stops and removes id.
func (e *Engine) Delete(ctx context.Context, id string) error {
	var opErr error
	if err := e.do(ctx, func() { opErr = e.delete(id) }); err != nil {
		return err
	}
	return opErr
}

// Reorder replaces the display order.
func (e *Engine) Reorder(ctx context.Context, ids []string) error {
	var opErr error
	if err := e.do(ctx, func() {
		if opErr = e.store.Reorder(ids); opErr == nil {
			e.renderer.Reordered(append([]string(nil), ids...))
		}
	}); err != nil {
		return err
	}
	return opErr
}

// SetVisibility switches the clock cadence. Becoming visible also probes the
// clock for liveness.
func (e *Engine) SetVisibility(ctx context.Context, hidden bool) error {
	return e.do(ctx, func() { e.setVisibility(hidden) })
}

// Hidden reports the current visibility.
func (e *Engine) Hidden(ctx context.Context) (bool, error) {
	var hidden bool
	err := e.do(ctx, func() { hidden = e.hidden })
	return hidden, err
}

func (e *Engine) start(id string) (timerlib.Projection, error) {
	t, ok := e.store.FindByID(id)
	if !ok {
		return timerlib.Projection{}, timerlib.ErrTimerNotFound
	}
	if t.IsRunning {
		return e.project(t, timerlib.Progress(t)), nil
	}
	if t.TotalSeconds == 0 {
		return timerlib.Projection{}, ErrZeroDuration
	}
	t, err := e.store.Update(id, func(t *timerlib.Timer) {
		if t.RemainingSeconds == 0 {
			t.RemainingSeconds = t.TotalSeconds
		}
		t.IsRunning = true
	})
	if err != nil {
		return timerlib.Projection{}, err
	}
	e.dropPending(id)
	e.startClock(id, t.RemainingSeconds)
	return e.emit(t, timerlib.Progress(t)), nil
}

func (e *Engine) pause(id string) (timerlib.Projection, error) {
	t, ok := e.store.FindByID(id)
	if !ok {
		return timerlib.Projection{}, timerlib.ErrTimerNotFound
	}
	e.stopClock(id)
	if !t.IsRunning {
		return e.project(t, timerlib.RestingProgress(t)), nil
	}
	t, err := e.store.Update(id, func(t *timerlib.Timer) { t.IsRunning = false })
	if err != nil {
		return timerlib.Projection{}, err
	}
	return e.emit(t, timerlib.RestingProgress(t)), nil
}

func (e *Engine) reset(id string) (timerlib.Projection, error) {
	if _, ok := e.store.FindByID(id); !ok {
		return timerlib.Projection{}, timerlib.ErrTimerNotFound
	}
	e.stopClock(id)
	t, err := e.store.Update(id, func(t *timerlib.Timer) {
		t.IsRunning = false
		t.RemainingSeconds = t.TotalSeconds
	})
	if err != nil {
		return timerlib.Projection{}, err
	}
	return e.emit(t, 0), nil
}

func (e *Engine) delete(id string) error {
	cleared, err := e.store.Delete(id)
	if err != nil {
		return err
	}
	e.stopClock(id)
	e.renderer.Removed(id)
	for _, cid := range cleared {
		if t, ok := e.store.FindByID(cid); ok {
			e.emit(t, timerlib.RestingProgress(t))
		}
	}
	return nil
}

func (e *Engine) setVisibility(hidden bool) {
	was := e.hidden
	if was == hidden {
		return
	}
	e.hidden = hidden
	e.clock.SetVisibility(hidden)
	if was && !hidden {
		e.ping()
	}
}
