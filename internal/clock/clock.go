package clock

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/warpdl/warptimer/pkg/logger"
)

type commandKind uint8

const (
	cmdStart commandKind = iota + 1
	cmdStop
	cmdVisibility
	cmdPing
)

type command struct {
	kind      commandKind
	id        string
	run       uint64
	remaining int
	hidden    bool
	nonce     uint64
}

// Options configures a Source.
type Options struct {
	// FastInterval is the tick interval while visible. Zero means DefaultFastInterval.
	FastInterval time.Duration
	// SlowInterval is the tick interval while hidden. Zero means DefaultSlowInterval.
	SlowInterval time.Duration
	// Hidden selects the initial cadence.
	Hidden bool
	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
	// SendTimeout bounds how long a command waits for room in the command
	// queue. Zero means DefaultSendTimeout.
	SendTimeout time.Duration
	// Log receives panic and stall reports. Nil discards them.
	Log logger.Logger
}

// Source is the background clock goroutine. Commands are delivered in call
// order; events are delivered in emission order on Events.
//
// A Source whose queue stays full for longer than SendTimeout is treated as
// stalled: it cancels itself and drops every later command, so pings go
// unanswered and the owner replaces it.
type Source struct {
	cmds        chan command
	events      chan Event
	ctx         context.Context
	cancel      context.CancelFunc
	done        chan struct{}
	sendTimeout time.Duration
	log         logger.Logger
}

// New creates and starts a Source. The goroutine exits when ctx is cancelled
// or Close is called.
func New(ctx context.Context, opts Options) *Source {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Log == nil {
		opts.Log = logger.NewNopLogger()
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = DefaultSendTimeout
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &Source{
		cmds:   make(chan command, 64),
		events: make(chan Event, 64),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),

		sendTimeout: opts.SendTimeout,
		log:         opts.Log,
	}
	go func() {
		defer close(s.done)
		defer func() {
			// A crashed loop stops answering; the liveness monitor notices the
			// missing pong and replaces the Source. Cancelling keeps senders
			// from blocking on the dead command channel.
			if r := recover(); r != nil {
				opts.Log.Error("clock: PANIC: %v\n%s", r, debug.Stack())
			}
			s.cancel()
		}()
		s.run(opts)
	}()
	return s
}

// Start begins (or restarts) counting down id from remaining seconds.
func (s *Source) Start(id string, run uint64, remaining int) {
	s.send(command{kind: cmdStart, id: id, run: run, remaining: remaining})
}

// Stop removes id from the active set. Events already emitted for it may
// still be delivered.
func (s *Source) Stop(id string) {
	s.send(command{kind: cmdStop, id: id})
}

// SetVisibility switches between the fast and slow cadence.
func (s *Source) SetVisibility(hidden bool) {
	s.send(command{kind: cmdVisibility, hidden: hidden})
}

// Ping asks for an EventPong carrying nonce.
func (s *Source) Ping(nonce uint64) {
	s.send(command{kind: cmdPing, nonce: nonce})
}

// Events returns the event stream.
func (s *Source) Events() <-chan Event {
	return s.events
}

// Close stops the goroutine and waits for it to exit.
func (s *Source) Close() {
	s.cancel()
	<-s.done
}

func (s *Source) send(c command) {
	select {
	case s.cmds <- c:
		return
	case <-s.ctx.Done():
		return
	default:
	}
	t := time.NewTimer(s.sendTimeout)
	defer t.Stop()
	select {
	case s.cmds <- c:
	case <-s.ctx.Done():
	case <-t.C:
		s.log.Warning("clock: command queue blocked for %s, giving up on this source", s.sendTimeout)
		s.cancel()
	}
}

// run is the Source goroutine. Emitted events go through an outbox so the
// loop keeps accepting commands while the consumer is busy.
func (s *Source) run(opts Options) {
	state := newTickState()
	cadence := newCadenceMachine(opts.FastInterval, opts.SlowInterval, opts.Hidden)
	ticker := time.NewTicker(cadence.interval())
	defer ticker.Stop()

	var outbox []Event
	for {
		var out chan<- Event
		var next Event
		if len(outbox) > 0 {
			out = s.events
			next = outbox[0]
		}

		select {
		case <-s.ctx.Done():
			return

		case out <- next:
			outbox = outbox[1:]

		case c := <-s.cmds:
			switch c.kind {
			case cmdStart:
				state.start(c.id, c.run, c.remaining, opts.Now())
			case cmdStop:
				state.stop(c.id)
			case cmdVisibility:
				if cadence.transition(c.hidden) {
					ticker.Reset(cadence.interval())
				}
			case cmdPing:
				outbox = append(outbox, Event{Kind: EventPong, Nonce: c.nonce})
			}

		case <-ticker.C:
			outbox = append(outbox, state.advance(opts.Now())...)
		}
	}
}
