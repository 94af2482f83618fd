package engine

import "time"

// monitor tracks the outstanding liveness probe. At most one ping is in
// flight; a pong with any other nonce is ignored.
type monitor struct {
	timeout  time.Duration
	ticker   *time.Ticker
	deadline *time.Timer
	nonce    uint64
	waiting  bool
}

func newMonitor(interval, timeout time.Duration) *monitor {
	return &monitor{
		timeout: timeout,
		ticker:  time.NewTicker(interval),
	}
}

func (m *monitor) tick() <-chan time.Time {
	return m.ticker.C
}

// expired fires when the outstanding ping has not been answered in time.
func (m *monitor) expired() <-chan time.Time {
	if !m.waiting {
		return nil
	}
	return m.deadline.C
}

// begin opens a probe and returns its nonce. It reports false when a probe
// is already outstanding.
func (m *monitor) begin() (uint64, bool) {
	if m.waiting {
		return 0, false
	}
	m.nonce++
	m.waiting = true
	m.deadline = time.NewTimer(m.timeout)
	return m.nonce, true
}

func (m *monitor) pong(nonce uint64) bool {
	if !m.waiting || nonce != m.nonce {
		return false
	}
	m.waiting = false
	m.deadline.Stop()
	return true
}

func (m *monitor) abandon() {
	if m.waiting {
		m.waiting = false
		m.deadline.Stop()
	}
}

func (m *monitor) stop() {
	m.ticker.Stop()
	m.abandon()
}

func (e *Engine) ping() {
	if nonce, ok := e.live.begin(); ok {
		e.clock.Ping(nonce)
	}
}

// replaceClock swaps a stalled clock for a fresh one and replays every
// running timer from its last known remaining seconds.
func (e *Engine) replaceClock() {
	e.live.abandon()
	e.log.Warning("engine: clock did not answer within %s, recreating", e.live.timeout)

	// a stalled clock may never return from Close
	go e.clock.Close()

	e.clock = e.newClock(e.hidden)
	e.clock.SetVisibility(e.hidden)
	for id := range e.runs {
		delete(e.runs, id)
	}
	for _, t := range e.store.List() {
		if t.IsRunning {
			e.startClock(t.ID, t.RemainingSeconds)
		}
	}
}
