package clock

import "time"

// Cadence is the tick-rate state of a Source.
type Cadence uint8

const (
	// CadenceFast ticks often so visible progress moves smoothly.
	CadenceFast Cadence = iota
	// CadenceSlow ticks once a second while nobody is looking.
	CadenceSlow
)

func (c Cadence) String() string {
	if c == CadenceSlow {
		return "slow"
	}
	return "fast"
}

// cadenceFor is the transition function: visibility alone selects the state.
func cadenceFor(hidden bool) Cadence {
	if hidden {
		return CadenceSlow
	}
	return CadenceFast
}

// cadenceMachine tracks the current cadence and its intervals.
type cadenceMachine struct {
	state Cadence
	fast  time.Duration
	slow  time.Duration
}

func newCadenceMachine(fast, slow time.Duration, hidden bool) *cadenceMachine {
	if fast <= 0 {
		fast = DefaultFastInterval
	}
	if slow <= 0 {
		slow = DefaultSlowInterval
	}
	return &cadenceMachine{state: cadenceFor(hidden), fast: fast, slow: slow}
}

// interval returns the tick interval of the current state.
func (m *cadenceMachine) interval() time.Duration {
	if m.state == CadenceSlow {
		return m.slow
	}
	return m.fast
}

// transition moves to the state for the given visibility and reports whether it changed.
func (m *cadenceMachine) transition(hidden bool) bool {
	next := cadenceFor(hidden)
	if next == m.state {
		return false
	}
	m.state = next
	return true
}
