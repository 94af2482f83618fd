package clock

import "time"

// EventKind distinguishes the events a Source emits.
type EventKind uint8

const (
	// EventUpdate reports a new remaining count for a running countdown.
	EventUpdate EventKind = iota + 1
	// EventComplete reports that a countdown reached zero. It is terminal.
	EventComplete
	// EventPong answers a Ping with the same nonce.
	EventPong
)

func (k EventKind) String() string {
	switch k {
	case EventUpdate:
		return "update"
	case EventComplete:
		return "complete"
	case EventPong:
		return "pong"
	default:
		return "unknown"
	}
}

// Event is a message from the Source to its consumer.
type Event struct {
	Kind    EventKind
	TimerID string
	// Run echoes the token passed to Start, so consumers can discard events
	// belonging to a countdown that has since been stopped and restarted.
	Run              uint64
	RemainingSeconds int
	Nonce            uint64
}

// Completed reports whether the event is a terminal completion.
func (e Event) Completed() bool {
	return e.Kind == EventComplete
}

// Default cadences.
const (
	DefaultFastInterval = 100 * time.Millisecond
	DefaultSlowInterval = time.Second
)

// DefaultSendTimeout bounds how long a command waits for a busy Source.
const DefaultSendTimeout = time.Second
