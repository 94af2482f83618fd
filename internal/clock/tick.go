package clock

import "time"

// countdown is one active timer inside the Source.
type countdown struct {
	run       uint64
	remaining int
	// lastTick is the instant the last whole second was counted.
	lastTick time.Time
}

// tickState is the active set. It is owned by the Source goroutine.
type tickState struct {
	active map[string]*countdown
}

func newTickState() *tickState {
	return &tickState{active: make(map[string]*countdown)}
}

// start adds or replaces a countdown, counting from now.
func (s *tickState) start(id string, run uint64, remaining int, now time.Time) {
	if remaining < 0 {
		remaining = 0
	}
	s.active[id] = &countdown{run: run, remaining: remaining, lastTick: now}
}

func (s *tickState) stop(id string) {
	delete(s.active, id)
}

// advance applies the time elapsed up to now to every countdown.
// Whole seconds are consumed; the remainder stays in lastTick for the next pass.
func (s *tickState) advance(now time.Time) []Event {
	var events []Event
	for id, c := range s.active {
		if c.remaining > 0 {
			elapsed := now.Sub(c.lastTick)
			if elapsed < time.Second {
				continue
			}
			secs := int(elapsed / time.Second)
			c.lastTick = c.lastTick.Add(time.Duration(secs) * time.Second)
			c.remaining -= secs
			if c.remaining < 0 {
				c.remaining = 0
			}
		}
		if c.remaining == 0 {
			events = append(events, Event{Kind: EventComplete, TimerID: id, Run: c.run})
			delete(s.active, id)
			continue
		}
		events = append(events, Event{Kind: EventUpdate, TimerID: id, Run: c.run, RemainingSeconds: c.remaining})
	}
	return events
}
