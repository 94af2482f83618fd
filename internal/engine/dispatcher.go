package engine

import (
	"github.com/warpdl/warptimer/internal/clock"
	"github.com/warpdl/warptimer/pkg/timerlib"
)

func (e *Engine) dispatch(ev clock.Event) {
	switch ev.Kind {
	case clock.EventPong:
		e.live.pong(ev.Nonce)
	case clock.EventUpdate:
		if ev.RemainingSeconds <= 0 {
			e.complete(ev)
			return
		}
		e.update(ev)
	case clock.EventComplete:
		e.complete(ev)
	}
}

// current returns the timer an event refers to, if the event still belongs
// to the countdown the clock is running for it. Events for deleted, stopped
// or restarted timers are expected and dropped.
func (e *Engine) current(ev clock.Event) (timerlib.Timer, bool) {
	t, ok := e.store.FindByID(ev.TimerID)
	if !ok || !t.IsRunning {
		return t, false
	}
	run, ok := e.runs[ev.TimerID]
	if !ok || run != ev.Run {
		return t, false
	}
	return t, true
}

func (e *Engine) update(ev clock.Event) {
	if _, ok := e.current(ev); !ok {
		return
	}
	t, err := e.store.Update(ev.TimerID, func(t *timerlib.Timer) {
		if ev.RemainingSeconds < t.RemainingSeconds {
			t.RemainingSeconds = ev.RemainingSeconds
		}
	})
	if err != nil {
		return
	}
	e.emit(t, timerlib.Progress(t))
}

func (e *Engine) complete(ev clock.Event) {
	if _, ok := e.current(ev); !ok {
		return
	}
	delete(e.runs, ev.TimerID)
	t, err := e.store.Update(ev.TimerID, func(t *timerlib.Timer) {
		t.RemainingSeconds = 0
		t.IsRunning = false
	})
	if err != nil {
		return
	}
	e.emit(t, 100)
	e.playSound(t.Sound)
	e.advance(t.ID)
}

// playSound plays key in the background. Failures are only logged.
func (e *Engine) playSound(key timerlib.Sound) {
	e.sounds.Add(1)
	go func() {
		defer e.sounds.Done()
		if err := e.player.Play(e.ctx, key); err != nil && e.ctx.Err() == nil {
			e.log.Warning("engine: play %s: %v", key, err)
		}
	}()
}
