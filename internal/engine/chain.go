package engine

import (
	"errors"

	"github.com/warpdl/warptimer/pkg/timerlib"
)

// advance queues the start of the timer linked from completedID. The start
// runs on its own loop turn, so a timer chained to itself never recurses.
func (e *Engine) advance(completedID string) {
	t, ok := e.store.FindByID(completedID)
	if !ok || t.NextTimerID == "" {
		return
	}
	if _, ok := e.store.FindByID(t.NextTimerID); !ok {
		return
	}
	e.dropPending(t.NextTimerID)
	e.pending = append(e.pending, t.NextTimerID)
}

func (e *Engine) startChained(id string) {
	_, err := e.start(id)
	switch {
	case err == nil, errors.Is(err, timerlib.ErrTimerNotFound):
	default:
		e.log.Warning("engine: chained start of %s: %v", id, err)
	}
}

// resetChain resets startID and follows its links. The visited set bounds the
// walk on cyclic chains.
func (e *Engine) resetChain(startID string) ([]timerlib.Projection, error) {
	if _, ok := e.store.FindByID(startID); !ok {
		return nil, timerlib.ErrTimerNotFound
	}
	visited := make(map[string]bool)
	var out []timerlib.Projection
	for id := startID; id != "" && !visited[id]; {
		visited[id] = true
		p, err := e.reset(id)
		if err != nil {
			break
		}
		out = append(out, p)
		id = p.NextTimerID
	}
	return out, nil
}

func (e *Engine) setLink(fromID, toID string) (timerlib.Projection, error) {
	t, err := e.store.SetLink(fromID, toID)
	if err != nil {
		return timerlib.Projection{}, err
	}
	return e.emit(t, timerlib.RestingProgress(t)), nil
}
