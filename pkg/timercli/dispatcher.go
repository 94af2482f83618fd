package timercli

import (
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/warpdl/warptimer/common"
	"github.com/warpdl/warptimer/pkg/timerlib"
)

// Dispatcher routes daemon push notifications to the registered handlers.
type Dispatcher struct {
	mu          sync.RWMutex
	onUpdated   []func(timerlib.Projection)
	onRemoved   []func(id string)
	onReordered []func(ids []string)
}

func (d *Dispatcher) process(req *jrpc2.Request) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	switch req.Method() {
	case common.NotifyUpdated:
		var p timerlib.Projection
		if err := req.UnmarshalParams(&p); err != nil {
			debugLog("bad %s notification: %v", req.Method(), err)
			return
		}
		for _, fn := range d.onUpdated {
			fn(p)
		}
	case common.NotifyRemoved:
		var n common.RemovedNotification
		if err := req.UnmarshalParams(&n); err != nil {
			debugLog("bad %s notification: %v", req.Method(), err)
			return
		}
		for _, fn := range d.onRemoved {
			fn(n.ID)
		}
	case common.NotifyReordered:
		var n common.ReorderedNotification
		if err := req.UnmarshalParams(&n); err != nil {
			debugLog("bad %s notification: %v", req.Method(), err)
			return
		}
		for _, fn := range d.onReordered {
			fn(n.IDs)
		}
	default:
		debugLog("ignoring notification %s", req.Method())
	}
}

func (d *Dispatcher) addUpdated(fn func(timerlib.Projection)) {
	d.mu.Lock()
	d.onUpdated = append(d.onUpdated, fn)
	d.mu.Unlock()
}

func (d *Dispatcher) addRemoved(fn func(string)) {
	d.mu.Lock()
	d.onRemoved = append(d.onRemoved, fn)
	d.mu.Unlock()
}

func (d *Dispatcher) addReordered(fn func([]string)) {
	d.mu.Lock()
	d.onReordered = append(d.onReordered, fn)
	d.mu.Unlock()
}

func (d *Dispatcher) clear() {
	d.mu.Lock()
	d.onUpdated, d.onRemoved, d.onReordered = nil, nil, nil
	d.mu.Unlock()
}
