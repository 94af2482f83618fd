package server

import "sync"

// viewerTracker counts attached websocket viewers. The first attach reports
// visible and the last detach reports hidden.
type viewerTracker struct {
	mu       sync.Mutex
	n        int
	onChange func(hidden bool)
}

func (v *viewerTracker) attach() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.n++
	if v.n == 1 && v.onChange != nil {
		v.onChange(false)
	}
}

func (v *viewerTracker) detach() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.n == 0 {
		return
	}
	v.n--
	if v.n == 0 && v.onChange != nil {
		v.onChange(true)
	}
}

func (v *viewerTracker) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.n
}
