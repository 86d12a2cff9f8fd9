// Package loop serializes state changes. Every user action, tick and
// location callback is run through one Loop so no two handlers overlap.
package loop

import "sync"

type Loop struct {
	mu     sync.Mutex
	closed bool
}

func New() *Loop {
	return &Loop{}
}

// Do runs fn exclusively. It reports false without running fn once the loop
// is closed, which is how late timer callbacks are dropped after shutdown.
// fn must not call Do again.
func (l *Loop) Do(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	fn()
	return true
}

// Close runs fn as the last handler and rejects every later Do.
func (l *Loop) Close(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	if fn != nil {
		fn()
	}
}
