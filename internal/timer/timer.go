// Package timer provides cancellable scheduled tasks. A Clock hands out Tasks;
// cancelling a Task stops further callbacks and never blocks, so a callback
// may cancel its own task.
package timer

import (
	"sync"
	"time"
)

// Clock schedules callbacks. Real runs them on their own goroutines; Manual
// runs them synchronously from Advance.
type Clock interface {
	// Every calls fn once per period until the task is cancelled.
	Every(period time.Duration, fn func()) *Task
	// After calls fn once after d unless cancelled first.
	After(d time.Duration, fn func()) *Task
}

type Task struct {
	once sync.Once
	stop chan struct{}
	done chan struct{}
	// sync tasks have no goroutine; done closes together with stop
	sync bool
}

func newTask(sync bool) *Task {
	return &Task{stop: make(chan struct{}), done: make(chan struct{}), sync: sync}
}

// Cancel stops the task. It is idempotent and safe on a nil Task.
func (t *Task) Cancel() {
	if t == nil {
		return
	}
	t.once.Do(func() {
		close(t.stop)
		if t.sync {
			close(t.done)
		}
	})
}

// Stopped reports whether the task was cancelled or, for one-shot tasks, fired.
func (t *Task) Stopped() bool {
	if t == nil {
		return true
	}
	select {
	case <-t.stop:
		return true
	default:
		return false
	}
}

// Done is closed once no further callback can start.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until Done is closed. Never call it from the task's own callback.
func (t *Task) Wait() {
	if t == nil {
		return
	}
	<-t.done
}

// Real is the wall-clock Clock.
type Real struct{}

func (Real) Every(period time.Duration, fn func()) *Task {
	t := newTask(false)
	tk := time.NewTicker(period)
	go func() {
		defer close(t.done)
		defer tk.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-tk.C:
				if t.Stopped() {
					return
				}
				fn()
			}
		}
	}()
	return t
}

func (Real) After(d time.Duration, fn func()) *Task {
	t := newTask(false)
	tm := time.NewTimer(d)
	go func() {
		defer close(t.done)
		defer tm.Stop()
		select {
		case <-t.stop:
		case <-tm.C:
			fired := false
			t.once.Do(func() {
				close(t.stop)
				fired = true
			})
			if fired {
				fn()
			}
		}
	}()
	return t
}
