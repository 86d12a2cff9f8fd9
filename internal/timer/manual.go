package timer

import (
	"slices"
	"sync"
	"time"
)

type entry struct {
	task   *Task
	fn     func()
	next   time.Duration
	period time.Duration
	repeat bool
	seq    int
}

// Manual is a Clock driven by Advance. Callbacks run on the caller's
// goroutine in due order, which makes countdowns deterministic in tests.
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	entries []*entry
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Every(period time.Duration, fn func()) *Task {
	return m.schedule(period, period, true, fn)
}

func (m *Manual) After(d time.Duration, fn func()) *Task {
	return m.schedule(d, 0, false, fn)
}

func (m *Manual) schedule(d, period time.Duration, repeat bool, fn func()) *Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := newTask(true)
	m.seq++
	m.entries = append(m.entries, &entry{task: t, fn: fn, next: m.now + d, period: period, repeat: repeat, seq: m.seq})
	return t
}

// Advance moves the clock forward by d, firing every callback that falls due.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	for {
		e := m.nextDue(target)
		if e == nil {
			break
		}
		m.now = e.next
		if e.repeat {
			e.next += e.period
		} else {
			e.task.Cancel()
		}
		m.mu.Unlock()
		e.fn()
		m.mu.Lock()
	}
	m.now = target
	m.prune()
	m.mu.Unlock()
}

// Tick advances the clock by one second.
func (m *Manual) Tick() {
	m.Advance(time.Second)
}

// Pending returns the number of live tasks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prune()
	return len(m.entries)
}

func (m *Manual) nextDue(target time.Duration) *entry {
	var best *entry
	for _, e := range m.entries {
		if e.task.Stopped() || e.next > target {
			continue
		}
		if best == nil || e.next < best.next || (e.next == best.next && e.seq < best.seq) {
			best = e
		}
	}
	return best
}

func (m *Manual) prune() {
	m.entries = slices.DeleteFunc(m.entries, func(e *entry) bool { return e.task.Stopped() })
}
