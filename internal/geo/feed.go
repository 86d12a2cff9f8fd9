package geo

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Feed is a Locator fed from outside: the UI shell pushes the fixes it gets
// from the device and reports when the user denies permission.
type Feed struct {
	mu      sync.Mutex
	last    *Position
	denied  bool
	nextID  int
	subs    map[int]*feedSub
	waiters []chan error
}

type feedSub struct {
	feed     *Feed
	id       int
	onUpdate func(Position)
	onError  func(error)
	once     sync.Once
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[int]*feedSub)}
}

// Push records p as the latest fix and hands it to every watcher.
func (f *Feed) Push(p Position) {
	if p.At.IsZero() {
		p.At = time.Now().UTC()
	}
	f.mu.Lock()
	f.denied = false
	f.last = &p
	subs := f.snapshot()
	waiters := f.waiters
	f.waiters = nil
	f.mu.Unlock()

	for _, w := range waiters {
		w <- nil
	}
	for _, s := range subs {
		s.onUpdate(p)
	}
}

// Deny records a permission refusal and reports it to every watcher.
func (f *Feed) Deny() {
	f.mu.Lock()
	f.denied = true
	f.last = nil
	subs := f.snapshot()
	waiters := f.waiters
	f.waiters = nil
	f.mu.Unlock()

	for _, w := range waiters {
		w <- ErrPermissionDenied
	}
	for _, s := range subs {
		if s.onError != nil {
			s.onError(ErrPermissionDenied)
		}
	}
}

// Watchers returns the number of live subscriptions.
func (f *Feed) Watchers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *Feed) CurrentPosition(ctx context.Context) (Position, error) {
	f.mu.Lock()
	if f.denied {
		f.mu.Unlock()
		return Position{}, ErrPermissionDenied
	}
	if f.last != nil {
		p := *f.last
		f.mu.Unlock()
		return p, nil
	}
	w := make(chan error, 1)
	f.waiters = append(f.waiters, w)
	f.mu.Unlock()

	select {
	case err := <-w:
		if err != nil {
			return Position{}, err
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.last == nil {
			return Position{}, ErrUnavailable
		}
		return *f.last, nil
	case <-ctx.Done():
		f.mu.Lock()
		for i, other := range f.waiters {
			if other == w {
				f.waiters = append(f.waiters[:i], f.waiters[i+1:]...)
				break
			}
		}
		f.mu.Unlock()
		return Position{}, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	}
}

func (f *Feed) Watch(onUpdate func(Position), onError func(error)) (Subscription, error) {
	if onUpdate == nil {
		return nil, fmt.Errorf("watch: update callback is required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.denied {
		return nil, ErrPermissionDenied
	}
	f.nextID++
	s := &feedSub{feed: f, id: f.nextID, onUpdate: onUpdate, onError: onError}
	f.subs[s.id] = s
	return s, nil
}

func (f *Feed) snapshot() []*feedSub {
	out := make([]*feedSub, 0, len(f.subs))
	for _, s := range f.subs {
		out = append(out, s)
	}
	return out
}

func (s *feedSub) Cancel() {
	s.once.Do(func() {
		s.feed.mu.Lock()
		delete(s.feed.subs, s.id)
		s.feed.mu.Unlock()
	})
}
