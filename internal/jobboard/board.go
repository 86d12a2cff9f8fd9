// Package jobboard holds the available and accepted job collections. A job id
// lives in at most one of the two at any time.
package jobboard

import (
	"errors"
	"slices"
	"sync"

	"github.com/garnizeh/rozgar/pkg/models"
)

// ErrNotFound is returned when accepting an id that is not available.
var ErrNotFound = errors.New("job not found")

type Board struct {
	mu        sync.RWMutex
	available []models.Job
	accepted  []models.Job
	lastID    int64
}

// New returns a board whose available list is a copy of seed.
func New(seed []models.Job) *Board {
	b := &Board{}
	b.Reset(seed)
	return b
}

// Reset drops accepted jobs and reloads the available list from seed.
func (b *Board) Reset(seed []models.Job) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.available = slices.Clone(seed)
	b.accepted = nil
	b.lastID = 0
	for _, j := range seed {
		b.lastID = max(b.lastID, j.ID)
	}
}

// ListAvailable returns the available jobs in board order.
func (b *Board) ListAvailable() []models.Job {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.available)
}

// ListAccepted returns accepted jobs, most recently accepted first.
func (b *Board) ListAccepted() []models.Job {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.accepted)
}

// First returns the first available job.
func (b *Board) First() (models.Job, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.available) == 0 {
		return models.Job{}, false
	}
	return b.available[0], true
}

// IsAvailable reports whether id is on the available list.
func (b *Board) IsAvailable(id int64) bool {
	_, ok := b.Available(id)
	return ok
}

// Available returns the available job with id.
func (b *Board) Available(id int64) (models.Job, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i := indexOf(b.available, id)
	if i < 0 {
		return models.Job{}, false
	}
	return b.available[i], true
}

// Accepted returns the accepted job with id.
func (b *Board) Accepted(id int64) (models.Job, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i := indexOf(b.accepted, id)
	if i < 0 {
		return models.Job{}, false
	}
	return b.accepted[i], true
}

// Accept moves id from available to the front of accepted.
func (b *Board) Accept(id int64) (models.Job, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := indexOf(b.available, id)
	if i < 0 {
		return models.Job{}, ErrNotFound
	}
	job := b.available[i]
	b.available = slices.Delete(b.available, i, i+1)
	b.accepted = slices.Insert(b.accepted, 0, job)
	return job, nil
}

// Reject removes id from available. Absent ids are a no-op; the return value
// reports whether anything was removed.
func (b *Board) Reject(id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := indexOf(b.available, id)
	if i < 0 {
		return false
	}
	b.available = slices.Delete(b.available, i, i+1)
	return true
}

// Restore marks ids as already accepted, e.g. jobs found in a restored
// profile's history. Ids not on the available list are ignored, but no id
// handed out later collides with any of them.
func (b *Board) Restore(ids []int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for k := len(ids) - 1; k >= 0; k-- {
		b.lastID = max(b.lastID, ids[k])
		i := indexOf(b.available, ids[k])
		if i < 0 || indexOf(b.accepted, ids[k]) >= 0 {
			continue
		}
		job := b.available[i]
		b.available = slices.Delete(b.available, i, i+1)
		b.accepted = slices.Insert(b.accepted, 0, job)
	}
}

// add places a new job at the front of available with the next free id.
func (b *Board) add(job models.Job) models.Job {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastID++
	job.ID = b.lastID
	b.available = slices.Insert(b.available, 0, job)
	return job
}

func indexOf(jobs []models.Job, id int64) int {
	return slices.IndexFunc(jobs, func(j models.Job) bool { return j.ID == id })
}
