package coordinator

import (
	"context"
	"log/slog"

	"github.com/garnizeh/rozgar/internal/events"
	"github.com/garnizeh/rozgar/internal/jobboard"
	"github.com/garnizeh/rozgar/internal/tracking"
)

// Arrival is the acknowledgement shown once the worker reports arrival.
type Arrival struct {
	Tracking tracking.Snapshot `json:"tracking"`
	Message  string            `json:"message"`
	// First is false when arrival had already been recorded.
	First bool `json:"first"`
}

// OpenTracking shows the tracking screen for an accepted job.
func (c *Coordinator) OpenTracking(ctx context.Context, jobID int64) (tracking.Snapshot, error) {
	var snap tracking.Snapshot
	err := c.do(func() error {
		if err := c.requireSession(); err != nil {
			return err
		}
		if _, ok := c.board.Accepted(jobID); !ok {
			return jobboard.ErrNotFound
		}
		if err := c.openTrackingLocked(jobID); err != nil {
			return err
		}
		snap = c.track.Snapshot()
		return nil
	})
	return snap, err
}

func (c *Coordinator) TrackingState(ctx context.Context) (tracking.Snapshot, error) {
	var snap tracking.Snapshot
	err := c.do(func() error {
		if c.track == nil {
			return ErrNoTracking
		}
		snap = c.track.Snapshot()
		return nil
	})
	return snap, err
}

// ShareLocation toggles live location sharing.
func (c *Coordinator) ShareLocation(ctx context.Context) (tracking.Snapshot, error) {
	var snap tracking.Snapshot
	err := c.do(func() error {
		if c.track == nil {
			return ErrNoTracking
		}
		var err error
		snap, err = c.track.ToggleShare()
		return err
	})
	return snap, err
}

// Reached records arrival at the work site and notifies the contractor once.
func (c *Coordinator) Reached(ctx context.Context) (Arrival, error) {
	var a Arrival
	err := c.do(func() error {
		if c.track == nil {
			return ErrNoTracking
		}
		snap, first, err := c.track.Reached()
		if err != nil {
			return err
		}
		a = Arrival{Tracking: snap, Message: events.ArrivalMessage(c.user.Name), First: first}
		if first {
			e := events.New(events.WorkerArrived, c.user.Phone, snap.JobID)
			e.Message = a.Message
			c.publish(ctx, e)
		}
		return nil
	})
	return a, err
}

// LeaveTracking closes the tracking screen and returns to the app.
func (c *Coordinator) LeaveTracking(ctx context.Context) (View, error) {
	var v View
	err := c.do(func() error {
		defer func() { v = c.viewLocked() }()
		if c.track == nil {
			return ErrNoTracking
		}
		c.track.Close()
		c.track = nil
		c.syncFeederLocked()
		return nil
	})
	return v, err
}

func (c *Coordinator) openTrackingLocked(jobID int64) error {
	if c.track != nil {
		if c.track.JobID() == jobID {
			return nil
		}
		c.track.Close()
		c.track = nil
	}
	s, err := tracking.Start(jobID, tracking.Options{
		Clock:    c.deps.Clock,
		Locator:  c.deps.Locator,
		Marker:   marker{c},
		Logger:   c.logger,
		Dispatch: c.loop.Do,
		Window:   c.settings.DeclineWindow,
		Tick:     c.settings.Tick,
	})
	if err != nil {
		return err
	}
	c.track = s
	c.syncFeederLocked()
	c.logger.Debug("tracking opened", slog.Int64("job_id", jobID))
	return nil
}

type marker struct{ c *Coordinator }

func (m marker) MarkReached(itemID string) (bool, error) {
	return m.c.ledger.MarkReached(m.c.ctx, m.c.user, itemID)
}
