package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/garnizeh/rozgar/internal/events"
	"github.com/garnizeh/rozgar/internal/jobboard"
	"github.com/garnizeh/rozgar/pkg/models"
)

const (
	historyLocation = "नजदीकी"
	defaultDistance = "0 किमी"
	historyDate     = "2/1/2006"
)

// HistoryItem derives the work history entry recorded when job is accepted.
func HistoryItem(job models.Job, at time.Time) models.WorkHistoryItem {
	price, _, _ := strings.Cut(job.Pay, " ")
	distance := job.Distance
	if distance == "" {
		distance = defaultDistance
	}
	return models.WorkHistoryItem{
		ID:       strconv.FormatInt(job.ID, 10),
		Role:     strings.Replace(job.Role, " चाहिए", "", 1),
		Price:    price,
		Location: historyLocation,
		Distance: distance,
		Days:     job.Duration,
		Status:   models.StatusOngoing,
		Date:     at.Format(historyDate),
	}
}

func (c *Coordinator) ListAvailable(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	err := c.do(func() error {
		if err := c.requireSession(); err != nil {
			return err
		}
		jobs = c.board.ListAvailable()
		return nil
	})
	return jobs, err
}

func (c *Coordinator) ListAccepted(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	err := c.do(func() error {
		if err := c.requireSession(); err != nil {
			return err
		}
		jobs = c.board.ListAccepted()
		return nil
	})
	return jobs, err
}

// AcceptJob takes job id from the board, records it in the history and
// starts tracking it. A job that is ringing is resolved through its offer.
func (c *Coordinator) AcceptJob(ctx context.Context, id int64) (models.Job, error) {
	var job models.Job
	err := c.do(func() error {
		if err := c.requireSession(); err != nil {
			return err
		}
		if o, ok := c.alarm.Current(); ok && o.Job.ID == id {
			resolved, err := c.alarm.Accept()
			job = resolved.Job
			return err
		}
		var err error
		job, err = c.acceptLocked(ctx, id)
		c.syncFeederLocked()
		return err
	})
	return job, err
}

// RejectJob drops job id from the board. Unknown ids are a no-op.
func (c *Coordinator) RejectJob(ctx context.Context, id int64) error {
	return c.do(func() error {
		if err := c.requireSession(); err != nil {
			return err
		}
		if o, ok := c.alarm.Current(); ok && o.Job.ID == id {
			_, err := c.alarm.Decline()
			return err
		}
		c.rejectLocked(ctx, id)
		c.syncFeederLocked()
		return nil
	})
}

func (c *Coordinator) acceptLocked(ctx context.Context, id int64) (models.Job, error) {
	job, ok := c.board.Available(id)
	if !ok {
		return models.Job{}, jobboard.ErrNotFound
	}
	if err := c.ledger.Append(ctx, c.user, HistoryItem(job, time.Now())); err != nil {
		return models.Job{}, err
	}
	if _, err := c.board.Accept(id); err != nil {
		return models.Job{}, err
	}
	c.logger.Info("job accepted", slog.Int64("job_id", id), slog.String("phone", c.user.Phone))
	c.publish(ctx, events.New(events.JobAccepted, c.user.Phone, id))
	if err := c.openTrackingLocked(id); err != nil {
		c.logger.Error("start tracking", slog.Int64("job_id", id), slog.Any("err", err))
	}
	return job, nil
}

func (c *Coordinator) rejectLocked(ctx context.Context, id int64) {
	if !c.board.Reject(id) {
		return
	}
	c.logger.Info("job rejected", slog.Int64("job_id", id))
	c.publish(ctx, events.New(events.JobRejected, c.user.Phone, id))
}

// PostJob publishes a job from a contractor or employer to the local board.
func (c *Coordinator) PostJob(ctx context.Context, p jobboard.Posting) (models.Job, error) {
	var job models.Job
	err := c.do(func() error {
		if err := c.requireSession(); err != nil {
			return err
		}
		if c.user.RoleType == models.RoleWorker {
			return ErrNotPoster
		}
		if err := p.Validate(); err != nil {
			return err
		}
		next := c.user.Clone()
		posted := 1
		if next.JobsPosted != nil {
			posted = *next.JobsPosted + 1
		}
		next.JobsPosted = &posted
		if err := c.deps.Profiles.Put(ctx, next.Phone, next); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		var err error
		job, err = c.board.Post(p)
		if err != nil {
			return err
		}
		c.user = next
		c.publish(ctx, events.New(events.JobPosted, next.Phone, job.ID))
		return nil
	})
	return job, err
}

// resolver applies offer outcomes from inside the event loop.
type resolver struct{ c *Coordinator }

func (r resolver) AcceptJob(id int64) error {
	if r.c.user == nil {
		return ErrNoSession
	}
	_, err := r.c.acceptLocked(r.c.ctx, id)
	return err
}

func (r resolver) RejectJob(id int64) error {
	if r.c.user == nil {
		return ErrNoSession
	}
	r.c.rejectLocked(r.c.ctx, id)
	return nil
}
