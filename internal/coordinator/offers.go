package coordinator

import (
	"context"
	"log/slog"

	"github.com/garnizeh/rozgar/internal/events"
	"github.com/garnizeh/rozgar/internal/offer"
	"github.com/garnizeh/rozgar/internal/onboarding"
	"github.com/garnizeh/rozgar/internal/timer"
	"github.com/garnizeh/rozgar/pkg/models"
)

func (c *Coordinator) CurrentOffer(ctx context.Context) (offer.Offer, error) {
	var o offer.Offer
	err := c.do(func() error {
		if err := c.requireSession(); err != nil {
			return err
		}
		cur, ok := c.alarm.Current()
		if !ok {
			return ErrNoOffer
		}
		o = cur
		return nil
	})
	return o, err
}

// AcceptOffer accepts the ringing job.
func (c *Coordinator) AcceptOffer(ctx context.Context) (models.Job, error) {
	var job models.Job
	err := c.do(func() error {
		if err := c.requireSession(); err != nil {
			return err
		}
		if !c.alarm.Ringing() {
			return ErrNoOffer
		}
		o, err := c.alarm.Accept()
		job = o.Job
		return err
	})
	return job, err
}

// DeclineOffer rejects the ringing job.
func (c *Coordinator) DeclineOffer(ctx context.Context) error {
	return c.do(func() error {
		if err := c.requireSession(); err != nil {
			return err
		}
		if !c.alarm.Ringing() {
			return ErrNoOffer
		}
		_, err := c.alarm.Decline()
		return err
	})
}

func (c *Coordinator) offerResolved(o offer.Offer, r offer.Resolution) {
	if r == offer.Expired && c.user != nil {
		c.publish(c.ctx, events.New(events.OfferExpired, c.user.Phone, o.Job.ID))
	}
	c.syncFeederLocked()
}

// feederEligible reports whether a worker idles in the app with jobs to offer.
func (c *Coordinator) feederEligible() bool {
	if c.user == nil || c.user.RoleType != models.RoleWorker {
		return false
	}
	if c.flow.Step != onboarding.StepApp || c.track != nil || c.alarm.Ringing() {
		return false
	}
	_, ok := c.board.First()
	return ok
}

// syncFeederLocked arms the next offer when eligible and disarms it otherwise.
func (c *Coordinator) syncFeederLocked() {
	if !c.feederEligible() {
		c.feeder.Cancel()
		c.feeder = nil
		return
	}
	if c.feeder != nil {
		return
	}
	var task *timer.Task
	task = c.deps.Clock.After(c.settings.OfferDelay, func() {
		c.loop.Do(func() { c.feed(task) })
	})
	c.feeder = task
}

func (c *Coordinator) feed(task *timer.Task) {
	if c.feeder != task {
		return
	}
	c.feeder = nil
	if !c.feederEligible() {
		return
	}
	job, _ := c.board.First()
	if _, err := c.alarm.Ring(job); err != nil {
		c.logger.Warn("ring offer", slog.Int64("job_id", job.ID), slog.Any("err", err))
	}
}
