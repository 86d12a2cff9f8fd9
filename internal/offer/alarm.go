// Package offer implements the job-offer alarm: a single ringing offer with a
// countdown that declines the job when it runs out.
package offer

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/garnizeh/rozgar/internal/audio"
	"github.com/garnizeh/rozgar/internal/timer"
	"github.com/garnizeh/rozgar/pkg/models"
)

const (
	DefaultCountdown = 20
	DefaultTick      = time.Second
)

var (
	ErrAlreadyRinging = errors.New("an offer is already ringing")
	ErrNotRinging     = errors.New("no offer is ringing")
)

type Resolution string

const (
	Accepted Resolution = "accepted"
	Declined Resolution = "declined"
	// Expired is a decline caused by the countdown reaching zero.
	Expired Resolution = "expired"
)

// Offer is the ringing notification. Remaining is in seconds.
type Offer struct {
	ID        string     `json:"id"`
	Job       models.Job `json:"job"`
	Remaining int        `json:"remaining"`
	Active    bool       `json:"active"`
}

// Resolver applies the outcome to the job board. The alarm is back to idle
// when either method is called.
type Resolver interface {
	AcceptJob(jobID int64) error
	RejectJob(jobID int64) error
}

type Options struct {
	Clock    timer.Clock
	Player   audio.Player
	Resolver Resolver
	Logger   *slog.Logger
	// Dispatch runs tick handlers on the caller's event loop. Nil runs them inline.
	Dispatch func(func()) bool
	// OnResolved is told about every finished offer.
	OnResolved func(Offer, Resolution)
	Countdown  int
	Tick       time.Duration
}

// Alarm is not safe for concurrent use; every method and every tick must run
// on the same event loop.
type Alarm struct {
	opts    Options
	logger  *slog.Logger
	current *Offer
	task    *timer.Task
}

func New(opts Options) (*Alarm, error) {
	if opts.Resolver == nil {
		return nil, fmt.Errorf("offer alarm: resolver is required")
	}
	if opts.Clock == nil {
		opts.Clock = timer.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Player == nil {
		opts.Player = audio.NewSilent(opts.Logger)
	}
	if opts.Dispatch == nil {
		opts.Dispatch = func(fn func()) bool { fn(); return true }
	}
	if opts.Countdown <= 0 {
		opts.Countdown = DefaultCountdown
	}
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	return &Alarm{opts: opts, logger: opts.Logger}, nil
}

// Ringing reports whether an offer is active.
func (a *Alarm) Ringing() bool {
	return a.current != nil
}

// Current returns a copy of the ringing offer.
func (a *Alarm) Current() (Offer, bool) {
	if a.current == nil {
		return Offer{}, false
	}
	return *a.current, true
}

// Ring starts the countdown for job. Only one offer rings at a time.
func (a *Alarm) Ring(job models.Job) (Offer, error) {
	if a.current != nil {
		return Offer{}, ErrAlreadyRinging
	}
	o := &Offer{ID: uuid.NewString(), Job: job, Remaining: a.opts.Countdown, Active: true}
	a.current = o

	var task *timer.Task
	task = a.opts.Clock.Every(a.opts.Tick, func() {
		a.opts.Dispatch(func() { a.tick(task) })
	})
	a.task = task

	if err := a.opts.Player.Loop(); err != nil {
		a.logger.Warn("alarm sound failed", slog.Any("err", err))
	}
	a.logger.Info("offer ringing", slog.String("offer_id", o.ID), slog.Int64("job_id", job.ID))
	return *o, nil
}

// Accept takes the ringing job.
func (a *Alarm) Accept() (Offer, error) {
	return a.resolve(Accepted)
}

// Decline turns the ringing job down.
func (a *Alarm) Decline() (Offer, error) {
	return a.resolve(Declined)
}

// Stop silences and drops the ringing offer without touching the board, e.g.
// on logout.
func (a *Alarm) Stop() {
	if a.current == nil {
		return
	}
	a.release()
}

func (a *Alarm) tick(task *timer.Task) {
	// late tick from a countdown that was already released
	if a.task != task || a.current == nil {
		return
	}
	a.current.Remaining--
	if a.current.Remaining > 0 {
		return
	}
	if _, err := a.resolve(Expired); err != nil {
		a.logger.Error("auto-decline offer", slog.Any("err", err))
	}
}

func (a *Alarm) resolve(r Resolution) (Offer, error) {
	if a.current == nil {
		return Offer{}, ErrNotRinging
	}
	o := a.release()

	var err error
	if r == Accepted {
		err = a.opts.Resolver.AcceptJob(o.Job.ID)
	} else {
		err = a.opts.Resolver.RejectJob(o.Job.ID)
	}
	a.logger.Info("offer resolved", slog.String("offer_id", o.ID), slog.Int64("job_id", o.Job.ID), slog.String("resolution", string(r)))
	if a.opts.OnResolved != nil {
		a.opts.OnResolved(o, r)
	}
	if err != nil {
		return o, fmt.Errorf("%s offer: %w", r, err)
	}
	return o, nil
}

func (a *Alarm) release() Offer {
	o := *a.current
	o.Active = false
	a.current = nil
	a.task.Cancel()
	a.task = nil
	a.opts.Player.Stop()
	return o
}
