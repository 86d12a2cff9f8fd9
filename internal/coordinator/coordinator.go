// Package coordinator is the controller of the app. It owns the onboarding
// flow, the session, the job board, the offer alarm and the tracking session,
// and runs every change through a single event loop.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/garnizeh/rozgar/internal/audio"
	"github.com/garnizeh/rozgar/internal/events"
	"github.com/garnizeh/rozgar/internal/geo"
	"github.com/garnizeh/rozgar/internal/jobboard"
	"github.com/garnizeh/rozgar/internal/ledger"
	"github.com/garnizeh/rozgar/internal/loop"
	"github.com/garnizeh/rozgar/internal/offer"
	"github.com/garnizeh/rozgar/internal/onboarding"
	"github.com/garnizeh/rozgar/internal/profile"
	"github.com/garnizeh/rozgar/internal/timer"
	"github.com/garnizeh/rozgar/internal/tracking"
	"github.com/garnizeh/rozgar/pkg/models"
)

var (
	ErrNoSession  = errors.New("no active session")
	ErrNoOffer    = errors.New("no offer is ringing")
	ErrNoTracking = errors.New("no job is being tracked")
	ErrNotPoster  = errors.New("only contractors and employers can post jobs")
	ErrClosed     = errors.New("coordinator closed")
)

// ScreenTracking is shown on top of the app while a job is tracked. Every
// other screen is an onboarding step.
const ScreenTracking = "tracking"

const DefaultOfferDelay = 5 * time.Second

type Settings struct {
	OfferCountdown int
	OfferDelay     time.Duration
	DeclineWindow  int
	Tick           time.Duration
}

type Deps struct {
	Profiles    *profile.Store
	Seed        []models.Job
	Clock       timer.Clock
	Locator     geo.Locator
	Player      audio.Player
	Transcriber onboarding.Transcriber
	Publisher   events.Publisher
	Logger      *slog.Logger
}

// View is what the UI shell renders.
type View struct {
	Screen     string             `json:"screen"`
	Onboarding onboarding.State   `json:"onboarding"`
	Profile    *models.Profile    `json:"profile,omitempty"`
	Offer      *offer.Offer       `json:"offer,omitempty"`
	Tracking   *tracking.Snapshot `json:"tracking,omitempty"`
}

type Coordinator struct {
	loop     *loop.Loop
	deps     Deps
	settings Settings
	logger   *slog.Logger
	// timer and location callbacks have no request context
	ctx context.Context

	board  *jobboard.Board
	ledger *ledger.Ledger
	alarm  *offer.Alarm

	flow   onboarding.State
	user   *models.Profile
	feeder *timer.Task
	track  *tracking.Session
}

func New(deps Deps, settings Settings) (*Coordinator, error) {
	if deps.Profiles == nil {
		return nil, fmt.Errorf("coordinator: profile store is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = timer.Real{}
	}
	if deps.Locator == nil {
		deps.Locator = geo.Unsupported{}
	}
	if deps.Player == nil {
		deps.Player = audio.NewSilent(deps.Logger)
	}
	if deps.Transcriber == nil {
		deps.Transcriber = onboarding.NoSpeech{}
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NewLogPublisher(deps.Logger)
	}
	if settings.OfferDelay <= 0 {
		settings.OfferDelay = DefaultOfferDelay
	}

	c := &Coordinator{
		loop:     loop.New(),
		deps:     deps,
		settings: settings,
		logger:   deps.Logger,
		ctx:      context.Background(),
		board:    jobboard.New(deps.Seed),
		ledger:   ledger.New(deps.Profiles, deps.Logger),
		flow:     onboarding.Initial(),
	}
	alarm, err := offer.New(offer.Options{
		Clock:      deps.Clock,
		Player:     deps.Player,
		Resolver:   resolver{c},
		Logger:     deps.Logger,
		Dispatch:   c.loop.Do,
		OnResolved: c.offerResolved,
		Countdown:  settings.OfferCountdown,
		Tick:       settings.Tick,
	})
	if err != nil {
		return nil, err
	}
	c.alarm = alarm
	return c, nil
}

// do runs fn on the event loop.
func (c *Coordinator) do(fn func() error) error {
	var err error
	if !c.loop.Do(func() { err = fn() }) {
		return ErrClosed
	}
	return err
}

// Boot restores the stored session. A missing or unreadable session starts
// at login.
func (c *Coordinator) Boot(ctx context.Context) (View, error) {
	var v View
	err := c.do(func() error {
		defer func() { v = c.viewLocked() }()
		phone, ok, err := c.deps.Profiles.CurrentSession(ctx)
		if err != nil {
			c.logger.Warn("restore session", slog.Any("err", err))
			return nil
		}
		if !ok {
			return nil
		}
		p, err := c.deps.Profiles.Get(ctx, phone)
		if err != nil || p == nil {
			c.logger.Warn("session points at no readable profile", slog.String("phone", phone), slog.Any("err", err))
			return nil
		}
		c.flow = onboarding.State{Step: onboarding.StepApp, Phone: phone}
		c.startSessionLocked(p)
		return nil
	})
	return v, err
}

// View returns the current screen state.
func (c *Coordinator) View(ctx context.Context) (View, error) {
	var v View
	err := c.do(func() error {
		v = c.viewLocked()
		return nil
	})
	return v, err
}

// SessionPhone returns the phone of the active profile.
func (c *Coordinator) SessionPhone() (string, bool) {
	var phone string
	_ = c.do(func() error {
		if c.user != nil {
			phone = c.user.Phone
		}
		return nil
	})
	return phone, phone != ""
}

// Close stops every timer and subscription and rejects further calls.
func (c *Coordinator) Close() {
	c.loop.Close(c.stopAllLocked)
}

func (c *Coordinator) viewLocked() View {
	v := View{Screen: string(c.flow.Step), Onboarding: c.flow}
	if c.user != nil {
		v.Profile = c.user.Clone()
	}
	if o, ok := c.alarm.Current(); ok {
		v.Offer = &o
	}
	if c.track != nil {
		v.Screen = ScreenTracking
		snap := c.track.Snapshot()
		v.Tracking = &snap
	}
	return v
}

func (c *Coordinator) requireSession() error {
	if c.user == nil {
		return ErrNoSession
	}
	return nil
}

// startSessionLocked enters the app for p. Jobs already in p's history are
// treated as accepted so history ids stay unique.
func (c *Coordinator) startSessionLocked(p *models.Profile) {
	c.user = p
	c.board.Reset(c.deps.Seed)
	ids := make([]int64, 0, len(p.WorkHistory))
	for _, h := range p.WorkHistory {
		if id, err := strconv.ParseInt(h.ID, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	c.board.Restore(ids)
	c.logger.Info("session started", slog.String("phone", p.Phone), slog.String("role", string(p.RoleType)))
	c.syncFeederLocked()
}

func (c *Coordinator) stopAllLocked() {
	c.alarm.Stop()
	c.feeder.Cancel()
	c.feeder = nil
	if c.track != nil {
		c.track.Close()
		c.track = nil
	}
}

func (c *Coordinator) publish(ctx context.Context, e events.Event) {
	if err := c.deps.Publisher.Publish(ctx, e); err != nil {
		c.logger.Error("publish event", slog.String("type", string(e.Type)), slog.Any("err", err))
	}
}
