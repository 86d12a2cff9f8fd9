// Package tracking runs the after-accept phase of a job: optional live
// location sharing, the contractor's decline window and the arrival signal.
package tracking

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/garnizeh/rozgar/internal/geo"
	"github.com/garnizeh/rozgar/internal/timer"
	"github.com/garnizeh/rozgar/pkg/models"
)

const (
	DefaultWindow = 240
	DefaultTick   = time.Second
)

var (
	ErrNotSharing = errors.New("location is not being shared")
	ErrArrived    = errors.New("already arrived")
	ErrClosed     = errors.New("tracking session closed")
)

type Phase string

const (
	PendingDecision Phase = "pending-decision"
	Sharing         Phase = "sharing"
	Arrived         Phase = "arrived"
)

// Marker records arrival in the work history. It returns false when nothing
// changed.
type Marker interface {
	MarkReached(itemID string) (bool, error)
}

type Snapshot struct {
	ID        string         `json:"id"`
	JobID     int64          `json:"job_id"`
	Phase     Phase          `json:"phase"`
	Sharing   bool           `json:"sharing"`
	Arrived   bool           `json:"arrived"`
	Remaining int            `json:"remaining"`
	Window    string         `json:"window"`
	Coords    *models.Coords `json:"coords,omitempty"`
	Notice    string         `json:"notice,omitempty"`
}

type Options struct {
	Clock   timer.Clock
	Locator geo.Locator
	Marker  Marker
	Logger  *slog.Logger
	// Dispatch runs tick and location handlers on the caller's event loop.
	Dispatch func(func()) bool
	Window   int
	Tick     time.Duration
}

// Session is not safe for concurrent use; it lives on one event loop.
type Session struct {
	opts      Options
	logger    *slog.Logger
	id        string
	jobID     int64
	phase     Phase
	remaining int
	coords    *models.Coords
	notice    string
	closed    bool
	countdown *timer.Task
	sub       geo.Subscription
}

// Start opens a tracking session for jobID and starts the decline window.
func Start(jobID int64, opts Options) (*Session, error) {
	if opts.Marker == nil {
		return nil, fmt.Errorf("tracking: marker is required")
	}
	if opts.Clock == nil {
		opts.Clock = timer.Real{}
	}
	if opts.Locator == nil {
		opts.Locator = geo.Unsupported{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Dispatch == nil {
		opts.Dispatch = func(fn func()) bool { fn(); return true }
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	s := &Session{
		opts:      opts,
		logger:    opts.Logger,
		id:        uuid.NewString(),
		jobID:     jobID,
		phase:     PendingDecision,
		remaining: opts.Window,
	}
	var task *timer.Task
	task = opts.Clock.Every(opts.Tick, func() {
		opts.Dispatch(func() { s.tick(task) })
	})
	s.countdown = task
	s.logger.Info("tracking started", slog.String("session_id", s.id), slog.Int64("job_id", jobID))
	return s, nil
}

func (s *Session) JobID() int64 { return s.jobID }

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:        s.id,
		JobID:     s.jobID,
		Phase:     s.phase,
		Sharing:   s.phase == Sharing,
		Arrived:   s.phase == Arrived,
		Remaining: s.remaining,
		Window:    FormatWindow(s.remaining),
		Notice:    s.notice,
	}
	if s.coords != nil {
		c := *s.coords
		snap.Coords = &c
	}
	return snap
}

// ToggleShare starts or stops the location stream. A refused or missing
// geolocation keeps the session in PendingDecision and returns the error.
func (s *Session) ToggleShare() (Snapshot, error) {
	switch {
	case s.closed:
		return s.Snapshot(), ErrClosed
	case s.phase == Arrived:
		return s.Snapshot(), ErrArrived
	case s.phase == Sharing:
		s.stopSharing()
		return s.Snapshot(), nil
	}

	var sub geo.Subscription
	sub, err := s.opts.Locator.Watch(
		func(p geo.Position) { s.opts.Dispatch(func() { s.update(sub, p) }) },
		func(err error) { s.opts.Dispatch(func() { s.fail(sub, err) }) },
	)
	if err != nil {
		s.notice = noticeFor(err)
		s.logger.Warn("location sharing refused", slog.String("session_id", s.id), slog.Any("err", err))
		return s.Snapshot(), err
	}
	s.sub = sub
	s.phase = Sharing
	s.notice = ""
	return s.Snapshot(), nil
}

// Reached records arrival. The first call marks the history entry; later
// calls report first=false and change nothing.
func (s *Session) Reached() (snap Snapshot, first bool, err error) {
	if s.phase == Arrived {
		return s.Snapshot(), false, nil
	}
	if s.closed {
		return s.Snapshot(), false, ErrClosed
	}
	if s.phase != Sharing {
		return s.Snapshot(), false, ErrNotSharing
	}
	if _, err := s.opts.Marker.MarkReached(strconv.FormatInt(s.jobID, 10)); err != nil {
		return s.Snapshot(), false, fmt.Errorf("mark reached: %w", err)
	}
	s.phase = Arrived
	s.release()
	s.logger.Info("worker arrived", slog.String("session_id", s.id), slog.Int64("job_id", s.jobID))
	return s.Snapshot(), true, nil
}

// Close releases the countdown and any location subscription.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.release()
}

func (s *Session) tick(task *timer.Task) {
	if s.closed || s.countdown != task || task.Stopped() || s.remaining <= 0 {
		return
	}
	s.remaining--
	if s.remaining == 0 {
		// the window is informational; nothing transitions at zero
		s.countdown.Cancel()
	}
}

func (s *Session) update(sub geo.Subscription, p geo.Position) {
	if s.sub == nil || s.sub != sub || s.phase != Sharing {
		return
	}
	c := p.Coords
	s.coords = &c
}

func (s *Session) fail(sub geo.Subscription, err error) {
	if s.sub == nil || s.sub != sub || s.phase != Sharing {
		return
	}
	s.stopSharing()
	s.notice = noticeFor(err)
	s.logger.Warn("location sharing aborted", slog.String("session_id", s.id), slog.Any("err", err))
}

func (s *Session) stopSharing() {
	if s.sub != nil {
		s.sub.Cancel()
		s.sub = nil
	}
	s.phase = PendingDecision
}

func (s *Session) release() {
	if s.sub != nil {
		s.sub.Cancel()
		s.sub = nil
	}
	s.countdown.Cancel()
}

// FormatWindow renders seconds as m:ss.
func FormatWindow(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}

func noticeFor(err error) string {
	switch {
	case errors.Is(err, geo.ErrPermissionDenied):
		return "लोकेशन एक्सेस करने में समस्या हुई। कृपया सेटिंग्स जांचें।"
	case errors.Is(err, geo.ErrUnsupported):
		return "आपका ब्राउज़र लोकेशन शेयरिंग को सपोर्ट नहीं करता है।"
	default:
		return "लोकेशन नहीं मिल पाई"
	}
}
