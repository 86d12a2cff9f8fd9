package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/garnizeh/rozgar/internal/events"
)

var _ events.Publisher = (*WorkerPool)(nil)

// WorkerPool is an events.Publisher that persists events first and delivers
// them to the downstream publisher from worker goroutines.
type WorkerPool struct {
	repo         *Repository
	downstream   events.Publisher
	logger       *slog.Logger
	workerCount  int
	maxAttempts  int
	pollInterval time.Duration
	stop         chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

type Options struct {
	Workers      int
	MaxAttempts  int
	PollInterval time.Duration
}

func NewWorkerPool(repo *Repository, downstream events.Publisher, logger *slog.Logger, opts Options) *WorkerPool {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerPool{
		repo:         repo,
		downstream:   downstream,
		logger:       logger,
		workerCount:  opts.Workers,
		maxAttempts:  opts.MaxAttempts,
		pollInterval: opts.PollInterval,
		stop:         make(chan struct{}),
	}
}

// Publish stores e; delivery happens later.
func (p *WorkerPool) Publish(ctx context.Context, e events.Event) error {
	if _, err := p.repo.Enqueue(ctx, e, p.maxAttempts); err != nil {
		return err
	}
	return nil
}

// Start launches the worker goroutines
func (p *WorkerPool) Start(ctx context.Context) {
	if n, err := p.repo.Requeue(ctx); err != nil {
		p.logger.Error("requeue interrupted events", "err", err)
	} else if n > 0 {
		p.logger.Info("requeued interrupted events", "count", n)
	}
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop signals workers to stop and waits for them
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	p.wg.Wait()
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stop:
			p.logger.Debug("outbox worker stopping", "id", id)
			return
		case <-ctx.Done():
			p.logger.Debug("context canceled, outbox worker exiting", "id", id)
			return
		default:
		}

		rec, err := p.repo.FetchNext(ctx)
		if err != nil {
			p.logger.Error("fetch event", "err", err)
			p.idle(ctx, 2*p.pollInterval)
			continue
		}
		if rec == nil {
			p.idle(ctx, p.pollInterval)
			continue
		}
		p.deliver(ctx, rec)
	}
}

func (p *WorkerPool) deliver(ctx context.Context, rec *Record) {
	var e events.Event
	err := json.Unmarshal(rec.Payload, &e)
	if err != nil {
		// cannot ever succeed
		rec.Attempts = rec.MaxAttempts
		err = fmt.Errorf("decode event: %w", err)
	} else {
		err = p.downstream.Publish(ctx, e)
	}
	if err == nil {
		rec.Status = StatusDone
		rec.NextTryAt = nil
		if upErr := p.repo.Update(ctx, rec); upErr != nil {
			p.logger.Error("mark event delivered", "err", upErr)
		}
		return
	}

	if rec.Attempts < rec.MaxAttempts {
		rec.Attempts++
	}
	rec.LastError = err.Error()
	if rec.Attempts >= rec.MaxAttempts {
		rec.Status = StatusFailed
		p.logger.Warn("event delivery gave up", "event_id", rec.EventID, "type", rec.Type, "err", err)
		if mvErr := p.repo.MoveToDeadLetter(ctx, rec); mvErr != nil {
			p.logger.Error("move to dead letter", "err", mvErr)
		}
		return
	}
	t := time.Now().Add(BackoffDuration(rec.Attempts))
	rec.NextTryAt = &t
	rec.Status = StatusRetry
	if upErr := p.repo.Update(ctx, rec); upErr != nil {
		p.logger.Error("update event for retry", "err", upErr)
	}
}

func (p *WorkerPool) idle(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-p.stop:
	case <-ctx.Done():
	case <-t.C:
	}
}
