// Package worker runs durable sync tasks in the background.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/learnsync/internal/config"
	"github.com/heartmarshall/learnsync/internal/domain"
)

type taskRepo interface {
	Claim(ctx context.Context, lease time.Duration) (*domain.Task, error)
	Complete(ctx context.Context, id uuid.UUID) error
	Retry(ctx context.Context, id uuid.UUID, runAfter time.Time, lastErr string) error
	Kill(ctx context.Context, id uuid.UUID, lastErr string) error
}

// Handler executes one task. Returning an error wrapped with
// backoff.Permanent kills the task without further attempts.
type Handler func(ctx context.Context, task *domain.Task) error

// Pool claims tasks and dispatches them to handlers by kind.
type Pool struct {
	tasks    taskRepo
	handlers map[domain.TaskKind]Handler
	cfg      config.SyncConfig
	clock    clockwork.Clock
	wake     chan struct{}
	log      *slog.Logger
}

// New creates a pool. A nil clock uses the real clock.
func New(log *slog.Logger, tasks taskRepo, cfg config.SyncConfig, clock clockwork.Clock) *Pool {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pool{
		tasks:    tasks,
		handlers: make(map[domain.TaskKind]Handler),
		cfg:      cfg,
		clock:    clock,
		wake:     make(chan struct{}, cfg.Workers),
		log:      log.With("component", "worker"),
	}
}

// Handle registers h for kind. It must be called before Run.
func (p *Pool) Handle(kind domain.TaskKind, h Handler) {
	p.handlers[kind] = h
}

// Wake nudges an idle worker to poll now instead of waiting for the next tick.
func (p *Pool) Wake() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Run starts the workers and blocks until ctx is cancelled or a worker fails.
func (p *Pool) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := range p.cfg.Workers {
		g.Go(func() error {
			p.loop(gctx, i)
			return nil
		})
	}
	p.log.Info("workers started", slog.Int("count", p.cfg.Workers))
	return g.Wait()
}

func (p *Pool) loop(ctx context.Context, n int) {
	log := p.log.With("worker", n)
	for {
		p.Drain(ctx)

		select {
		case <-ctx.Done():
			log.Debug("worker stopped")
			return
		case <-p.wake:
		case <-p.clock.After(p.cfg.PollInterval):
		}
	}
}

// Drain runs claimable tasks until none is left. It returns the number of
// tasks executed.
func (p *Pool) Drain(ctx context.Context) int {
	var n int
	for ctx.Err() == nil {
		task, err := p.tasks.Claim(ctx, p.cfg.TaskLease)
		if err != nil {
			if ctx.Err() == nil {
				p.log.ErrorContext(ctx, "claim task", slog.String("error", err.Error()))
			}
			return n
		}
		if task == nil {
			return n
		}
		p.execute(ctx, task)
		n++
	}
	return n
}

func (p *Pool) execute(ctx context.Context, task *domain.Task) {
	log := p.log.With(
		slog.String("task_id", task.ID.String()),
		slog.String("kind", task.Kind.String()),
		slog.String("user_id", task.UserID.String()),
		slog.Int("attempt", task.Attempts),
	)

	h, ok := p.handlers[task.Kind]
	if !ok {
		log.ErrorContext(ctx, "no handler for task kind")
		p.finish(ctx, log, p.tasks.Kill(ctx, task.ID, "no handler for kind "+task.Kind.String()))
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, p.cfg.TaskLease)
	err := p.safeRun(runCtx, h, task)
	cancel()

	if err == nil {
		p.finish(ctx, log, p.tasks.Complete(ctx, task.ID))
		return
	}

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) || task.Attempts >= p.cfg.MaxAttempts {
		log.ErrorContext(ctx, "task failed permanently", slog.String("error", err.Error()))
		p.finish(ctx, log, p.tasks.Kill(ctx, task.ID, err.Error()))
		return
	}

	delay := p.RetryDelay(task.Attempts)
	log.WarnContext(ctx, "task failed, will retry",
		slog.String("error", err.Error()),
		slog.Duration("delay", delay),
	)
	p.finish(ctx, log, p.tasks.Retry(ctx, task.ID, p.clock.Now().Add(delay), err.Error()))
}

// safeRun turns a handler panic into an error so one bad task cannot take
// the worker down.
func (p *Pool) safeRun(ctx context.Context, h Handler, task *domain.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, task)
}

func (p *Pool) finish(ctx context.Context, log *slog.Logger, err error) {
	if err != nil && ctx.Err() == nil {
		log.ErrorContext(ctx, "update task state", slog.String("error", err.Error()))
	}
}

// RetryDelay is the exponential delay before attempt+1, bounded by the
// configured maximum.
func (p *Pool) RetryDelay(attempt int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.cfg.RetryInitial
	b.MaxInterval = p.cfg.RetryMax
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()

	d := b.NextBackOff()
	for i := 1; i < attempt; i++ {
		d = b.NextBackOff()
	}
	return d
}
