package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
)

// ErrTickLimit is returned by Run when the configured tick budget runs out
// while the tree is still RUNNING.
var ErrTickLimit = errors.New("tick limit reached")

// errHaltRequested is the cancellation cause used by HaltTree.
var errHaltRequested = errors.New("halt requested")

// Tickable is what the runner drives. *tree.Tree satisfies it.
type Tickable interface {
	ID() string
	TickOnce(ctx context.Context) (domain.Status, error)
	HaltTree(ctx context.Context)
}

// Runner repeatedly ticks a tree until it reaches a terminal status.
type Runner struct {
	interval time.Duration
	maxTicks uint64
	logger   *slog.Logger
	hooks    domain.TickHooks

	mu     sync.Mutex
	cancel context.CancelCauseFunc
	ticks  atomic.Uint64
	status atomic.Value
}

// New creates a runner with the given options.
func New(opts ...Option) *Runner {
	r := &Runner{
		interval: DefaultTickInterval,
		logger:   logging.NewNop(),
	}
	r.status.Store(domain.StatusIdle)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Status returns the root status observed after the last tick.
func (r *Runner) Status() domain.Status {
	return r.status.Load().(domain.Status)
}

// Ticks returns the number of ticks performed by this runner.
func (r *Runner) Ticks() uint64 {
	return r.ticks.Load()
}

// TickOnce performs a single tick of t and reports its root status.
func (r *Runner) TickOnce(ctx context.Context, t Tickable) (domain.Status, error) {
	start := time.Now()
	st, err := t.TickOnce(ctx)
	n := r.ticks.Add(1)
	r.status.Store(st)

	if r.hooks.OnTreeTick != nil {
		r.hooks.OnTreeTick(ctx, &domain.TreeTickEvent{
			EventBase: domain.EventBase{
				Timestamp: time.Now(),
				Type:      domain.EventTreeTick,
				TreeID:    t.ID(),
			},
			Tick:     n,
			Status:   st,
			Duration: time.Since(start),
			Err:      err,
		})
	}
	return st, err
}

// Run ticks t until the root returns SUCCESS, FAILURE or SKIPPED.
//
// Ticks are spaced by at least the configured interval. Errors raised by a
// tick are returned unchanged after the tree has been halted. When ctx is
// cancelled or HaltTree is called, the tree is halted and the returned error
// wraps domain.ErrHalted together with the cause.
func (r *Runner) Run(ctx context.Context, t Tickable) (domain.Status, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()
		cancel(nil)
		return domain.StatusIdle, fmt.Errorf("runner already running")
	}
	r.cancel = cancel
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.cancel = nil
		r.mu.Unlock()
		cancel(nil)
	}()

	logger := r.logger.With("tree", t.ID())
	logger.Debug("run started", "interval", r.interval)

	var count uint64
	for {
		if ctx.Err() != nil {
			return r.halted(ctx, t, logger)
		}

		start := time.Now()
		st, err := r.TickOnce(ctx, t)
		count++

		if err != nil {
			logger.Error("tick failed", "err", err, "tick", count)
			r.Halt(context.WithoutCancel(ctx), t)
			return st, err
		}
		if st != domain.StatusRunning {
			logger.Debug("run finished", "status", st, "ticks", count)
			return st, nil
		}
		if r.maxTicks > 0 && count >= r.maxTicks {
			r.Halt(context.WithoutCancel(ctx), t)
			return st, fmt.Errorf("%w after %d ticks", ErrTickLimit, count)
		}

		wait := r.interval - time.Since(start)
		if wait <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
		case <-time.After(wait):
		}
	}
}

func (r *Runner) halted(ctx context.Context, t Tickable, logger *slog.Logger) (domain.Status, error) {
	cause := context.Cause(ctx)
	logger.Info("run halted", "cause", cause)
	r.Halt(context.WithoutCancel(ctx), t)
	return domain.StatusIdle, fmt.Errorf("%w: %w", domain.ErrHalted, cause)
}

// Halt synchronously halts t. Running asynchronous leaves receive their halt
// callback before Halt returns.
func (r *Runner) Halt(ctx context.Context, t Tickable) {
	t.HaltTree(ctx)
	r.status.Store(domain.StatusIdle)
}

// HaltTree asks an in-progress Run to stop. It is safe to call from any
// goroutine; the halt itself is performed by the goroutine executing Run.
// It is a no-op when no Run is in progress.
func (r *Runner) HaltTree() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel(errHaltRequested)
	}
}
