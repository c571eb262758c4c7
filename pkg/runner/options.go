package runner

import (
	"log/slog"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
)

// DefaultTickInterval is the minimum time between two ticks of Run.
const DefaultTickInterval = 10 * time.Millisecond

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithTickInterval sets the minimum interval between ticks.
// Zero ticks back to back.
func WithTickInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d >= 0 {
			r.interval = d
		}
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithHooks registers callbacks fired once per tick cycle.
func WithHooks(hooks domain.TickHooks) Option {
	return func(r *Runner) {
		r.hooks = r.hooks.Merge(hooks)
	}
}

// WithMaxTicks stops Run after n ticks. Zero means no limit.
func WithMaxTicks(n uint64) Option {
	return func(r *Runner) {
		r.maxTicks = n
	}
}
