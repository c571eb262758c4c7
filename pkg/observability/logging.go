package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/arbor/pkg/domain"
)

// LogHooks returns hooks that log every status change and every tick.
// Status changes are logged at debug level, failed ticks at error level.
func LogHooks(logger *slog.Logger) domain.TickHooks {
	return domain.TickHooks{
		OnStatusChange: func(ctx context.Context, e *domain.StatusEvent) {
			logger.DebugContext(ctx, "status_change",
				"path", e.Path,
				"type", e.NodeType,
				"from", e.Previous,
				"to", e.Current,
			)
		},
		OnTreeTick: func(ctx context.Context, e *domain.TreeTickEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "tree_tick", "tick", e.Tick, "err", e.Err)
				return
			}
			logger.DebugContext(ctx, "tree_tick",
				"tick", e.Tick,
				"status", e.Status,
				"duration", e.Duration,
			)
		},
	}
}
