package http

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
)

// StreamManager fans status events out to the active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan domain.StatusEvent]struct{}
	buffer      int
	logger      *slog.Logger
}

// NewStreamManager creates a manager whose subscribers buffer up to buffer events.
func NewStreamManager(buffer int, logger *slog.Logger) *StreamManager {
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[chan domain.StatusEvent]struct{}),
		buffer:      buffer,
		logger:      logger,
	}
}

// Subscribe registers a new subscriber. The returned func unsubscribes and
// closes the channel.
func (sm *StreamManager) Subscribe() (<-chan domain.StatusEvent, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan domain.StatusEvent, sm.buffer)
	sm.subscribers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			delete(sm.subscribers, ch)
			close(ch)
		})
	}
}

// Broadcast delivers e to every subscriber without blocking.
func (sm *StreamManager) Broadcast(e domain.StatusEvent) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for ch := range sm.subscribers {
		select {
		case ch <- e:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: client buffer full, dropping event", "path", e.Path)
		}
	}
}

// Hooks returns the hooks publishing status changes to the subscribers.
func (sm *StreamManager) Hooks() domain.TickHooks {
	return domain.TickHooks{
		OnStatusChange: func(_ context.Context, e *domain.StatusEvent) {
			sm.Broadcast(*e)
		},
	}
}
