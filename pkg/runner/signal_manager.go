package runner

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/arbor/pkg/domain"
)

// SignalManager turns SIGINT and SIGTERM into context cancellation so a
// running tree can be halted from the terminal. The cancellation cause wraps
// domain.ErrHalted and names the signal.
type SignalManager struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelCauseFunc
	sigs   chan os.Signal
	done   chan struct{}
}

// NewSignalManager creates a manager that is already listening.
func NewSignalManager() *SignalManager {
	sm := &SignalManager{}
	sm.Reset()
	return sm
}

// Context returns the context cancelled by the next signal.
func (sm *SignalManager) Context() context.Context {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.ctx
}

// Cause reports why the current context ended, or nil while it is live.
func (sm *SignalManager) Cause() error {
	return context.Cause(sm.Context())
}

// Reset releases the current context and arms a fresh one, so a host that
// survived one interrupt can catch the next.
func (sm *SignalManager) Reset() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.stopLocked()

	ctx, cancel := context.WithCancelCause(context.Background())
	sigs := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigs:
			cancel(fmt.Errorf("%w by %s", domain.ErrHalted, sig))
		case <-done:
		}
	}()

	sm.ctx, sm.cancel, sm.sigs, sm.done = ctx, cancel, sigs, done
}

// Stop stops listening and cancels the current context. Safe to call twice.
func (sm *SignalManager) Stop() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.stopLocked()
}

func (sm *SignalManager) stopLocked() {
	if sm.sigs == nil {
		return
	}
	signal.Stop(sm.sigs)
	close(sm.done)
	sm.cancel(context.Canceled)
	sm.sigs, sm.done = nil, nil
}
