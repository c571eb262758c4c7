package node

import (
	"context"
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
)

// TickFunc is the body of a synchronous leaf.
type TickFunc func(ctx context.Context, self Node) (domain.Status, error)

// SyncLeaf is a leaf that completes within a single tick.
type SyncLeaf struct {
	Base
	fn TickFunc
}

// NewSimpleAction creates a synchronous action leaf.
func NewSimpleAction(cfg *Config, fn TickFunc) *SyncLeaf {
	return newSyncLeaf(cfg, domain.KindAction, fn)
}

// NewCondition creates a condition leaf.
func NewCondition(cfg *Config, fn TickFunc) *SyncLeaf {
	return newSyncLeaf(cfg, domain.KindCondition, fn)
}

func newSyncLeaf(cfg *Config, kind domain.NodeKind, fn TickFunc) *SyncLeaf {
	l := &SyncLeaf{fn: fn}
	l.Init(cfg)
	l.cfg.Kind = kind
	return l
}

func (l *SyncLeaf) Tick(ctx context.Context) (domain.Status, error) {
	status, err := safeTick(func() (domain.Status, error) { return l.fn(ctx, l) })
	if err != nil {
		return domain.StatusIdle, fmt.Errorf("node '%s': %w", l.Name(), err)
	}
	switch status {
	case domain.StatusSuccess, domain.StatusFailure, domain.StatusSkipped:
	default:
		return domain.StatusIdle, fmt.Errorf("node '%s': synchronous %s returned %s", l.Name(), l.Kind(), status)
	}
	l.SetStatus(ctx, status)
	return status, nil
}

func (l *SyncLeaf) Halt(ctx context.Context) {
	l.ResetStatus(ctx)
}

// StatefulBehavior is the suspend/resume protocol of an asynchronous leaf.
type StatefulBehavior interface {
	// OnStart runs on the first tick after IDLE or a terminal status.
	OnStart(ctx context.Context, self Node) (domain.Status, error)
	// OnRunning runs on every tick while the node is RUNNING.
	OnRunning(ctx context.Context, self Node) (domain.Status, error)
	// OnHalted runs once when a RUNNING node is cancelled. Cleanup errors
	// must be logged, not returned.
	OnHalted(ctx context.Context, self Node)
}

type phase int

const (
	phaseNotStarted phase = iota
	phaseRunning
	phaseHalted
)

// StatefulAction drives a StatefulBehavior.
type StatefulAction struct {
	Base
	behavior StatefulBehavior
	phase    phase
}

// NewStatefulAction creates an asynchronous action leaf.
func NewStatefulAction(cfg *Config, behavior StatefulBehavior) *StatefulAction {
	a := &StatefulAction{behavior: behavior}
	a.Init(cfg)
	a.cfg.Kind = domain.KindAction
	return a
}

// Behavior returns the wrapped behavior.
func (a *StatefulAction) Behavior() StatefulBehavior { return a.behavior }

func (a *StatefulAction) Tick(ctx context.Context) (domain.Status, error) {
	var (
		status domain.Status
		err    error
	)
	if a.phase == phaseRunning && a.Status() == domain.StatusRunning {
		status, err = safeTick(func() (domain.Status, error) { return a.behavior.OnRunning(ctx, a) })
	} else {
		a.phase = phaseNotStarted
		status, err = safeTick(func() (domain.Status, error) { return a.behavior.OnStart(ctx, a) })
	}
	if err != nil {
		// The activation is over; the next tick starts a new one.
		a.phase = phaseNotStarted
		a.ResetStatus(ctx)
		return domain.StatusIdle, fmt.Errorf("node '%s': %w", a.Name(), err)
	}

	switch status {
	case domain.StatusRunning:
		a.phase = phaseRunning
	case domain.StatusSuccess, domain.StatusFailure, domain.StatusSkipped:
		a.phase = phaseNotStarted
	default:
		return domain.StatusIdle, fmt.Errorf("node '%s': stateful action returned %s", a.Name(), status)
	}
	a.SetStatus(ctx, status)
	return status, nil
}

// Halt invokes OnHalted if the node is RUNNING and resets it to IDLE.
func (a *StatefulAction) Halt(ctx context.Context) {
	if a.phase == phaseRunning {
		a.phase = phaseHalted
		func() {
			defer func() {
				if r := recover(); r != nil {
					a.Logger().Error("panic while halting", "panic", r)
				}
			}()
			a.behavior.OnHalted(ctx, a)
		}()
	}
	a.ResetStatus(ctx)
}

// Halted reports whether the last activation ended in a halt.
func (a *StatefulAction) Halted() bool {
	return a.phase == phaseHalted
}

func safeTick(fn func() (domain.Status, error)) (status domain.Status, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during tick: %v", r)
		}
	}()
	return fn()
}
