package control

import (
	"context"
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
)

func structureError(cfg *node.Config, format string, args ...any) error {
	return &domain.TreeStructureError{Node: cfg.Name, Reason: fmt.Sprintf(format, args...)}
}

func unexpectedStatus(parent string, child node.Node, status domain.Status) error {
	return fmt.Errorf("node '%s': child '%s' returned %s", parent, child.Name(), status)
}

// composite is the shared state of nodes owning one or more children.
type composite struct {
	node.Base
	children []node.Node
}

func (c *composite) init(cfg *node.Config, children []node.Node) error {
	c.Init(cfg)
	c.Config().Kind = domain.KindControl
	if len(children) == 0 {
		return structureError(c.Config(), "%s requires at least one child", c.Config().Type)
	}
	c.children = children
	return nil
}

// Children returns the owned children in order.
func (c *composite) Children() []node.Node {
	return c.children
}

// haltChildren halts every child from index from onwards.
func (c *composite) haltChildren(ctx context.Context, from int) {
	for i := from; i < len(c.children); i++ {
		c.children[i].Halt(ctx)
	}
}

// ordered implements the resumable left-to-right scan shared by Sequence and Fallback.
// Children returning proceed let the scan continue; the first child returning
// stop completes the composite with that status.
type ordered struct {
	composite
	proceed, stop domain.Status
	current       int
	skipped       int
}

func (o *ordered) Tick(ctx context.Context) (domain.Status, error) {
	if o.Status() != domain.StatusRunning {
		o.current, o.skipped = 0, 0
	}

	for o.current < len(o.children) {
		child := o.children[o.current]
		status, err := child.Tick(ctx)
		if err != nil {
			return domain.StatusIdle, err
		}

		switch status {
		case domain.StatusRunning:
			o.SetStatus(ctx, domain.StatusRunning)
			return domain.StatusRunning, nil
		case o.stop:
			return o.complete(ctx, o.stop), nil
		case o.proceed:
			o.current++
		case domain.StatusSkipped:
			o.skipped++
			o.current++
		default:
			return domain.StatusIdle, unexpectedStatus(o.Name(), child, status)
		}
	}

	if o.skipped == len(o.children) {
		return o.complete(ctx, domain.StatusSkipped), nil
	}
	return o.complete(ctx, o.proceed), nil
}

func (o *ordered) complete(ctx context.Context, status domain.Status) domain.Status {
	o.current, o.skipped = 0, 0
	o.haltChildren(ctx, 0)
	o.SetStatus(ctx, status)
	return status
}

func (o *ordered) Halt(ctx context.Context) {
	o.current, o.skipped = 0, 0
	o.ResetStatus(ctx)
	o.haltChildren(ctx, 0)
}

// Current returns the resumption index.
func (o *ordered) Current() int {
	return o.current
}

// Sequence ticks children left to right until one fails.
type Sequence struct{ ordered }

// NewSequence creates a Sequence over children.
func NewSequence(cfg *node.Config, children []node.Node) (*Sequence, error) {
	s := &Sequence{ordered{proceed: domain.StatusSuccess, stop: domain.StatusFailure}}
	if err := s.init(cfg, children); err != nil {
		return nil, err
	}
	return s, nil
}

// Fallback ticks children left to right until one succeeds.
type Fallback struct{ ordered }

// NewFallback creates a Fallback over children.
func NewFallback(cfg *node.Config, children []node.Node) (*Fallback, error) {
	f := &Fallback{ordered{proceed: domain.StatusFailure, stop: domain.StatusSuccess}}
	if err := f.init(cfg, children); err != nil {
		return nil, err
	}
	return f, nil
}

// reactive re-evaluates every child from the first one on each tick.
type reactive struct {
	composite
	proceed, stop domain.Status
}

func (r *reactive) Tick(ctx context.Context) (domain.Status, error) {
	skipped := 0
	for i, child := range r.children {
		status, err := child.Tick(ctx)
		if err != nil {
			return domain.StatusIdle, err
		}

		switch status {
		case domain.StatusRunning:
			r.haltChildren(ctx, i+1)
			r.SetStatus(ctx, domain.StatusRunning)
			return domain.StatusRunning, nil
		case r.stop:
			return r.complete(ctx, r.stop), nil
		case r.proceed:
		case domain.StatusSkipped:
			skipped++
		default:
			return domain.StatusIdle, unexpectedStatus(r.Name(), child, status)
		}
	}

	if skipped == len(r.children) {
		return r.complete(ctx, domain.StatusSkipped), nil
	}
	return r.complete(ctx, r.proceed), nil
}

func (r *reactive) complete(ctx context.Context, status domain.Status) domain.Status {
	r.haltChildren(ctx, 0)
	r.SetStatus(ctx, status)
	return status
}

func (r *reactive) Halt(ctx context.Context) {
	r.ResetStatus(ctx)
	r.haltChildren(ctx, 0)
}

// ReactiveSequence re-checks every child from the first one on each tick.
// A RUNNING child halts any RUNNING sibling to its right.
type ReactiveSequence struct{ reactive }

// NewReactiveSequence creates a ReactiveSequence over children.
func NewReactiveSequence(cfg *node.Config, children []node.Node) (*ReactiveSequence, error) {
	s := &ReactiveSequence{reactive{proceed: domain.StatusSuccess, stop: domain.StatusFailure}}
	if err := s.init(cfg, children); err != nil {
		return nil, err
	}
	return s, nil
}

// ReactiveFallback re-checks every child from the first one on each tick.
type ReactiveFallback struct{ reactive }

// NewReactiveFallback creates a ReactiveFallback over children.
func NewReactiveFallback(cfg *node.Config, children []node.Node) (*ReactiveFallback, error) {
	f := &ReactiveFallback{reactive{proceed: domain.StatusFailure, stop: domain.StatusSuccess}}
	if err := f.init(cfg, children); err != nil {
		return nil, err
	}
	return f, nil
}
