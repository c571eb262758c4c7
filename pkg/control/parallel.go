package control

import (
	"context"
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
	"github.com/aretw0/arbor/pkg/schema"
)

// Parallel port names.
const (
	PortSuccessCount = "success_count"
	PortFailureCount = "failure_count"
)

// Parallel ticks every non-completed child on each tick.
//
// It succeeds once SuccessThreshold children succeeded and fails once
// FailureThreshold children failed, or when success can no longer be reached.
// A negative threshold counts from the number of children: -1 means all of them.
// SKIPPED children take no part: a threshold above the number of children
// still taking part is lowered to that number.
type Parallel struct {
	composite
	successThreshold int
	failureThreshold int
	completed        []domain.Status
}

// NewParallel creates a Parallel reading its thresholds from the success_count
// and failure_count ports. Literal thresholds are checked here; thresholds
// bound to blackboard keys are read and checked on every activation.
func NewParallel(cfg *node.Config, children []node.Node) (*Parallel, error) {
	p := &Parallel{}
	if err := p.init(cfg, children); err != nil {
		return nil, err
	}
	if !staticPort(cfg, PortSuccessCount) || !staticPort(cfg, PortFailureCount) {
		return p, nil
	}

	success, err := node.GetInput[int](p, PortSuccessCount)
	if err != nil {
		return nil, &domain.TreeStructureError{Node: cfg.Name, Reason: "invalid success threshold", Err: err}
	}
	failure, err := node.GetInput[int](p, PortFailureCount)
	if err != nil {
		return nil, &domain.TreeStructureError{Node: cfg.Name, Reason: "invalid failure threshold", Err: err}
	}
	if err := p.SetThresholds(success, failure); err != nil {
		return nil, err
	}
	return p, nil
}

// staticPort reports whether port resolves without reading the blackboard.
func staticPort(cfg *node.Config, port string) bool {
	if b, ok := cfg.Bindings[port]; ok {
		return b.Kind != domain.BindingKey
	}
	info, _ := cfg.Ports.Find(port)
	_, isKey := domain.BlackboardPointer(info.Default)
	return !isKey
}

// SetThresholds validates and applies the success and failure thresholds.
func (p *Parallel) SetThresholds(success, failure int) error {
	n := len(p.children)
	s, err := checkThreshold(success, n)
	if err != nil {
		return structureError(p.Config(), "success %v", err)
	}
	f, err := checkThreshold(failure, n)
	if err != nil {
		return structureError(p.Config(), "failure %v", err)
	}
	p.successThreshold, p.failureThreshold = s, f
	return nil
}

// Thresholds returns the resolved success and failure thresholds.
func (p *Parallel) Thresholds() (success, failure int) {
	return p.successThreshold, p.failureThreshold
}

func checkThreshold(t, n int) (int, error) {
	r := t
	if t < 0 {
		r = n + t + 1
	}
	if r < 1 || r > n {
		return 0, fmt.Errorf("threshold %d is out of range for %d children", t, n)
	}
	return r, nil
}

// activate reads thresholds bound to blackboard keys.
func (p *Parallel) activate() error {
	cfg := p.Config()
	if staticPort(cfg, PortSuccessCount) && staticPort(cfg, PortFailureCount) {
		return nil
	}
	n := len(p.children)
	success, err := node.GetInput[int](p, PortSuccessCount)
	if err != nil {
		return err
	}
	s, err := checkThreshold(success, n)
	if err != nil {
		return &domain.ConversionError{Node: cfg.Name, Port: PortSuccessCount, Type: "int", Value: success, Err: err}
	}
	failure, err := node.GetInput[int](p, PortFailureCount)
	if err != nil {
		return err
	}
	f, err := checkThreshold(failure, n)
	if err != nil {
		return &domain.ConversionError{Node: cfg.Name, Port: PortFailureCount, Type: "int", Value: failure, Err: err}
	}
	p.successThreshold, p.failureThreshold = s, f
	return nil
}

func (p *Parallel) Tick(ctx context.Context) (domain.Status, error) {
	if p.Status() != domain.StatusRunning || p.completed == nil {
		if err := p.activate(); err != nil {
			return domain.StatusIdle, err
		}
		p.completed = make([]domain.Status, len(p.children))
	}

	n := len(p.children)
	var successes, failures, skipped int
	for _, st := range p.completed {
		switch st {
		case domain.StatusSuccess:
			successes++
		case domain.StatusFailure:
			failures++
		case domain.StatusSkipped:
			skipped++
		}
	}

	for i, child := range p.children {
		if p.completed[i] != "" {
			continue
		}

		status, err := child.Tick(ctx)
		if err != nil {
			return domain.StatusIdle, err
		}

		switch status {
		case domain.StatusRunning:
			continue
		case domain.StatusSuccess:
			successes++
		case domain.StatusFailure:
			failures++
		case domain.StatusSkipped:
			skipped++
		default:
			return domain.StatusIdle, unexpectedStatus(p.Name(), child, status)
		}
		p.completed[i] = status

		active := n - skipped
		if active == 0 {
			continue
		}
		if successes >= min(p.successThreshold, active) {
			return p.complete(ctx, domain.StatusSuccess), nil
		}
		if failures >= min(p.failureThreshold, active) {
			return p.complete(ctx, domain.StatusFailure), nil
		}
	}

	active := n - skipped
	switch {
	case active == 0:
		return p.complete(ctx, domain.StatusSkipped), nil
	case active-failures < min(p.successThreshold, active):
		return p.complete(ctx, domain.StatusFailure), nil
	}
	p.SetStatus(ctx, domain.StatusRunning)
	return domain.StatusRunning, nil
}

// complete halts every still-RUNNING child and clears the completion cache.
func (p *Parallel) complete(ctx context.Context, status domain.Status) domain.Status {
	p.completed = nil
	p.haltChildren(ctx, 0)
	p.SetStatus(ctx, status)
	return status
}

func (p *Parallel) Halt(ctx context.Context) {
	p.completed = nil
	p.ResetStatus(ctx)
	p.haltChildren(ctx, 0)
}

// ParallelPorts declares the Parallel thresholds.
func ParallelPorts() domain.PortsList {
	return domain.PortsList{
		domain.InputPort(PortSuccessCount, schema.Int(), "children that must succeed, negative counts from the end").WithDefault("-1"),
		domain.InputPort(PortFailureCount, schema.Int(), "children that must fail, negative counts from the end").WithDefault("1"),
	}
}
