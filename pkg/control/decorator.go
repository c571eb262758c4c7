package control

import (
	"context"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
	"github.com/aretw0/arbor/pkg/schema"
)

// Decorator port names.
const (
	PortNumCycles   = "num_cycles"
	PortNumAttempts = "num_attempts"
	PortMsec        = "msec"
	PortDelayMsec   = "delay_msec"
	PortCondition   = "condition"
)

// decorator is the shared state of single-child nodes.
type decorator struct {
	node.Base
	child node.Node
}

func (d *decorator) init(cfg *node.Config, children []node.Node) error {
	d.Init(cfg)
	if d.Config().Kind == "" {
		d.Config().Kind = domain.KindDecorator
	}
	if len(children) != 1 {
		return structureError(d.Config(), "%s requires exactly one child, got %d", d.Config().Type, len(children))
	}
	d.child = children[0]
	return nil
}

// Children returns the decorated child.
func (d *decorator) Children() []node.Node {
	return []node.Node{d.child}
}

// Child returns the decorated child.
func (d *decorator) Child() node.Node {
	return d.child
}

// complete resets the child and records a terminal status.
func (d *decorator) complete(ctx context.Context, status domain.Status) domain.Status {
	d.child.Halt(ctx)
	d.SetStatus(ctx, status)
	return status
}

func (d *decorator) running(ctx context.Context) domain.Status {
	d.SetStatus(ctx, domain.StatusRunning)
	return domain.StatusRunning
}

func (d *decorator) Halt(ctx context.Context) {
	d.ResetStatus(ctx)
	d.child.Halt(ctx)
}

// tickChild ticks the child and rejects IDLE.
func (d *decorator) tickChild(ctx context.Context) (domain.Status, error) {
	status, err := d.child.Tick(ctx)
	if err != nil {
		return domain.StatusIdle, err
	}
	if status == domain.StatusIdle {
		return domain.StatusIdle, unexpectedStatus(d.Name(), d.child, status)
	}
	return status, nil
}

func newDecorator[T any, P interface {
	*T
	init(*node.Config, []node.Node) error
}](cfg *node.Config, children []node.Node) (*T, error) {
	d := P(new(T))
	if err := d.init(cfg, children); err != nil {
		return nil, err
	}
	return d, nil
}

// Inverter swaps SUCCESS and FAILURE.
type Inverter struct{ decorator }

func NewInverter(cfg *node.Config, children []node.Node) (*Inverter, error) {
	return newDecorator[Inverter](cfg, children)
}

func (n *Inverter) Tick(ctx context.Context) (domain.Status, error) {
	status, err := n.tickChild(ctx)
	if err != nil {
		return domain.StatusIdle, err
	}
	switch status {
	case domain.StatusRunning:
		return n.running(ctx), nil
	case domain.StatusSuccess:
		return n.complete(ctx, domain.StatusFailure), nil
	case domain.StatusFailure:
		return n.complete(ctx, domain.StatusSuccess), nil
	default:
		return n.complete(ctx, status), nil
	}
}

// ForceSuccess turns a completed child into SUCCESS.
type ForceSuccess struct{ decorator }

func NewForceSuccess(cfg *node.Config, children []node.Node) (*ForceSuccess, error) {
	return newDecorator[ForceSuccess](cfg, children)
}

func (n *ForceSuccess) Tick(ctx context.Context) (domain.Status, error) {
	status, err := n.tickChild(ctx)
	if err != nil {
		return domain.StatusIdle, err
	}
	switch status {
	case domain.StatusRunning:
		return n.running(ctx), nil
	case domain.StatusSkipped:
		return n.complete(ctx, status), nil
	default:
		return n.complete(ctx, domain.StatusSuccess), nil
	}
}

// ForceFailure turns a completed child into FAILURE.
type ForceFailure struct{ decorator }

func NewForceFailure(cfg *node.Config, children []node.Node) (*ForceFailure, error) {
	return newDecorator[ForceFailure](cfg, children)
}

func (n *ForceFailure) Tick(ctx context.Context) (domain.Status, error) {
	status, err := n.tickChild(ctx)
	if err != nil {
		return domain.StatusIdle, err
	}
	switch status {
	case domain.StatusRunning:
		return n.running(ctx), nil
	case domain.StatusSkipped:
		return n.complete(ctx, status), nil
	default:
		return n.complete(ctx, domain.StatusFailure), nil
	}
}

// Repeat re-ticks its child after every SUCCESS, num_cycles times in total
// (-1 repeats forever). A FAILURE stops the loop. The child completes at most
// once per tick, so the decorator returns RUNNING between cycles.
type Repeat struct {
	decorator
	cycles int
	count  int
}

func NewRepeat(cfg *node.Config, children []node.Node) (*Repeat, error) {
	return newDecorator[Repeat](cfg, children)
}

func (n *Repeat) Tick(ctx context.Context) (domain.Status, error) {
	if n.Status() != domain.StatusRunning {
		cycles, err := node.GetInput[int](n, PortNumCycles)
		if err != nil {
			return domain.StatusIdle, err
		}
		n.cycles, n.count = cycles, 0
		if cycles == 0 {
			return n.complete(ctx, domain.StatusSuccess), nil
		}
	}

	status, err := n.tickChild(ctx)
	if err != nil {
		return domain.StatusIdle, err
	}
	switch status {
	case domain.StatusSuccess:
		n.count++
		if n.cycles >= 0 && n.count >= n.cycles {
			n.count = 0
			return n.complete(ctx, domain.StatusSuccess), nil
		}
		n.child.Halt(ctx)
		return n.running(ctx), nil
	case domain.StatusRunning:
		return n.running(ctx), nil
	default:
		n.count = 0
		return n.complete(ctx, status), nil
	}
}

// Count returns the number of successful cycles of the current activation.
func (n *Repeat) Count() int { return n.count }

func (n *Repeat) Halt(ctx context.Context) {
	n.count = 0
	n.decorator.Halt(ctx)
}

// Retry re-ticks its child after every FAILURE, up to num_attempts attempts
// (-1 retries forever). The attempt counter resets on every activation.
type Retry struct {
	decorator
	attempts int
	failures int
}

func NewRetry(cfg *node.Config, children []node.Node) (*Retry, error) {
	return newDecorator[Retry](cfg, children)
}

func (n *Retry) Tick(ctx context.Context) (domain.Status, error) {
	if n.Status() != domain.StatusRunning {
		attempts, err := node.GetInput[int](n, PortNumAttempts)
		if err != nil {
			return domain.StatusIdle, err
		}
		n.attempts, n.failures = attempts, 0
		if attempts == 0 {
			return n.complete(ctx, domain.StatusFailure), nil
		}
	}

	status, err := n.tickChild(ctx)
	if err != nil {
		return domain.StatusIdle, err
	}
	switch status {
	case domain.StatusFailure:
		n.failures++
		if n.attempts >= 0 && n.failures >= n.attempts {
			n.failures = 0
			return n.complete(ctx, domain.StatusFailure), nil
		}
		n.child.Halt(ctx)
		return n.running(ctx), nil
	case domain.StatusRunning:
		return n.running(ctx), nil
	default:
		n.failures = 0
		return n.complete(ctx, status), nil
	}
}

// Failures returns the failed attempts of the current activation.
func (n *Retry) Failures() int { return n.failures }

func (n *Retry) Halt(ctx context.Context) {
	n.failures = 0
	n.decorator.Halt(ctx)
}

// Timeout fails and halts its child once the child has been RUNNING for longer
// than the msec budget. The deadline is checked at every tick.
type Timeout struct {
	decorator
	deadline time.Time
}

func NewTimeout(cfg *node.Config, children []node.Node) (*Timeout, error) {
	return newDecorator[Timeout](cfg, children)
}

func (n *Timeout) Tick(ctx context.Context) (domain.Status, error) {
	if n.Status() != domain.StatusRunning {
		budget, err := node.GetInput[time.Duration](n, PortMsec)
		if err != nil {
			return domain.StatusIdle, err
		}
		n.deadline = n.Config().Now().Add(budget)
	} else if !n.Config().Now().Before(n.deadline) {
		n.Logger().Debug("timeout expired, halting child", "child", n.child.Name())
		return n.complete(ctx, domain.StatusFailure), nil
	}

	status, err := n.tickChild(ctx)
	if err != nil {
		return domain.StatusIdle, err
	}
	if status == domain.StatusRunning {
		return n.running(ctx), nil
	}
	return n.complete(ctx, status), nil
}

// Delay waits delay_msec before ticking its child for the first time.
type Delay struct {
	decorator
	readyAt time.Time
}

func NewDelay(cfg *node.Config, children []node.Node) (*Delay, error) {
	return newDecorator[Delay](cfg, children)
}

func (n *Delay) Tick(ctx context.Context) (domain.Status, error) {
	if n.Status() != domain.StatusRunning {
		wait, err := node.GetInput[time.Duration](n, PortDelayMsec)
		if err != nil {
			return domain.StatusIdle, err
		}
		n.readyAt = n.Config().Now().Add(wait)
	}
	if n.Config().Now().Before(n.readyAt) {
		return n.running(ctx), nil
	}

	status, err := n.tickChild(ctx)
	if err != nil {
		return domain.StatusIdle, err
	}
	if status == domain.StatusRunning {
		return n.running(ctx), nil
	}
	return n.complete(ctx, status), nil
}

// SkipUnless returns SKIPPED without ticking its child when the condition input
// is false at activation.
type SkipUnless struct{ decorator }

func NewSkipUnless(cfg *node.Config, children []node.Node) (*SkipUnless, error) {
	return newDecorator[SkipUnless](cfg, children)
}

func (n *SkipUnless) Tick(ctx context.Context) (domain.Status, error) {
	if n.Status() != domain.StatusRunning {
		ok, err := node.GetInput[bool](n, PortCondition)
		if err != nil {
			return domain.StatusIdle, err
		}
		if !ok {
			return n.complete(ctx, domain.StatusSkipped), nil
		}
	}

	status, err := n.tickChild(ctx)
	if err != nil {
		return domain.StatusIdle, err
	}
	if status == domain.StatusRunning {
		return n.running(ctx), nil
	}
	return n.complete(ctx, status), nil
}

// RepeatPorts declares the Repeat cycle count.
func RepeatPorts() domain.PortsList {
	return domain.PortsList{domain.InputPort(PortNumCycles, schema.Int(), "repetitions, -1 for infinite")}
}

// RetryPorts declares the Retry attempt count.
func RetryPorts() domain.PortsList {
	return domain.PortsList{domain.InputPort(PortNumAttempts, schema.Int(), "attempts, -1 for infinite")}
}

// TimeoutPorts declares the Timeout budget.
func TimeoutPorts() domain.PortsList {
	return domain.PortsList{domain.InputPort(PortMsec, schema.Duration(), "budget; bare integers are milliseconds")}
}

// DelayPorts declares the Delay wait.
func DelayPorts() domain.PortsList {
	return domain.PortsList{domain.InputPort(PortDelayMsec, schema.Duration(), "wait before ticking the child")}
}

// SkipUnlessPorts declares the SkipUnless condition.
func SkipUnlessPorts() domain.PortsList {
	return domain.PortsList{domain.InputPort(PortCondition, schema.Bool(), "child is skipped when false")}
}
