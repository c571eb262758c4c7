package control

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/blackboard"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusDecorators(t *testing.T) {
	type ctor func(*node.Config, []node.Node) (node.Node, error)
	inverter := func(c *node.Config, ch []node.Node) (node.Node, error) { return NewInverter(c, ch) }
	forceS := func(c *node.Config, ch []node.Node) (node.Node, error) { return NewForceSuccess(c, ch) }
	forceF := func(c *node.Config, ch []node.Node) (node.Node, error) { return NewForceFailure(c, ch) }

	tests := []struct {
		name  string
		ctor  ctor
		child domain.Status
		want  domain.Status
	}{
		{"inverter success", inverter, S, F},
		{"inverter failure", inverter, F, S},
		{"inverter running", inverter, R, R},
		{"inverter skipped", inverter, K, K},
		{"force success", forceS, F, S},
		{"force success running", forceS, R, R},
		{"force failure", forceF, S, F},
		{"force failure skipped", forceF, K, K},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			child, _ := leaf("child", tt.child)
			d, err := tt.ctor(cfg("dec", "Decorator", nil, nil), []node.Node{child})
			require.NoError(t, err)
			st, err := d.Tick(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, st)
		})
	}
}

func TestDecorator_Arity(t *testing.T) {
	a, _ := leaf("A", S)
	b, _ := leaf("B", S)
	_, err := NewInverter(cfg("inv", "Inverter", nil, nil), nil)
	assert.ErrorIs(t, err, domain.ErrTreeStructure)
	_, err = NewInverter(cfg("inv", "Inverter", nil, nil), []node.Node{a, b})
	assert.ErrorIs(t, err, domain.ErrTreeStructure)
}

func TestRepeat(t *testing.T) {
	child, cb := leaf("child", S)
	r, err := NewRepeat(cfg("repeat", "Repeat", RepeatPorts(), map[string]string{PortNumCycles: "3"}), []node.Node{child})
	require.NoError(t, err)

	got, err := tickN(r, 4)
	require.NoError(t, err)
	assert.Equal(t, []domain.Status{R, R, S, R}, got, "one child completion per tick, then restart")
	assert.Equal(t, 4, cb.ticks)
	assert.Equal(t, 1, r.Count())
}

func TestRepeat_FailureStops(t *testing.T) {
	child, _ := leaf("child", S, F)
	r, err := NewRepeat(cfg("repeat", "Repeat", RepeatPorts(), map[string]string{PortNumCycles: "-1"}), []node.Node{child})
	require.NoError(t, err)

	got, err := tickN(r, 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.Status{R, F}, got)
	assert.Equal(t, 0, r.Count())
}

func TestRepeat_ZeroCycles(t *testing.T) {
	child, cb := leaf("child", F)
	r, err := NewRepeat(cfg("repeat", "Repeat", RepeatPorts(), map[string]string{PortNumCycles: "0"}), []node.Node{child})
	require.NoError(t, err)
	st, err := r.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, S, st)
	assert.Equal(t, 0, cb.ticks)
}

func TestRetry_CounterResetsOnActivation(t *testing.T) {
	child, cb := leaf("child", F, F, S, F, S)
	r, err := NewRetry(cfg("retry", "RetryUntilSuccessful", RetryPorts(), map[string]string{PortNumAttempts: "3"}), []node.Node{child})
	require.NoError(t, err)

	got, err := tickN(r, 3)
	require.NoError(t, err)
	assert.Equal(t, []domain.Status{R, R, S}, got)
	assert.Equal(t, 0, r.Failures())

	// A fresh activation gets the full budget again.
	got, err = tickN(r, 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.Status{R, S}, got)
	assert.Equal(t, 5, cb.ticks)
}

func TestRetry_GivesUp(t *testing.T) {
	child, _ := leaf("child", F)
	r, err := NewRetry(cfg("retry", "RetryUntilSuccessful", RetryPorts(), map[string]string{PortNumAttempts: "2"}), []node.Node{child})
	require.NoError(t, err)

	got, err := tickN(r, 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.Status{R, F}, got)
}

func TestRetry_HaltResetsCounter(t *testing.T) {
	child, _ := leaf("child", F)
	r, err := NewRetry(cfg("retry", "RetryUntilSuccessful", RetryPorts(), map[string]string{PortNumAttempts: "5"}), []node.Node{child})
	require.NoError(t, err)

	_, err = tickN(r, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Failures())

	r.Halt(context.Background())
	assert.Equal(t, 0, r.Failures())
	assert.Equal(t, domain.StatusIdle, r.Status())
}

func TestRetry_MissingInput(t *testing.T) {
	child, _ := leaf("child", F)
	r, err := NewRetry(cfg("retry", "RetryUntilSuccessful", RetryPorts(), map[string]string{PortNumAttempts: "{attempts}"}), []node.Node{child})
	require.NoError(t, err)

	_, err = r.Tick(context.Background())
	assert.ErrorIs(t, err, domain.ErrMissingInput)
}

func TestTimeout(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	child, cb := leaf("child", R)
	c := cfg("timeout", "Timeout", TimeoutPorts(), map[string]string{PortMsec: "100"})
	c.Clock = clock.Now
	to, err := NewTimeout(c, []node.Node{child})
	require.NoError(t, err)

	st, err := to.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, R, st)

	clock.Advance(50 * time.Millisecond)
	st, err = to.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, R, st)

	clock.Advance(60 * time.Millisecond)
	st, err = to.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, F, st)
	assert.Equal(t, 1, cb.halts)
	assert.Equal(t, 2, cb.ticks, "the child is not ticked once the budget is exceeded")
}

func TestTimeout_ChildCompletesInTime(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	child, cb := leaf("child", R, S)
	c := cfg("timeout", "Timeout", TimeoutPorts(), map[string]string{PortMsec: "1s"})
	c.Clock = clock.Now
	to, err := NewTimeout(c, []node.Node{child})
	require.NoError(t, err)

	got, err := tickN(to, 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.Status{R, S}, got)
	assert.Equal(t, 0, cb.halts)
}

func TestDelay(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	child, cb := leaf("child", S)
	c := cfg("delay", "Delay", DelayPorts(), map[string]string{PortDelayMsec: "200ms"})
	c.Clock = clock.Now
	d, err := NewDelay(c, []node.Node{child})
	require.NoError(t, err)

	st, err := d.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, R, st)
	assert.Equal(t, 0, cb.ticks)

	clock.Advance(200 * time.Millisecond)
	st, err = d.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, S, st)
	assert.Equal(t, 1, cb.ticks)
}

func TestSkipUnless(t *testing.T) {
	bb := blackboard.New()
	child, cb := leaf("child", S)
	c := cfg("gate", "SkipUnless", SkipUnlessPorts(), map[string]string{PortCondition: "{enabled}"})
	c.Blackboard = bb
	gate, err := NewSkipUnless(c, []node.Node{child})
	require.NoError(t, err)

	require.NoError(t, bb.Set("enabled", false))
	st, err := gate.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, K, st)
	assert.Equal(t, 0, cb.ticks)

	require.NoError(t, bb.Set("enabled", "true"))
	st, err = gate.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, S, st)
	assert.Equal(t, 1, cb.ticks)
}

func TestDecorator_PropagatesErrors(t *testing.T) {
	errBoom := errors.New("boom")
	child := node.NewSimpleAction(&node.Config{Name: "child"}, func(context.Context, node.Node) (domain.Status, error) {
		return domain.StatusIdle, errBoom
	})
	inv, err := NewInverter(cfg("inv", "Inverter", nil, nil), []node.Node{child})
	require.NoError(t, err)
	_, err = inv.Tick(context.Background())
	assert.ErrorIs(t, err, errBoom)
}

func TestSubTree(t *testing.T) {
	scope := blackboard.New()
	child, _ := leaf("root", R, S)
	st, err := NewSubTree(cfg("sub", "SubTree", nil, nil), "Grasp", child, scope)
	require.NoError(t, err)
	assert.Equal(t, domain.KindSubTree, st.Kind())
	assert.Equal(t, "Grasp", st.TreeID())
	assert.Same(t, scope, st.Scope())

	got, err := tickN(st, 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.Status{R, S}, got)
}
