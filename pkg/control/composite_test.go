package control

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	S = domain.StatusSuccess
	F = domain.StatusFailure
	R = domain.StatusRunning
	K = domain.StatusSkipped
)

func TestSequence_AllSuccess(t *testing.T) {
	a, ab := leaf("A", S)
	b, bb := leaf("B", S)
	seq, err := NewSequence(cfg("seq", "Sequence", nil, nil), []node.Node{a, b})
	require.NoError(t, err)

	st, err := seq.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, S, st)
	assert.Equal(t, 1, ab.ticks)
	assert.Equal(t, 1, bb.ticks)
	assert.Equal(t, domain.StatusIdle, a.Status(), "children are reset after completion")
}

func TestSequence_ResumesFromRunningChild(t *testing.T) {
	a, ab := leaf("A", S)
	b, bb := leaf("B", R, R, S)
	c, cb := leaf("C", S)
	seq, err := NewSequence(cfg("seq", "Sequence", nil, nil), []node.Node{a, b, c})
	require.NoError(t, err)

	st, err := seq.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, R, st)
	assert.Equal(t, 1, seq.Current())
	assert.Equal(t, 0, cb.ticks, "children after the running one are not ticked")

	st, err = seq.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, R, st)
	assert.Equal(t, 1, ab.ticks, "earlier children are not re-ticked")

	st, err = seq.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, S, st)
	assert.Equal(t, 3, bb.ticks)
	assert.Equal(t, 1, bb.starts)
	assert.Equal(t, 1, cb.ticks)
	assert.Equal(t, 0, seq.Current(), "index is cleared on completion")
}

func TestSequence_RunningThenNeverReached(t *testing.T) {
	a, ab := leaf("A", R, R, S)
	b, bb := leaf("B", S)
	seq, err := NewSequence(cfg("seq", "Sequence", nil, nil), []node.Node{a, b})
	require.NoError(t, err)

	got, err := tickN(seq, 3)
	require.NoError(t, err)
	assert.Equal(t, []domain.Status{R, R, S}, got)
	assert.Equal(t, 3, ab.ticks)
	assert.Equal(t, 1, bb.ticks, "B is ticked only once A succeeded")
}

func TestSequence_FailureStops(t *testing.T) {
	a, _ := leaf("A", F)
	b, bb := leaf("B", S)
	seq, err := NewSequence(cfg("seq", "Sequence", nil, nil), []node.Node{a, b})
	require.NoError(t, err)

	st, err := seq.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, F, st)
	assert.Equal(t, 0, bb.ticks)
}

func TestSequence_RestartsAfterCompletion(t *testing.T) {
	a, ab := leaf("A", S, F, S)
	b, bb := leaf("B", R, S)
	seq, err := NewSequence(cfg("seq", "Sequence", nil, nil), []node.Node{a, b})
	require.NoError(t, err)

	got, err := tickN(seq, 3)
	require.NoError(t, err)
	// tick 1: A=S, B=R; tick 2: B=S; tick 3: restart, A=F.
	assert.Equal(t, []domain.Status{R, S, F}, got)
	assert.Equal(t, 2, ab.ticks)
	assert.Equal(t, 2, bb.ticks)
}

func TestSequence_Skipped(t *testing.T) {
	a, _ := leaf("A", K)
	b, _ := leaf("B", K)
	seq, err := NewSequence(cfg("seq", "Sequence", nil, nil), []node.Node{a, b})
	require.NoError(t, err)
	st, err := seq.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, K, st)

	c, _ := leaf("C", K)
	d, _ := leaf("D", S)
	seq, err = NewSequence(cfg("seq", "Sequence", nil, nil), []node.Node{c, d})
	require.NoError(t, err)
	st, err = seq.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, S, st)
}

func TestFallback(t *testing.T) {
	tests := []struct {
		name     string
		scripts  [][]domain.Status
		want     domain.Status
		wantTick []int
	}{
		{"first success wins", [][]domain.Status{{S}, {S}}, S, []int{1, 0}},
		{"falls through failures", [][]domain.Status{{F}, {F}, {S}}, S, []int{1, 1, 1}},
		{"all fail", [][]domain.Status{{F}, {F}}, F, []int{1, 1}},
		{"running stops scan", [][]domain.Status{{F}, {R}, {S}}, R, []int{1, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var children []node.Node
			var behaviors []*scripted
			for i, script := range tt.scripts {
				n, b := leaf(string(rune('A'+i)), script...)
				children = append(children, n)
				behaviors = append(behaviors, b)
			}
			fb, err := NewFallback(cfg("fb", "Fallback", nil, nil), children)
			require.NoError(t, err)

			st, err := fb.Tick(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, st)
			for i, b := range behaviors {
				assert.Equal(t, tt.wantTick[i], b.ticks, "child %d", i)
			}
		})
	}
}

func TestFallback_Resumes(t *testing.T) {
	a, ab := leaf("A", F)
	b, _ := leaf("B", R, F)
	c, cb := leaf("C", S)
	fb, err := NewFallback(cfg("fb", "Fallback", nil, nil), []node.Node{a, b, c})
	require.NoError(t, err)

	got, err := tickN(fb, 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.Status{R, S}, got)
	assert.Equal(t, 1, ab.ticks)
	assert.Equal(t, 1, cb.ticks)
}

func TestComposite_ZeroChildren(t *testing.T) {
	_, err := NewSequence(cfg("seq", "Sequence", nil, nil), nil)
	assert.ErrorIs(t, err, domain.ErrTreeStructure)
	_, err = NewFallback(cfg("fb", "Fallback", nil, nil), nil)
	assert.ErrorIs(t, err, domain.ErrTreeStructure)
	_, err = NewReactiveSequence(cfg("rs", "ReactiveSequence", nil, nil), nil)
	assert.ErrorIs(t, err, domain.ErrTreeStructure)
	_, err = NewParallel(cfg("par", "Parallel", ParallelPorts(), nil), nil)
	assert.ErrorIs(t, err, domain.ErrTreeStructure)
}

func TestComposite_IdleChildIsError(t *testing.T) {
	idle := node.NewSimpleAction(&node.Config{Name: "idle"}, func(context.Context, node.Node) (domain.Status, error) {
		return domain.StatusSuccess, nil
	})
	stuck, _ := leaf("stuck", domain.StatusIdle)
	seq, err := NewSequence(cfg("seq", "Sequence", nil, nil), []node.Node{idle, stuck})
	require.NoError(t, err)
	_, err = seq.Tick(context.Background())
	assert.Error(t, err)
}

func TestSequence_HaltIsPreOrder(t *testing.T) {
	a, ab := leaf("A", S)
	b, bb := leaf("B", R)
	seq, err := NewSequence(cfg("seq", "Sequence", nil, nil), []node.Node{a, b})
	require.NoError(t, err)

	_, err = seq.Tick(context.Background())
	require.NoError(t, err)
	seq.Halt(context.Background())

	assert.Equal(t, domain.StatusIdle, seq.Status())
	assert.Equal(t, 0, ab.halts, "completed children are reset without OnHalted")
	assert.Equal(t, 1, bb.halts)
	assert.Equal(t, 0, seq.Current())

	_, err = seq.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ab.ticks, "halted sequence restarts from the first child")
}

func TestReactiveSequence(t *testing.T) {
	cond, cb := leaf("battery", S, S, F)
	act, ab := leaf("move", R, R, S)
	rs, err := NewReactiveSequence(cfg("rs", "ReactiveSequence", nil, nil), []node.Node{cond, act})
	require.NoError(t, err)

	got, err := tickN(rs, 3)
	require.NoError(t, err)
	assert.Equal(t, []domain.Status{R, R, F}, got)
	assert.Equal(t, 3, cb.ticks, "the condition is re-checked every tick")
	assert.Equal(t, 2, ab.ticks)
	assert.Equal(t, 1, ab.halts, "the running action is halted when the condition fails")
}

func TestReactiveSequence_HaltsLaterRunningSibling(t *testing.T) {
	first, _ := leaf("first", S, R)
	second, sb := leaf("second", R)
	rs, err := NewReactiveSequence(cfg("rs", "ReactiveSequence", nil, nil), []node.Node{first, second})
	require.NoError(t, err)

	got, err := tickN(rs, 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.Status{R, R}, got)
	assert.Equal(t, 1, sb.halts)
	assert.Equal(t, domain.StatusIdle, second.Status())
}

func TestReactiveFallback(t *testing.T) {
	goal, gb := leaf("at_goal", F, F, S)
	act, ab := leaf("move", R)
	rf, err := NewReactiveFallback(cfg("rf", "ReactiveFallback", nil, nil), []node.Node{goal, act})
	require.NoError(t, err)

	got, err := tickN(rf, 3)
	require.NoError(t, err)
	assert.Equal(t, []domain.Status{R, R, S}, got)
	assert.Equal(t, 3, gb.ticks)
	assert.Equal(t, 1, ab.halts)
}
