package blackboard

import (
	"sync"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlackboard_SetGet(t *testing.T) {
	bb := New()

	_, ok := bb.Get("missing")
	assert.False(t, ok)

	require.NoError(t, bb.Set("answer", 42))
	v, ok := bb.Get("answer")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	require.NoError(t, bb.Set("answer", "forty-two"))
	v, _ = bb.Get("answer")
	assert.Equal(t, "forty-two", v, "untyped cells accept any value")

	e, ok := bb.GetEntry("answer")
	require.True(t, ok)
	assert.Equal(t, uint64(2), e.Sequence)
	assert.False(t, e.Stamp.IsZero())
}

func TestBlackboard_DeclaredButUnwritten(t *testing.T) {
	bb := New()
	require.NoError(t, bb.Declare("goal", schema.Float()))

	_, ok := bb.Get("goal")
	assert.False(t, ok, "declared cell must stay unresolved until written")
	assert.Empty(t, bb.Keys())

	require.NoError(t, bb.Set("goal", 1.5))
	assert.Equal(t, []string{"goal"}, bb.Keys())
}

func TestBlackboard_TypedCells(t *testing.T) {
	bb := New()
	require.NoError(t, bb.Declare("count", schema.Int()))

	t.Run("string is parsed", func(t *testing.T) {
		require.NoError(t, bb.Set("count", "7"))
		v, _ := bb.Get("count")
		assert.Equal(t, 7, v)
	})

	t.Run("mismatch is a conversion error", func(t *testing.T) {
		err := bb.Set("count", true)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrConversion)

		err = bb.Set("count", "seven")
		assert.ErrorIs(t, err, domain.ErrConversion)

		v, _ := bb.Get("count")
		assert.Equal(t, 7, v, "failed writes keep the previous value")
	})

	t.Run("redeclare", func(t *testing.T) {
		assert.NoError(t, bb.Declare("count", schema.Int()))
		assert.NoError(t, bb.Declare("count", nil))
		assert.Error(t, bb.Declare("count", schema.Bool()))
	})

	t.Run("upgrade untyped cell", func(t *testing.T) {
		require.NoError(t, bb.Set("flag", true))
		assert.NoError(t, bb.Declare("flag", schema.Bool()))

		require.NoError(t, bb.Set("name", 3))
		assert.ErrorIs(t, bb.Declare("name", schema.String()), domain.ErrConversion)
	})
}

func TestBlackboard_Remapping(t *testing.T) {
	parent := New()
	require.NoError(t, parent.Set("target", "kitchen"))

	child := NewChild(parent, map[string]string{"goal": "target"})

	v, ok := child.Get("goal")
	require.True(t, ok)
	assert.Equal(t, "kitchen", v)

	require.NoError(t, child.Set("goal", "garage"))
	v, _ = parent.Get("target")
	assert.Equal(t, "garage", v, "writes to remapped keys land in the parent cell")

	require.NoError(t, child.Set("local", 1))
	assert.False(t, parent.Has("local"))

	_, ok = child.Get("target")
	assert.False(t, ok, "unmapped keys do not leak from the parent")

	external, ok := child.Remapped("goal")
	assert.True(t, ok)
	assert.Equal(t, "target", external)
}

func TestBlackboard_AutoRemap(t *testing.T) {
	parent := New()
	require.NoError(t, parent.Set("battery", 80))

	child := NewChild(parent, nil)
	child.SetAutoRemap(true)

	v, ok := child.Get("battery")
	require.True(t, ok)
	assert.Equal(t, 80, v)

	require.NoError(t, child.Set("status", "ok"))
	assert.True(t, parent.Has("status"))

	require.NoError(t, child.Set("_scratch", 1))
	assert.False(t, parent.Has("_scratch"), "underscore keys stay private")
}

func TestBlackboard_RootPrefix(t *testing.T) {
	root := New()
	mid := NewChild(root, nil)
	leaf := NewChild(mid, nil)

	require.NoError(t, leaf.Set("@mission", "explore"))
	v, ok := root.Get("mission")
	require.True(t, ok)
	assert.Equal(t, "explore", v)

	v, ok = leaf.Get("@mission")
	require.True(t, ok)
	assert.Equal(t, "explore", v)
	assert.Same(t, root, leaf.Root())
}

func TestBlackboard_UnsetAndSnapshot(t *testing.T) {
	bb := New()
	require.NoError(t, bb.Set("a", 1))
	require.NoError(t, bb.Set("b", 2))

	snap := bb.Snapshot()
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, snap)

	bb.Unset("a")
	assert.False(t, bb.Has("a"))
	assert.Equal(t, 1, snap["a"], "snapshots are copies")
}

func TestBlackboard_ConcurrentAccess(t *testing.T) {
	bb := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = bb.Set("counter", n*j)
				_, _ = bb.Get("counter")
				_ = bb.Snapshot()
			}
		}(i)
	}
	wg.Wait()

	e, ok := bb.GetEntry("counter")
	require.True(t, ok)
	assert.Equal(t, uint64(800), e.Sequence)
}
