package tree

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
	"github.com/aretw0/arbor/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position2D struct{ X, Y float64 }

func positionType() schema.Type {
	return schema.Struct("Position2D", ";",
		schema.Field[position2D]{Name: "x", Type: schema.Float(),
			Get: func(p position2D) any { return p.X },
			Set: func(p *position2D, v any) { p.X = v.(float64) }},
		schema.Field[position2D]{Name: "y", Type: schema.Float(),
			Get: func(p position2D) any { return p.Y },
			Set: func(p *position2D, v any) { p.Y = v.(float64) }},
	)
}

// testFactory registers a small node set exercising every port direction.
func testFactory(t *testing.T) *Factory {
	t.Helper()
	log := newTickLog()
	f := NewFactory()
	require.NoError(t, f.RegisterSimpleAction("Succeed", returning(log, domain.StatusSuccess)))
	require.NoError(t, f.RegisterSimpleAction("Say", func(_ context.Context, self node.Node) (domain.Status, error) {
		if _, err := node.GetInput[string](self, "message"); err != nil {
			return domain.StatusIdle, err
		}
		return domain.StatusSuccess, nil
	}, domain.InputPort("message", schema.String())))
	require.NoError(t, f.RegisterSimpleAction("Think", func(_ context.Context, self node.Node) (domain.Status, error) {
		return domain.StatusSuccess, node.SetOutput(self, "text", "The answer is 42")
	}, domain.OutputPort("text", schema.String())))
	require.NoError(t, f.RegisterSimpleAction("Goal", func(_ context.Context, self node.Node) (domain.Status, error) {
		return domain.StatusSuccess, nil
	}, domain.InputPort("goal", positionType())))
	return f
}

func TestCreateTree_StructureErrors(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		id     string
		reason string
	}{
		{
			name:   "unknown node type",
			yaml:   "id: main\nroot:\n  type: Nope\n",
			reason: "unknown node type 'Nope'",
		},
		{
			name:   "unknown port",
			yaml:   "id: main\nroot:\n  type: Say\n  volume: loud\n",
			reason: "unknown port [volume]",
		},
		{
			name:   "composite without children",
			yaml:   "id: main\nroot:\n  type: Sequence\n",
			reason: "at least one child",
		},
		{
			name: "decorator with two children",
			yaml: `
id: main
root:
  type: Inverter
  children:
    - type: Succeed
    - type: Succeed
`,
			reason: "exactly one child, got 2",
		},
		{
			name: "leaf with children",
			yaml: `
id: main
root:
  type: Succeed
  children:
    - type: Succeed
`,
			reason: "cannot have children",
		},
		{
			name:   "literal on output port",
			yaml:   "id: main\nroot:\n  type: Think\n  text: hello\n",
			reason: "output port [text] cannot take the literal",
		},
		{
			name:   "unregistered port type",
			yaml:   "id: main\nroot:\n  type: Goal\n  goal: \"1;2\"\n",
			reason: "unregistered type 'Position2D'",
		},
		{
			name: "duplicate tree id",
			yaml: `
trees:
  - id: main
    root: {type: Succeed}
  - id: main
    root: {type: Succeed}
`,
			id:     "main",
			reason: "duplicate tree id",
		},
		{
			name:   "unknown tree",
			yaml:   "id: main\nroot:\n  type: Succeed\n",
			id:     "other",
			reason: "unknown tree",
		},
		{
			name: "no main tree",
			yaml: `
trees:
  - id: a
    root: {type: Succeed}
  - id: b
    root: {type: Succeed}
`,
			reason: "specify a tree id",
		},
		{
			name:   "impossible parallel threshold",
			yaml:   "id: main\nroot:\n  type: Parallel\n  success_count: 5\n  children:\n    - type: Succeed\n",
			reason: "success threshold 5 is out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testFactory(t)
			_, err := f.CreateTreeFromText([]byte(tt.yaml), tt.id)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrTreeStructure)
			assert.ErrorContains(t, err, tt.reason)
		})
	}
}

func TestCreateTree_ErrorCarriesTreeAndNode(t *testing.T) {
	f := testFactory(t)
	_, err := f.CreateTreeFromText([]byte(`
id: main
root:
  type: Sequence
  children:
    - type: Say
      name: greeter
      volume: loud
`), "")

	var tse *domain.TreeStructureError
	require.ErrorAs(t, err, &tse)
	assert.Equal(t, "main", tse.Tree)
	assert.Equal(t, "greeter", tse.Node)
}

func TestCreateTree_RegisteredCustomType(t *testing.T) {
	f := testFactory(t)
	require.NoError(t, f.RegisterType(positionType()))

	tr, err := f.CreateTreeFromText([]byte("id: main\nroot:\n  type: Goal\n  goal: \"1;2\"\n"), "")
	require.NoError(t, err)

	v, err := node.GetInput[position2D](tr.Root(), "goal")
	require.NoError(t, err)
	assert.Equal(t, position2D{X: 1, Y: 2}, v)
}

func TestCreateTree_PortBindings(t *testing.T) {
	f := testFactory(t)
	tr, err := f.CreateTreeFromText([]byte(`
id: main
root:
  type: Sequence
  children:
    - type: Think
      text: "{said}"
    - type: Say
      message: "{said}"
    - type: Say
      name: same
      message: "="
`), "")
	require.NoError(t, err)

	say, ok := tr.NodeByPath("/Sequence/same")
	require.True(t, ok)
	b := say.Config().Bindings["message"]
	assert.Equal(t, domain.BindingKey, b.Kind)
	assert.Equal(t, "message", b.Key, "'=' binds the key named after the port")

	require.NoError(t, tr.Blackboard().Set("message", "hi"))
	st, err := tr.TickOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, st)

	v, ok := tr.Blackboard().Get("said")
	require.True(t, ok)
	assert.Equal(t, "The answer is 42", v)
}

func TestCreateTree_MissingInputAtTick(t *testing.T) {
	f := testFactory(t)
	tr, err := f.CreateTreeFromText([]byte("id: main\nroot:\n  type: Say\n  message: \"{nothing}\"\n"), "")
	require.NoError(t, err)

	_, err = tr.TickOnce(context.Background())
	assert.ErrorIs(t, err, domain.ErrMissingInput)

	require.NoError(t, tr.Blackboard().Set("nothing", "now set"))
	st, err := tr.TickOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, st)
}

func TestCreateTree_DefaultsMaterialized(t *testing.T) {
	f := testFactory(t)
	tr, err := f.CreateTreeFromText([]byte(`
id: main
root:
  type: Parallel
  children:
    - type: Succeed
    - type: Succeed
`), "")
	require.NoError(t, err)

	bindings := tr.Root().Config().Bindings
	assert.Contains(t, bindings, "success_count")
	assert.Contains(t, bindings, "failure_count")

	st, err := tr.TickOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, st)
}

func TestRegister_Validation(t *testing.T) {
	f := NewFactory()
	assert.Error(t, f.RegisterSimpleAction("Nil", nil))
	assert.Error(t, f.RegisterSimpleCondition("Nil", nil))
	assert.Error(t, f.RegisterStatefulAction("Nil", nil))
	assert.Error(t, f.RegisterSimpleAction("Dup", returning(newTickLog(), domain.StatusSuccess),
		domain.InputPort("a", nil), domain.InputPort("a", nil)))
	assert.Error(t, f.RegisterSimpleAction(domain.NodeTypeSubTree, returning(newTickLog(), domain.StatusSuccess)))
	assert.True(t, f.Registry().Has("Sequence"))
	assert.True(t, f.Types().Has("int"))
}
