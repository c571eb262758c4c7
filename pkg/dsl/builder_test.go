package dsl

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/arbor/internal/compiler"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Document(t *testing.T) {
	b := New()
	b.Tree("main").Root(
		Sequence(
			Node("CheckBattery").Name("battery"),
			Node("SaySomething").Port("message", "hello"),
			Timeout(250*time.Millisecond, Node("MoveBase").Bind("goal", "target")),
			SubTree("grasp").Remap("object", "target").AutoRemap(),
		),
	)
	b.Tree("grasp").Root(Retry(3, Node("Grab")))
	b.Main("main")

	doc, err := b.Document()
	require.NoError(t, err)
	require.Len(t, doc.Trees, 2)
	assert.Equal(t, "main", doc.MainID())

	root := doc.Trees[0].Root
	assert.Equal(t, "Sequence", root.Type)
	require.Len(t, root.Children, 4)
	assert.Equal(t, "battery", root.Children[0].Name)
	assert.Equal(t, "hello", root.Children[1].Ports["message"])
	assert.Equal(t, "250ms", root.Children[2].Ports["msec"])
	assert.Equal(t, "{target}", root.Children[2].Children[0].Ports["goal"])

	sub := root.Children[3]
	assert.Equal(t, domain.NodeTypeSubTree, sub.Type)
	assert.Equal(t, "grasp", sub.Ports[domain.PortSubTreeID])
	assert.Equal(t, "{target}", sub.Ports["object"])
	assert.Equal(t, "true", sub.Ports[domain.PortAutoRemap])

	assert.Equal(t, "3", doc.Trees[1].Root.Ports["num_attempts"])
}

func TestBuilder_Errors(t *testing.T) {
	b := New()
	b.Tree("empty")
	_, err := b.Document()
	assert.ErrorContains(t, err, "has no root")

	b = New()
	b.Tree("main").Root(Node("A"))
	b.Main("other")
	_, err = b.Build()
	assert.ErrorContains(t, err, "main tree 'other' is not declared")
}

func TestBuilder_TreeIsReused(t *testing.T) {
	b := New()
	first := b.Tree("main")
	assert.Same(t, first, b.Tree("main"))
}

func TestBuilder_LoaderRoundTrip(t *testing.T) {
	b := New()
	b.Tree("main").Root(Parallel(1, -1,
		Repeat(2, Node("Tick")),
		Delay(time.Second, Inverter(Node("Check"))),
		SkipUnless("{ready}", ForceSuccess(Node("Work"))),
	))

	loader, err := b.Build()
	require.NoError(t, err)

	ids, err := loader.ListTrees(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"main"}, ids)

	data, err := loader.GetTree(context.Background(), "main")
	require.NoError(t, err)

	doc, err := compiler.NewParser().Parse(data)
	require.NoError(t, err)
	want, err := b.Document()
	require.NoError(t, err)
	assert.Equal(t, want.Trees[0], doc.Trees[0])
}
