package dsl

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
)

// Builder manages the construction of a set of tree definitions.
type Builder struct {
	main  string
	order []string
	trees map[string]*TreeBuilder
}

// New creates a new tree builder.
func New() *Builder {
	return &Builder{
		trees: make(map[string]*TreeBuilder),
	}
}

// Tree declares a tree definition.
// If the tree already exists, it returns the existing builder.
func (b *Builder) Tree(id string) *TreeBuilder {
	if tb, ok := b.trees[id]; ok {
		return tb
	}
	tb := &TreeBuilder{id: id}
	b.trees[id] = tb
	b.order = append(b.order, id)
	return tb
}

// Main selects the tree instantiated when no ID is requested.
func (b *Builder) Main(id string) *Builder {
	b.main = id
	return b
}

// Document compiles the declared trees, in declaration order.
func (b *Builder) Document() (*domain.Document, error) {
	doc := &domain.Document{Main: b.main}
	for _, id := range b.order {
		tb := b.trees[id]
		if id == "" {
			return nil, fmt.Errorf("tree without an id")
		}
		if tb.root == nil {
			return nil, fmt.Errorf("tree '%s' has no root", id)
		}
		doc.Trees = append(doc.Trees, domain.TreeSpec{ID: id, Root: tb.root.Build()})
	}
	if b.main != "" {
		if _, ok := doc.Tree(b.main); !ok {
			return nil, fmt.Errorf("main tree '%s' is not declared", b.main)
		}
	}
	return doc, nil
}

// Build compiles the trees into a memory loader.
func (b *Builder) Build() (*memory.Loader, error) {
	doc, err := b.Document()
	if err != nil {
		return nil, err
	}
	loader, err := memory.NewFromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}

// TreeBuilder configures one tree definition.
type TreeBuilder struct {
	id   string
	root *NodeBuilder
}

// Root sets the root node of the tree.
func (t *TreeBuilder) Root(n *NodeBuilder) *TreeBuilder {
	t.root = n
	return t
}
