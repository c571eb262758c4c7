package tree

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/arbor/pkg/blackboard"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
	"github.com/aretw0/arbor/pkg/runner"
)

// Tree is a built tree instance. Nodes are stored in pre-order, so the index
// of a node in Nodes equals its UID and the root is at index 0.
type Tree struct {
	id      string
	name    string
	root    node.Node
	nodes   []node.Node
	parents []int
	depths  []int
	bb      *blackboard.Blackboard
	hooks   domain.TickHooks
	logger  *slog.Logger

	mu    sync.Mutex // serializes ticking and halting
	ticks atomic.Uint64
}

// ID returns the unique id of this instance.
func (t *Tree) ID() string { return t.id }

// Name returns the ID of the tree definition this instance was built from.
func (t *Tree) Name() string { return t.name }

func (t *Tree) Root() node.Node { return t.root }

// Nodes returns every node in pre-order.
func (t *Tree) Nodes() []node.Node {
	out := make([]node.Node, len(t.nodes))
	copy(out, t.nodes)
	return out
}

// Blackboard returns the root blackboard of the instance.
func (t *Tree) Blackboard() *blackboard.Blackboard { return t.bb }

// RootStatus returns the status of the root node.
func (t *Tree) RootStatus() domain.Status { return t.root.Status() }

// Ticks returns how many times the root was ticked.
func (t *Tree) Ticks() uint64 { return t.ticks.Load() }

// Walk visits every node in pre-order with its depth (0 for the root).
// Returning false stops the walk.
func (t *Tree) Walk(fn func(n node.Node, depth int) bool) {
	for i, n := range t.nodes {
		if !fn(n, t.depths[i]) {
			return
		}
	}
}

// Parent returns the parent of n, or nil for the root or a foreign node.
func (t *Tree) Parent(n node.Node) node.Node {
	uid := n.Config().UID
	if uid < 0 || uid >= len(t.nodes) || t.nodes[uid] != n {
		return nil
	}
	if p := t.parents[uid]; p >= 0 {
		return t.nodes[p]
	}
	return nil
}

// NodeByPath returns the node at the given slash-separated path.
func (t *Tree) NodeByPath(path string) (node.Node, bool) {
	path = "/" + strings.TrimPrefix(path, "/")
	for _, n := range t.nodes {
		if n.Config().Path == path {
			return n, true
		}
	}
	return nil, false
}

// FindByName returns every node whose instance name is name.
// Names are not unique, UIDs and paths are.
func (t *Tree) FindByName(name string) []node.Node {
	var out []node.Node
	for _, n := range t.nodes {
		if n.Name() == name {
			out = append(out, n)
		}
	}
	return out
}

// TickOnce ticks the root once and returns its status.
func (t *Tree) TickOnce(ctx context.Context) (domain.Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ticks.Add(1)
	return t.root.Tick(ctx)
}

// TickWhileRunning ticks the tree until the root stops returning RUNNING,
// waiting at least interval between ticks.
func (t *Tree) TickWhileRunning(ctx context.Context, interval time.Duration) (domain.Status, error) {
	r := runner.New(
		runner.WithTickInterval(interval),
		runner.WithLogger(t.logger),
		runner.WithHooks(t.hooks),
	)
	return r.Run(ctx, t)
}

// HaltTree halts every node, pre-order. Running asynchronous leaves receive
// their halt callback exactly once; idle nodes are left untouched.
func (t *Tree) HaltTree(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.root.Halt(ctx)
}

// Snapshot captures the status of every node and the root blackboard.
// It reads atomics only and may run while another goroutine ticks.
func (t *Tree) Snapshot() domain.TreeSnapshot {
	snap := domain.TreeSnapshot{
		ID:         t.id,
		Tree:       t.name,
		Status:     t.root.Status(),
		Ticks:      t.ticks.Load(),
		Nodes:      make([]domain.NodeSnapshot, 0, len(t.nodes)),
		Blackboard: t.bb.Snapshot(),
	}
	for i, n := range t.nodes {
		cfg := n.Config()
		snap.Nodes = append(snap.Nodes, domain.NodeSnapshot{
			UID:    i,
			Parent: t.parents[i],
			Path:   cfg.Path,
			Name:   cfg.Name,
			Type:   cfg.Type,
			Kind:   n.Kind(),
			Status: n.Status(),
		})
	}
	return snap
}
