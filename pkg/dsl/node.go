package dsl

import (
	"strconv"
	"time"

	"github.com/aretw0/arbor/pkg/control"
	"github.com/aretw0/arbor/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	spec     domain.NodeSpec
	children []*NodeBuilder
}

// Node starts a node of the given registered type.
func Node(typ string) *NodeBuilder {
	return &NodeBuilder{spec: domain.NodeSpec{Type: typ}}
}

// Name sets the instance name.
func (n *NodeBuilder) Name(name string) *NodeBuilder {
	n.spec.Name = name
	return n
}

// Port sets a port to a literal value, or to a "{key}" reference.
func (n *NodeBuilder) Port(name, value string) *NodeBuilder {
	if n.spec.Ports == nil {
		n.spec.Ports = make(map[string]string)
	}
	n.spec.Ports[name] = value
	return n
}

// Bind connects a port to a blackboard key.
func (n *NodeBuilder) Bind(port, key string) *NodeBuilder {
	return n.Port(port, "{"+key+"}")
}

// Children appends child nodes.
func (n *NodeBuilder) Children(children ...*NodeBuilder) *NodeBuilder {
	n.children = append(n.children, children...)
	return n
}

// Build returns the underlying domain.NodeSpec, children included.
func (n *NodeBuilder) Build() domain.NodeSpec {
	spec := n.spec
	if n.spec.Ports != nil {
		spec.Ports = make(map[string]string, len(n.spec.Ports))
		for k, v := range n.spec.Ports {
			spec.Ports[k] = v
		}
	}
	spec.Children = nil
	for _, c := range n.children {
		spec.Children = append(spec.Children, c.Build())
	}
	return spec
}

// --- Control nodes ---

func Sequence(children ...*NodeBuilder) *NodeBuilder {
	return Node("Sequence").Children(children...)
}

func Fallback(children ...*NodeBuilder) *NodeBuilder {
	return Node("Fallback").Children(children...)
}

func ReactiveSequence(children ...*NodeBuilder) *NodeBuilder {
	return Node("ReactiveSequence").Children(children...)
}

func ReactiveFallback(children ...*NodeBuilder) *NodeBuilder {
	return Node("ReactiveFallback").Children(children...)
}

// Parallel resolves on success and failure thresholds; negative values count
// from the number of children.
func Parallel(success, failure int, children ...*NodeBuilder) *NodeBuilder {
	return Node("Parallel").
		Port(control.PortSuccessCount, strconv.Itoa(success)).
		Port(control.PortFailureCount, strconv.Itoa(failure)).
		Children(children...)
}

// --- Decorators ---

func Inverter(child *NodeBuilder) *NodeBuilder {
	return Node("Inverter").Children(child)
}

func ForceSuccess(child *NodeBuilder) *NodeBuilder {
	return Node("ForceSuccess").Children(child)
}

func ForceFailure(child *NodeBuilder) *NodeBuilder {
	return Node("ForceFailure").Children(child)
}

// Repeat ticks child until it succeeded cycles times; -1 repeats forever.
func Repeat(cycles int, child *NodeBuilder) *NodeBuilder {
	return Node("Repeat").Port(control.PortNumCycles, strconv.Itoa(cycles)).Children(child)
}

// Retry ticks child until it succeeds, at most attempts times; -1 retries forever.
func Retry(attempts int, child *NodeBuilder) *NodeBuilder {
	return Node("RetryUntilSuccessful").Port(control.PortNumAttempts, strconv.Itoa(attempts)).Children(child)
}

func Timeout(d time.Duration, child *NodeBuilder) *NodeBuilder {
	return Node("Timeout").Port(control.PortMsec, d.String()).Children(child)
}

func Delay(d time.Duration, child *NodeBuilder) *NodeBuilder {
	return Node("Delay").Port(control.PortDelayMsec, d.String()).Children(child)
}

// SkipUnless skips child unless condition, a literal or "{key}", is true.
func SkipUnless(condition string, child *NodeBuilder) *NodeBuilder {
	return Node("SkipUnless").Port(control.PortCondition, condition).Children(child)
}

// --- Subtrees ---

// SubTree expands the tree with the given ID in place.
func SubTree(id string) *NodeBuilder {
	return Node(domain.NodeTypeSubTree).Port(domain.PortSubTreeID, id)
}

// Remap connects an internal key of a subtree to a key of the enclosing scope.
func (n *NodeBuilder) Remap(internal, external string) *NodeBuilder {
	return n.Bind(internal, external)
}

// AutoRemap shares every non-private key of a subtree with the enclosing scope.
func (n *NodeBuilder) AutoRemap() *NodeBuilder {
	return n.Port(domain.PortAutoRemap, "true")
}
