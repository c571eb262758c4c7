package domain

// NodeKind classifies nodes by the role they play in the tree.
type NodeKind string

const (
	// KindAction is a leaf that performs work. It may be synchronous or stateful.
	KindAction NodeKind = "action"
	// KindCondition is a synchronous leaf that checks a predicate and never returns RUNNING.
	KindCondition NodeKind = "condition"
	// KindControl is a composite owning one or more children (Sequence, Fallback, Parallel).
	KindControl NodeKind = "control"
	// KindDecorator owns exactly one child and transforms its status.
	KindDecorator NodeKind = "decorator"
	// KindSubTree wraps the root of another tree definition with its own blackboard scope.
	KindSubTree NodeKind = "subtree"
)

// IsLeaf reports whether nodes of this kind have no children.
func (k NodeKind) IsLeaf() bool {
	return k == KindAction || k == KindCondition
}

// Reserved node types and port names understood by the tree builder.
const (
	// NodeTypeSubTree references another tree of the same document by its ID port.
	NodeTypeSubTree = "SubTree"
	// PortSubTreeID names the tree a SubTree node expands.
	PortSubTreeID = "ID"
	// PortAutoRemap makes a SubTree scope fall back to same-named parent keys.
	PortAutoRemap = "_autoremap"
)
