/*
Package arbor is a behavior tree engine for Go.

A behavior tree is a hierarchy of nodes ticked from the root at a fixed
rhythm. Leaves perform actions or check conditions; control nodes (Sequence,
Fallback, Parallel) and decorators (Inverter, Retry, Timeout, ...) decide
which children run and how their results combine. Nodes exchange data
through a typed, scoped blackboard, addressed by named ports.

# Concept

Tree definitions are data: YAML or JSON documents served by a
ports.TreeLoader (files, memory, Redis). The host registers its own leaves on
a tree.Factory, builds a tree.Tree from a definition and drives it with a
runner.Runner. Structural mistakes (unknown node types, bad arity, unknown
ports, recursive subtrees) are reported when the tree is built, never while
it runs.

# Usage

	eng, err := arbor.New("./trees")
	if err != nil {
		log.Fatal(err)
	}

	err = eng.Factory().RegisterSimpleAction("SaySomething",
		func(ctx context.Context, self node.Node) (domain.Status, error) {
			msg, err := node.GetInput[string](self, "message")
			if err != nil {
				return domain.StatusIdle, err
			}
			fmt.Println(msg)
			return domain.StatusSuccess, nil
		},
		domain.InputPort("message", schema.String()),
	)
	if err != nil {
		log.Fatal(err)
	}

	status, err := eng.Run(ctx, "main")

A definition for the tree above:

	id: main
	root:
	  type: Sequence
	  children:
	    - type: SaySomething
	      message: hello
	    - type: SaySomething
	      message: "{greeting}"

# Packages

  - pkg/tree: Factory, builder and the Tree arena.
  - pkg/runner: the tick loop, halting and signal handling.
  - pkg/control: built-in control nodes and decorators.
  - pkg/node: the Node contract, leaves and port access.
  - pkg/blackboard, pkg/schema: data exchange and port types.
  - pkg/dsl: fluent construction of tree definitions in Go.
  - pkg/adapters: loaders and the HTTP status adapter.
  - pkg/observability: Prometheus metrics and log hooks.
*/
package arbor
