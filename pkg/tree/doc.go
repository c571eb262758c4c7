/*
Package tree builds and owns tree instances.

A Factory holds the node type registry and the port type registry. It turns a
domain.Document into a Tree, validating the whole structure up front: unknown
node types or ports, wrong child counts, unknown or recursive subtrees and
unregistered port types are reported as *domain.TreeStructureError before any
node is ticked.

	f := tree.NewFactory(tree.WithLogger(logger))
	_ = f.RegisterSimpleAction("SaySomething", say, domain.InputPort("message", schema.String()))

	t, err := f.CreateTreeFromText(definition, "")
	if err != nil {
		return err
	}
	status, err := t.TickWhileRunning(ctx, 10*time.Millisecond)

SubTree nodes are expanded at build time. Each expansion gets its own child
blackboard, connected to the parent scope through the remapping declared on
the SubTree node.
*/
package tree
