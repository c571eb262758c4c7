/*
Package dsl provides a fluent Go API for building tree definitions without YAML.

	b := dsl.New()
	b.Tree("main").Root(
		dsl.Sequence(
			dsl.Node("CheckBattery"),
			dsl.Node("SaySomething").Port("message", "mission started"),
			dsl.SubTree("grasp").Remap("target", "goal"),
		),
	)
	b.Tree("grasp").Root(dsl.Node("ApproachObject"))
	b.Main("main")

	doc, err := b.Document()     // for tree.Factory.CreateTree
	loader, err := b.Build()     // a memory loader for CreateTreeFromLoader
*/
package dsl
