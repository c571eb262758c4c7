// Package blackboard implements the scoped key/value store shared by the nodes of a tree.
//
// Every tree instance owns a root Blackboard. Each SubTree invocation gets a
// child Blackboard chained to its parent through a remapping table: an internal
// key may alias a different key of the parent scope, and an auto-remapped scope
// falls back to same-named parent keys. Keys prefixed with '@' always address
// the root scope.
//
// Entries are type-tagged. Once a cell has been declared with a schema.Type,
// every write is validated against it and string writes are parsed through the
// type's converter.
package blackboard
