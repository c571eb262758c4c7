// Package cli implements the commands of the arbor binary on top of the
// root engine: running, validating, graphing and serving trees.
package cli
