package ports

import "context"

// TreeLoader defines how the engine retrieves tree definitions.
// This allows the storage layer (files, Redis, memory) to be decoupled from the builder.
type TreeLoader interface {
	// GetTree retrieves the raw definition document that declares the tree with the given ID.
	// It returns the raw bytes (which the compiler will parse) or an error wrapping
	// domain.ErrTreeNotFound.
	GetTree(ctx context.Context, id string) ([]byte, error)

	// ListTrees returns the IDs of every tree available from the source.
	// This is used for introspection tools (e.g. 'arbor graph').
	ListTrees(ctx context.Context) ([]string, error)
}
