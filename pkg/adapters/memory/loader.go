package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.TreeLoader using an in-memory map.
// Safe for concurrent use.
type Loader struct {
	mu    sync.RWMutex
	trees map[string][]byte
}

// NewLoader creates a new Loader with the provided raw definitions, keyed by tree ID.
func NewLoader(data map[string]string) *Loader {
	trees := make(map[string][]byte)
	for k, v := range data {
		trees[k] = []byte(v)
	}
	return &Loader{
		trees: trees,
	}
}

// NewFromDocument creates a Loader serving every tree of doc.
// This handles serialization automatically, improving DX for tests.
func NewFromDocument(doc *domain.Document) (*Loader, error) {
	l := &Loader{trees: make(map[string][]byte)}
	for _, t := range doc.Trees {
		if err := l.Put(t); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Put stores a single tree definition under its ID.
func (l *Loader) Put(tree domain.TreeSpec) error {
	if tree.ID == "" {
		return fmt.Errorf("tree missing ID")
	}
	bytes, err := yaml.Marshal(tree)
	if err != nil {
		return fmt.Errorf("failed to marshal tree %s: %w", tree.ID, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trees[tree.ID] = bytes
	return nil
}

// GetTree retrieves the raw definition of a tree by ID.
func (l *Loader) GetTree(_ context.Context, id string) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	content, ok := l.trees[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTreeNotFound, id)
	}
	return content, nil
}

// ListTrees returns all available tree IDs.
func (l *Loader) ListTrees(_ context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	keys := make([]string, 0, len(l.trees))
	for k := range l.trees {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
