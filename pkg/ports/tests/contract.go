package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// TreeLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.TreeLoader.
func TreeLoaderContractTest(t *testing.T, loader ports.TreeLoader, setupData map[string][]byte) {
	t.Helper()
	ctx := context.Background()

	// 1. Test GetTree (Success)
	t.Run("GetTree_Success", func(t *testing.T) {
		for id, expectedContent := range setupData {
			content, err := loader.GetTree(ctx, id)
			if err != nil {
				t.Fatalf("unexpected error getting tree %s: %v", id, err)
			}
			if string(content) != string(expectedContent) {
				t.Errorf("content mismatch for %s. got %q, want %q", id, content, expectedContent)
			}
		}
	})

	// 2. Test GetTree (NotFound)
	t.Run("GetTree_NotFound", func(t *testing.T) {
		_, err := loader.GetTree(ctx, "non-existent-tree")
		if err == nil {
			t.Fatal("expected error for non-existent tree, got nil")
		}
		if !errors.Is(err, domain.ErrTreeNotFound) {
			t.Errorf("expected ErrTreeNotFound, got %v", err)
		}
	})

	// 3. Test ListTrees
	t.Run("ListTrees", func(t *testing.T) {
		trees, err := loader.ListTrees(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing trees: %v", err)
		}

		if len(trees) != len(setupData) {
			t.Errorf("expected %d trees, got %d", len(setupData), len(trees))
		}

		// Verify all expected IDs are present
		lookup := make(map[string]bool)
		for _, id := range trees {
			lookup[id] = true
		}

		for id := range setupData {
			if !lookup[id] {
				t.Errorf("tree %s missing from list", id)
			}
		}
	})
}
