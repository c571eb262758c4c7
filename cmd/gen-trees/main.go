package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/arbor/internal/demo"
	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/loam"
	"gopkg.in/yaml.v3"
)

// gen-trees writes the bundled sample definitions to a directory so they can
// be edited and run with `arbor run <dir>`.
func main() {
	targetDir := "examples/tutorials"
	if len(os.Args) > 1 {
		targetDir = os.Args[1]
	}
	if err := generate(context.Background(), targetDir); err != nil {
		fmt.Fprintf(os.Stderr, "gen-trees: %v\n", err)
		os.Exit(1)
	}
}

func generate(ctx context.Context, targetDir string) error {
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return err
	}
	fmt.Printf("Generating sample trees in: %s\n", targetDir)

	// Plain files: no git history, no sandbox.
	repo, err := loam.Init(targetDir,
		loam.WithVersioning(false),
		loam.WithForceTemp(false),
	)
	if err != nil {
		return fmt.Errorf("failed to init loam: %w", err)
	}
	typedRepo := loam.NewTyped[file.Definition](repo)

	samples, err := demo.Trees()
	if err != nil {
		return err
	}
	ids, err := samples.ListTrees(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		data, err := samples.GetTree(ctx, id)
		if err != nil {
			return err
		}
		var def file.Definition
		if err := yaml.Unmarshal(data, &def); err != nil {
			return fmt.Errorf("sample %s: %w", id, err)
		}
		doc := &loam.DocumentModel[file.Definition]{
			ID:   id + ".yaml",
			Data: def,
		}
		if err := typedRepo.Save(ctx, doc); err != nil {
			return fmt.Errorf("failed to save %s: %w", doc.ID, err)
		}
		fmt.Printf("  %s\n", doc.ID)
	}
	return nil
}
