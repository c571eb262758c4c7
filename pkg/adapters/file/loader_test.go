package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
	contract "github.com/aretw0/arbor/pkg/ports/tests"
	"github.com/aretw0/arbor/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func open(t *testing.T, dir string) *file.Loader {
	t.Helper()
	l, err := file.NewLoader(dir)
	require.NoError(t, err)
	return l
}

func TestFileLoader_Contract(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.yaml", "id: MainTree\nroot:\n  type: Sequence\n")
	writeFile(t, dir, "grasp.json", `{"id": "Grasp", "root": {"type": "OpenGripper"}}`)
	writeFile(t, dir, "README.md", "# Notes\n\nNot a tree.\n")

	// Definitions are served in their canonical JSON form.
	data := map[string][]byte{
		"MainTree": []byte(`{"id":"MainTree","root":{"type":"Sequence"}}`),
		"Grasp":    []byte(`{"id":"Grasp","root":{"type":"OpenGripper"}}`),
	}
	contract.TreeLoaderContractTest(t, open(t, dir), data)
}

func TestFileLoader_MultiTreeDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "trees.yaml", "main: A\ntrees:\n  - id: A\n    root:\n      type: X\n  - id: B\n    root:\n      type: Y\n")

	loader := open(t, dir)
	ids, err := loader.ListTrees(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, ids)

	raw, err := loader.GetTree(context.Background(), "B")
	require.NoError(t, err)
	assert.JSONEq(t, `{"main":"A","trees":[{"id":"A","root":{"type":"X"}},{"id":"B","root":{"type":"Y"}}]}`, string(raw))
}

func TestFileLoader_BuildsTrees(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "retry.json", `{
  "id": "main",
  "root": {"type": "RetryUntilSuccessful", "num_attempts": 3, "children": [{"type": "AlwaysSucceed"}]}
}`)
	writeFile(t, dir, "tools.yaml", "tools:\n  - name: greet\n    command: echo\n")

	f := tree.NewFactory()
	require.NoError(t, f.RegisterSimpleCondition("AlwaysSucceed", func(context.Context, node.Node) (domain.Status, error) {
		return domain.StatusSuccess, nil
	}))
	tr, err := f.CreateTreeFromLoader(context.Background(), open(t, dir), "main")
	require.NoError(t, err, "integer literals survive the JSON round trip")

	st, err := tr.TickOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, st)
}

func TestFileLoader_Errors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := file.NewLoader(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("duplicate id", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.yaml", "id: T\nroot:\n  type: X\n")
		writeFile(t, dir, "b.yaml", "id: T\nroot:\n  type: Y\n")
		_, err := open(t, dir).GetTree(context.Background(), "T")
		assert.ErrorIs(t, err, domain.ErrTreeStructure)
		assert.ErrorContains(t, err, "declared in both")
	})

	t.Run("tree without id", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "anon.yaml", "trees:\n  - root:\n      type: X\n")
		_, err := open(t, dir).ListTrees(context.Background())
		assert.ErrorIs(t, err, domain.ErrTreeStructure)
	})

	t.Run("invalid file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "bad.yaml", "trees: [")
		_, err := open(t, dir).ListTrees(context.Background())
		assert.Error(t, err)
	})
}
