package process_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/adapters/process"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/schema"
	"github.com/aretw0/arbor/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("process tests use sh")
	}
}

func buildTree(t *testing.T, r *process.Runner, def string) *tree.Tree {
	t.Helper()
	f := tree.NewFactory()
	require.NoError(t, r.Install(f))
	tr, err := f.CreateTreeFromText([]byte(def), "")
	require.NoError(t, err)
	return tr
}

func tickUntilDone(t *testing.T, tr *tree.Tree) domain.Status {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status, err := tr.TickOnce(context.Background())
		require.NoError(t, err)
		if status != domain.StatusRunning {
			return status
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("process did not finish")
	return domain.StatusIdle
}

func TestProcess_SuccessWritesOutputs(t *testing.T) {
	requireShell(t)
	r := process.NewRunner()
	r.Register("Echo", "sh", "-c", `echo "got $ARBOR_INPUT"`)

	tr := buildTree(t, r, `
id: main
root:
  type: Echo
  input: hello
  stdout: "{out}"
  exit_code: "{code}"
`)
	assert.Equal(t, domain.StatusSuccess, tickUntilDone(t, tr))

	out, _ := tr.Blackboard().Get("out")
	code, _ := tr.Blackboard().Get("code")
	assert.Equal(t, "got hello", out)
	assert.Equal(t, 0, code)
}

func TestProcess_OutputErrorEndsActivation(t *testing.T) {
	requireShell(t)
	r := process.NewRunner()
	r.Register("Echo", "sh", "-c", "echo hi")

	tr := buildTree(t, r, `
id: main
root:
  type: Echo
  exit_code: "{code}"
`)
	require.NoError(t, tr.Blackboard().Declare("code", schema.Bool()))

	var err error
	deadline := time.Now().Add(5 * time.Second)
	for err == nil && time.Now().Before(deadline) {
		_, err = tr.TickOnce(context.Background())
		time.Sleep(5 * time.Millisecond)
	}
	require.ErrorContains(t, err, "already declared")
	assert.Equal(t, domain.StatusIdle, tr.RootStatus())

	// The next tick starts a fresh process instead of waiting on the old one.
	tr.Blackboard().Unset("code")
	assert.Equal(t, domain.StatusSuccess, tickUntilDone(t, tr))
	code, _ := tr.Blackboard().Get("code")
	assert.Equal(t, 0, code)
}

func TestProcess_NonZeroExitFails(t *testing.T) {
	requireShell(t)
	r := process.NewRunner()
	r.Register("Broken", "sh", "-c", "exit 3")

	tr := buildTree(t, r, "id: main\nroot:\n  type: Broken\n  exit_code: \"{code}\"\n")
	assert.Equal(t, domain.StatusFailure, tickUntilDone(t, tr))

	code, _ := tr.Blackboard().Get("code")
	assert.Equal(t, 3, code)
}

func TestProcess_UnboundOutputsAreIgnored(t *testing.T) {
	requireShell(t)
	r := process.NewRunner()
	r.Register("Quiet", "sh", "-c", "echo ignored")

	tr := buildTree(t, r, "id: main\nroot:\n  type: Quiet\n")
	assert.Equal(t, domain.StatusSuccess, tickUntilDone(t, tr))
}

func TestProcess_HaltKillsProcess(t *testing.T) {
	requireShell(t)
	r := process.NewRunner(process.WithWaitDelay(time.Second))
	r.Register("Sleep", "sh", "-c", "sleep 30")

	tr := buildTree(t, r, "id: main\nroot:\n  type: Sleep\n")
	status, err := tr.TickOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.StatusRunning, status)

	start := time.Now()
	tr.HaltTree(context.Background())
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, domain.StatusIdle, tr.RootStatus())

	// a second halt finds nothing running
	tr.HaltTree(context.Background())
}

func TestProcess_StartFailureIsAnError(t *testing.T) {
	r := process.NewRunner()
	r.Register("Ghost", filepath.Join(t.TempDir(), "does-not-exist"))

	tr := buildTree(t, r, "id: main\nroot:\n  type: Ghost\n")
	_, err := tr.TickOnce(context.Background())
	assert.ErrorContains(t, err, "failed to start Ghost")
}

func TestInstall_Manifests(t *testing.T) {
	r := process.NewRunner(process.WithRegistry(map[string]process.ProcessConfig{
		"Lint": {Command: "golangci-lint", Description: "Runs the linters"},
		"Test": {Command: "go", Args: []string{"test"}},
	}))
	f := tree.NewFactory()
	require.NoError(t, r.Install(f))

	lint, _, ok := f.Registry().Lookup("Lint")
	require.True(t, ok)
	assert.Equal(t, "Runs the linters", lint.Description)
	assert.Equal(t, domain.KindAction, lint.Kind)

	test, _, ok := f.Registry().Lookup("Test")
	require.True(t, ok)
	assert.Equal(t, "Runs go", test.Description)
	assert.Equal(t, []string{process.PortInput, process.PortStdout, process.PortExitCode}, test.Ports.Names())
}

func TestLoadTools(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tools.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tools:
  - name: Build
    command: go
    args: [build, ./...]
    env:
      CGO_ENABLED: "0"
  - command: echo
  - name: NoCommand
`), 0o644))

	tools, err := process.LoadTools(path)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, []string{"build", "./..."}, tools["Build"].Args)
	assert.Equal(t, "0", tools["Build"].Environment["CGO_ENABLED"])

	missing, err := process.LoadTools(filepath.Join(dir, "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, missing)

	bad := filepath.Join(dir, "tools.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = process.LoadTools(bad)
	assert.Error(t, err)
}
