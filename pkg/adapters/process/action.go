package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/schema"
)

// Port names of every process node.
const (
	PortInput    = "input"
	PortStdout   = "stdout"
	PortExitCode = "exit_code"
)

// InputEnv is the environment variable carrying the input port value.
// Port values never become command-line arguments.
const InputEnv = "ARBOR_INPUT"

// Ports lists the ports of every process node type.
func Ports() domain.PortsList {
	return domain.PortsList{
		domain.InputPort(PortInput, schema.String(), "Value passed to the command as "+InputEnv).WithDefault(""),
		domain.OutputPort(PortStdout, schema.String(), "Trimmed standard output"),
		domain.OutputPort(PortExitCode, schema.Int(), "Exit status of the command"),
	}
}

// NodeRegistrar is the part of tree.Factory used to install process nodes.
type NodeRegistrar interface {
	RegisterNodeType(m registry.Manifest, ctor registry.Constructor) error
}

// Runner runs allow-listed commands as asynchronous actions. Each
// registered command becomes a node type: it is RUNNING while the process
// lives, SUCCESS on exit status 0 and FAILURE otherwise.
type Runner struct {
	registry  map[string]ProcessConfig
	baseDir   string
	waitDelay time.Duration
	logger    *slog.Logger
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(tools map[string]ProcessConfig) RunnerOption {
	return func(r *Runner) {
		for name, tool := range tools {
			tool.Name = name
			r.registry[name] = tool
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithWaitDelay bounds how long a halted process may take to exit after
// being killed before its pipes are closed.
func WithWaitDelay(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.waitDelay = d
	}
}

// WithLogger sets the logger used for process lifecycle events.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a new process runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry:  make(map[string]ProcessConfig),
		waitDelay: 2 * time.Second,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list.
func (r *Runner) Register(name, command string, args ...string) {
	r.registry[name] = ProcessConfig{Name: name, Command: command, Args: args}
}

// Install registers one stateful action type per allow-listed command.
func (r *Runner) Install(f NodeRegistrar) error {
	names := make([]string, 0, len(r.registry))
	for name := range r.registry {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		tool := r.registry[name]
		desc := tool.Description
		if desc == "" {
			desc = "Runs " + tool.Command
		}
		err := f.RegisterNodeType(
			registry.Manifest{Type: name, Kind: domain.KindAction, Ports: Ports(), Description: desc},
			func(cfg *node.Config, _ []node.Node) (node.Node, error) {
				return node.NewStatefulAction(cfg, &execution{runner: r, tool: tool}), nil
			},
		)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

type result struct {
	stdout   string
	stderr   string
	exitCode int
	err      error
}

// execution is the state of one process node instance.
type execution struct {
	runner *Runner
	tool   ProcessConfig

	cancel context.CancelFunc
	done   chan result
}

func (e *execution) OnStart(ctx context.Context, self node.Node) (domain.Status, error) {
	input, err := node.GetInput[string](self, PortInput)
	if err != nil {
		return domain.StatusIdle, err
	}

	// the process outlives the tick that started it
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	cmd := exec.CommandContext(runCtx, e.tool.Command, e.tool.Args...)
	cmd.Dir = e.runner.baseDir
	cmd.WaitDelay = e.runner.waitDelay
	cmd.Env = cmd.Environ()
	for k, v := range e.tool.Environment {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Env = append(cmd.Env, InputEnv+"="+input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return domain.StatusIdle, fmt.Errorf("failed to start %s: %w", e.tool.Name, err)
	}
	e.runner.logger.Debug("process started", "tool", e.tool.Name, "pid", cmd.Process.Pid)

	e.cancel = cancel
	e.done = make(chan result, 1)
	go func() {
		err := cmd.Wait()
		res := result{stdout: strings.TrimSpace(stdout.String()), stderr: stderr.String(), err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.exitCode = exitErr.ExitCode()
			res.err = nil
		}
		e.done <- res
	}()
	return domain.StatusRunning, nil
}

func (e *execution) OnRunning(_ context.Context, self node.Node) (domain.Status, error) {
	var res result
	select {
	case res = <-e.done:
	default:
		return domain.StatusRunning, nil
	}
	e.done = nil
	e.cancel()

	if res.err != nil {
		return domain.StatusIdle, fmt.Errorf("%s: %w", e.tool.Name, res.err)
	}
	if err := optionalOutput(self, PortStdout, res.stdout); err != nil {
		return domain.StatusIdle, err
	}
	if err := optionalOutput(self, PortExitCode, res.exitCode); err != nil {
		return domain.StatusIdle, err
	}
	if res.exitCode != 0 {
		e.runner.logger.Debug("process failed", "tool", e.tool.Name, "exit_code", res.exitCode, "stderr", res.stderr)
		return domain.StatusFailure, nil
	}
	return domain.StatusSuccess, nil
}

func (e *execution) OnHalted(context.Context, node.Node) {
	if e.done == nil {
		return
	}
	e.cancel()
	res := <-e.done
	e.done = nil
	e.runner.logger.Debug("process halted", "tool", e.tool.Name, "exit_code", res.exitCode)
}

func optionalOutput(self node.Node, port string, value any) error {
	if err := node.SetOutput(self, port, value); err != nil && !errors.Is(err, domain.ErrUnboundPort) {
		return err
	}
	return nil
}
