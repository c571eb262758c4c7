package registry

import (
	"github.com/aretw0/arbor/pkg/control"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
)

// Builtin pairs a built-in manifest with its constructor.
type Builtin struct {
	Manifest    Manifest
	Constructor Constructor
}

// adapt turns a typed constructor into a Constructor.
func adapt[T node.Node](fn func(*node.Config, []node.Node) (T, error)) Constructor {
	return func(cfg *node.Config, children []node.Node) (node.Node, error) {
		n, err := fn(cfg, children)
		if err != nil {
			return nil, err
		}
		return n, nil
	}
}

func controlNode(name, desc string, ctor Constructor, ports domain.PortsList) Builtin {
	return Builtin{Manifest{Type: name, Kind: domain.KindControl, Ports: ports, Description: desc}, ctor}
}

func decoratorNode(name, desc string, ctor Constructor, ports domain.PortsList) Builtin {
	return Builtin{Manifest{Type: name, Kind: domain.KindDecorator, Ports: ports, Description: desc}, ctor}
}

// Builtins returns the control and decorator node types shipped with the engine.
func Builtins() []Builtin {
	return []Builtin{
		controlNode("Sequence", "Ticks children in order until one fails; resumes from the running child.", adapt(control.NewSequence), nil),
		controlNode("Fallback", "Ticks children in order until one succeeds; resumes from the running child.", adapt(control.NewFallback), nil),
		controlNode("ReactiveSequence", "Re-checks every child from the first on each tick.", adapt(control.NewReactiveSequence), nil),
		controlNode("ReactiveFallback", "Re-checks every child from the first on each tick.", adapt(control.NewReactiveFallback), nil),
		controlNode("Parallel", "Ticks every child and resolves on success and failure thresholds.", adapt(control.NewParallel), control.ParallelPorts()),
		decoratorNode("Inverter", "Swaps SUCCESS and FAILURE.", adapt(control.NewInverter), nil),
		decoratorNode("ForceSuccess", "Turns a completed child into SUCCESS.", adapt(control.NewForceSuccess), nil),
		decoratorNode("ForceFailure", "Turns a completed child into FAILURE.", adapt(control.NewForceFailure), nil),
		decoratorNode("Repeat", "Repeats the child on SUCCESS.", adapt(control.NewRepeat), control.RepeatPorts()),
		decoratorNode("RetryUntilSuccessful", "Retries the child on FAILURE.", adapt(control.NewRetry), control.RetryPorts()),
		decoratorNode("Timeout", "Fails and halts the child when its budget is exceeded.", adapt(control.NewTimeout), control.TimeoutPorts()),
		decoratorNode("Delay", "Waits before ticking the child.", adapt(control.NewDelay), control.DelayPorts()),
		decoratorNode("SkipUnless", "Skips the child when the condition is false.", adapt(control.NewSkipUnless), control.SkipUnlessPorts()),
	}
}

// NewWithBuiltins creates a registry pre-loaded with the built-in control nodes.
func NewWithBuiltins(opts ...Option) *Registry {
	r := NewRegistry(opts...)
	for _, b := range Builtins() {
		_ = r.Register(b.Manifest, b.Constructor) // well-formed by construction
	}
	return r
}
