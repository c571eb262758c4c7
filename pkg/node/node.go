package node

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/blackboard"
	"github.com/aretw0/arbor/pkg/domain"
)

// Node is the common contract of every tree node.
type Node interface {
	// Tick evaluates the node for the current cycle.
	// An error aborts the tick of the whole tree; a FAILURE status does not.
	Tick(ctx context.Context) (domain.Status, error)
	// Halt cancels a RUNNING node and resets it to IDLE. It is idempotent.
	Halt(ctx context.Context)
	Status() domain.Status
	Name() string
	Kind() domain.NodeKind
	Config() *Config
}

// Parent is implemented by nodes that own children.
type Parent interface {
	Children() []Node
}

// Config is the per-instance configuration assembled by the tree builder.
type Config struct {
	Name       string
	Type       string
	Kind       domain.NodeKind
	UID        int    // position in the tree arena, unique per tree instance
	Path       string // slash-separated names from the root, unique per tree instance
	TreeID     string
	Blackboard *blackboard.Blackboard
	Bindings   map[string]domain.Binding
	Ports      domain.PortsList
	Logger     *slog.Logger
	Hooks      domain.TickHooks
	Clock      func() time.Time
}

// Now returns the current time according to the configured clock.
func (c *Config) Now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

// Base carries the configuration and status shared by every node.
// Embed it and call Init before use.
type Base struct {
	cfg    *Config
	status atomic.Value
}

// Init binds the node to its configuration and sets it IDLE.
func (b *Base) Init(cfg *Config) {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Blackboard == nil {
		cfg.Blackboard = blackboard.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if cfg.Bindings == nil {
		cfg.Bindings = make(map[string]domain.Binding)
	}
	b.cfg = cfg
	b.status.Store(domain.StatusIdle)
}

func (b *Base) Config() *Config { return b.cfg }

func (b *Base) Name() string { return b.cfg.Name }

func (b *Base) Kind() domain.NodeKind { return b.cfg.Kind }

// Logger returns the node logger enriched with its identity.
func (b *Base) Logger() *slog.Logger {
	return b.cfg.Logger.With("node", b.cfg.Name, "uid", b.cfg.UID)
}

// Status returns the status of the last tick.
func (b *Base) Status() domain.Status {
	s, _ := b.status.Load().(domain.Status)
	if s == "" {
		return domain.StatusIdle
	}
	return s
}

// SetStatus records a new status and notifies the status hook on change.
func (b *Base) SetStatus(ctx context.Context, s domain.Status) {
	prev := b.Status()
	b.status.Store(s)
	if prev == s {
		return
	}
	if hook := b.cfg.Hooks.OnStatusChange; hook != nil {
		hook(ctx, &domain.StatusEvent{
			EventBase: domain.EventBase{
				Timestamp: time.Now(),
				Type:      domain.EventStatusChange,
				TreeID:    b.cfg.TreeID,
			},
			UID:      b.cfg.UID,
			Path:     b.cfg.Path,
			Name:     b.cfg.Name,
			NodeType: b.cfg.Type,
			Previous: prev,
			Current:  s,
		})
	}
}

// ResetStatus sets the node back to IDLE.
func (b *Base) ResetStatus(ctx context.Context) {
	b.SetStatus(ctx, domain.StatusIdle)
}
