package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStatusChange EventType = "status_change"
	EventTreeTick     EventType = "tree_tick"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	TreeID    string    `json:"tree_id"`
}

// StatusEvent is emitted whenever a node changes status.
type StatusEvent struct {
	EventBase
	UID      int    `json:"uid"`
	Path     string `json:"path"`
	Name     string `json:"name"`
	NodeType string `json:"node_type"`
	Previous Status `json:"previous"`
	Current  Status `json:"current"`
}

// TreeTickEvent is emitted after every tick of the root node.
type TreeTickEvent struct {
	EventBase
	Tick     uint64        `json:"tick"`
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// TickHooks defines callbacks for engine observability.
// Hooks run synchronously inside the tick and must return quickly.
type TickHooks struct {
	OnStatusChange func(context.Context, *StatusEvent)
	OnTreeTick     func(context.Context, *TreeTickEvent)
}

// Merge combines hooks so that both sets are invoked, h first.
func (h TickHooks) Merge(other TickHooks) TickHooks {
	return TickHooks{
		OnStatusChange: chain(h.OnStatusChange, other.OnStatusChange),
		OnTreeTick:     chain(h.OnTreeTick, other.OnTreeTick),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}

// NodeSnapshot is a point-in-time view of one node.
type NodeSnapshot struct {
	UID    int      `json:"uid"`
	Parent int      `json:"parent"` // -1 for the root
	Path   string   `json:"path"`
	Name   string   `json:"name"`
	Type   string   `json:"type"`
	Kind   NodeKind `json:"kind"`
	Status Status   `json:"status"`
}

// TreeSnapshot is a point-in-time view of a tree instance.
// It is safe to produce concurrently with ticking.
type TreeSnapshot struct {
	ID         string         `json:"id"`
	Tree       string         `json:"tree"`
	Status     Status         `json:"status"`
	Ticks      uint64         `json:"ticks"`
	Nodes      []NodeSnapshot `json:"nodes"`
	Blackboard map[string]any `json:"blackboard,omitempty"`
}
