package control

import (
	"context"
	"time"

	"github.com/aretw0/arbor/pkg/blackboard"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
)

// scripted is a stateful leaf returning a scripted status per tick.
// Once the script is exhausted the last status repeats.
type scripted struct {
	script  []domain.Status
	ticks   int
	starts  int
	halts   int
	current int
}

func (s *scripted) next() domain.Status {
	s.ticks++
	st := s.script[min(s.current, len(s.script)-1)]
	s.current++
	return st
}

func (s *scripted) OnStart(context.Context, node.Node) (domain.Status, error) {
	s.starts++
	return s.next(), nil
}

func (s *scripted) OnRunning(context.Context, node.Node) (domain.Status, error) {
	return s.next(), nil
}

func (s *scripted) OnHalted(context.Context, node.Node) {
	s.halts++
}

func leaf(name string, script ...domain.Status) (*node.StatefulAction, *scripted) {
	b := &scripted{script: script}
	return node.NewStatefulAction(&node.Config{Name: name, Type: "Scripted"}, b), b
}

func cfg(name, typ string, ports domain.PortsList, raw map[string]string) *node.Config {
	bindings := make(map[string]domain.Binding)
	for port, value := range raw {
		info, _ := ports.Find(port)
		bindings[port] = domain.NewBinding(info, value)
	}
	return &node.Config{
		Name:       name,
		Type:       typ,
		Ports:      ports,
		Bindings:   bindings,
		Blackboard: blackboard.New(),
	}
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func tickN(n node.Node, times int) ([]domain.Status, error) {
	var out []domain.Status
	for i := 0; i < times; i++ {
		st, err := n.Tick(context.Background())
		if err != nil {
			return out, err
		}
		out = append(out, st)
	}
	return out, nil
}
