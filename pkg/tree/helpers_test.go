package tree

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
)

// tickLog records how many times each leaf instance was ticked.
type tickLog struct {
	mu     sync.Mutex
	counts map[string]int
}

func newTickLog() *tickLog {
	return &tickLog{counts: make(map[string]int)}
}

func (l *tickLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[name]++
}

func (l *tickLog) get(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[name]
}

// returning builds a synchronous tick function with a fixed result.
func returning(log *tickLog, status domain.Status) node.TickFunc {
	return func(_ context.Context, self node.Node) (domain.Status, error) {
		log.add(self.Name())
		return status, nil
	}
}

// pending is a stateful behavior that stays RUNNING for a number of
// OnRunning calls before succeeding. A negative budget never completes.
type pending struct {
	budget  int32
	starts  atomic.Int32
	running atomic.Int32
	halts   atomic.Int32
}

func (p *pending) OnStart(context.Context, node.Node) (domain.Status, error) {
	p.starts.Add(1)
	if p.budget == 0 {
		return domain.StatusSuccess, nil
	}
	return domain.StatusRunning, nil
}

func (p *pending) OnRunning(context.Context, node.Node) (domain.Status, error) {
	n := p.running.Add(1)
	if p.budget > 0 && n >= p.budget {
		return domain.StatusSuccess, nil
	}
	return domain.StatusRunning, nil
}

func (p *pending) OnHalted(context.Context, node.Node) {
	p.halts.Add(1)
}

func (p *pending) ticks() int32 {
	return p.starts.Load() + p.running.Load()
}

func seq(name string, children ...domain.NodeSpec) domain.NodeSpec {
	return domain.NodeSpec{Type: "Sequence", Name: name, Children: children}
}

func leafSpec(typ, name string) domain.NodeSpec {
	return domain.NodeSpec{Type: typ, Name: name}
}

func docOf(trees ...domain.TreeSpec) *domain.Document {
	return &domain.Document{Trees: trees}
}
