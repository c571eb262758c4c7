package control

import (
	"context"

	"github.com/aretw0/arbor/pkg/blackboard"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
)

// SubTree wraps the root of another tree definition. The wrapped nodes read and
// write Scope, a blackboard chained to the one of the SubTree node itself.
type SubTree struct {
	decorator
	treeID string
	scope  *blackboard.Blackboard
}

// NewSubTree creates the node that expands tree treeID below root.
func NewSubTree(cfg *node.Config, treeID string, root node.Node, scope *blackboard.Blackboard) (*SubTree, error) {
	s := &SubTree{treeID: treeID, scope: scope}
	if err := s.init(cfg, []node.Node{root}); err != nil {
		return nil, err
	}
	s.Config().Kind = domain.KindSubTree
	return s, nil
}

// TreeID returns the ID of the expanded tree definition.
func (s *SubTree) TreeID() string { return s.treeID }

// Scope returns the blackboard of the expanded tree.
func (s *SubTree) Scope() *blackboard.Blackboard { return s.scope }

func (s *SubTree) Tick(ctx context.Context) (domain.Status, error) {
	status, err := s.tickChild(ctx)
	if err != nil {
		return domain.StatusIdle, err
	}
	s.SetStatus(ctx, status)
	return status, nil
}
