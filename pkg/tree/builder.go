package tree

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/arbor/pkg/blackboard"
	"github.com/aretw0/arbor/pkg/control"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/node"
	"github.com/aretw0/arbor/pkg/schema"
	"github.com/google/uuid"
)

// CreateTree builds tree id of doc. An empty id selects the main tree.
// Every structural problem is reported as a *domain.TreeStructureError.
func (f *Factory) CreateTree(doc *domain.Document, id string) (*Tree, error) {
	if doc == nil {
		return nil, &domain.TreeStructureError{Reason: "nil tree document"}
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}
	if id == "" {
		id = doc.MainID()
		if id == "" {
			return nil, &domain.TreeStructureError{Reason: "document has several trees and no main tree: specify a tree id"}
		}
	}
	spec, ok := doc.Tree(id)
	if !ok {
		return nil, &domain.TreeStructureError{Tree: id, Reason: "unknown tree", Err: domain.ErrTreeNotFound}
	}

	t := &Tree{
		id:     uuid.NewString(),
		name:   id,
		bb:     blackboard.New(),
		hooks:  f.hooks,
		logger: f.logger.With("tree", id),
	}
	b := &builder{
		factory: f,
		doc:     doc,
		tree:    t,
		paths:   make(map[string]struct{}),
		stack:   []string{id},
	}
	root, err := b.build(id, spec.Root, t.bb, -1, "", 0)
	if err != nil {
		return nil, err
	}
	t.root = root

	f.logger.Debug("tree created", "tree", id, "instance", t.id, "nodes", len(t.nodes))
	return t, nil
}

func validateDocument(doc *domain.Document) error {
	seen := make(map[string]struct{}, len(doc.Trees))
	for i, t := range doc.Trees {
		if t.ID == "" {
			return &domain.TreeStructureError{Reason: fmt.Sprintf("tree #%d is missing an id", i)}
		}
		if _, dup := seen[t.ID]; dup {
			return &domain.TreeStructureError{Tree: t.ID, Reason: "duplicate tree id"}
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

// builder expands one tree definition, subtrees included, into a Tree arena.
type builder struct {
	factory *Factory
	doc     *domain.Document
	tree    *Tree
	paths   map[string]struct{}
	stack   []string // definition ids being expanded, outermost first
}

func structureError(treeID, nodeName, format string, args ...any) error {
	return &domain.TreeStructureError{Tree: treeID, Node: nodeName, Reason: fmt.Sprintf(format, args...)}
}

// build reserves the UID of spec before its children, keeping the arena in pre-order.
func (b *builder) build(defID string, spec domain.NodeSpec, bb *blackboard.Blackboard, parent int, parentPath string, depth int) (node.Node, error) {
	t := b.tree
	uid := len(t.nodes)
	t.nodes = append(t.nodes, nil)
	t.parents = append(t.parents, parent)
	t.depths = append(t.depths, depth)

	name := spec.DisplayName()
	path := parentPath + "/" + name
	if _, taken := b.paths[path]; taken {
		path = fmt.Sprintf("%s#%d", path, uid)
	}
	b.paths[path] = struct{}{}

	cfg := &node.Config{
		Name:       name,
		Type:       spec.Type,
		UID:        uid,
		Path:       path,
		TreeID:     t.id,
		Blackboard: bb,
		Logger:     b.factory.logger,
		Hooks:      b.factory.hooks,
		Clock:      b.factory.clock,
	}

	var (
		n   node.Node
		err error
	)
	if spec.Type == domain.NodeTypeSubTree {
		n, err = b.buildSubTree(defID, spec, cfg, depth)
	} else {
		n, err = b.buildNode(defID, spec, cfg, depth)
	}
	if err != nil {
		return nil, err
	}
	t.nodes[uid] = n
	return n, nil
}

func (b *builder) buildNode(defID string, spec domain.NodeSpec, cfg *node.Config, depth int) (node.Node, error) {
	m, ctor, ok := b.factory.nodes.Lookup(spec.Type)
	if !ok {
		return nil, structureError(defID, cfg.Name, "unknown node type '%s'", spec.Type)
	}
	cfg.Kind = m.Kind
	cfg.Ports = m.Ports

	bindings, err := b.bind(defID, cfg.Name, m.Ports, spec.Ports)
	if err != nil {
		return nil, err
	}
	cfg.Bindings = bindings

	if err := checkArity(defID, cfg.Name, m.Kind, len(spec.Children)); err != nil {
		return nil, err
	}

	children := make([]node.Node, 0, len(spec.Children))
	for _, c := range spec.Children {
		child, err := b.build(defID, c, cfg.Blackboard, cfg.UID, cfg.Path, depth+1)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	n, err := ctor(cfg, children)
	if err != nil {
		var tse *domain.TreeStructureError
		if errors.As(err, &tse) {
			if tse.Tree == "" {
				tse.Tree = defID
			}
			if tse.Node == "" {
				tse.Node = cfg.Name
			}
			return nil, err
		}
		return nil, &domain.TreeStructureError{Tree: defID, Node: cfg.Name, Reason: "cannot create node", Err: err}
	}
	if n == nil {
		return nil, structureError(defID, cfg.Name, "constructor of '%s' returned no node", spec.Type)
	}
	return n, nil
}

func checkArity(defID, name string, kind domain.NodeKind, got int) error {
	switch kind {
	case domain.KindControl:
		if got == 0 {
			return structureError(defID, name, "control node must have at least one child")
		}
	case domain.KindDecorator:
		if got != 1 {
			return structureError(defID, name, "decorator must have exactly one child, got %d", got)
		}
	default:
		if got > 0 {
			return structureError(defID, name, "%s node cannot have children", kind)
		}
	}
	return nil
}

// bind validates the ports written in the definition against the manifest and
// materializes defaults for the omitted ones.
func (b *builder) bind(defID, nodeName string, declared domain.PortsList, raw map[string]string) (map[string]domain.Binding, error) {
	types := b.factory.types
	for _, p := range declared {
		if !types.Known(p.Type) {
			return nil, structureError(defID, nodeName, "port [%s] uses unregistered type '%s'", p.Name, p.TypeName())
		}
	}

	out := make(map[string]domain.Binding, len(declared))
	for _, name := range sortedKeys(raw) {
		p, ok := declared.Find(name)
		if !ok {
			return nil, structureError(defID, nodeName, "unknown port [%s]", name)
		}
		value := raw[name]
		if value == domain.RemapSameName {
			value = "{" + name + "}"
		}
		bnd := domain.NewBinding(p, value)
		if bnd.Kind == domain.BindingLiteral && !p.Direction.Readable() {
			return nil, structureError(defID, nodeName, "output port [%s] cannot take the literal '%s'", name, value)
		}
		out[name] = bnd
	}

	for _, p := range declared {
		if _, ok := out[p.Name]; !ok && p.HasDefault {
			out[p.Name] = domain.DefaultBinding(p)
		}
	}
	return out, nil
}

// subTreePorts describes the ports understood by SubTree nodes.
var subTreePorts = domain.PortsList{
	domain.InputPort(domain.PortSubTreeID, schema.String(), "ID of the tree to expand"),
	domain.InputPort(domain.PortAutoRemap, schema.Bool(), "share every key with the parent scope").WithDefault("false"),
}

func (b *builder) buildSubTree(defID string, spec domain.NodeSpec, cfg *node.Config, depth int) (node.Node, error) {
	cfg.Kind = domain.KindSubTree
	cfg.Ports = subTreePorts

	if len(spec.Children) > 0 {
		return nil, structureError(defID, cfg.Name, "SubTree node cannot declare children")
	}
	id := spec.Ports[domain.PortSubTreeID]
	if id == "" {
		return nil, structureError(defID, cfg.Name, "SubTree node requires the [%s] port", domain.PortSubTreeID)
	}
	sub, ok := b.doc.Tree(id)
	if !ok {
		return nil, &domain.TreeStructureError{
			Tree: defID, Node: cfg.Name,
			Reason: fmt.Sprintf("unknown subtree '%s'", id),
			Err:    domain.ErrTreeNotFound,
		}
	}
	if slices.Contains(b.stack, id) {
		chain := strings.Join(append(slices.Clone(b.stack), id), " -> ")
		return nil, structureError(defID, cfg.Name, "recursive subtree reference: %s", chain)
	}

	scope := blackboard.NewChild(cfg.Blackboard, nil)
	cfg.Bindings = map[string]domain.Binding{
		domain.PortSubTreeID: domain.NewBinding(subTreePorts[0], id),
	}
	for _, name := range sortedKeys(spec.Ports) {
		value := spec.Ports[name]
		switch {
		case name == domain.PortSubTreeID:
		case name == domain.PortAutoRemap:
			enabled, err := strconv.ParseBool(strings.TrimSpace(value))
			if err != nil {
				return nil, &domain.TreeStructureError{Tree: defID, Node: cfg.Name, Reason: fmt.Sprintf("invalid [%s] value '%s'", name, value), Err: err}
			}
			scope.SetAutoRemap(enabled)
			cfg.Bindings[name] = domain.NewBinding(subTreePorts[1], value)
		case value == domain.RemapSameName:
			scope.AddRemap(name, name)
		default:
			if key, ok := domain.BlackboardPointer(value); ok {
				scope.AddRemap(name, key)
				continue
			}
			if err := scope.Set(name, value); err != nil {
				return nil, &domain.TreeStructureError{Tree: defID, Node: cfg.Name, Reason: fmt.Sprintf("cannot set [%s]", name), Err: err}
			}
		}
	}

	b.stack = append(b.stack, id)
	root, err := b.build(id, sub.Root, scope, cfg.UID, cfg.Path, depth+1)
	b.stack = b.stack[:len(b.stack)-1]
	if err != nil {
		return nil, err
	}

	n, err := control.NewSubTree(cfg, id, root, scope)
	if err != nil {
		return nil, &domain.TreeStructureError{Tree: defID, Node: cfg.Name, Reason: "cannot create subtree", Err: err}
	}
	return n, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
