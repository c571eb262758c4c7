package domain

// NodeSpec is the structural description of one node in a tree definition.
// The engine does not care about the concrete syntax it was parsed from.
type NodeSpec struct {
	Type     string            `json:"type" yaml:"type" mapstructure:"type"`
	Name     string            `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Ports    map[string]string `json:"ports,omitempty" yaml:"ports,omitempty" mapstructure:"ports"`
	Children []NodeSpec        `json:"children,omitempty" yaml:"children,omitempty" mapstructure:"children"`
}

// DisplayName returns the instance name, falling back to the node type.
func (n NodeSpec) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.Type
}

// TreeSpec is a named tree definition.
type TreeSpec struct {
	ID   string   `json:"id" yaml:"id" mapstructure:"id"`
	Root NodeSpec `json:"root" yaml:"root" mapstructure:"root"`
}

// Document groups the tree definitions loaded together.
// Main names the tree instantiated when no explicit ID is requested.
type Document struct {
	Main  string     `json:"main,omitempty" yaml:"main,omitempty" mapstructure:"main"`
	Trees []TreeSpec `json:"trees" yaml:"trees" mapstructure:"trees"`
}

// Tree returns the definition with the given ID.
func (d *Document) Tree(id string) (TreeSpec, bool) {
	for _, t := range d.Trees {
		if t.ID == id {
			return t, true
		}
	}
	return TreeSpec{}, false
}

// MainID resolves the tree to instantiate by default.
// With no explicit Main, a single-tree document uses its only tree.
func (d *Document) MainID() string {
	if d.Main != "" {
		return d.Main
	}
	if len(d.Trees) == 1 {
		return d.Trees[0].ID
	}
	return ""
}
