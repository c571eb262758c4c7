package domain

import (
	"strings"

	"github.com/aretw0/arbor/pkg/schema"
)

// PortDirection defines the data flow of a port relative to its node.
type PortDirection string

const (
	PortInput  PortDirection = "input"
	PortOutput PortDirection = "output"
	PortInOut  PortDirection = "inout"
)

// Readable reports whether a node may read through a port with this direction.
func (d PortDirection) Readable() bool { return d == PortInput || d == PortInOut }

// Writable reports whether a node may write through a port with this direction.
func (d PortDirection) Writable() bool { return d == PortOutput || d == PortInOut }

// PortInfo is the static declaration of a port.
type PortInfo struct {
	Name        string
	Direction   PortDirection
	Type        schema.Type // nil means untyped (any)
	Default     string      // literal or {key}, used when the tree definition omits the port
	HasDefault  bool
	Description string
}

// TypeName returns the type tag of the port, "any" when untyped.
func (p PortInfo) TypeName() string {
	if p.Type == nil {
		return "any"
	}
	return p.Type.Name()
}

// WithDefault returns a copy of the port with a default value.
func (p PortInfo) WithDefault(value string) PortInfo {
	p.Default = value
	p.HasDefault = true
	return p
}

func newPort(dir PortDirection, name string, typ schema.Type, description []string) PortInfo {
	return PortInfo{
		Name:        name,
		Direction:   dir,
		Type:        typ,
		Description: strings.Join(description, " "),
	}
}

// InputPort declares a port the node reads from.
func InputPort(name string, typ schema.Type, description ...string) PortInfo {
	return newPort(PortInput, name, typ, description)
}

// OutputPort declares a port the node writes to.
func OutputPort(name string, typ schema.Type, description ...string) PortInfo {
	return newPort(PortOutput, name, typ, description)
}

// BidirectionalPort declares a port the node both reads and writes.
func BidirectionalPort(name string, typ schema.Type, description ...string) PortInfo {
	return newPort(PortInOut, name, typ, description)
}

// PortsList is the ordered list of ports declared by a node type.
type PortsList []PortInfo

// Find returns the port declared with name.
func (l PortsList) Find(name string) (PortInfo, bool) {
	for _, p := range l {
		if p.Name == name {
			return p, true
		}
	}
	return PortInfo{}, false
}

// Names returns the declared port names in declaration order.
func (l PortsList) Names() []string {
	names := make([]string, len(l))
	for i, p := range l {
		names[i] = p.Name
	}
	return names
}

// BindingKind tells how a port obtains its value.
type BindingKind string

const (
	BindingLiteral BindingKind = "literal" // literal string from the tree definition
	BindingKey     BindingKind = "key"     // blackboard reference
	BindingDefault BindingKind = "default" // literal default declared by the node type
)

// Binding associates a declared port with its source.
// It is fixed when the tree is built and resolved on every read.
type Binding struct {
	Port PortInfo
	Kind BindingKind
	Raw  string // literal text, or the original "{key}" reference
	Key  string // blackboard key when Kind == BindingKey
}

// RemapSameName is the SubTree port value meaning "the same key in the parent scope".
const RemapSameName = "="

// BlackboardPointer extracts the key from a "{key}" reference.
func BlackboardPointer(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if len(s) < 3 || s[0] != '{' || s[len(s)-1] != '}' {
		return "", false
	}
	key := strings.TrimSpace(s[1 : len(s)-1])
	if key == "" {
		return "", false
	}
	return key, true
}

// NewBinding classifies a raw port value from a tree definition.
func NewBinding(port PortInfo, raw string) Binding {
	if key, ok := BlackboardPointer(raw); ok {
		return Binding{Port: port, Kind: BindingKey, Raw: raw, Key: key}
	}
	return Binding{Port: port, Kind: BindingLiteral, Raw: raw}
}

// DefaultBinding builds the binding used when the definition omits a port that has a default.
func DefaultBinding(port PortInfo) Binding {
	if key, ok := BlackboardPointer(port.Default); ok {
		return Binding{Port: port, Kind: BindingKey, Raw: port.Default, Key: key}
	}
	return Binding{Port: port, Kind: BindingDefault, Raw: port.Default}
}
