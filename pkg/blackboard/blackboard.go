package blackboard

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/schema"
)

// RootPrefix marks a key that always resolves in the root scope.
const RootPrefix = "@"

// Entry is a single type-tagged cell.
type Entry struct {
	Value    any
	Type     schema.Type // nil when the cell is untyped
	Sequence uint64      // bumped on every write; zero means declared but never written
	Stamp    time.Time
}

// Written reports whether a value has been stored in the cell.
func (e *Entry) Written() bool {
	return e != nil && e.Sequence > 0
}

// Blackboard is a scoped, type-checked key/value store. It is safe for concurrent use.
type Blackboard struct {
	mu        sync.RWMutex
	entries   map[string]*Entry
	parent    *Blackboard
	remap     map[string]string
	autoRemap bool
}

// New creates a root blackboard.
func New() *Blackboard {
	return &Blackboard{
		entries: make(map[string]*Entry),
		remap:   make(map[string]string),
	}
}

// NewChild creates a scope chained to parent.
// remap maps internal keys to keys of the parent scope.
func NewChild(parent *Blackboard, remap map[string]string) *Blackboard {
	bb := New()
	bb.parent = parent
	for internal, external := range remap {
		bb.remap[internal] = external
	}
	return bb
}

// Parent returns the enclosing scope, nil for a root blackboard.
func (b *Blackboard) Parent() *Blackboard {
	return b.parent
}

// Root returns the outermost scope.
func (b *Blackboard) Root() *Blackboard {
	root := b
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// AddRemap aliases internal to the parent key external.
func (b *Blackboard) AddRemap(internal, external string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.remap[internal] = external
}

// Remapped returns the parent key aliased by internal.
func (b *Blackboard) Remapped(internal string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	external, ok := b.remap[internal]
	return external, ok
}

// SetAutoRemap makes keys without an explicit remapping fall back to the same
// key of the parent scope. Keys starting with '_' stay private to the scope.
func (b *Blackboard) SetAutoRemap(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.autoRemap = enabled
}

// locate finds the scope and key that own the cell addressed by key.
// Cells held locally win over remappings.
func (b *Blackboard) locate(key string) (*Blackboard, string) {
	if rest, ok := strings.CutPrefix(key, RootPrefix); ok && rest != "" {
		return b.Root(), rest
	}

	b.mu.RLock()
	_, local := b.entries[key]
	external, remapped := b.remap[key]
	auto := b.autoRemap && !strings.HasPrefix(key, "_")
	b.mu.RUnlock()

	switch {
	case local || b.parent == nil:
		return b, key
	case remapped:
		return b.parent.locate(external)
	case auto:
		return b.parent.locate(key)
	default:
		return b, key
	}
}

// GetEntry returns a copy of the cell addressed by key, following remappings.
func (b *Blackboard) GetEntry(key string) (Entry, bool) {
	owner, k := b.locate(key)
	owner.mu.RLock()
	defer owner.mu.RUnlock()
	e, ok := owner.entries[k]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Get returns the value stored under key.
// A declared cell that has never been written is reported as missing.
func (b *Blackboard) Get(key string) (any, bool) {
	e, ok := b.GetEntry(key)
	if !ok || !e.Written() {
		return nil, false
	}
	return e.Value, true
}

// Has reports whether a value has been written under key.
func (b *Blackboard) Has(key string) bool {
	_, ok := b.Get(key)
	return ok
}

// Declare creates the cell for key with a type, without writing a value.
// Declaring an untyped cell with a type upgrades it; conflicting types are rejected.
func (b *Blackboard) Declare(key string, typ schema.Type) error {
	owner, k := b.locate(key)
	owner.mu.Lock()
	defer owner.mu.Unlock()

	e, ok := owner.entries[k]
	if !ok {
		owner.entries[k] = &Entry{Type: typ}
		return nil
	}
	if typ == nil || isAny(typ) || (e.Type != nil && e.Type.Name() == typ.Name()) {
		return nil
	}
	if e.Type != nil && !isAny(e.Type) {
		return fmt.Errorf("blackboard entry '%s' already declared as %s, cannot redeclare as %s", key, e.Type.Name(), typ.Name())
	}
	if e.Written() {
		if err := typ.Validate(e.Value); err != nil {
			return &domain.ConversionError{Port: key, Type: typ.Name(), Value: e.Value, Err: err}
		}
	}
	e.Type = typ
	return nil
}

// Set stores value under key, creating an untyped cell if none exists.
// Writes to typed cells are validated; a string written to a non-string cell is parsed.
func (b *Blackboard) Set(key string, value any) error {
	owner, k := b.locate(key)
	owner.mu.Lock()
	defer owner.mu.Unlock()

	e, ok := owner.entries[k]
	if !ok {
		e = &Entry{}
		owner.entries[k] = e
	}

	v, err := coerce(e.Type, value)
	if err != nil {
		return &domain.ConversionError{Port: key, Type: e.Type.Name(), Value: value, Err: err}
	}

	e.Value = v
	e.Sequence++
	e.Stamp = time.Now()
	return nil
}

// Unset removes the local cell for key, following remappings.
func (b *Blackboard) Unset(key string) {
	owner, k := b.locate(key)
	owner.mu.Lock()
	defer owner.mu.Unlock()
	delete(owner.entries, k)
}

// Keys returns the keys written in this scope, sorted.
func (b *Blackboard) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]string, 0, len(b.entries))
	for k, e := range b.entries {
		if e.Written() {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of the values written in this scope.
func (b *Blackboard) Snapshot() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]any, len(b.entries))
	for k, e := range b.entries {
		if e.Written() {
			out[k] = e.Value
		}
	}
	return out
}

func isAny(t schema.Type) bool {
	_, ok := t.(*schema.AnyType)
	return ok
}

func coerce(typ schema.Type, value any) (any, error) {
	if typ == nil || isAny(typ) {
		return value, nil
	}
	if s, ok := value.(string); ok {
		if _, isString := typ.(*schema.StringType); !isString {
			return typ.Parse(s)
		}
	}
	if err := typ.Validate(value); err != nil {
		return nil, err
	}
	return value, nil
}
