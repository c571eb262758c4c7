package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/loam"
)

// Definition is a definition file as decoded by loam: either a list of trees
// or a single tree with id and root at the top level. Node maps are kept raw
// and handed to the compiler unchanged.
type Definition struct {
	Main  string           `json:"main,omitempty" yaml:"main,omitempty" mapstructure:"main"`
	Trees []map[string]any `json:"trees,omitempty" yaml:"trees,omitempty" mapstructure:"trees"`
	ID    string           `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Root  map[string]any   `json:"root,omitempty" yaml:"root,omitempty" mapstructure:"root"`
}

// TreeIDs returns the IDs of the trees the definition declares.
func (d Definition) TreeIDs() []string {
	var ids []string
	if d.Root != nil {
		ids = append(ids, d.ID)
	}
	for _, t := range d.Trees {
		id, _ := t["id"].(string)
		ids = append(ids, id)
	}
	return ids
}

// Loader implements ports.TreeLoader over a loam repository.
// Every document that declares trees is served; other documents (notes,
// tool configuration) are ignored. The repository is listed on every call
// so edits are picked up without a restart.
type Loader struct {
	Repo *loam.TypedRepository[Definition]
}

// New creates a Loader reading definitions from repo.
func New(repo *loam.TypedRepository[Definition]) *Loader {
	return &Loader{Repo: repo}
}

// NewLoader opens dir as a read-only loam repository.
// Strict mode keeps JSON integers as integers, so port literals render the
// way they were written.
func NewLoader(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	if info, err := os.Stat(absPath); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("tree directory %s is not readable", absPath)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[Definition](repo)), nil
}

// index maps every declared tree ID to the definition declaring it.
func (l *Loader) index(ctx context.Context) (map[string]Definition, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	out := make(map[string]Definition)
	origin := make(map[string]string)
	for _, doc := range docs {
		for _, id := range doc.Data.TreeIDs() {
			if id == "" {
				return nil, &domain.TreeStructureError{Reason: fmt.Sprintf("%s declares a tree without an id", doc.ID)}
			}
			if prev, dup := origin[id]; dup {
				return nil, &domain.TreeStructureError{
					Tree:   id,
					Reason: fmt.Sprintf("declared in both %s and %s", prev, doc.ID),
				}
			}
			origin[id] = doc.ID
			out[id] = doc.Data
		}
	}
	return out, nil
}

// GetTree returns the definition declaring the tree, encoded as JSON.
func (l *Loader) GetTree(ctx context.Context, id string) ([]byte, error) {
	idx, err := l.index(ctx)
	if err != nil {
		return nil, err
	}
	def, ok := idx[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTreeNotFound, id)
	}
	data, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tree %s: %w", id, err)
	}
	return data, nil
}

// ListTrees returns the IDs of every tree declared in the repository.
func (l *Loader) ListTrees(ctx context.Context) ([]string, error) {
	idx, err := l.index(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(idx))
	for id := range idx {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
