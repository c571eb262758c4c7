package compiler

import (
	"fmt"
	"strconv"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// rawNode mirrors domain.NodeSpec while accepting ports inline next to the
// structural keys. Port values may be scalars of any YAML type.
type rawNode struct {
	Type     string         `mapstructure:"type"`
	Name     string         `mapstructure:"name"`
	Ports    map[string]any `mapstructure:"ports"`
	Children []rawNode      `mapstructure:"children"`
	Inline   map[string]any `mapstructure:",remain"`
}

type rawTree struct {
	ID   string  `mapstructure:"id"`
	Root rawNode `mapstructure:"root"`
}

// rawDocument accepts either a list of trees or a single-tree shorthand
// with id and root at the top level.
type rawDocument struct {
	Main  string    `mapstructure:"main"`
	Trees []rawTree `mapstructure:"trees"`
	ID    string    `mapstructure:"id"`
	Root  *rawNode  `mapstructure:"root"`
}

// Parser is responsible for converting raw bytes into a tree definition document.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes a YAML or JSON document into a domain.Document.
func (p *Parser) Parse(data []byte) (*domain.Document, error) {
	var generic map[string]any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("failed to parse tree definition: %w", err)
	}
	if generic == nil {
		return nil, fmt.Errorf("failed to parse tree definition: empty document")
	}

	var raw rawDocument
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &raw,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		// Keys are case-sensitive, like port names.
		MatchName: func(mapKey, fieldName string) bool { return mapKey == fieldName },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(generic); err != nil {
		return nil, fmt.Errorf("failed to decode tree definition: %w", err)
	}

	if raw.Root != nil {
		raw.Trees = append(raw.Trees, rawTree{ID: raw.ID, Root: *raw.Root})
		if raw.Main == "" {
			raw.Main = raw.ID
		}
	}
	if len(raw.Trees) == 0 {
		return nil, &domain.TreeStructureError{Reason: "document declares no trees"}
	}

	doc := &domain.Document{Main: raw.Main}
	for i, t := range raw.Trees {
		if t.ID == "" {
			return nil, &domain.TreeStructureError{Reason: fmt.Sprintf("tree #%d is missing an id", i)}
		}
		root, err := convertNode(t.ID, t.Root)
		if err != nil {
			return nil, err
		}
		doc.Trees = append(doc.Trees, domain.TreeSpec{ID: t.ID, Root: root})
	}
	return doc, nil
}

func convertNode(treeID string, raw rawNode) (domain.NodeSpec, error) {
	if raw.Type == "" {
		return domain.NodeSpec{}, &domain.TreeStructureError{Tree: treeID, Node: raw.Name, Reason: "node is missing a type"}
	}

	spec := domain.NodeSpec{Type: raw.Type, Name: raw.Name}
	if len(raw.Ports)+len(raw.Inline) > 0 {
		spec.Ports = make(map[string]string, len(raw.Ports)+len(raw.Inline))
	}
	for _, ports := range []map[string]any{raw.Inline, raw.Ports} {
		for name, value := range ports {
			s, err := scalar(value)
			if err != nil {
				return domain.NodeSpec{}, &domain.TreeStructureError{
					Tree:   treeID,
					Node:   spec.DisplayName(),
					Reason: fmt.Sprintf("port [%s]: %v", name, err),
				}
			}
			spec.Ports[name] = s
		}
	}

	for _, child := range raw.Children {
		c, err := convertNode(treeID, child)
		if err != nil {
			return domain.NodeSpec{}, err
		}
		spec.Children = append(spec.Children, c)
	}
	return spec, nil
}

// scalar renders a decoded YAML scalar back into its literal form.
func scalar(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case uint64:
		return strconv.FormatUint(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected a scalar value, got %T", v)
	}
}
