package schema

import (
	"fmt"
	"strings"
)

// Field describes one component of a delimited composite value.
type Field[T any] struct {
	Name string
	Type Type
	Get  func(T) any
	Set  func(*T, any)
}

// StructType converts a Go struct T to and from a delimited literal such as "1.5;-2".
type StructType[T any] struct {
	name      string
	delimiter string
	fields    []Field[T]
}

// Struct creates a composite type whose literal form is its fields joined by delimiter.
//
//	pos := schema.Struct("Position2D", ";",
//	    schema.Field[Position2D]{Name: "x", Type: schema.Float(), Get: ..., Set: ...},
//	    schema.Field[Position2D]{Name: "y", Type: schema.Float(), Get: ..., Set: ...},
//	)
func Struct[T any](name, delimiter string, fields ...Field[T]) Type {
	if delimiter == "" {
		delimiter = ";"
	}
	return &StructType[T]{name: name, delimiter: delimiter, fields: fields}
}

func (t *StructType[T]) Name() string { return t.name }

func (t *StructType[T]) Validate(value any) error {
	switch value.(type) {
	case T, *T:
		return nil
	default:
		return fmt.Errorf("expected %s, got %T", t.name, value)
	}
}

func (t *StructType[T]) Parse(raw string) (any, error) {
	parts := strings.Split(raw, t.delimiter)
	if len(parts) != len(t.fields) {
		return nil, fmt.Errorf("invalid %s format: expected %d fields separated by %q, got %d",
			t.name, len(t.fields), t.delimiter, len(parts))
	}

	var out T
	for i, f := range t.fields {
		v, err := f.Type.Parse(parts[i])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t.name, f.Name, err)
		}
		f.Set(&out, v)
	}
	return out, nil
}

func (t *StructType[T]) Format(value any) (string, error) {
	var v T
	switch tv := value.(type) {
	case T:
		v = tv
	case *T:
		v = *tv
	default:
		return "", fmt.Errorf("expected %s, got %T", t.name, value)
	}

	parts := make([]string, 0, len(t.fields))
	for _, f := range t.fields {
		s, err := f.Type.Format(f.Get(v))
		if err != nil {
			return "", fmt.Errorf("%s.%s: %w", t.name, f.Name, err)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, t.delimiter), nil
}
