package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Type defines the contract for a port type.
// Implementations determine how values are validated against a type and how
// literal strings coming from a tree definition are converted into values.
type Type interface {
	// Name returns the type tag (e.g., "string", "int", "Position2D").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
	// Parse converts a literal string into a value of this type.
	Parse(raw string) (any, error)
	// Format converts a value of this type back into its literal form.
	Format(value any) (string, error)
}

// --- Built-in Type Implementations ---

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	_, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

func (t *StringType) Parse(raw string) (any, error) { return raw, nil }

func (t *StringType) Format(value any) (string, error) {
	if err := t.Validate(value); err != nil {
		return "", err
	}
	return value.(string), nil
}

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	case float64:
		// Accept floats that are whole numbers (from JSON unmarshaling)
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

func (t *IntType) Parse(raw string) (any, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid int %q: %w", raw, err)
	}
	return n, nil
}

func (t *IntType) Format(value any) (string, error) {
	if err := t.Validate(value); err != nil {
		return "", err
	}
	return fmt.Sprint(value), nil
}

// FloatType validates floating-point values.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64:
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

func (t *FloatType) Parse(raw string) (any, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid float %q: %w", raw, err)
	}
	return f, nil
}

func (t *FloatType) Format(value any) (string, error) {
	if err := t.Validate(value); err != nil {
		return "", err
	}
	f := reflect.ValueOf(value)
	if f.CanFloat() {
		return strconv.FormatFloat(f.Float(), 'g', -1, 64), nil
	}
	return fmt.Sprint(value), nil
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

func (t *BoolType) Parse(raw string) (any, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid bool %q: %w", raw, err)
	}
	return b, nil
}

func (t *BoolType) Format(value any) (string, error) {
	if err := t.Validate(value); err != nil {
		return "", err
	}
	return strconv.FormatBool(value.(bool)), nil
}

// DurationType validates time.Duration values.
// Literals use Go duration syntax ("250ms"); a bare integer is read as milliseconds.
type DurationType struct{}

func (t *DurationType) Name() string { return "duration" }

func (t *DurationType) Validate(value any) error {
	if _, ok := value.(time.Duration); !ok {
		return fmt.Errorf("expected duration, got %T", value)
	}
	return nil
}

func (t *DurationType) Parse(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	return d, nil
}

func (t *DurationType) Format(value any) (string, error) {
	if err := t.Validate(value); err != nil {
		return "", err
	}
	return value.(time.Duration).String(), nil
}

// AnyType accepts every value and keeps literals as plain strings.
type AnyType struct{}

func (t *AnyType) Name() string                  { return "any" }
func (t *AnyType) Validate(value any) error      { return nil }
func (t *AnyType) Parse(raw string) (any, error) { return raw, nil }
func (t *AnyType) Format(value any) (string, error) {
	return fmt.Sprint(value), nil
}

// SliceType validates slices of a specific element type.
// Literals are split on ';' and each part is parsed by the element type.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}

	// Validate each element
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

func (t *SliceType) Parse(raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return []any{}, nil
	}
	parts := strings.Split(raw, ";")
	out := make([]any, 0, len(parts))
	for i, part := range parts {
		v, err := t.elemType.Parse(part)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (t *SliceType) Format(value any) (string, error) {
	if err := t.Validate(value); err != nil {
		return "", err
	}
	rv := reflect.ValueOf(value)
	parts := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		s, err := t.elemType.Format(rv.Index(i).Interface())
		if err != nil {
			return "", fmt.Errorf("element %d: %w", i, err)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ";"), nil
}

// CustomType applies a user-defined validation function.
// It has no literal form: Parse always fails.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

func (t *CustomType) Parse(raw string) (any, error) {
	return nil, fmt.Errorf("type %s has no string conversion", t.name)
}

func (t *CustomType) Format(value any) (string, error) {
	return "", fmt.Errorf("type %s has no string conversion", t.name)
}

// ConverterType binds a Go type T to a pair of conversion functions.
type ConverterType[T any] struct {
	name   string
	parse  func(string) (T, error)
	format func(T) string
}

func (t *ConverterType[T]) Name() string { return t.name }

func (t *ConverterType[T]) Validate(value any) error {
	if _, ok := value.(T); !ok {
		return fmt.Errorf("expected %s, got %T", t.name, value)
	}
	return nil
}

func (t *ConverterType[T]) Parse(raw string) (any, error) {
	v, err := t.parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", t.name, raw, err)
	}
	return v, nil
}

func (t *ConverterType[T]) Format(value any) (string, error) {
	v, ok := value.(T)
	if !ok {
		return "", fmt.Errorf("expected %s, got %T", t.name, value)
	}
	if t.format == nil {
		return fmt.Sprint(v), nil
	}
	return t.format(v), nil
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// Float creates a float type validator.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Duration creates a time.Duration type validator.
func Duration() Type { return &DurationType{} }

// Any creates a type that accepts any value.
func Any() Type { return &AnyType{} }

// Slice creates a slice type validator for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}

// Converter creates a type for T from a parse function and an optional format function.
// If format is nil, fmt.Sprint is used.
func Converter[T any](name string, parse func(string) (T, error), format func(T) string) Type {
	return &ConverterType[T]{name: name, parse: parse, format: format}
}

// builtinType resolves the type tags known without a registry.
func builtinType(typeStr string) (Type, bool) {
	switch typeStr {
	case "string":
		return String(), true
	case "int":
		return Int(), true
	case "float":
		return Float(), true
	case "bool":
		return Bool(), true
	case "duration":
		return Duration(), true
	case "any", "":
		return Any(), true
	default:
		return nil, false
	}
}
