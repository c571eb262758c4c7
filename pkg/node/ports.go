package node

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/schema"
)

// binding returns the binding of a declared port, falling back to its default.
func binding(cfg *Config, port string) (domain.Binding, bool, error) {
	if b, ok := cfg.Bindings[port]; ok {
		return b, true, nil
	}
	info, ok := cfg.Ports.Find(port)
	if !ok {
		return domain.Binding{}, false, fmt.Errorf("node '%s': port [%s] is not declared by %s", cfg.Name, port, cfg.Type)
	}
	if info.HasDefault {
		return domain.DefaultBinding(info), true, nil
	}
	return domain.Binding{Port: info}, false, nil
}

// GetInputAny resolves an input port to its current value.
func GetInputAny(n Node, port string) (any, error) {
	cfg := n.Config()
	b, bound, err := binding(cfg, port)
	if err != nil {
		return nil, err
	}
	if !b.Port.Direction.Readable() {
		return nil, fmt.Errorf("node '%s': port [%s] is an output port", cfg.Name, port)
	}
	if !bound {
		return nil, &domain.MissingInputError{Node: cfg.Name, Port: port, Reason: "port not bound"}
	}

	typ := b.Port.Type
	if b.Kind == domain.BindingKey {
		v, ok := cfg.Blackboard.Get(b.Key)
		if !ok {
			return nil, &domain.MissingInputError{Node: cfg.Name, Port: port, Key: b.Key, Reason: "key not set"}
		}
		out, err := convertStored(typ, v)
		if err != nil {
			return nil, &domain.ConversionError{Node: cfg.Name, Port: port, Type: b.Port.TypeName(), Value: v, Err: err}
		}
		return out, nil
	}

	if typ == nil {
		return b.Raw, nil
	}
	v, err := typ.Parse(b.Raw)
	if err != nil {
		return nil, &domain.ConversionError{Node: cfg.Name, Port: port, Type: typ.Name(), Value: b.Raw, Err: err}
	}
	return v, nil
}

// GetInput resolves an input port and converts the value to T.
// Numeric values are converted between Go numeric types when no precision
// is lost: fractional floats never become integers and out-of-range values are rejected.
func GetInput[T any](n Node, port string) (T, error) {
	var zero T
	v, err := GetInputAny(n, port)
	if err != nil {
		return zero, err
	}
	if t, ok := v.(T); ok {
		return t, nil
	}

	target := reflect.TypeOf((*T)(nil)).Elem()
	rv := reflect.ValueOf(v)
	if rv.IsValid() && isNumeric(rv.Kind()) && isNumeric(target.Kind()) {
		out, err := convertNumber(rv, target)
		if err != nil {
			return zero, &domain.ConversionError{Node: n.Config().Name, Port: port, Type: target.String(), Value: v, Err: err}
		}
		return out.Interface().(T), nil
	}
	if rv.IsValid() && rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Type() == target {
		return rv.Elem().Interface().(T), nil
	}
	return zero, &domain.ConversionError{
		Node:  n.Config().Name,
		Port:  port,
		Type:  target.String(),
		Value: v,
		Err:   errors.New("incompatible type"),
	}
}

// SetOutput writes value into the blackboard cell bound to an output port.
// The cell is declared with the port type on first write.
func SetOutput(n Node, port string, value any) error {
	cfg := n.Config()
	b, bound, err := binding(cfg, port)
	if err != nil {
		return err
	}
	if !b.Port.Direction.Writable() {
		return fmt.Errorf("node '%s': port [%s] is an input port", cfg.Name, port)
	}
	if !bound {
		return fmt.Errorf("node '%s': output [%s]: %w", cfg.Name, port, domain.ErrUnboundPort)
	}
	if b.Kind != domain.BindingKey {
		return &domain.ConversionError{
			Node:  cfg.Name,
			Port:  port,
			Type:  b.Port.TypeName(),
			Value: value,
			Err:   errors.New("output port bound to a literal"),
		}
	}

	if err := cfg.Blackboard.Declare(b.Key, b.Port.Type); err != nil {
		return fmt.Errorf("node '%s': output [%s]: %w", cfg.Name, port, err)
	}
	if err := cfg.Blackboard.Set(b.Key, value); err != nil {
		var convErr *domain.ConversionError
		if errors.As(err, &convErr) {
			convErr.Node = cfg.Name
			convErr.Port = port
		}
		return err
	}
	return nil
}

func convertStored(typ schema.Type, v any) (any, error) {
	if typ == nil {
		return v, nil
	}
	if _, ok := typ.(*schema.AnyType); ok {
		return v, nil
	}
	if s, ok := v.(string); ok {
		if _, isString := typ.(*schema.StringType); !isString {
			return typ.Parse(s)
		}
	}
	if err := typ.Validate(v); err != nil {
		return nil, err
	}
	return v, nil
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// convertNumber converts between numeric kinds, refusing truncation and overflow.
func convertNumber(rv reflect.Value, target reflect.Type) (reflect.Value, error) {
	out := reflect.New(target).Elem()
	switch {
	case isInt(target.Kind()):
		var i int64
		switch {
		case isInt(rv.Kind()):
			i = rv.Int()
		case isUint(rv.Kind()):
			u := rv.Uint()
			if u > math.MaxInt64 {
				return reflect.Value{}, fmt.Errorf("%d overflows %s", u, target)
			}
			i = int64(u)
		default:
			f := rv.Float()
			if f != math.Trunc(f) || math.IsInf(f, 0) {
				return reflect.Value{}, fmt.Errorf("%v is not an integer", f)
			}
			if f < math.MinInt64 || f >= math.MaxInt64 {
				return reflect.Value{}, fmt.Errorf("%v overflows %s", f, target)
			}
			i = int64(f)
		}
		if out.OverflowInt(i) {
			return reflect.Value{}, fmt.Errorf("%d overflows %s", i, target)
		}
		out.SetInt(i)
	case isUint(target.Kind()):
		var u uint64
		switch {
		case isInt(rv.Kind()):
			i := rv.Int()
			if i < 0 {
				return reflect.Value{}, fmt.Errorf("%d is negative", i)
			}
			u = uint64(i)
		case isUint(rv.Kind()):
			u = rv.Uint()
		default:
			f := rv.Float()
			if f != math.Trunc(f) || math.IsInf(f, 0) {
				return reflect.Value{}, fmt.Errorf("%v is not an integer", f)
			}
			if f < 0 || f >= math.MaxUint64 {
				return reflect.Value{}, fmt.Errorf("%v overflows %s", f, target)
			}
			u = uint64(f)
		}
		if out.OverflowUint(u) {
			return reflect.Value{}, fmt.Errorf("%d overflows %s", u, target)
		}
		out.SetUint(u)
	default:
		var f float64
		switch {
		case isInt(rv.Kind()):
			f = float64(rv.Int())
		case isUint(rv.Kind()):
			f = float64(rv.Uint())
		default:
			f = rv.Float()
		}
		if out.OverflowFloat(f) {
			return reflect.Value{}, fmt.Errorf("%v overflows %s", f, target)
		}
		out.SetFloat(f)
	}
	return out, nil
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
