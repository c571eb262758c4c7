// Package schema provides the type system behind node ports.
//
// Every port declares a Type. A Type validates values read from or written to
// the blackboard, and converts the literal strings found in a tree definition
// into typed values (Parse) and back (Format).
//
// Built-in types cover string, int, float, bool, duration, any and slices
// (literals delimited by ';'):
//
//	v, err := schema.Int().Parse("42")          // 42
//	v, err = schema.Slice(schema.Float()).Parse("1;2.5") // []any{1.0, 2.5}
//
// Multi-field values are described with Struct:
//
//	pos := schema.Struct("Position2D", ";",
//	    schema.Field[Position2D]{Name: "x", Type: schema.Float(),
//	        Get: func(p Position2D) any { return p.X },
//	        Set: func(p *Position2D, v any) { p.X = v.(float64) }},
//	    schema.Field[Position2D]{Name: "y", Type: schema.Float(),
//	        Get: func(p Position2D) any { return p.Y },
//	        Set: func(p *Position2D, v any) { p.Y = v.(float64) }},
//	)
//
// A Registry maps type tags to Types. Custom port types must be registered
// before a tree that uses them is built.
//
// This package has zero external dependencies beyond the Go standard library.
package schema
