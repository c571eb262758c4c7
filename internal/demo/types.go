package demo

import "github.com/aretw0/arbor/pkg/schema"

// Position2D is a point on the map, written "x;y" in tree definitions.
type Position2D struct {
	X, Y float64
}

// Pose2D is a position plus heading, written "x;y;theta".
type Pose2D struct {
	X, Y, Theta float64
}

// PositionType converts Position2D literals.
func PositionType() schema.Type {
	return schema.Struct("Position2D", ";",
		schema.Field[Position2D]{Name: "x", Type: schema.Float(),
			Get: func(p Position2D) any { return p.X },
			Set: func(p *Position2D, v any) { p.X = v.(float64) }},
		schema.Field[Position2D]{Name: "y", Type: schema.Float(),
			Get: func(p Position2D) any { return p.Y },
			Set: func(p *Position2D, v any) { p.Y = v.(float64) }},
	)
}

// PoseType converts Pose2D literals.
func PoseType() schema.Type {
	return schema.Struct("Pose2D", ";",
		schema.Field[Pose2D]{Name: "x", Type: schema.Float(),
			Get: func(p Pose2D) any { return p.X },
			Set: func(p *Pose2D, v any) { p.X = v.(float64) }},
		schema.Field[Pose2D]{Name: "y", Type: schema.Float(),
			Get: func(p Pose2D) any { return p.Y },
			Set: func(p *Pose2D, v any) { p.Y = v.(float64) }},
		schema.Field[Pose2D]{Name: "theta", Type: schema.Float(),
			Get: func(p Pose2D) any { return p.Theta },
			Set: func(p *Pose2D, v any) { p.Theta = v.(float64) }},
	)
}
