package blockkit

import "math"

// Default stage geometry
const (
	DefaultHalfExtent = 150.0
	DefaultMargin     = 20.0
	DefaultTolerance  = 20.0
)

// World is the static geometry sensing predicates are evaluated against.
// It is read-only for the duration of a run.
type World struct {
	HalfExtent float64 // half the stage width and height
	Margin     float64 // keeps the sprite body inside the stage
	Tolerance  float64 // per-axis proximity for obstacle and goal
	Obstacle   *Vec    // nil when the level has no obstacle
	Goal       *Vec    // nil when the level has no goal
}

// DefaultWorld returns the default stage with no obstacle and no goal
func DefaultWorld() World {
	return World{
		HalfExtent: DefaultHalfExtent,
		Margin:     DefaultMargin,
		Tolerance:  DefaultTolerance,
	}
}

// Limit is the largest absolute coordinate the actor may reach on either axis
func (w World) Limit() float64 {
	return w.HalfExtent - w.Margin
}

// Clamp pins p inside [-Limit, Limit] on each axis independently
func (w World) Clamp(p Vec) Vec {
	limit := w.Limit()
	return Vec{
		X: min(max(p.X, -limit), limit),
		Y: min(max(p.Y, -limit), limit),
	}
}

// Sense evaluates a sensing predicate. Unknown predicates are false.
func (w World) Sense(pred Predicate, a Actor) bool {
	switch pred {
	case TouchingEdge:
		limit := w.Limit()
		return math.Abs(a.Position.X) >= limit || math.Abs(a.Position.Y) >= limit
	case TouchingObstacle:
		return w.near(w.Obstacle, a.Position)
	case AtGoal:
		return w.near(w.Goal, a.Position)
	default:
		return false
	}
}

func (w World) near(target *Vec, p Vec) bool {
	if target == nil {
		return false
	}
	return math.Abs(p.X-target.X) <= w.Tolerance && math.Abs(p.Y-target.Y) <= w.Tolerance
}

// Step returns the position after moving steps along heading, before clamping
func Step(p Vec, heading int, steps float64) Vec {
	rad := float64(heading) * math.Pi / 180
	return Vec{
		X: p.X + steps*math.Cos(rad),
		Y: p.Y + steps*math.Sin(rad),
	}
}
