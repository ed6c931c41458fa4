package dynamo

import (
	"fmt"
	"math"
)

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Length() float64      { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{v.Y*o.Z - v.Z*o.Y, v.Z*o.X - v.X*o.Z, v.X*o.Y - v.Y*o.X}
}

func (v Vec3) IsValid() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

// Body is one point mass. Position and velocity are mutated only by the
// physics stepper.
type Body struct {
	Name     string  `json:"name"`
	Mass     float64 `json:"mass"`   // kg
	Radius   float64 `json:"radius"` // m, projected size only
	Position Vec3    `json:"position"`
	Velocity Vec3    `json:"velocity"`
}

// Validate reports the first field that breaks the body invariants.
func (b Body) Validate() error {
	switch {
	case b.Name == "":
		return fmt.Errorf("%w: body name must not be empty", ErrInvalidConfig)
	case !isFinite(b.Mass) || b.Mass <= 0:
		return fmt.Errorf("%w: body %q mass must be positive, got %g", ErrInvalidConfig, b.Name, b.Mass)
	case !isFinite(b.Radius) || b.Radius < 0:
		return fmt.Errorf("%w: body %q radius must be non-negative, got %g", ErrInvalidConfig, b.Name, b.Radius)
	case !b.Position.IsValid():
		return fmt.Errorf("%w: body %q position is not finite", ErrInvalidConfig, b.Name)
	case !b.Velocity.IsValid():
		return fmt.Errorf("%w: body %q velocity is not finite", ErrInvalidConfig, b.Name)
	}
	return nil
}

// Momentum returns mass * velocity.
func (b Body) Momentum() Vec3 {
	return b.Velocity.Scale(b.Mass)
}

// ValidateSet checks every body and rejects duplicate names.
func ValidateSet(bodies []Body) error {
	seen := make(map[string]struct{}, len(bodies))
	for _, b := range bodies {
		if err := b.Validate(); err != nil {
			return err
		}
		if _, ok := seen[b.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateBody, b.Name)
		}
		seen[b.Name] = struct{}{}
	}
	return nil
}

// CloneBodies returns an independent copy of the slice.
func CloneBodies(bodies []Body) []Body {
	c := make([]Body, len(bodies))
	copy(c, bodies)
	return c
}

// Observer is notified after every completed step with the simulated time
// and a read-only view of the bodies.
type Observer interface {
	OnStep(step int, t float64, bodies []Body)
}

// Metric is an Observer that reduces a run to one number.
type Metric interface {
	Observer
	Name() string
	Value() float64
	Reset()
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
