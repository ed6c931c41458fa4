package physics

import (
	"math"

	"github.com/san-kum/orbsim/internal/dynamo"
)

// Energy returns total kinetic plus gravitational potential energy in joules.
// Pairs closer than eps are left out of the potential, matching Step.
func Energy(bodies []dynamo.Body, g, eps float64) float64 {
	ke := 0.0
	pe := 0.0

	for i, bi := range bodies {
		ke += 0.5 * bi.Mass * bi.Velocity.Dot(bi.Velocity)

		for j := i + 1; j < len(bodies); j++ {
			r := bodies[j].Position.Sub(bi.Position).Length()
			if r < eps {
				continue
			}
			pe -= g * bi.Mass * bodies[j].Mass / r
		}
	}

	return ke + pe
}

func Momentum(bodies []dynamo.Body) dynamo.Vec3 {
	var p dynamo.Vec3
	for _, b := range bodies {
		p = p.Add(b.Momentum())
	}
	return p
}

// AngularMomentum returns the z component of the total angular momentum
// about the world origin.
func AngularMomentum(bodies []dynamo.Body) float64 {
	L := 0.0
	for _, b := range bodies {
		L += b.Mass * b.Position.Cross(b.Velocity).Z
	}
	return L
}

// CenterOfMass returns the mass-weighted mean position.
func CenterOfMass(bodies []dynamo.Body) dynamo.Vec3 {
	var c dynamo.Vec3
	total := 0.0
	for _, b := range bodies {
		c = c.Add(b.Position.Scale(b.Mass))
		total += b.Mass
	}
	if total == 0 {
		return dynamo.Vec3{}
	}
	return c.Scale(1 / total)
}

// CircularSpeed is the speed of a circular orbit of radius r around mass m.
func CircularSpeed(g, m, r float64) float64 {
	if r <= 0 {
		return 0
	}
	return math.Sqrt(g * m / r)
}
