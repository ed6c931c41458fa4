package metrics

import (
	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/physics"
)

// Boundedness is the fraction of steps in which every body stayed within
// radius of the system's center of mass.
type Boundedness struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewBoundedness(radius float64) *Boundedness {
	return &Boundedness{
		name:   "bounded",
		radius: radius,
	}
}

func (b *Boundedness) Name() string {
	return b.name
}

func (b *Boundedness) OnStep(step int, t float64, bodies []dynamo.Body) {
	b.samples++
	com := physics.CenterOfMass(bodies)
	for _, body := range bodies {
		if body.Position.Sub(com).Length() > b.radius {
			b.violations++
			break
		}
	}
}

func (b *Boundedness) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Boundedness) Reset() {
	b.violations = 0
	b.samples = 0
}
