package metrics

import (
	"math"

	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/physics"
)

// MomentumDrift reports the largest change in total linear momentum, in
// kg*m/s, since the first observed step.
type MomentumDrift struct {
	name     string
	initial  dynamo.Vec3
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{
		name: "momentum_drift",
	}
}

func (m *MomentumDrift) Name() string {
	return m.name
}

func (m *MomentumDrift) OnStep(step int, t float64, bodies []dynamo.Body) {
	p := physics.Momentum(bodies)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, p.Sub(m.initial).Length())
}

func (m *MomentumDrift) Value() float64 {
	return m.maxDrift
}

func (m *MomentumDrift) Reset() {
	m.initial = dynamo.Vec3{}
	m.maxDrift = 0
	m.samples = 0
}
