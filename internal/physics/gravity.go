package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/orbsim/internal/dynamo"
)

// G is the Newtonian gravitational constant in m^3 kg^-1 s^-2.
const G = 6.67430e-11

const (
	// DefaultEpsilon is the separation in meters below which a pair is skipped.
	DefaultEpsilon = 1.0

	// parallelThreshold is the body count at which velocity accumulation is
	// split across goroutines.
	parallelThreshold = 256
)

type Options struct {
	G           float64
	Epsilon     float64
	EnableZAxis bool
}

func DefaultOptions() Options {
	return Options{G: G, Epsilon: DefaultEpsilon}
}

// Simulator advances a fixed set of bodies with pairwise Newtonian gravity
// using semi-implicit Euler.
type Simulator struct {
	opts    Options
	bodies  []dynamo.Body
	index   map[string]int
	dv      []dynamo.Vec3
	skipped []int
	steps   int
	t       float64
}

// New copies bodies into a new Simulator. It rejects invalid bodies,
// duplicate names and non-positive G or epsilon.
func New(bodies []dynamo.Body, opts Options) (*Simulator, error) {
	if !(opts.G > 0) || math.IsInf(opts.G, 0) {
		return nil, fmt.Errorf("%w: gravitational constant must be positive, got %g", dynamo.ErrInvalidConfig, opts.G)
	}
	if !(opts.Epsilon > 0) || math.IsInf(opts.Epsilon, 0) {
		return nil, fmt.Errorf("%w: distance epsilon must be positive, got %g", dynamo.ErrInvalidConfig, opts.Epsilon)
	}
	if err := dynamo.ValidateSet(bodies); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(bodies))
	for i, b := range bodies {
		index[b.Name] = i
	}

	return &Simulator{
		opts:    opts,
		bodies:  dynamo.CloneBodies(bodies),
		index:   index,
		dv:      make([]dynamo.Vec3, len(bodies)),
		skipped: make([]int, len(bodies)),
	}, nil
}

// Step advances every body by dt simulated seconds. All velocity deltas are
// computed from the positions at the start of the call; positions move only
// after every velocity has been updated.
func (s *Simulator) Step(dt float64) {
	n := len(s.bodies)

	if n >= parallelThreshold {
		dynamo.ParallelFor(n, parallelThreshold/4, func(start, end int) {
			s.accumulate(start, end, dt)
		})
	} else {
		s.accumulate(0, n, dt)
	}

	for k := range s.bodies {
		b := &s.bodies[k]
		b.Velocity = b.Velocity.Add(s.dv[k])
		b.Position = b.Position.Add(b.Velocity.Scale(dt))
	}

	s.steps++
	s.t += dt
}

// accumulate fills dv[i] for i in [start, end). It reads positions only and
// writes nothing but dv[i] and skipped[i], so disjoint ranges may run
// concurrently.
func (s *Simulator) accumulate(start, end int, dt float64) {
	g, eps := s.opts.G, s.opts.Epsilon

	for i := start; i < end; i++ {
		pi := s.bodies[i].Position
		acc := dynamo.Vec3{}
		skipped := 0

		for j := range s.bodies {
			if i == j {
				continue
			}

			d := s.bodies[j].Position.Sub(pi)
			r := d.Length()
			if !(r >= eps) || math.IsInf(r, 0) {
				skipped++
				continue
			}

			dv := g * s.bodies[j].Mass / (r * r) * dt
			acc = acc.Add(d.Scale(dv / r))
		}

		if !s.opts.EnableZAxis {
			acc.Z = 0
		}
		s.dv[i] = acc
		s.skipped[i] = skipped
	}
}

// Skipped returns the number of ordered pairs ignored by the last Step
// because their separation was below epsilon.
func (s *Simulator) Skipped() int {
	total := 0
	for _, n := range s.skipped {
		total += n
	}
	return total
}

// Bodies returns a copy of the current body states in configuration order.
func (s *Simulator) Bodies() []dynamo.Body {
	return dynamo.CloneBodies(s.bodies)
}

// View returns the live body slice. Callers must not modify it.
func (s *Simulator) View() []dynamo.Body {
	return s.bodies
}

func (s *Simulator) Names() []string {
	names := make([]string, len(s.bodies))
	for i, b := range s.bodies {
		names[i] = b.Name
	}
	return names
}

func (s *Simulator) Lookup(name string) (dynamo.Body, bool) {
	i, ok := s.index[name]
	if !ok {
		return dynamo.Body{}, false
	}
	return s.bodies[i], true
}

func (s *Simulator) Len() int         { return len(s.bodies) }
func (s *Simulator) Steps() int       { return s.steps }
func (s *Simulator) Time() float64    { return s.t }
func (s *Simulator) Options() Options { return s.opts }

// Validate reports the first body whose state is no longer finite.
func (s *Simulator) Validate() error {
	for _, b := range s.bodies {
		if !b.Position.IsValid() || !b.Velocity.IsValid() {
			return &dynamo.SimulationError{Step: s.steps, Time: s.t, Body: b.Name, Wrapped: dynamo.ErrInvalidState}
		}
	}
	return nil
}
