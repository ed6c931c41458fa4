// Package physics advances a set of gravitating point masses.
//
// [Simulator] integrates pairwise Newtonian gravity with semi-implicit Euler:
// every body's velocity is updated from one position snapshot, then every
// position moves with its new velocity.
//
//	sim, err := physics.New(bodies, physics.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	sim.Step(timeScale / float64(fps))
//
// # Planar Mode
//
// By default the z component of every velocity delta is dropped, so the
// system evolves in the xy-plane even though bodies carry 3D vectors. Set
// [Options.EnableZAxis] to apply gravity on all three axes.
//
// # Diagnostics
//
// [Energy], [Momentum] and [AngularMomentum] measure integration drift. The
// scheme is first order and does not conserve them exactly.
package physics
