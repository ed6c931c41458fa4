// Package dynamo provides the core primitives shared by the orbital simulation.
//
// The package defines the plain data the rest of the module passes around:
//
//   - [Vec3]: three-component world vector (meters, meters/second)
//   - [Body]: passive point-mass record (name, mass, radius, position, velocity)
//   - [Observer]: hook notified after each simulation step
//
// Bodies carry no presentation state. Colors, glyphs and other render handles
// live with the renderer and are keyed by [Body.Name].
//
// # Thread Safety
//
// None of the types here are synchronized. The [session] package serializes
// access to the simulation state it owns.
package dynamo
