// Package viewport is the camera that turns world positions into screen
// pixels.
//
// A [Viewport] holds a scale (pixels per meter), a pan offset in pixels and
// an optional lock on one body. Zoom is anchored at the container center:
// each wheel notch multiplies scale and offset by the same [ZoomFactor].
// While locked, [Viewport.Tick] recomputes the offset from the body every
// frame and [Viewport.Pan] has no effect.
package viewport
