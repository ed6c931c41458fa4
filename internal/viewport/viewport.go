package viewport

import (
	"fmt"
	"math"

	"github.com/san-kum/orbsim/internal/dynamo"
)

const (
	// ZoomStep is the scale multiplier for one wheel notch toward the user.
	ZoomStep = 1.04

	DefaultMinRenderPx = 2.0
)

type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Projection is where and how large a body appears on screen.
type Projection struct {
	Name     string
	X, Y     float64
	Diameter float64
}

// Locator resolves a locked body by name.
type Locator interface {
	Lookup(name string) (dynamo.Body, bool)
}

type Options struct {
	Scale         float64 // pixels per meter
	MinRenderPx   float64
	Width, Height float64
	Origin        dynamo.Vec3
}

// Viewport maps world positions to screen pixels:
//
//	screen = center + offset + (position - origin) * scale
//
// where center is the middle of the container.
type Viewport struct {
	scale  float64
	offset Vec2
	minPx  float64
	width  float64
	height float64
	origin dynamo.Vec3
	lock   string
}

func New(opts Options) (*Viewport, error) {
	if !validScale(opts.Scale) {
		return nil, fmt.Errorf("%w: scale must be positive, got %g", dynamo.ErrInvalidConfig, opts.Scale)
	}
	if math.IsNaN(opts.MinRenderPx) || math.IsInf(opts.MinRenderPx, 0) || opts.MinRenderPx < 0 {
		return nil, fmt.Errorf("%w: min render size must be non-negative, got %g", dynamo.ErrInvalidConfig, opts.MinRenderPx)
	}
	if !opts.Origin.IsValid() {
		return nil, fmt.Errorf("%w: origin is not finite", dynamo.ErrInvalidConfig)
	}
	return &Viewport{
		scale:  opts.Scale,
		minPx:  opts.MinRenderPx,
		width:  math.Max(opts.Width, 0),
		height: math.Max(opts.Height, 0),
		origin: opts.Origin,
	}, nil
}

func (v *Viewport) Scale() float64       { return v.scale }
func (v *Viewport) Offset() Vec2         { return v.offset }
func (v *Viewport) Center() Vec2         { return Vec2{v.width / 2, v.height / 2} }
func (v *Viewport) MinRenderPx() float64 { return v.minPx }

// SetScale replaces the scale, keeping the offset. Non-positive or
// non-finite values are rejected.
func (v *Viewport) SetScale(s float64) error {
	if !validScale(s) {
		return fmt.Errorf("%w: scale must be positive, got %g", dynamo.ErrInvalidConfig, s)
	}
	v.scale = s
	return nil
}

// Resize sets the container size in pixels.
func (v *Viewport) Resize(width, height float64) {
	v.width = math.Max(width, 0)
	v.height = math.Max(height, 0)
}

func (v *Viewport) ProjectPoint(p dynamo.Vec3) Vec2 {
	rel := p.Sub(v.origin)
	return Vec2{
		X: v.width/2 + v.offset.X + rel.X*v.scale,
		Y: v.height/2 + v.offset.Y + rel.Y*v.scale,
	}
}

// Project places b on screen. The diameter never drops below the configured
// minimum so far or tiny bodies stay visible.
func (v *Viewport) Project(b dynamo.Body) Projection {
	p := v.ProjectPoint(b.Position)
	return Projection{
		Name:     b.Name,
		X:        p.X,
		Y:        p.Y,
		Diameter: math.Max(v.minPx, b.Radius*2*v.scale),
	}
}

func (v *Viewport) ProjectAll(bodies []dynamo.Body) []Projection {
	out := make([]Projection, len(bodies))
	for i, b := range bodies {
		out[i] = v.Project(b)
	}
	return out
}

// Pan moves the view by a pixel delta. It does nothing while a body is
// locked and reports whether the offset changed.
func (v *Viewport) Pan(dx, dy float64) bool {
	if v.lock != "" {
		return false
	}
	v.offset = v.offset.Add(Vec2{dx, dy})
	return true
}

// ZoomFactor converts a wheel delta to a scale multiplier. Positive deltas
// zoom out; ZoomFactor(d) * ZoomFactor(-d) == 1.
func ZoomFactor(delta float64) float64 {
	return math.Pow(ZoomStep, -delta)
}

// Zoom multiplies both scale and offset by ZoomFactor(delta), anchoring the
// zoom at the container center. A zoom that would leave the scale
// non-positive or non-finite is dropped.
func (v *Viewport) Zoom(delta float64) bool {
	if delta == 0 || math.IsNaN(delta) {
		return false
	}
	f := ZoomFactor(delta)
	next := v.scale * f
	if !validScale(next) {
		return false
	}
	v.scale = next
	v.offset = v.offset.Scale(f)
	return true
}

// SetLock follows the named body from the next Tick on. An empty name
// clears the lock.
func (v *Viewport) SetLock(name string) {
	v.lock = name
}

func (v *Viewport) ClearLock() { v.lock = "" }

func (v *Viewport) Lock() (string, bool) {
	return v.lock, v.lock != ""
}

// Tick re-centers on the locked body, overriding any manual offset. A lock
// that no longer resolves is cleared. It reports whether a lock is active.
func (v *Viewport) Tick(loc Locator) bool {
	if v.lock == "" {
		return false
	}
	b, ok := loc.Lookup(v.lock)
	if !ok {
		v.lock = ""
		return false
	}
	rel := b.Position.Sub(v.origin)
	v.offset = Vec2{-rel.X * v.scale, -rel.Y * v.scale}
	return true
}

// Fit returns the largest scale at which the world rectangle [min, max]
// fits into a width x height container with margin pixels on every side.
func Fit(min, max Vec2, width, height, margin float64) float64 {
	w := math.Max(width-2*margin, 1)
	h := math.Max(height-2*margin, 1)
	dx := math.Abs(max.X - min.X)
	dy := math.Abs(max.Y - min.Y)
	if dx == 0 && dy == 0 {
		return 1
	}
	sx, sy := math.Inf(1), math.Inf(1)
	if dx > 0 {
		sx = w / dx
	}
	if dy > 0 {
		sy = h / dy
	}
	return math.Min(sx, sy)
}

func validScale(s float64) bool {
	return s > 0 && !math.IsInf(s, 0)
}
