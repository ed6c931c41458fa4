package input

import "sync"

// Target receives viewport mutations.
type Target interface {
	Pan(dx, dy float64) bool
	Zoom(delta float64) bool
}

type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Controller turns pointer and wheel events into pans and zooms.
//
// While Idle it listens for pointer-down and wheel. Pointer-down moves it to
// Dragging and adds pointer-move and pointer-up listeners; pointer-up
// removes them again. Wheel events zoom in either state.
type Controller struct {
	mu     sync.Mutex
	target Target
	state  State
	base   []func()
	drag   []func()
}

func NewController(target Target) *Controller {
	return &Controller{target: target}
}

// Attach subscribes to src, detaching from any previous source first.
func (c *Controller) Attach(src Source) {
	c.Close()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = []func(){
		src.On(PointerDown, func(Event) { c.beginDrag(src) }),
		src.On(Wheel, c.wheel),
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close removes every listener the controller holds, whatever its state.
// It is safe to call more than once.
func (c *Controller) Close() {
	c.mu.Lock()
	offs := append(c.base, c.drag...)
	c.base, c.drag = nil, nil
	c.state = Idle
	c.mu.Unlock()

	for _, off := range offs {
		off()
	}
}

func (c *Controller) beginDrag(src Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Dragging || c.base == nil {
		return
	}
	c.state = Dragging
	c.drag = []func(){
		src.On(PointerMove, c.move),
		src.On(PointerUp, func(Event) { c.endDrag() }),
	}
}

func (c *Controller) endDrag() {
	c.mu.Lock()
	offs := c.drag
	c.drag = nil
	c.state = Idle
	c.mu.Unlock()

	for _, off := range offs {
		off()
	}
}

func (c *Controller) move(ev Event) {
	c.target.Pan(ev.DX, ev.DY)
}

func (c *Controller) wheel(ev Event) {
	c.target.Zoom(ev.Delta)
}
