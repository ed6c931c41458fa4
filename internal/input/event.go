package input

import "sync"

type Kind int

const (
	PointerDown Kind = iota
	PointerMove
	PointerUp
	Wheel
)

func (k Kind) String() string {
	switch k {
	case PointerDown:
		return "pointer-down"
	case PointerMove:
		return "pointer-move"
	case PointerUp:
		return "pointer-up"
	case Wheel:
		return "wheel"
	}
	return "unknown"
}

// Event is a host-neutral pointer or wheel event. DX and DY carry pointer
// movement in pixels, Delta carries wheel notches (positive is toward the
// user).
type Event struct {
	Kind   Kind
	DX, DY float64
	Delta  float64
}

// Source lets a listener subscribe to one kind of event. The returned
// function removes the listener and is safe to call more than once.
type Source interface {
	On(kind Kind, fn func(Event)) (off func())
}

type listener struct {
	id   uint64
	kind Kind
	fn   func(Event)
}

// Bus is an in-process Source. Hosts translate their native events and
// Dispatch them; listeners run in registration order on the dispatching
// goroutine.
type Bus struct {
	mu        sync.Mutex
	nextID    uint64
	listeners []listener
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) On(kind Kind, fn func(Event)) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, listener{id: id, kind: kind, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, l := range b.listeners {
		if l.id == id {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Dispatch delivers ev to the listeners registered for its kind at the time
// of the call. Listeners may subscribe or unsubscribe while handling it.
func (b *Bus) Dispatch(ev Event) {
	b.mu.Lock()
	targets := make([]func(Event), 0, len(b.listeners))
	for _, l := range b.listeners {
		if l.kind == ev.Kind {
			targets = append(targets, l.fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range targets {
		fn(ev)
	}
}

// Listeners returns how many listeners are registered for kind.
func (b *Bus) Listeners(kind Kind) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, l := range b.listeners {
		if l.kind == kind {
			n++
		}
	}
	return n
}

// Len returns the total number of registered listeners.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}
