package input

import "github.com/gdamore/tcell/v2"

// TcellTranslator converts tcell mouse events into Events. tcell reports the
// held button mask rather than press and release, so transitions of the
// primary button are tracked here.
type TcellTranslator struct {
	CellWidth, CellHeight float64

	lastX, lastY int
	pressed      bool
}

func NewTcellTranslator(cellWidth, cellHeight float64) *TcellTranslator {
	return &TcellTranslator{CellWidth: cellWidth, CellHeight: cellHeight}
}

func (t *TcellTranslator) Translate(ev *tcell.EventMouse) []Event {
	var out []Event
	btn := ev.Buttons()
	x, y := ev.Position()

	if btn&tcell.WheelUp != 0 {
		out = append(out, Event{Kind: Wheel, Delta: -1})
	}
	if btn&tcell.WheelDown != 0 {
		out = append(out, Event{Kind: Wheel, Delta: 1})
	}

	held := btn&tcell.Button1 != 0
	switch {
	case held && !t.pressed:
		t.pressed = true
		t.lastX, t.lastY = x, y
		out = append(out, Event{Kind: PointerDown})
	case held && t.pressed:
		if dx, dy := x-t.lastX, y-t.lastY; dx != 0 || dy != 0 {
			out = append(out, Event{Kind: PointerMove, DX: float64(dx) * t.CellWidth, DY: float64(dy) * t.CellHeight})
		}
		t.lastX, t.lastY = x, y
	case !held && t.pressed:
		t.pressed = false
		out = append(out, Event{Kind: PointerUp})
	}
	return out
}
