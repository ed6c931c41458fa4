package input

import tea "github.com/charmbracelet/bubbletea"

// TeaTranslator converts bubbletea mouse messages into Events. Terminal
// cells are converted to pixels with CellWidth and CellHeight so a drag of
// one cell pans by one cell of the rendered canvas.
type TeaTranslator struct {
	CellWidth, CellHeight float64

	lastX, lastY int
	pressed      bool
}

func NewTeaTranslator(cellWidth, cellHeight float64) *TeaTranslator {
	return &TeaTranslator{CellWidth: cellWidth, CellHeight: cellHeight}
}

func (t *TeaTranslator) Translate(msg tea.MouseMsg) (Event, bool) {
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			return Event{Kind: Wheel, Delta: -1}, true
		case tea.MouseButtonWheelDown:
			return Event{Kind: Wheel, Delta: 1}, true
		case tea.MouseButtonLeft:
			t.pressed = true
			t.lastX, t.lastY = msg.X, msg.Y
			return Event{Kind: PointerDown}, true
		}
	case tea.MouseActionMotion:
		if !t.pressed {
			return Event{}, false
		}
		dx, dy := msg.X-t.lastX, msg.Y-t.lastY
		t.lastX, t.lastY = msg.X, msg.Y
		if dx == 0 && dy == 0 {
			return Event{}, false
		}
		return Event{Kind: PointerMove, DX: float64(dx) * t.CellWidth, DY: float64(dy) * t.CellHeight}, true
	case tea.MouseActionRelease:
		if !t.pressed {
			return Event{}, false
		}
		t.pressed = false
		return Event{Kind: PointerUp}, true
	}
	return Event{}, false
}
