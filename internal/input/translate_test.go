package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gdamore/tcell/v2"
	. "github.com/onsi/gomega"
)

func TestTeaTranslator(t *testing.T) {
	g := NewWithT(t)
	tr := NewTeaTranslator(2, 4)

	_, ok := tr.Translate(tea.MouseMsg{X: 5, Y: 5, Action: tea.MouseActionMotion})
	g.Expect(ok).To(BeFalse(), "motion without press")

	ev, ok := tr.Translate(tea.MouseMsg{X: 10, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	g.Expect(ok).To(BeTrue())
	g.Expect(ev.Kind).To(Equal(PointerDown))

	ev, ok = tr.Translate(tea.MouseMsg{X: 12, Y: 9, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	g.Expect(ok).To(BeTrue())
	g.Expect(ev).To(Equal(Event{Kind: PointerMove, DX: 4, DY: -4}))

	_, ok = tr.Translate(tea.MouseMsg{X: 12, Y: 9, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	g.Expect(ok).To(BeFalse(), "no movement")

	ev, ok = tr.Translate(tea.MouseMsg{X: 12, Y: 9, Action: tea.MouseActionRelease})
	g.Expect(ok).To(BeTrue())
	g.Expect(ev.Kind).To(Equal(PointerUp))

	_, ok = tr.Translate(tea.MouseMsg{Action: tea.MouseActionRelease})
	g.Expect(ok).To(BeFalse(), "release without press")
}

func TestTeaTranslator_Wheel(t *testing.T) {
	g := NewWithT(t)
	tr := NewTeaTranslator(1, 1)

	ev, ok := tr.Translate(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	g.Expect(ok).To(BeTrue())
	g.Expect(ev).To(Equal(Event{Kind: Wheel, Delta: -1}))

	ev, _ = tr.Translate(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	g.Expect(ev).To(Equal(Event{Kind: Wheel, Delta: 1}))
}

func TestTcellTranslator(t *testing.T) {
	g := NewWithT(t)
	tr := NewTcellTranslator(2, 4)

	g.Expect(tr.Translate(tcell.NewEventMouse(1, 1, tcell.ButtonNone, tcell.ModNone))).To(BeEmpty())

	evs := tr.Translate(tcell.NewEventMouse(3, 3, tcell.Button1, tcell.ModNone))
	g.Expect(evs).To(Equal([]Event{{Kind: PointerDown}}))

	evs = tr.Translate(tcell.NewEventMouse(4, 1, tcell.Button1, tcell.ModNone))
	g.Expect(evs).To(Equal([]Event{{Kind: PointerMove, DX: 2, DY: -8}}))

	evs = tr.Translate(tcell.NewEventMouse(4, 1, tcell.ButtonNone, tcell.ModNone))
	g.Expect(evs).To(Equal([]Event{{Kind: PointerUp}}))

	evs = tr.Translate(tcell.NewEventMouse(4, 1, tcell.WheelDown, tcell.ModNone))
	g.Expect(evs).To(Equal([]Event{{Kind: Wheel, Delta: 1}}))
}

func TestTranslatorsDriveController(t *testing.T) {
	g := NewWithT(t)
	bus, c, rec := setup()
	tr := NewTeaTranslator(2, 4)

	for _, msg := range []tea.MouseMsg{
		{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},
		{X: 3, Y: 1, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft},
		{X: 3, Y: 1, Action: tea.MouseActionRelease},
		{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp},
	} {
		if ev, ok := tr.Translate(msg); ok {
			bus.Dispatch(ev)
		}
	}

	g.Expect(rec.pans).To(Equal([][2]float64{{6, 4}}))
	g.Expect(rec.zooms).To(Equal([]float64{-1}))
	g.Expect(c.State()).To(Equal(Idle))
}
