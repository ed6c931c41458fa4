package viz

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/input"
)

// TcellHost drives a scene straight on a tcell screen, without bubbletea.
// The bottom row is kept for the status line.
type TcellHost struct {
	*scene

	screen     tcell.Screen
	translator *input.TcellTranslator
	running    bool
}

// NewTcellHost sizes the scene to an initialized screen and enables mouse
// reporting on it.
func NewTcellHost(screen tcell.Screen, cfg *config.Config, logger *log.Logger) (*TcellHost, error) {
	w, h := screen.Size()
	sc, err := newScene(cfg, logger, max(w, 10), max(h-1, 4))
	if err != nil {
		return nil, err
	}
	screen.EnableMouse()
	return &TcellHost{
		scene:      sc,
		screen:     screen,
		translator: input.NewTcellTranslator(cellWidth, cellHeight),
		running:    true,
	}, nil
}

// HandleEvent applies one terminal event. It returns false when the user
// asked to quit.
func (h *TcellHost) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if !h.handleKey(ev) {
			return false
		}
	case *tcell.EventMouse:
		for _, e := range h.translator.Translate(ev) {
			h.sess.Input().Dispatch(e)
		}
	case *tcell.EventResize:
		w, hh := ev.Size()
		h.resize(w, hh-1)
		h.screen.Sync()
	}
	h.refresh()
	return true
}

func (h *TcellHost) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return false
	case tcell.KeyTab:
		h.cycleLock()
	case tcell.KeyEscape:
		h.freeCamera()
	case tcell.KeyUp:
		h.sess.Pan(0, panStep)
	case tcell.KeyDown:
		h.sess.Pan(0, -panStep)
	case tcell.KeyLeft:
		h.sess.Pan(panStep, 0)
	case tcell.KeyRight:
		h.sess.Pan(-panStep, 0)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			h.running = !h.running
		case '+', '=':
			h.sess.Zoom(-1)
		case '-', '_':
			h.sess.Zoom(1)
		case '0':
			h.resetZoom()
		case 'c':
			h.clearTrails()
		case 'o':
			h.showTrails = !h.showTrails
		}
	}
	return true
}

// Tick advances the simulation unless paused. A failed step pauses the
// host and leaves the error on the status line.
func (h *TcellHost) Tick() {
	if !h.running {
		return
	}
	if err := h.advance(); err != nil {
		h.running = false
		h.status = err.Error()
		h.logger.Error("simulation halted", "err", err)
	}
}

// Draw renders the scene and the status line, then shows the screen.
func (h *TcellHost) Draw() {
	h.draw()
	h.screen.Clear()

	for y, row := range h.canvas.Grid {
		for x, r := range row {
			style := tcell.StyleDefault
			if c := h.canvas.Colors[y][x]; c != "" {
				style = style.Foreground(tcellColor(c))
			}
			h.screen.SetContent(x, y, r, nil, style)
		}
	}

	status := fmt.Sprintf(" t=%s  steps=%d  scale=%.3g", formatDuration(h.sess.Time()), h.sess.Steps(), h.sess.Scale())
	if !h.running {
		status += "  [paused]"
	}
	if h.status != "" {
		status += "  " + h.status
	}
	style := tcell.StyleDefault.Foreground(tcellColor(CurrentTheme.Muted))
	for x, r := range []rune(status) {
		h.screen.SetContent(x, h.height, r, nil, style)
	}
	h.screen.Show()
}

// Run polls screen events and ticks at the configured frame rate until the
// user quits or ctx ends.
func (h *TcellHost) Run(ctx context.Context) error {
	eventChan := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)

	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(h.cfg.Period())
	defer ticker.Stop()

	h.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-eventChan:
			if !h.HandleEvent(ev) {
				return nil
			}
			h.Draw()
		case <-ticker.C:
			h.Tick()
			h.Draw()
		}
	}
}

// RunTcell opens the terminal with tcell and runs the live view on it.
func RunTcell(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	host, err := NewTcellHost(screen, cfg, logger)
	if err != nil {
		return err
	}
	defer host.Session().Close()

	return host.Run(ctx)
}

// tcellColor accepts the same strings lipgloss does: hex or an ANSI index.
func tcellColor(c lipgloss.Color) tcell.Color {
	if n, err := strconv.Atoi(string(c)); err == nil {
		return tcell.PaletteColor(n)
	}
	return tcell.GetColor(string(c))
}
