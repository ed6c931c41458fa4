package viz

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/orbsim/internal/config"
	"github.com/san-kum/orbsim/internal/export"
	"github.com/san-kum/orbsim/internal/input"
	"github.com/san-kum/orbsim/internal/metrics"
)

const (
	width           = 80
	height          = 24
	statsWidth      = 45
	historyCapacity = 600
	trailCapacity   = 200

	// braille sub-pixels per terminal cell
	cellWidth  = 2
	cellHeight = 4

	panStep = 8.0
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(0, 1)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(statsWidth)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

type TickMsg time.Time

// Model hosts one session in the terminal: it drives ticks, feeds mouse
// input to the session and draws the projected bodies.
type Model struct {
	*scene

	translator   *input.TeaTranslator
	drift        *metrics.EnergyDrift
	driftHistory []float64

	running  bool
	showHelp bool
	err      error
}

// NewModel builds the session for cfg sized to the default terminal.
func NewModel(cfg *config.Config, logger *log.Logger) (Model, error) {
	sc, err := newScene(cfg, logger, width, height)
	if err != nil {
		return Model{}, err
	}

	opts := sc.sess.Options()
	drift := metrics.NewEnergyDrift(opts.G, opts.Epsilon)
	sc.sess.AddObserver(drift)

	return Model{
		scene:      sc,
		translator: input.NewTeaTranslator(cellWidth, cellHeight),
		drift:      drift,
		running:    true,
	}, nil
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.cfg.Period(), func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		if ev, ok := m.translator.Translate(msg); ok {
			m.sess.Input().Dispatch(ev)
			m.refresh()
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width-statsWidth-4, msg.Height-1)
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if err := m.sess.Close(); err != nil {
			m.logger.Error("closing session", "err", err)
		}
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "tab":
		m.cycleLock()
	case "esc":
		m.freeCamera()
	case "0":
		m.resetZoom()
	case "+", "=":
		m.sess.Zoom(-1)
	case "-", "_":
		m.sess.Zoom(1)
	case "up", "k":
		m.sess.Pan(0, panStep)
	case "down", "j":
		m.sess.Pan(0, -panStep)
	case "left", "h":
		m.sess.Pan(panStep, 0)
	case "right", "l":
		m.sess.Pan(-panStep, 0)
	case "c":
		m.clearTrails()
	case "o":
		m.showTrails = !m.showTrails
	case "s":
		m.snapshot()
	case "t":
		names := ThemeNames()
		for i, name := range names {
			if name == CurrentTheme.Name {
				SetTheme(names[(i+1)%len(names)])
				break
			}
		}
	case "?":
		m.showHelp = !m.showHelp
	}
	m.refresh()
	return m, nil
}

// step advances the simulation by one tick.
func (m *Model) step() {
	if err := m.advance(); err != nil {
		m.err = err
		m.running = false
		m.logger.Error("simulation halted", "err", err)
		return
	}

	m.driftHistory = append(m.driftHistory, m.drift.Current())
	if len(m.driftHistory) > historyCapacity {
		m.driftHistory = m.driftHistory[1:]
	}
}

func (m *Model) snapshot() {
	colors := m.cfg.Colors()
	svg := export.SnapshotSVG(m.frame, colors, m.width*cellWidth, m.height*cellHeight)
	path := fmt.Sprintf("orbsim_%d.svg", time.Now().Unix())
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		m.status = "snapshot failed: " + err.Error()
		return
	}
	m.status = "saved " + path
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(GradientText(strings.ToUpper(m.cfg.Name), CurrentTheme.Primary, CurrentTheme.Secondary)) + "\n")

	status := StatusRunning.Render("RUNNING")
	switch {
	case m.err != nil:
		status = errorStyle.Render("HALTED")
	case m.sess.Controller().State() == input.Dragging:
		status = StatusDragging.Render("DRAGGING")
	case !m.running:
		status = StatusPaused.Render("PAUSED")
	}
	s.WriteString(status + "\n\n")

	if len(m.driftHistory) > 1 {
		chart := asciigraph.Plot(m.driftHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy drift"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	lock := "none"
	if name, ok := m.sess.Lock(); ok {
		lock = name
	}
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(formatDuration(m.sess.Time())) + "\n")
	s.WriteString(labelStyle.Render("Steps") + valueStyle.Render(fmt.Sprintf("%d", m.sess.Steps())) + "\n")
	s.WriteString(labelStyle.Render("Scale") + valueStyle.Render(fmt.Sprintf("%.3g px/m", m.sess.Scale())) + "\n")
	s.WriteString(labelStyle.Render("Lock") + valueStyle.Render(lock) + "\n")
	s.WriteString(labelStyle.Render("Drift") + valueStyle.Render(fmt.Sprintf("%.2e", m.drift.Value())) + "\n")

	s.WriteString("\nBODIES\n")
	colors := m.cfg.Colors()
	for _, p := range m.frame {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(colorOr(colors[p.Name], string(CurrentTheme.Secondary)))).Render("●")
		s.WriteString(fmt.Sprintf("%s %s\n", swatch, labelStyle.Render(p.Name)))
	}

	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		s.WriteString("\n" + valueStyle.Render(m.status) + "\n")
	}

	s.WriteString(helpStyle.Render("\n" + Separator(21) + "\nSP:Pause Tab:Lock Q:Quit\n+/-:Zoom Drag:Pan ?:Help"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  Tab      - Lock next body           ║
║  Esc      - Free camera              ║
║  +/-      - Zoom in/out              ║
║  0        - Reset zoom               ║
║  Arrows   - Pan (mouse drag works)   ║
║  C        - Clear trails             ║
║  O        - Toggle trails            ║
║  S        - Save SVG snapshot        ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

func formatDuration(seconds float64) string {
	d := seconds / 86400
	if d >= 1 {
		return fmt.Sprintf("%.2f d", d)
	}
	return fmt.Sprintf("%.1f h", seconds/3600)
}
