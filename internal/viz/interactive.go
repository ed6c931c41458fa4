package viz

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/san-kum/orbsim/internal/config"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	subStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	idleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	idleDimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

var presetInfo = map[string]string{
	"earth_moon":   "lunar orbit",
	"inner_system": "sun to earth",
}

// tunable fields on the config screen
var paramNames = []string{"fps", "time_scale", "scale", "min_render_px"}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

type model struct {
	state, cursor int
	presets       []string
	selected      string
	cfg           *config.Config
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	logger        *log.Logger
	width, height int
	liveModel     Model
}

func NewInteractiveApp(logger *log.Logger) *model {
	return &model{
		state:   stateMenu,
		presets: config.ListPresets(),
		logger:  logger,
		width:   width,
		height:  height,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.state == stateSim {
			return m.forward(msg)
		}
		return m, nil
	default:
		if m.state == stateSim {
			return m.forward(msg)
		}
	}
	return m, nil
}

func (m model) forward(msg tea.Msg) (model, tea.Cmd) {
	newLive, cmd := m.liveModel.Update(msg)
	m.liveModel = newLive.(Model)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		return m.forward(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		cfg := config.GetPreset(m.presets[m.cursor])
		if cfg == nil {
			m.err = fmt.Errorf("unknown preset %q", m.presets[m.cursor])
			return m, nil
		}
		m.selected, m.cfg = m.presets[m.cursor], cfg
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			val, err := strconv.ParseFloat(m.editBuf, 64)
			if err == nil {
				m.setParam(paramNames[m.paramCursor], val)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(paramNames)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, strconv.FormatFloat(m.param(paramNames[m.paramCursor]), 'g', -1, 64)
	case "z":
		m.cfg.EnableZAxis = !m.cfg.EnableZAxis
	case "s":
		return m.start()
	case "left", "h":
		name := paramNames[m.paramCursor]
		m.setParam(name, m.param(name)*0.9)
	case "right", "l":
		name := paramNames[m.paramCursor]
		m.setParam(name, m.param(name)*1.1)
	}
	return m, nil
}

func (m *model) param(name string) float64 {
	switch name {
	case "fps":
		return float64(m.cfg.FPS)
	case "time_scale":
		return m.cfg.TimeScale
	case "scale":
		return m.cfg.Scale
	case "min_render_px":
		return m.cfg.MinRenderPx
	}
	return 0
}

func (m *model) setParam(name string, v float64) {
	switch name {
	case "fps":
		m.cfg.FPS = max(int(math.Round(v)), 1)
	case "time_scale":
		m.cfg.TimeScale = v
	case "scale":
		m.cfg.Scale = v
	case "min_render_px":
		m.cfg.MinRenderPx = v
	}
}

func (m model) start() (model, tea.Cmd) {
	live, err := NewModel(m.cfg, m.logger)
	if err != nil {
		m.err = err
		return m, nil
	}
	live.resize(m.width-statsWidth-4, m.height-1)
	m.liveModel, m.state, m.err = live, stateSim, nil
	return m, m.liveModel.Init()
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle.Render("ORBSIM") + "\n    " + subStyle.Render("gravitational n-body sandbox") + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), selectedStyle.Render(fmt.Sprintf("%-16s", name)), accentStyle.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", idleStyle.Render(fmt.Sprintf("  %-16s", name)), idleDimStyle.Render(desc)))
		}
	}
	m.writeError(&b)
	b.WriteString("\n    " + keyStyle.Render("j/k") + idleStyle.Render(" navigate  ") + keyStyle.Render("enter") + idleStyle.Render(" select  ") + keyStyle.Render("q") + idleStyle.Render(" quit") + "\n")
	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle.Render(strings.ToUpper(m.selected)) + "\n    " + subStyle.Render(fmt.Sprintf("%d bodies", len(m.cfg.Bodies))) + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, name := range paramNames {
		valStr := fmt.Sprintf("%10.4g", m.param(name))
		if m.editing && i == m.paramCursor {
			valStr = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", cursorStyle.Render("▸"), selectedStyle.Render(fmt.Sprintf("%-14s", name)), accentStyle.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", idleStyle.Render(fmt.Sprintf("  %-14s", name)), idleDimStyle.Render(valStr)))
		}
	}
	b.WriteString(fmt.Sprintf("\n      %s %v\n", idleStyle.Render(fmt.Sprintf("%-14s", "z_axis")), m.cfg.EnableZAxis))
	m.writeError(&b)
	b.WriteString("\n    " + keyStyle.Render("j/k") + idleStyle.Render(" select  ") + keyStyle.Render("h/l") + idleStyle.Render(" adjust  ") + keyStyle.Render("z") + idleStyle.Render(" z-axis  ") + keyStyle.Render("s") + idleStyle.Render(" start  ") + keyStyle.Render("esc") + idleStyle.Render(" back") + "\n")
	return b.String()
}

func (m model) writeError(b *strings.Builder) {
	if m.err != nil {
		b.WriteString("\n    " + errorStyle.Render(m.err.Error()) + "\n")
	}
}

// RunInteractive shows the preset picker and then the live view.
func RunInteractive(logger *log.Logger) error {
	_, err := tea.NewProgram(NewInteractiveApp(logger), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}

// RunLive opens the live view for cfg directly.
func RunLive(cfg *config.Config, logger *log.Logger) error {
	m, err := NewModel(cfg, logger)
	if err != nil {
		return err
	}
	defer m.Session().Close()
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
