package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/armctl/internal/armsim"
	"github.com/san-kum/armctl/internal/controller"
	command "github.com/san-kum/armctl/internal/msg"
)

const (
	graphWidth      = 70
	graphHeight     = 10
	historyCapacity = 300
	targetStep      = 0.1
)

var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model ticks the controller and simulated arm in real time and renders
// per-joint readouts with a velocity/target trace for the selected joint.
type Model struct {
	ctrl    *controller.Controller
	arm     *armsim.Arm
	names   []string
	targets []float64

	selected  int
	velHist   [][]float64
	tgtHist   [][]float64
	lastFrame time.Time
	fps       int
	stopped   bool
}

func NewModel(ctrl *controller.Controller, arm *armsim.Arm, fps int) Model {
	names := ctrl.Names()
	m := Model{
		ctrl:      ctrl,
		arm:       arm,
		names:     names,
		targets:   make([]float64, len(names)),
		velHist:   make([][]float64, len(names)),
		tgtHist:   make([][]float64, len(names)),
		lastFrame: time.Now(),
		fps:       fps,
	}
	for i := range names {
		m.velHist[i] = make([]float64, 0, historyCapacity)
		m.tgtHist[i] = make([]float64, 0, historyCapacity)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return m.frame()
}

func (m Model) frame() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch ev := msg.(type) {
	case tea.KeyMsg:
		switch ev.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.selected = (m.selected + 1) % len(m.names)
		case "up", "k":
			m.targets[m.selected] += targetStep
			m.sendTargets()
		case "down", "j":
			m.targets[m.selected] -= targetStep
			m.sendTargets()
		case "0":
			m.targets[m.selected] = 0
			m.sendTargets()
		case "s":
			m.ctrl.Apply(command.JointVelocities{})
			m.stopped = true
		}
	case TickMsg:
		now := time.Time(ev)
		dt := now.Sub(m.lastFrame).Seconds()
		m.lastFrame = now

		m.ctrl.Tick()
		m.arm.Step(dt)
		m.record()

		return m, m.frame()
	}
	return m, nil
}

func (m *Model) sendTargets() {
	cmd := command.JointVelocities{}
	for i, n := range m.names {
		cmd.Velocities = append(cmd.Velocities, command.Velocity(n, m.targets[i]))
	}
	m.ctrl.Apply(cmd)
	m.stopped = false
}

func (m *Model) record() {
	velocities, _ := m.arm.Snapshot()
	targets := m.ctrl.Targets()
	for i := range m.names {
		m.velHist[i] = appendCapped(m.velHist[i], velocities[i])
		m.tgtHist[i] = appendCapped(m.tgtHist[i], targets[i])
	}
}

func appendCapped(hist []float64, v float64) []float64 {
	if len(hist) >= historyCapacity {
		hist = hist[1:]
	}
	return append(hist, v)
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("armctl live"))
	b.WriteString("\n")

	velocities, efforts := m.arm.Snapshot()
	for i, n := range m.names {
		style := valueStyle
		marker := "  "
		if i == m.selected {
			style = selectedStyle
			marker = "> "
		}
		line := fmt.Sprintf("%s%s tgt %+6.2f  vel %+6.2f  eff %+7.3f",
			marker, labelStyle.Render(n), m.targets[i], velocities[i], efforts[i])
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	if len(m.velHist[m.selected]) > 1 {
		graph := asciigraph.PlotMany(
			[][]float64{m.tgtHist[m.selected], m.velHist[m.selected]},
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption(m.names[m.selected]+" velocity vs target (rad/s)"),
		)
		b.WriteString(graphStyle.Render(graph))
		b.WriteString("\n")
	}

	status := "running"
	if m.stopped {
		status = "stopped (regulators reset)"
	}
	b.WriteString(helpStyle.Render(
		status + "  ·  tab: joint  up/down: target  0: zero  s: stop  q: quit"))
	b.WriteString("\n")

	return b.String()
}

// RunLive starts the live view and blocks until it exits.
func RunLive(ctrl *controller.Controller, arm *armsim.Arm, fps int) error {
	ctrl.Starting()
	p := tea.NewProgram(NewModel(ctrl, arm, fps))
	_, err := p.Run()
	return err
}
