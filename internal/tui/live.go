// Package tui renders a running fracture simulation in the terminal: the
// particle field drawn by damage level, a damage history sparkline and the
// run counters.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/peridyn/internal/sim"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

const (
	fieldWidth  = 64
	fieldHeight = 20
	graphWidth  = 60
	graphHeight = 7
)

type tickMsg time.Time

type model struct {
	prob   *sim.Problem
	simul  *sim.Simulator
	cfg    sim.Config
	name   string
	fps    int
	speed  int // steps per frame
	step   int
	damage []float64

	history []float64 // mean damage per frame
	canvas  *canvas

	paused bool
	done   bool
}

func newModel(name string, p *sim.Problem, cfg sim.Config, fps int) model {
	if fps < 1 {
		fps = 30
	}
	return model{
		prob:    p,
		simul:   sim.New(p),
		cfg:     cfg,
		name:    name,
		fps:     fps,
		speed:   1,
		damage:  p.Damage(),
		history: make([]float64, 0, cfg.Steps),
		canvas:  newCanvas(fieldWidth, fieldHeight),
	}
}

func (m model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd { return m.tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "p":
			m.paused = !m.paused
		case "+", "=":
			if m.speed < 64 {
				m.speed *= 2
			}
		case "-", "_":
			if m.speed > 1 {
				m.speed /= 2
			}
		}
		return m, nil

	case tickMsg:
		if !m.paused && !m.done {
			for i := 0; i < m.speed && m.step < m.cfg.Steps; i++ {
				m.step++
				m.damage = m.simul.Step(m.step, m.cfg)
			}
			mean := 0.0
			for _, d := range m.damage {
				mean += d
			}
			m.history = append(m.history, mean/float64(len(m.damage)))
			if m.step >= m.cfg.Steps {
				m.done = true
			}
		}
		if m.done {
			return m, nil
		}
		return m, m.tick()
	}
	return m, nil
}

func (m model) View() string {
	m.drawField()

	var b strings.Builder
	b.WriteString(titleStyle.Render("peridyn "+m.name) + "\n\n")
	b.WriteString(m.canvas.String())
	b.WriteByte('\n')

	mean, max := 0.0, 0.0
	for _, d := range m.damage {
		mean += d
		if d > max {
			max = d
		}
	}
	mean /= float64(len(m.damage))

	status := fmt.Sprintf("step %s  t %s  mean damage %s  max %s  bonds %s",
		valueStyle.Render(fmt.Sprintf("%d/%d", m.step, m.cfg.Steps)),
		valueStyle.Render(fmt.Sprintf("%.4f", float64(m.step)*m.cfg.Dt)),
		valueStyle.Render(fmt.Sprintf("%.4f", mean)),
		warnStyle.Render(fmt.Sprintf("%.4f", max)),
		valueStyle.Render(fmt.Sprintf("%d", m.prob.List.TotalBonds())),
	)
	b.WriteString(status + "\n")

	if len(m.history) > 1 {
		graph := asciigraph.Plot(m.history,
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption("mean damage"),
		)
		b.WriteString("\n" + labelStyle.Render(graph) + "\n")
	}

	switch {
	case m.done:
		b.WriteString("\n" + doneStyle.Render("run complete") + "  ")
	case m.paused:
		b.WriteString("\n" + warnStyle.Render("paused") + "  ")
	default:
		b.WriteByte('\n')
	}
	b.WriteString(helpStyle.Render(fmt.Sprintf("space pause · +/- speed (%dx) · q quit", m.speed)))
	b.WriteByte('\n')

	return b.String()
}

// drawField projects the current particle positions onto the canvas, one
// glyph per particle graded by damage.
func (m model) drawField() {
	m.canvas.clear()

	minX, maxX := m.prob.Cur[0][0], m.prob.Cur[0][0]
	minY, maxY := m.prob.Cur[0][1], m.prob.Cur[0][1]
	for _, p := range m.prob.Cur {
		if p[0] < minX {
			minX = p[0]
		}
		if p[0] > maxX {
			maxX = p[0]
		}
		if p[1] < minY {
			minY = p[1]
		}
		if p[1] > maxY {
			maxY = p[1]
		}
	}
	spanX, spanY := maxX-minX, maxY-minY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}

	for i, p := range m.prob.Cur {
		x := int((p[0] - minX) / spanX * float64(fieldWidth-1))
		// Terminal rows grow downward.
		y := fieldHeight - 1 - int((p[1]-minY)/spanY*float64(fieldHeight-1))
		m.canvas.set(x, y, damageRune(m.damage[i]))
	}
}

// Run drives the live view until the simulation finishes or the user quits.
func Run(name string, p *sim.Problem, cfg sim.Config, fps int) error {
	prog := tea.NewProgram(newModel(name, p, cfg, fps), tea.WithAltScreen())
	_, err := prog.Run()
	return err
}
