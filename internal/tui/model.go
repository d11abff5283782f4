// Package tui renders a workshop level in the terminal and lets the player
// run, stop and edit the program. The interpreter is ticked from the Bubble
// Tea update loop, so it never runs concurrently with rendering.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/felixgeelhaar/blockkit"
	"github.com/felixgeelhaar/blockkit/level"
)

const (
	frameInterval = time.Second / 30
	tweenSeconds  = 0.3
	stageCols     = 21
	stageRows     = 15
)

type tickMsg time.Time

// Model is the Bubble Tea model for one level
type Model struct {
	cfg    *level.Config
	interp *blockkit.Interpreter
	theme  themeGlyphs
	keys   keyMap
	help   help.Model

	ids      []blockkit.InstructionID
	selected int

	snap      blockkit.Snapshot
	spriteX   float64
	spriteY   float64
	tweenX    *gween.Tween
	tweenY    *gween.Tween
	last      time.Time
	lastSound blockkit.Sound

	width int
}

// New builds the model for cfg
func New(cfg *level.Config) (*Model, error) {
	interp, err := cfg.Interpreter()
	if err != nil {
		return nil, err
	}

	m := &Model{
		cfg:    cfg,
		interp: interp,
		theme:  withDefaults(themeGlyphs{sprite: cfg.Theme.Sprite, goal: cfg.Theme.Goal, obstacle: cfg.Theme.Obstacle}),
		keys:   defaultKeys(),
		help:   help.New(),
		ids:    interp.Program().IDs(),
		width:  80,
	}
	interp.
		WithObserver(m.observe).
		WithSound(blockkit.AudioFunc(func(s blockkit.Sound) { m.lastSound = s }))

	m.snap = interp.Snapshot()
	m.spriteX, m.spriteY = m.snap.Actor.Position.X, m.snap.Actor.Position.Y
	return m, nil
}

// Run starts the interactive program for cfg
func Run(cfg *level.Config) error {
	m, err := New(cfg)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.advance(time.Time(msg))
		return m, tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.interp.Stop()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Run):
			m.interp.Run()
			m.interp.Tick(m.now())
		case key.Matches(msg, m.keys.Stop):
			m.interp.Stop()
		case key.Matches(msg, m.keys.Select):
			if len(m.ids) > 0 {
				m.selected = (m.selected + 1) % len(m.ids)
			}
		case key.Matches(msg, m.keys.Cycle):
			m.cycleSelected()
		}
		return m, nil

	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.help.Width = msg.Width
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) now() time.Time {
	if m.last.IsZero() {
		return time.Now()
	}
	return m.last
}

// advance ticks the interpreter and the sprite tweens to now
func (m *Model) advance(now time.Time) {
	dt := float32(0)
	if !m.last.IsZero() {
		dt = float32(now.Sub(m.last).Seconds())
	}
	m.last = now

	m.interp.Tick(now)

	if m.tweenX != nil {
		x, doneX := m.tweenX.Update(dt)
		y, doneY := m.tweenY.Update(dt)
		m.spriteX, m.spriteY = float64(x), float64(y)
		if doneX && doneY {
			m.tweenX, m.tweenY = nil, nil
		}
	}
}

func (m *Model) cycleSelected() {
	if len(m.ids) == 0 {
		return
	}
	id := m.ids[m.selected]
	ins := m.interp.Program().Find(id)
	if ins == nil {
		return
	}
	m.interp.CycleParameter(id, ins.Kind)
}

// observe receives every snapshot and starts a tween when the actor moves
func (m *Model) observe(s blockkit.Snapshot) {
	prev := m.snap.Actor.Position
	m.snap = s
	to := s.Actor.Position
	if to == prev {
		return
	}
	if s.State == blockkit.Idle && s.Current == "" {
		// reset to the start actor: jump, don't glide
		m.tweenX, m.tweenY = nil, nil
		m.spriteX, m.spriteY = to.X, to.Y
		return
	}
	m.tweenX = gween.New(float32(m.spriteX), float32(to.X), tweenSeconds, ease.OutQuad)
	m.tweenY = gween.New(float32(m.spriteY), float32(to.Y), tweenSeconds, ease.OutQuad)
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	stageStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("6"))
	currentStyle  = lipgloss.NewStyle().Reverse(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	wonStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// View implements tea.Model
func (m *Model) View() string {
	var b strings.Builder

	a := m.snap.Actor
	header := fmt.Sprintf("%s [%s]  %s  score %d  lives %d", m.cfg.Title, m.cfg.Mode, m.snap.State, a.Score, a.Lives)
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")

	if m.snap.State == blockkit.Won {
		b.WriteString(wonStyle.Render("★ You did it! Press s to reset."))
	} else {
		b.WriteString(bubble(a.Speech, stageCols*cellWidth))
	}
	b.WriteString("\n")

	sprite := blockkit.Vec{X: m.spriteX, Y: m.spriteY}
	stage := strings.Join(drawStage(m.interp.World(), m.theme, sprite, stageCols, stageRows), "\n")
	program := m.programView()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, stageStyle.Render(stage), "  ", program))
	b.WriteString("\n")

	if m.lastSound != "" {
		b.WriteString(dimStyle.Render("♪ " + string(m.lastSound)))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// programView lists the blocks, marking the selected one and highlighting
// the one executing
func (m *Model) programView() string {
	var lines []string
	selected := blockkit.InstructionID("")
	if len(m.ids) > 0 {
		selected = m.ids[m.selected]
	}

	m.interp.Program().Walk(func(ins *blockkit.Instruction, depth int) bool {
		text := strings.Repeat("  ", depth) + blockkit.FormatInstruction(ins)
		if lp := m.snap.Loop; lp != nil && lp.ID == ins.ID {
			if lp.Of > 0 {
				text += fmt.Sprintf("  (%d/%d)", lp.Pass, lp.Of)
			} else {
				text += fmt.Sprintf("  (pass %d)", lp.Pass)
			}
		}

		marker := "  "
		if ins.ID == selected {
			marker = selectedStyle.Render("> ")
		}
		if ins.ID == m.snap.Current && m.snap.State == blockkit.Running {
			text = currentStyle.Render(text)
		}
		lines = append(lines, marker+text)
		return true
	})
	return strings.Join(lines, "\n")
}
