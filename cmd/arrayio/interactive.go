package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/arrayio/capability"
	"github.com/wippyai/arrayio/config"
	"github.com/wippyai/arrayio/machine"
	"github.com/wippyai/arrayio/ops"
)

const maxTranscript = 200

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	stackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// lockedBuffer collects console output between evaluations.
type lockedBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) drain() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.buf.String()
	b.buf.Reset()
	return s
}

type entry struct {
	input  string
	output string
	err    error
}

type interactiveModel struct {
	machine *machine.Machine
	drain   func() string
	input   textinput.Model
	history []string
	entries []entry
	stack   []string
	histIdx int
	running bool
}

type evalResultMsg struct {
	err    error
	input  string
	output string
	stack  []string
}

func newInteractiveModel(m *machine.Machine, drain func() string) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = `"hello" print`
	ti.Prompt = promptStyle.Render("» ")
	ti.Width = 60
	ti.Focus()
	return &interactiveModel{machine: m, drain: drain, input: ti}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "ctrl+l":
			m.entries = nil
			return m, nil

		case "up":
			if len(m.history) > 0 && m.histIdx > 0 {
				m.histIdx--
				m.input.SetValue(m.history[m.histIdx])
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if m.histIdx < len(m.history)-1 {
				m.histIdx++
				m.input.SetValue(m.history[m.histIdx])
				m.input.CursorEnd()
			} else {
				m.histIdx = len(m.history)
				m.input.SetValue("")
			}
			return m, nil

		case "enter":
			line := strings.TrimSpace(m.input.Value())
			if line == "" || m.running {
				return m, nil
			}
			m.history = append(m.history, line)
			m.histIdx = len(m.history)
			m.input.SetValue("")
			m.running = true
			return m, m.eval(line)
		}

	case evalResultMsg:
		m.running = false
		m.stack = msg.stack
		m.entries = append(m.entries, entry{input: msg.input, output: msg.output, err: msg.err})
		if len(m.entries) > maxTranscript {
			m.entries = m.entries[len(m.entries)-maxTranscript:]
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) eval(line string) tea.Cmd {
	return func() tea.Msg {
		err := m.machine.Exec(context.Background(), line)
		values := m.machine.Stack()
		stack := make([]string, len(values))
		for i, v := range values {
			stack[i] = v.Grid()
		}
		return evalResultMsg{input: line, output: m.drain(), err: err, stack: stack}
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("arrayio"))
	b.WriteString("\n\n")

	for _, e := range m.entries {
		b.WriteString(promptStyle.Render("» "))
		b.WriteString(e.input)
		b.WriteString("\n")
		if e.output != "" {
			b.WriteString(outputStyle.Render(strings.TrimSuffix(e.output, "\n")))
			b.WriteString("\n")
		}
		if e.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", e.err)))
			b.WriteString("\n")
		}
	}

	if len(m.stack) > 0 {
		b.WriteString("\n")
		for i := len(m.stack) - 1; i >= 0; i-- {
			b.WriteString(stackStyle.Render(m.stack[i]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter run • ↑/↓ history • ctrl+l clear • esc quit"))
	return b.String()
}

func runInteractive(cfg *config.Config) error {
	out := &lockedBuffer{}
	nb, _ := newBackend(cfg, out)
	defer nb.Close()

	// The TUI owns stdin.
	backend := capability.Mask(nb, cfg.Capabilities()&^capability.CapInput)

	m := machine.New(ops.New(backend))
	p := tea.NewProgram(newInteractiveModel(m, out.drain), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
