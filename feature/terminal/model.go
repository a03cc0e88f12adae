package terminal

import (
	"context"
	"strings"

	"github.com/asdfjk123/renode/feature/monitor"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Name is the general.terminal value selecting this terminal.
const Name = "Termsharp"

// maxLines bounds the scrollback.
const maxLines = 5000

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	echoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

type resultMsg struct {
	output string
	err    error
}

// Model is the terminal state.
type Model struct {
	ctx   context.Context
	exec  monitor.Executor
	title string

	input textinput.Model
	view  viewport.Model
	lines []string

	busy   bool
	closed bool
	ready  bool
}

// NewModel creates the terminal model.
func NewModel(ctx context.Context, exec monitor.Executor, title string) *Model {
	in := textinput.New()
	in.Prompt = monitor.Prompt
	in.CharLimit = 1024
	in.Focus()

	return &Model{
		ctx:   ctx,
		exec:  exec,
		title: title,
		input: in,
		view:  viewport.New(80, 20),
	}
}

// Closed reports whether the user closed the terminal.
func (m *Model) Closed() bool {
	return m.closed
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.view.Width = msg.Width
		m.view.Height = max(1, msg.Height-3)
		m.input.Width = max(10, msg.Width-len(monitor.Prompt)-1)
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			m.closed = true
			return m, tea.Quit
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			line := m.input.Value()
			m.input.Reset()
			m.appendLines(echoStyle.Render(monitor.Prompt + line))
			if strings.TrimSpace(line) == "" {
				return m, nil
			}
			m.busy = true
			return m, m.execute(line)
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.view, cmd = m.view.Update(msg)
			return m, cmd
		}

	case resultMsg:
		m.busy = false
		if out := strings.TrimRight(msg.output, "\n"); out != "" {
			m.appendLines(out)
		}
		if msg.err != nil {
			m.appendLines(errorStyle.Render("error: " + msg.err.Error()))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) execute(line string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.exec.Execute(m.ctx, line)
		return resultMsg{output: out, err: err}
	}
}

func (m *Model) appendLines(text string) {
	m.lines = append(m.lines, strings.Split(text, "\n")...)
	if over := len(m.lines) - maxLines; over > 0 {
		m.lines = m.lines[over:]
	}
	m.refresh()
}

func (m *Model) refresh() {
	m.view.SetContent(strings.Join(m.lines, "\n"))
	m.view.GotoBottom()
}

func (m *Model) View() string {
	if !m.ready {
		return "Starting monitor..."
	}
	footer := "pgup/pgdn scroll · ctrl+c quit"
	if m.busy {
		footer = "running... · " + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.title),
		m.view.View(),
		m.input.View(),
		footerStyle.Render(footer),
	)
}
