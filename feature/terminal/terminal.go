package terminal

import (
	"errors"
	"io"

	"github.com/asdfjk123/renode/core/control"
	"github.com/asdfjk123/renode/feature/monitor"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the terminal until shutdown is requested or the user closes it.
func Run(cc *control.Context, exec monitor.Executor, title string, in io.Reader, out io.Writer, opts ...tea.ProgramOption) error {
	m := NewModel(cc.Context(), exec, title)

	opts = append([]tea.ProgramOption{
		tea.WithContext(cc.Context()),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	}, opts...)

	_, err := tea.NewProgram(m, opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	if m.Closed() {
		cc.RequestShutdown()
	}
	return err
}
