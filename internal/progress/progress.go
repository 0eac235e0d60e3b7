/*
Copyright © 2026 The rws-manager Authors

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
// Package progress shows a spinner while a long-running step runs.
package progress

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Run calls fn while a spinner labelled message is drawn on out, then
// leaves a single status line. It returns fn's error.
func Run(ctx context.Context, out io.Writer, message string, fn func(ctx context.Context) error) error {
	p := tea.NewProgram(newModel(message),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithContext(ctx),
	)

	done := make(chan error, 1)
	go func() {
		err := fn(ctx)
		p.Send(doneMsg{err: err})
		done <- err
	}()

	// A spinner that fails to draw must not fail the step.
	_, _ = p.Run()
	return <-done
}

type doneMsg struct {
	err error
}

type model struct {
	spinner spinner.Model
	message string
	done    bool
	err     error
}

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func newModel(message string) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return &model{spinner: s, message: message}
}

func (m *model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *model) View() string {
	if m.done {
		if m.err != nil {
			return fmt.Sprintf("%s %s\n", failStyle.Render("✗"), m.message)
		}
		return fmt.Sprintf("%s %s\n", okStyle.Render("✓"), m.message)
	}
	return fmt.Sprintf("%s %s...", m.spinner.View(), m.message)
}
