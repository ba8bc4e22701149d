package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailai/internal/locale"
	"github.com/nhle/mailai/internal/ui/command"
)

// executeCommand handles a line from the command palette.
func (m Model) executeCommand(line string) (tea.Model, tea.Cmd) {
	name, arg, ok := command.Parse(line)
	if !ok {
		m.statusMessage = m.loc.TData(locale.CommandUnknown, map[string]interface{}{
			"Command": line,
		})
		return m, nil
	}

	switch name {
	case command.Analyse:
		return m, m.startAnalysis()

	case command.Quit:
		m.Teardown()
		return m, tea.Quit

	case command.Help:
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil

	case command.Go:
		if _, found := m.data.Find(arg); !found {
			m.statusMessage = m.loc.TData(locale.CommandUnknownCategory, map[string]interface{}{
				"ID": arg,
			})
			return m, nil
		}
		cmd := m.selectCategory(arg)
		return m, cmd
	}

	return m, nil
}
