package help

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailai/internal/keys"
	"github.com/nhle/mailai/internal/locale"
	"github.com/nhle/mailai/internal/theme"
)

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	loc    *locale.Localizer
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, loc *locale.Localizer, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		loc:    loc,
		help:   h,
		width:  width,
		height: height,
	}
}

// Update is a no-op; the root model closes the overlay.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render(m.loc.T(locale.HelpTitle))

	m.help.Width = m.width - 4
	m.help.ShowAll = true
	helpText := m.help.View(m.keys)

	commands := lipgloss.JoinHorizontal(lipgloss.Top,
		theme.DimmedStyle.Render(m.keys.Command.Help().Key+" "),
		m.loc.T(locale.CommandPlaceholder),
	)

	footer := theme.HelpStyle.MarginTop(1).Render(m.loc.T(locale.HelpClose))

	content := lipgloss.JoinVertical(lipgloss.Left, title, helpText, "", commands, footer)

	return theme.BorderStyle.
		Padding(1, 2).
		Width(m.width - 2).
		Height(m.height - 2).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
