package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailai/internal/locale"
	"github.com/nhle/mailai/internal/theme"
)

// CommandMsg is emitted when the user executes a command.
type CommandMsg string

// CancelMsg is emitted when the user leaves the palette without running
// anything.
type CancelMsg struct{}

// Name identifies a palette command.
type Name string

const (
	Analyse Name = "analyse"
	Quit    Name = "quit"
	Go      Name = "go"
	Help    Name = "help"
)

// aliases maps accepted spellings onto commands.
var aliases = map[string]Name{
	"analyse":  Analyse,
	"analyze":  Analyse,
	"analizar": Analyse,
	"quit":     Quit,
	"q":        Quit,
	"salir":    Quit,
	"go":       Go,
	"ir":       Go,
	"help":     Help,
	"ayuda":    Help,
}

// Parse splits a palette line into a command and its argument. ok is false
// for unknown commands.
func Parse(line string) (name Name, arg string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", "", false
	}
	name, ok = aliases[strings.ToLower(fields[0])]
	if !ok {
		return "", "", false
	}
	return name, strings.Join(fields[1:], " "), true
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	loc    *locale.Localizer
	width  int
	height int
}

// New creates a new command palette model.
func New(loc *locale.Localizer, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = loc.T(locale.CommandPlaceholder)
	ti.Prompt = ": "
	ti.Width = width - 6

	return Model{
		input:  ti,
		loc:    loc,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			cmd := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if cmd == "" {
				return m, func() tea.Msg { return CancelMsg{} }
			}
			return m, func() tea.Msg {
				return CommandMsg(cmd)
			}
		case "esc":
			m.input.Reset()
			return m, func() tea.Msg { return CancelMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	return theme.BorderStyle.
		Padding(0, 1).
		Width(m.width - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, m.input.View()))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

// Blur removes keyboard focus from the text input.
func (m *Model) Blur() {
	m.input.Blur()
}
