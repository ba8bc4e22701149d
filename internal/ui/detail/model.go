package detail

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailai/internal/datefmt"
	"github.com/nhle/mailai/internal/keys"
	"github.com/nhle/mailai/internal/locale"
	"github.com/nhle/mailai/internal/model"
	"github.com/nhle/mailai/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// Model is the opened email view.
type Model struct {
	email    *model.Email
	viewport viewport.Model
	keys     *keys.KeyMap
	loc      *locale.Localizer
	dates    datefmt.Formatter
	width    int
	height   int
}

// New creates a new detail view model.
func New(
	k *keys.KeyMap,
	loc *locale.Localizer,
	dates datefmt.Formatter,
	width, height int,
) Model {
	vp := viewport.New(width, height)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     k,
		loc:      loc,
		dates:    dates,
		width:    width,
		height:   height,
	}
}

// SetEmail shows e and scrolls to the top.
func (m *Model) SetEmail(e model.Email) {
	m.email = &e
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Clear drops the shown email.
func (m *Model) Clear() {
	m.email = nil
	m.viewport.SetContent("")
}

// Email returns the shown email.
func (m Model) Email() (model.Email, bool) {
	if m.email == nil {
		return model.Email{}, false
	}
	return *m.email, true
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, m.keys.Back) {
		return m, func() tea.Msg {
			return BackMsg{}
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	back := theme.HelpStyle.Render(m.loc.T(locale.BackToList))
	return lipgloss.JoinVertical(lipgloss.Left, back, "", m.viewport.View())
}

// renderContent formats the subject, meta line and body.
func (m Model) renderContent() string {
	if m.email == nil {
		return ""
	}
	e := m.email

	subject := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		Width(m.width).
		Render(e.Subject)

	meta := theme.DimmedStyle.Render(e.Sender + " · " + m.dates.Format(e.Date))

	body := e.Snippet
	if body == "" {
		body = m.loc.T(locale.DetailNoContent)
	}
	bodyRendered := lipgloss.NewStyle().Width(m.width).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, subject, meta, "", bodyRendered)
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	// The back hint and its blank line sit above the viewport.
	vpHeight := height - 2
	if vpHeight < 0 {
		vpHeight = 0
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.viewport.SetContent(m.renderContent())
}
