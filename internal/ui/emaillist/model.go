package emaillist

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailai/internal/datefmt"
	"github.com/nhle/mailai/internal/keys"
	"github.com/nhle/mailai/internal/locale"
	"github.com/nhle/mailai/internal/model"
	"github.com/nhle/mailai/internal/theme"
)

// SelectedEmailMsg is sent when the user opens an email.
type SelectedEmailMsg struct {
	EmailID string
}

// Model is the email list of the selected category.
type Model struct {
	list   list.Model
	keys   *keys.KeyMap
	loc    *locale.Localizer
	width  int
	height int
}

// New creates a new email list model.
func New(
	k *keys.KeyMap,
	loc *locale.Localizer,
	dates datefmt.Formatter,
	width, height int,
) Model {
	l := list.New([]list.Item{}, ItemDelegate{dates: dates}, width, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return Model{
		list:   l,
		keys:   k,
		loc:    loc,
		width:  width,
		height: height,
	}
}

// SetEmails replaces the listed emails and resets the cursor.
func (m *Model) SetEmails(emails []model.Email) tea.Cmd {
	items := make([]list.Item, len(emails))
	for i, e := range emails {
		items[i] = EmailItem{Email: e}
	}
	cmd := m.list.SetItems(items)
	m.list.ResetSelected()
	return cmd
}

// Len returns the number of listed emails.
func (m Model) Len() int {
	return len(m.list.Items())
}

// SelectedEmail returns the email under the cursor.
func (m Model) SelectedEmail() (model.Email, bool) {
	item, ok := m.list.SelectedItem().(EmailItem)
	if !ok {
		return model.Email{}, false
	}
	return item.Email, true
}

// Update handles messages for the email list.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, m.keys.Select) {
		email, ok := m.SelectedEmail()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedEmailMsg{EmailID: email.ID}
		}
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the email list.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Foreground(theme.ColorGray).
			Render(m.loc.T(locale.NoEmails))
	}
	return m.list.View()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	if height < 0 {
		height = 0
	}
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}
