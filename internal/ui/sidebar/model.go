package sidebar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailai/internal/keys"
	"github.com/nhle/mailai/internal/locale"
	"github.com/nhle/mailai/internal/model"
	"github.com/nhle/mailai/internal/theme"
)

// CategorySelectedMsg is sent when the highlighted category changes.
type CategorySelectedMsg struct {
	ID string
}

// Model is the category navigation pane.
type Model struct {
	categories []model.Category
	cursor     int
	keys       *keys.KeyMap
	loc        *locale.Localizer
	width      int
	height     int
}

// New creates a new sidebar model.
func New(k *keys.KeyMap, loc *locale.Localizer, width, height int) Model {
	return Model{
		keys:   k,
		loc:    loc,
		width:  width,
		height: height,
	}
}

// SetCategories replaces the listed categories and moves the cursor to
// selectedID, or to the first category when it is absent.
func (m *Model) SetCategories(categories []model.Category, selectedID string) {
	m.categories = categories
	m.cursor = 0
	for i, c := range categories {
		if c.ID == selectedID {
			m.cursor = i
			break
		}
	}
}

// SelectedID returns the identifier under the cursor.
func (m Model) SelectedID() string {
	if m.cursor < 0 || m.cursor >= len(m.categories) {
		return ""
	}
	return m.categories[m.cursor].ID
}

// Update moves the cursor and reports selection changes.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.categories) == 0 {
		return m, nil
	}

	prev := m.cursor
	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.categories)-1 {
			m.cursor++
		}
	}

	if m.cursor == prev {
		return m, nil
	}
	id := m.SelectedID()
	return m, func() tea.Msg {
		return CategorySelectedMsg{ID: id}
	}
}

// View renders the category list with email counts.
func (m Model) View() string {
	title := theme.TitleStyle.Render(m.loc.T(locale.SidebarTitle))

	if len(m.categories) == 0 {
		empty := theme.DimmedStyle.Render(m.loc.T(locale.NoCategories))
		return lipgloss.JoinVertical(lipgloss.Left, title, empty)
	}

	lines := make([]string, 0, len(m.categories))
	for i, c := range m.categories {
		lines = append(lines, m.renderItem(c, i == m.cursor))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n"))
}

func (m Model) renderItem(c model.Category, selected bool) string {
	count := fmt.Sprintf("%d", len(c.Emails))

	// Leave room for the selection gutter and the count column.
	nameWidth := m.width - lipgloss.Width(count) - 4
	if nameWidth < 1 {
		nameWidth = 1
	}
	name := truncate(c.Name, nameWidth)
	gap := nameWidth - lipgloss.Width(name)
	if gap < 0 {
		gap = 0
	}

	line := name + strings.Repeat(" ", gap) + " " + theme.CountStyle.Render(count)
	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// SetSize updates the sidebar dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
