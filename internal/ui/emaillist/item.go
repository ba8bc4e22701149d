package emaillist

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailai/internal/datefmt"
	"github.com/nhle/mailai/internal/model"
	"github.com/nhle/mailai/internal/theme"
)

// EmailItem wraps a model.Email so it can be used in a bubbles/list.
type EmailItem struct {
	Email model.Email
}

// FilterValue returns the string used for fuzzy filtering.
func (i EmailItem) FilterValue() string { return i.Email.Subject }

// Title returns the email subject for the list.
func (i EmailItem) Title() string { return i.Email.Subject }

// Description returns the sender line for the list.
func (i EmailItem) Description() string { return i.Email.Sender }

// ItemDelegate implements list.ItemDelegate for rendering emails as a
// subject line followed by sender and date.
type ItemDelegate struct {
	dates datefmt.Formatter
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 1 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single email.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ei, ok := item.(EmailItem)
	if !ok {
		return
	}

	width := m.Width() - 3
	if width < 10 {
		width = 10
	}

	subject := truncate(ei.Email.Subject, width)
	date := d.dates.Format(ei.Email.Date)
	senderWidth := width - lipgloss.Width(date) - 3
	if senderWidth < 1 {
		senderWidth = 1
	}
	meta := fmt.Sprintf(
		"%s · %s",
		truncate(ei.Email.Sender, senderWidth),
		date,
	)

	lines := lipgloss.JoinVertical(
		lipgloss.Left,
		subject,
		theme.DimmedStyle.Render(meta),
	)

	if index == m.Index() {
		fmt.Fprint(w, theme.SelectedItemStyle.Render(lines))
		return
	}
	fmt.Fprint(w, theme.ListItemStyle.Render(lines))
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
