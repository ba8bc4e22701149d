package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailai/internal/theme"
)

// Layout manages the multi-panel terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
	SidebarWidth    int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1; the sidebar takes a
// quarter of the width, between 18 and 32 columns.
func NewLayout(width, height int) Layout {
	sidebar := width / 4
	if sidebar < 18 {
		sidebar = 18
	}
	if sidebar > 32 {
		sidebar = 32
	}
	if sidebar > width/2 {
		sidebar = width / 2
	}
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
		SidebarWidth:    sidebar,
	}
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.StatusBarHeight
	if h < 0 {
		return 0
	}
	return h
}

// MainWidth returns the width left for the content pane.
func (l Layout) MainWidth() int {
	w := l.Width - l.SidebarWidth
	if w < 0 {
		return 0
	}
	return w
}

// PaneInner returns the usable size inside a bordered pane of the given
// outer size.
func PaneInner(width, height int) (int, int) {
	frameW, frameH := theme.PanelStyle.GetFrameSize()
	w, h := width-frameW, height-frameH
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return w, h
}

// RenderPane draws content in a bordered pane of the given outer size.
func RenderPane(content string, width, height int, focused bool) string {
	style := theme.PanelStyle
	if focused {
		style = theme.FocusedPanelStyle
	}
	w, h := PaneInner(width, height)
	return style.
		Width(w + style.GetHorizontalPadding()).
		Height(h + style.GetVerticalPadding()).
		MaxHeight(height).
		Render(content)
}

// RenderHeader renders the top header bar with a title and status.
func (l Layout) RenderHeader(title string, status string) string {
	titleRendered := theme.HeaderStyle.Render(title)

	statusRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(status)

	gap := l.Width -
		lipgloss.Width(titleRendered) -
		lipgloss.Width(statusRendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.HeaderStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.HeaderStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		filler,
		statusRendered,
	)
}

// RenderStatusBar renders the bottom status bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	rendered := theme.StatusBarStyle.Render(hints)

	gap := l.Width - lipgloss.Width(rendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.StatusBarStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.StatusBarStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderColumns joins the sidebar and the content pane side by side.
func (l Layout) RenderColumns(sidebar, content string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, content)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(
	header string,
	content string,
	statusBar string,
) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}
