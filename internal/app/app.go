package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/nhle/mailai/internal/datefmt"
	"github.com/nhle/mailai/internal/keys"
	"github.com/nhle/mailai/internal/locale"
	"github.com/nhle/mailai/internal/mailmap"
	"github.com/nhle/mailai/internal/markdown"
	"github.com/nhle/mailai/internal/model"
	"github.com/nhle/mailai/internal/source"
	appsync "github.com/nhle/mailai/internal/sync"
	"github.com/nhle/mailai/internal/theme"
	"github.com/nhle/mailai/internal/ui"
	"github.com/nhle/mailai/internal/ui/command"
	"github.com/nhle/mailai/internal/ui/detail"
	"github.com/nhle/mailai/internal/ui/emaillist"
	helpview "github.com/nhle/mailai/internal/ui/help"
	"github.com/nhle/mailai/internal/ui/sidebar"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewHelp
	ViewCommand
)

// Pane identifies which column receives navigation keys.
type Pane int

const (
	PaneSidebar Pane = iota
	PaneContent
)

// Options wires the model to its collaborators.
type Options struct {
	Inbox    source.Inbox
	Analyser source.Analyser
	Locale   *locale.Localizer
	Renderer *markdown.Renderer
	Dates    datefmt.Formatter
	Logger   *zap.Logger

	// Context bounds every request; Background when nil.
	Context context.Context

	// Now stands in for time.Now in tests.
	Now func() time.Time
}

// Model is the root Bubble Tea model: it owns the category data, the
// per-request loading and error state, and routes input to the views.
type Model struct {
	currentView  ViewState
	previousView ViewState
	focus        Pane
	layout       ui.Layout
	keys         *keys.KeyMap
	loc          *locale.Localizer

	data          model.MailData
	selectedID    string
	openedEmailID string

	emailsLoading   bool
	emailsErr       string
	analysisLoading bool
	analysisErr     string
	lastUpdated     time.Time
	statusMessage   string

	tracker  *appsync.Tracker
	inbox    source.Inbox
	analyser source.Analyser
	mapper   mailmap.Mapper
	renderer *markdown.Renderer
	dates    datefmt.Formatter
	logger   *zap.Logger
	now      func() time.Time

	sidebar     sidebar.Model
	emailList   emaillist.Model
	detail      detail.Model
	helpView    helpview.Model
	commandView command.Model

	// summaries caches rendered markdown per width and text.
	summaries map[string]markdown.Rendered

	ready bool
}

// New creates the root model. The general inbox fetch starts with Init.
func New(opts Options) Model {
	loc := opts.Locale
	if loc == nil {
		loc = locale.MustNew(locale.DefaultLanguage.String())
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = markdown.New(markdown.DefaultStyle)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	k := keys.DefaultKeyMap(loc)
	data := model.NewMailData()

	m := Model{
		currentView:   ViewList,
		focus:         PaneContent,
		layout:        ui.NewLayout(80, 24),
		keys:          k,
		loc:           loc,
		data:          data,
		selectedID:    model.GeneralID,
		emailsLoading: true,
		tracker:       appsync.New(ctx),
		inbox:         opts.Inbox,
		analyser:      opts.Analyser,
		mapper:        mailmap.New(loc.Placeholders()),
		renderer:      renderer,
		dates:         opts.Dates,
		logger:        logger,
		now:           now,
		sidebar:       sidebar.New(k, loc, 24, 22),
		emailList:     emaillist.New(k, loc, opts.Dates, 56, 22),
		detail:        detail.New(k, loc, opts.Dates, 56, 22),
		helpView:      helpview.New(k, loc, 80, 22),
		commandView:   command.New(loc, 80, 22),
		summaries:     make(map[string]markdown.Rendered),
	}
	m.sidebar.SetCategories(data.Categories, m.selectedID)
	m.resize(80, 24)
	return m
}

// Init starts the general inbox fetch.
func (m Model) Init() tea.Cmd {
	return m.fetchEmails()
}

// Teardown cancels every in-flight request. Results that arrive later are
// ignored.
func (m Model) Teardown() {
	m.tracker.Close()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.ready = true
		return m, nil

	case emailsLoadedMsg:
		return m.handleEmailsLoaded(msg)

	case analysisLoadedMsg:
		return m.handleAnalysisLoaded(msg)

	case sidebar.CategorySelectedMsg:
		return m, m.selectCategory(msg.ID)

	case emaillist.SelectedEmailMsg:
		m.openEmail(msg.EmailID)
		return m, nil

	case detail.BackMsg:
		m.closeEmail()
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		m.commandView.Blur()
		return m.executeCommand(string(msg))

	case command.CancelMsg:
		m.currentView = m.previousView
		m.commandView.Blur()
		return m, nil

	case tea.KeyMsg:
		if m.currentView == ViewCommand {
			break
		}
		m.statusMessage = ""

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.Teardown()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case key.Matches(msg, m.keys.Command):
			m.previousView = m.currentView
			m.currentView = ViewCommand
			return m, m.commandView.Focus()

		case key.Matches(msg, m.keys.Analyse):
			if m.currentView == ViewHelp {
				break
			}
			return m, m.startAnalysis()

		case key.Matches(msg, m.keys.Back) && m.currentView == ViewHelp:
			m.currentView = m.previousView
			return m, nil

		case key.Matches(msg, m.keys.Focus) && m.currentView == ViewList:
			if m.focus == PaneSidebar {
				m.focus = PaneContent
			} else {
				m.focus = PaneSidebar
			}
			return m, nil
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		if m.focus == PaneSidebar {
			if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, m.keys.Select) {
				m.focus = PaneContent
				return m, nil
			}
			m.sidebar, cmd = m.sidebar.Update(msg)
		} else {
			if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, m.keys.Back) {
				m.focus = PaneSidebar
				return m, nil
			}
			m.emailList, cmd = m.emailList.Update(msg)
		}
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// selectCategory switches the shown category. The new category always
// starts in its list state.
func (m *Model) selectCategory(id string) tea.Cmd {
	if _, ok := m.data.Find(id); !ok {
		return nil
	}
	m.selectedID = id
	m.closeEmail()
	return m.refreshSelection()
}

// openEmail shows the detail of an email of the selected category.
func (m *Model) openEmail(id string) {
	cat, ok := m.data.Find(m.selectedID)
	if !ok {
		return
	}
	for _, e := range cat.Emails {
		if e.ID == id {
			m.openedEmailID = id
			m.detail.SetEmail(e)
			m.currentView = ViewDetail
			return
		}
	}
}

// closeEmail returns the selected category to its list state.
func (m *Model) closeEmail() {
	m.openedEmailID = ""
	m.detail.Clear()
	if m.currentView == ViewDetail {
		m.currentView = ViewList
	}
	if m.previousView == ViewDetail {
		m.previousView = ViewList
	}
}

// refreshSelection syncs the sidebar and the email list with the data.
// An opened email that no longer exists sends the view back to its list.
func (m *Model) refreshSelection() tea.Cmd {
	m.sidebar.SetCategories(m.data.Categories, m.selectedID)
	cat, _ := m.data.Find(m.selectedID)

	if m.openedEmailID != "" {
		found := false
		for _, e := range cat.Emails {
			if e.ID == m.openedEmailID {
				found = true
				break
			}
		}
		if !found {
			m.closeEmail()
		}
	}

	return m.emailList.SetEmails(cat.Emails)
}

// resize recomputes the layout and the view dimensions.
func (m *Model) resize(width, height int) {
	m.layout = ui.NewLayout(width, height)
	contentHeight := m.layout.ContentHeight()

	sideW, sideH := ui.PaneInner(m.layout.SidebarWidth, contentHeight)
	m.sidebar.SetSize(sideW, sideH)

	mainW, mainH := ui.PaneInner(m.layout.MainWidth(), contentHeight)
	m.emailList.SetSize(mainW, mainH)
	m.detail.SetSize(mainW, mainH)

	m.helpView.SetSize(width, contentHeight)
	m.commandView.SetSize(width, contentHeight)
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return m.loc.T(locale.LoadingEmails)
	}

	header := m.layout.RenderHeader(m.loc.T(locale.AppTitle), m.headerStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	contentHeight := m.layout.ContentHeight()

	if m.currentView == ViewHelp {
		return m.helpView.View()
	}

	sidebarPane := ui.RenderPane(
		m.sidebar.View(),
		m.layout.SidebarWidth, contentHeight,
		m.focus == PaneSidebar && m.currentView == ViewList,
	)

	mainW, mainH := ui.PaneInner(m.layout.MainWidth(), contentHeight)
	var main string
	if m.currentView == ViewDetail || (m.currentView == ViewCommand && m.previousView == ViewDetail) {
		main = m.detail.View()
	} else {
		main = m.renderCategory(mainW, mainH)
	}

	if m.currentView == ViewCommand {
		palette := m.commandView.View()
		mainH -= lipgloss.Height(palette)
		main = lipgloss.JoinVertical(
			lipgloss.Left,
			lipgloss.NewStyle().MaxHeight(max(mainH, 0)).Render(main),
			palette,
		)
	}

	mainPane := ui.RenderPane(
		main,
		m.layout.MainWidth(), contentHeight,
		m.focus == PaneContent || m.currentView == ViewDetail,
	)

	return m.layout.RenderColumns(sidebarPane, mainPane)
}

// renderCategory draws the list state of the selected category: its
// header block followed by the email list.
func (m Model) renderCategory(width, height int) string {
	cat, ok := m.data.Find(m.selectedID)
	if !ok {
		return theme.TitleStyle.Render(m.loc.T(locale.SelectCategory))
	}

	head := m.categoryHeader(cat, width)
	list := m.emailList
	list.SetSize(width, height-lipgloss.Height(head))

	return lipgloss.JoinVertical(lipgloss.Left, head, list.View())
}

// categoryHeader renders the title and, for general, the analyse hint and
// the request lines; for other categories, the summary.
func (m Model) categoryHeader(cat model.Category, width int) string {
	lines := []string{theme.TitleStyle.Render(cat.Name)}

	if cat.IsGeneral() {
		lines = append(lines, theme.HintStyle.Render(m.loc.T(locale.AnalyseHint)))
		if m.emailsLoading {
			lines = append(lines, theme.LoadingStyle.Render(m.loc.T(locale.LoadingEmails)))
		}
		if m.emailsErr != "" {
			lines = append(lines, theme.ErrorStyle.Width(width).Render(
				m.loc.TData(locale.EmailsError, map[string]interface{}{"Error": m.emailsErr}),
			))
		}
		if m.analysisLoading {
			lines = append(lines, theme.LoadingStyle.Render(m.loc.T(locale.LoadingAnalysis)))
		}
		if m.analysisErr != "" {
			lines = append(lines, theme.ErrorStyle.Width(width).Render(
				m.loc.TData(locale.AnalysisError, map[string]interface{}{"Error": m.analysisErr}),
			))
		}
	} else if cat.Summary != "" {
		lines = append(lines, m.renderSummary(cat.Summary, width).Text)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

// renderSummary formats a category summary, falling back to the raw text
// when the markdown renderer fails.
func (m Model) renderSummary(summary string, width int) markdown.Rendered {
	cacheKey := fmt.Sprintf("%d\x00%s", width, summary)
	if r, ok := m.summaries[cacheKey]; ok {
		return r
	}

	r := m.renderer.Render(summary, width)
	if r.Err != nil {
		m.logger.Warn("rendering summary failed", zap.Error(r.Err))
		r.Text = lipgloss.NewStyle().Width(width).Render(r.Text)
	}
	m.summaries[cacheKey] = r
	return r
}

// headerStatus returns a short string describing the request state.
func (m Model) headerStatus() string {
	var parts []string
	if m.emailsLoading {
		parts = append(parts, m.loc.T(locale.LoadingEmails))
	}
	if m.analysisLoading {
		parts = append(parts, m.loc.T(locale.LoadingAnalysis))
	}
	if len(parts) > 0 {
		return strings.Join(parts, " · ")
	}
	if m.analysisErr != "" {
		return "⚠ " + m.loc.TData(locale.AnalysisError, map[string]interface{}{"Error": m.analysisErr})
	}
	if m.emailsErr != "" {
		return "⚠ " + m.loc.TData(locale.EmailsError, map[string]interface{}{"Error": m.emailsErr})
	}
	if !m.lastUpdated.IsZero() {
		return m.loc.TData(locale.StatusUpdated, map[string]interface{}{
			"Time": m.lastUpdated.Format("15:04"),
		})
	}
	return m.loc.T(locale.StatusReady)
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.statusMessage != "" {
		return m.statusMessage
	}

	var bindings []key.Binding
	switch m.currentView {
	case ViewHelp:
		bindings = []key.Binding{m.keys.Help, m.keys.Back}
	case ViewCommand:
		return m.loc.T(locale.CommandPlaceholder)
	case ViewDetail:
		bindings = []key.Binding{m.keys.Back, m.keys.Up, m.keys.Down, m.keys.Analyse, m.keys.Quit}
	default:
		bindings = m.keys.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, h.Key+" "+h.Desc)
	}
	return strings.Join(hints, " | ")
}

// Data returns the current category collection.
func (m Model) Data() model.MailData {
	return m.data
}

// SelectedID returns the identifier of the shown category.
func (m Model) SelectedID() string {
	return m.selectedID
}

// OpenedEmailID returns the email shown in detail, or "".
func (m Model) OpenedEmailID() string {
	return m.openedEmailID
}

// CurrentView returns the active view.
func (m Model) CurrentView() ViewState {
	return m.currentView
}

// EmailsState reports the loading flag and error text of the inbox fetch.
func (m Model) EmailsState() (loading bool, errText string) {
	return m.emailsLoading, m.emailsErr
}

// AnalysisState reports the loading flag and error text of the analysis.
func (m Model) AnalysisState() (loading bool, errText string) {
	return m.analysisLoading, m.analysisErr
}

// StatusMessage returns the transient status bar message.
func (m Model) StatusMessage() string {
	return m.statusMessage
}
