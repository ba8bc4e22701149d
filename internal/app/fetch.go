package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/mailai/internal/backend"
	"github.com/nhle/mailai/internal/locale"
	"github.com/nhle/mailai/internal/model"
	appsync "github.com/nhle/mailai/internal/sync"
)

// emailsLoadedMsg carries the result of the general inbox fetch.
type emailsLoadedMsg struct {
	token  appsync.Token
	emails []model.RawEmail
	err    error
}

// analysisLoadedMsg carries the result of an analysis fetch.
type analysisLoadedMsg struct {
	token   appsync.Token
	entries []model.AnalysisEntry
	err     error
}

// fetchEmails starts the general inbox request.
func (m Model) fetchEmails() tea.Cmd {
	ctx, token := m.tracker.Begin(appsync.OpEmails)
	inbox := m.inbox
	return func() tea.Msg {
		emails, err := inbox.FetchEmails(ctx)
		return emailsLoadedMsg{token: token, emails: emails, err: err}
	}
}

// startAnalysis marks the analysis as loading and starts a request,
// cancelling one already in flight.
func (m *Model) startAnalysis() tea.Cmd {
	m.analysisLoading = true
	m.analysisErr = ""

	ctx, token := m.tracker.Begin(appsync.OpAnalysis)
	analyser := m.analyser
	return func() tea.Msg {
		entries, err := analyser.FetchAnalysis(ctx)
		return analysisLoadedMsg{token: token, entries: entries, err: err}
	}
}

// handleEmailsLoaded applies a general inbox result unless it is stale.
func (m Model) handleEmailsLoaded(msg emailsLoadedMsg) (Model, tea.Cmd) {
	if !m.tracker.Finish(appsync.OpEmails, msg.token, msg.err) {
		m.logger.Debug("dropping stale emails result", zap.Uint64("token", uint64(msg.token)))
		return m, nil
	}

	m.emailsLoading = false
	if msg.err != nil {
		m.logger.Warn("loading emails failed", zap.Error(msg.err))
		m.emailsErr = m.errorText(msg.err)
		return m, nil
	}

	m.emailsErr = ""
	m.lastUpdated = m.now()
	m.data = m.data.SetGeneralEmails(m.mapper.MapEmails(msg.emails, m.now()))
	m.logger.Info("emails loaded", zap.Int("count", len(msg.emails)))
	return m, m.refreshSelection()
}

// handleAnalysisLoaded applies an analysis result unless it is stale.
func (m Model) handleAnalysisLoaded(msg analysisLoadedMsg) (Model, tea.Cmd) {
	if !m.tracker.Finish(appsync.OpAnalysis, msg.token, msg.err) {
		m.logger.Debug("dropping stale analysis result", zap.Uint64("token", uint64(msg.token)))
		return m, nil
	}

	m.analysisLoading = false
	if msg.err != nil {
		m.logger.Warn("analysis failed", zap.Error(msg.err))
		m.analysisErr = m.errorText(msg.err)
		return m, nil
	}

	m.analysisErr = ""
	m.lastUpdated = m.now()
	m.data = m.data.ReplaceDynamic(m.mapper.MapAnalysis(msg.entries, m.now()))
	m.logger.Info("analysis loaded", zap.Int("categories", len(msg.entries)))

	if _, ok := m.data.Find(m.selectedID); !ok {
		m.selectedID = model.GeneralID
		m.closeEmail()
	}
	return m, m.refreshSelection()
}

// errorText is the inline message for a failed request.
func (m Model) errorText(err error) string {
	if text := backend.UserMessage(err); text != "" {
		return text
	}
	return m.loc.T(locale.UnknownError)
}
