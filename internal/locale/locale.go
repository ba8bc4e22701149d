// Package locale holds the user-visible strings of the application.
package locale

import (
	"embed"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/nhle/mailai/internal/mailmap"
)

//go:embed locales/*.toml
var localeFS embed.FS

// Message identifiers.
const (
	AppTitle               = "app_title"
	SidebarTitle           = "sidebar_title"
	SelectCategory         = "select_category"
	NoCategories           = "no_categories"
	NoEmails               = "no_emails"
	AnalyseHint            = "analyse_hint"
	LoadingEmails          = "loading_emails"
	LoadingAnalysis        = "loading_analysis"
	EmailsError            = "emails_error"
	AnalysisError          = "analysis_error"
	UnknownError           = "unknown_error"
	BackToList             = "back_to_list"
	DetailNoContent        = "detail_no_content"
	NoSubject              = "no_subject"
	NoContent              = "no_content"
	UnknownSender          = "unknown_sender"
	StatusReady            = "status_ready"
	StatusUpdated          = "status_updated"
	HelpTitle              = "help_title"
	HelpClose              = "help_close"
	CommandPlaceholder     = "command_placeholder"
	CommandUnknown         = "command_unknown"
	CommandUnknownCategory = "command_unknown_category"
	EmailCount             = "email_count"
	KeyUp                  = "key_up"
	KeyDown                = "key_down"
	KeySelect              = "key_select"
	KeyBack                = "key_back"
	KeyFocus               = "key_focus"
	KeyAnalyse             = "key_analyse"
	KeyHelp                = "key_help"
	KeyCommand             = "key_command"
	KeyQuit                = "key_quit"
)

// DefaultLanguage is used when the configured locale is unknown.
var DefaultLanguage = language.Spanish

var files = []string{
	"locales/active.es.toml",
	"locales/active.en.toml",
}

// NewBundle loads the embedded translations.
func NewBundle() (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(DefaultLanguage)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, f := range files {
		if _, err := bundle.LoadMessageFileFS(localeFS, f); err != nil {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return bundle, nil
}

// Localizer translates message identifiers for one language.
type Localizer struct {
	lang      string
	localizer *i18n.Localizer
}

// New returns a localizer for lang, falling back to Spanish.
func New(lang string) (*Localizer, error) {
	bundle, err := NewBundle()
	if err != nil {
		return nil, err
	}
	return NewWithBundle(bundle, lang), nil
}

// MustNew is New for the embedded bundle, which always loads.
func MustNew(lang string) *Localizer {
	l, err := New(lang)
	if err != nil {
		panic(err)
	}
	return l
}

// NewWithBundle returns a localizer backed by bundle.
func NewWithBundle(bundle *i18n.Bundle, lang string) *Localizer {
	return &Localizer{
		lang:      lang,
		localizer: i18n.NewLocalizer(bundle, lang, DefaultLanguage.String()),
	}
}

// Lang returns the requested language.
func (l *Localizer) Lang() string {
	return l.lang
}

// T translates a message ID. Unknown IDs are returned as is.
func (l *Localizer) T(messageID string) string {
	return l.localize(&i18n.LocalizeConfig{MessageID: messageID})
}

// TData translates a message ID with template data.
func (l *Localizer) TData(messageID string, data map[string]interface{}) string {
	return l.localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
}

// TCount translates a message ID with plural support.
func (l *Localizer) TCount(messageID string, count int) string {
	return l.localize(&i18n.LocalizeConfig{
		MessageID:   messageID,
		PluralCount: count,
		TemplateData: map[string]interface{}{
			"Count": count,
		},
	})
}

// Placeholders returns the mapping placeholders in this language.
func (l *Localizer) Placeholders() mailmap.Placeholders {
	return mailmap.Placeholders{
		NoSubject: l.T(NoSubject),
		NoContent: l.T(NoContent),
		Unknown:   l.T(UnknownSender),
	}
}

func (l *Localizer) localize(cfg *i18n.LocalizeConfig) string {
	msg, err := l.localizer.Localize(cfg)
	if err != nil {
		return cfg.MessageID
	}
	return msg
}
