// Package cli wires configuration, credentials and the backend client into
// the terminal UI and the scripting subcommands.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/mailai/internal/app"
	"github.com/nhle/mailai/internal/backend"
	"github.com/nhle/mailai/internal/credential"
	"github.com/nhle/mailai/internal/datefmt"
	"github.com/nhle/mailai/internal/locale"
	"github.com/nhle/mailai/internal/logging"
	"github.com/nhle/mailai/internal/markdown"
	"github.com/nhle/mailai/internal/model"
	"github.com/nhle/mailai/internal/source"
	"github.com/nhle/mailai/internal/source/email"
)

// lookupSecret reads optional credentials; tests replace it.
var lookupSecret = credential.Lookup

// globalFlags are shared by every command.
type globalFlags struct {
	configPath  string
	emailsURL   string
	analysisURL string
}

// NewRootCmd builds the command tree. Without a subcommand it starts the
// interactive UI.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:          "mailai",
		Short:        "mailai shows your inbox grouped into AI-generated categories",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd.Context(), flags)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", model.DefaultConfigPath(), "Path to the config file")
	cmd.PersistentFlags().StringVar(&flags.emailsURL, "emails-url", "", "Override backend.emails_url")
	cmd.PersistentFlags().StringVar(&flags.analysisURL, "analysis-url", "", "Override backend.analysis_url")

	cmd.AddCommand(newInitCmd(flags))
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newEmailsCmd(flags))
	cmd.AddCommand(newAnalyseCmd(flags))

	cmd.SetErr(os.Stderr)
	cmd.SetOut(os.Stdout)

	return cmd
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the flag overrides.
func loadConfig(flags *globalFlags) (*model.AppConfig, error) {
	cfg, err := model.LoadConfig(logging.ExpandHome(flags.configPath))
	if err != nil {
		return nil, err
	}
	if flags.emailsURL != "" {
		cfg.Backend.EmailsURL = flags.emailsURL
	}
	if flags.analysisURL != "" {
		cfg.Backend.AnalysisURL = flags.analysisURL
	}
	return cfg, nil
}

// session holds the collaborators built from a configuration.
type session struct {
	cfg      *model.AppConfig
	logger   *zap.Logger
	loc      *locale.Localizer
	dates    datefmt.Formatter
	inbox    source.Inbox
	analyser source.Analyser
}

// newSession builds the logger, the localizer and the data sources.
func newSession(cfg *model.AppConfig) (*session, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	loc, err := locale.New(cfg.Display.Locale)
	if err != nil {
		return nil, err
	}

	token, err := lookupSecret(credential.BackendTokenKey)
	if err != nil {
		logger.Warn("reading backend token failed", zap.Error(err))
		token = ""
	}

	client := backend.NewClient(cfg.Backend,
		backend.WithToken(token),
		backend.WithLogger(logger.Named("backend")),
	)

	inbox, err := buildInbox(cfg, client)
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:      cfg,
		logger:   logger,
		loc:      loc,
		dates:    datefmt.New(cfg.Display.Locale, time.Local),
		inbox:    inbox,
		analyser: client,
	}, nil
}

// buildInbox returns the general inbox source selected by source.kind.
func buildInbox(cfg *model.AppConfig, client *backend.Client) (source.Inbox, error) {
	if cfg.Source.Kind != model.SourceKindIMAP {
		return client, nil
	}

	password, err := lookupSecret(credential.IMAPPasswordKey)
	if err != nil {
		return nil, fmt.Errorf("reading IMAP password: %w", err)
	}
	if password == "" {
		return nil, fmt.Errorf("no IMAP password stored; run 'mailai token set --imap'")
	}
	return email.NewAdapter(cfg.Source.IMAP, password, cfg.Source.Limit), nil
}

// runUI starts the full-screen interface and tears down pending requests
// once it exits.
func runUI(ctx context.Context, flags *globalFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	rt, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = rt.logger.Sync() }()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := app.New(app.Options{
		Inbox:    rt.inbox,
		Analyser: rt.analyser,
		Locale:   rt.loc,
		Renderer: markdown.New(cfg.Display.MarkdownStyle),
		Dates:    rt.dates,
		Logger:   rt.logger,
		Context:  ctx,
	})

	rt.logger.Info("starting ui",
		zap.String("source", cfg.Source.Kind),
		zap.String("locale", rt.loc.Lang()),
	)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if fm, ok := final.(app.Model); ok {
		fm.Teardown()
	} else {
		m.Teardown()
	}
	if err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
