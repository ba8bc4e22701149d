package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nhle/mailai/internal/credential"
	"github.com/nhle/mailai/internal/logging"
	"github.com/nhle/mailai/internal/model"
	"github.com/nhle/mailai/internal/source/email"
)

const validateTimeout = 30 * time.Second

var errNoTTY = errors.New("init needs an interactive terminal")

// setupForm holds the values edited by the init form.
type setupForm struct {
	emailsURL   string
	analysisURL string
	kind        string
	imapHost    string
	imapPort    string
	imapUser    string
	imapTLS     bool
	password    string
	language    string
}

func newSetupForm(cfg *model.AppConfig) *setupForm {
	return &setupForm{
		emailsURL:   cfg.Backend.EmailsURL,
		analysisURL: cfg.Backend.AnalysisURL,
		kind:        cfg.Source.Kind,
		imapHost:    cfg.Source.IMAP.Host,
		imapPort:    cfg.Source.IMAP.Port,
		imapUser:    cfg.Source.IMAP.Username,
		imapTLS:     cfg.Source.IMAP.TLS,
		language:    cfg.Display.Locale,
	}
}

// apply copies the form values into cfg.
func (f *setupForm) apply(cfg *model.AppConfig) {
	cfg.Backend.EmailsURL = strings.TrimSpace(f.emailsURL)
	cfg.Backend.AnalysisURL = strings.TrimSpace(f.analysisURL)
	cfg.Source.Kind = f.kind
	cfg.Source.IMAP.Host = strings.TrimSpace(f.imapHost)
	cfg.Source.IMAP.Port = strings.TrimSpace(f.imapPort)
	cfg.Source.IMAP.Username = strings.TrimSpace(f.imapUser)
	cfg.Source.IMAP.TLS = f.imapTLS
	cfg.Display.Locale = f.language
}

func (f *setupForm) build() *huh.Form {
	usesIMAP := func() bool { return f.kind == model.SourceKindIMAP }
	usesBackend := func() bool { return !usesIMAP() }

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Analysis URL").
				Description("GET endpoint returning the categorized inbox").
				Placeholder("http://localhost:8000/analyse").
				Value(&f.analysisURL).
				Validate(validateURL),
			huh.NewSelect[string]().
				Title("Inbox source").
				Options(
					huh.NewOption("Backend - POST to the emails endpoint", model.SourceKindBackend),
					huh.NewOption("IMAP - read the mailbox directly", model.SourceKindIMAP),
				).
				Value(&f.kind),
			huh.NewSelect[string]().
				Title("Language").
				Options(
					huh.NewOption("Español", "es"),
					huh.NewOption("English", "en"),
				).
				Value(&f.language),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Emails URL").
				Description("POST endpoint returning the general inbox").
				Placeholder("http://localhost:8000/emails").
				Value(&f.emailsURL).
				Validate(validateURL),
		).WithHideFunc(usesIMAP),
		huh.NewGroup(
			huh.NewInput().
				Title("IMAP Server").
				Placeholder("imap.gmail.com").
				Value(&f.imapHost).
				Validate(validateRequired("IMAP server")),
			huh.NewInput().
				Title("IMAP Port").
				Placeholder("993").
				Value(&f.imapPort).
				Validate(validatePort),
			huh.NewConfirm().
				Title("Use TLS").
				Value(&f.imapTLS),
			huh.NewInput().
				Title("Username").
				Placeholder("user@example.com").
				Value(&f.imapUser).
				Validate(validateRequired("Username")),
			huh.NewInput().
				Title("Password").
				Description("Stored in the system keyring").
				EchoMode(huh.EchoModePassword).
				Value(&f.password).
				Validate(validateRequired("Password")),
		).WithHideFunc(usesBackend),
	)
}

func newInitCmd(flags *globalFlags) *cobra.Command {
	var validate bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create or edit the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return errNoTTY
			}

			path := logging.ExpandHome(flags.configPath)
			cfg, err := model.LoadConfig(path)
			if err != nil {
				cfg = model.DefaultAppConfig()
			}

			form := newSetupForm(cfg)
			if err := form.build().Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted, nothing saved")
					return nil
				}
				return fmt.Errorf("running setup form: %w", err)
			}
			form.apply(cfg)

			if err := cfg.Validate(); err != nil {
				return err
			}

			if cfg.Source.Kind == model.SourceKindIMAP {
				if validate {
					ctx, cancel := context.WithTimeout(cmd.Context(), validateTimeout)
					defer cancel()
					adapter := email.NewAdapter(cfg.Source.IMAP, form.password, cfg.Source.Limit)
					if err := adapter.ValidateConnection(ctx); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "IMAP connection OK")
				}
				if err := credential.Set(credential.IMAPPasswordKey, form.password); err != nil {
					return fmt.Errorf("saving IMAP password: %w", err)
				}
			}

			if err := model.SaveConfig(path, cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&validate, "validate", true, "Check the IMAP login before saving")
	return cmd
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., http://localhost:8000/analyse)")
	}
	return nil
}

func validatePort(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("port is required")
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("port must be a number between 1 and 65535")
	}
	return nil
}
