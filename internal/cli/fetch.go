package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/mailai/internal/mailmap"
)

func newEmailsCmd(flags *globalFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "emails",
		Short: "Fetch the general inbox and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			s, err := newSession(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = s.logger.Sync() }()

			raw, err := s.inbox.FetchEmails(cmd.Context())
			if err != nil {
				s.logger.Warn("loading emails failed", zap.Error(err))
				return fmt.Errorf("loading emails: %w", err)
			}

			emails := mailmap.New(s.loc.Placeholders()).MapEmails(raw, time.Now())
			return printEmails(cmd.OutOrStdout(), format, emails, s.dates)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", string(formatText), "Output format: text, json or yaml")
	return cmd
}

func newAnalyseCmd(flags *globalFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "analyse",
		Aliases: []string{"analyze"},
		Short:   "Run the analysis and print the categories",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			s, err := newSession(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = s.logger.Sync() }()

			entries, err := s.analyser.FetchAnalysis(cmd.Context())
			if err != nil {
				s.logger.Warn("analysis failed", zap.Error(err))
				return fmt.Errorf("running analysis: %w", err)
			}

			cats := mailmap.New(s.loc.Placeholders()).MapAnalysis(entries, time.Now())
			return printCategories(cmd.OutOrStdout(), format, cats, s.loc, s.dates)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", string(formatText), "Output format: text, json or yaml")
	return cmd
}
