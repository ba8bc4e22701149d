package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/nhle/mailai/internal/datefmt"
	"github.com/nhle/mailai/internal/locale"
	"github.com/nhle/mailai/internal/model"
)

type outputFormat string

const (
	formatText outputFormat = "text"
	formatJSON outputFormat = "json"
	formatYAML outputFormat = "yaml"
)

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case formatText, formatJSON, formatYAML:
		return f, nil
	case "yml":
		return formatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected text, json or yaml)", s)
	}
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(out io.Writer, format outputFormat, v interface{}) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("format %q is not structured", format)
}

func printEmails(out io.Writer, format outputFormat, emails []model.Email, dates datefmt.Formatter) error {
	if format != formatText {
		return writeStructured(out, format, emails)
	}

	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tFROM\tSUBJECT")
	for _, e := range emails {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, dates.Format(e.Date), e.Sender, e.Subject)
	}
	return tw.Flush()
}

func printCategories(out io.Writer, format outputFormat, cats []model.Category, loc *locale.Localizer, dates datefmt.Formatter) error {
	if format != formatText {
		return writeStructured(out, format, cats)
	}

	if len(cats) == 0 {
		fmt.Fprintln(out, loc.T(locale.NoCategories))
		return nil
	}

	for i, c := range cats {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s [%s] (%s)\n", c.Name, c.ID, loc.TCount(locale.EmailCount, len(c.Emails)))
		if c.Summary != "" {
			for _, line := range strings.Split(c.Summary, "\n") {
				fmt.Fprintf(out, "  %s\n", line)
			}
		}
		for _, e := range c.Emails {
			fmt.Fprintf(out, "  - %s · %s · %s\n", e.Subject, e.Sender, dates.Format(e.Date))
		}
	}
	return nil
}
