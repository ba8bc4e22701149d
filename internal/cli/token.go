package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nhle/mailai/internal/credential"
)

// Replaced in tests.
var (
	storeSecret  = credential.Set
	deleteSecret = credential.Delete
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the credentials kept in the system keyring",
	}
	cmd.AddCommand(newTokenSetCmd())
	cmd.AddCommand(newTokenClearCmd())
	return cmd
}

// secretKey picks the keyring entry targeted by the --imap flag.
func secretKey(imap bool) (key, label string) {
	if imap {
		return credential.IMAPPasswordKey, "IMAP password"
	}
	return credential.BackendTokenKey, "backend token"
}

func newTokenSetCmd() *cobra.Command {
	var imap bool

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the backend bearer token (or the IMAP password with --imap)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, label := secretKey(imap)

			value, err := readSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), label)
			if err != nil {
				return err
			}
			if value == "" {
				return fmt.Errorf("%s is empty", label)
			}

			if err := storeSecret(key, value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s\n", label)
			return nil
		},
	}

	cmd.Flags().BoolVar(&imap, "imap", false, "Store the IMAP password instead of the backend token")
	return cmd
}

func newTokenClearCmd() *cobra.Command {
	var imap bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the backend token (or the IMAP password with --imap)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, label := secretKey(imap)
			if err := deleteSecret(key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", label)
			return nil
		},
	}

	cmd.Flags().BoolVar(&imap, "imap", false, "Remove the IMAP password instead of the backend token")
	return cmd
}

// readSecret prompts without echo on a terminal and reads one line
// otherwise, so the value can be piped in.
func readSecret(in io.Reader, prompt io.Writer, label string) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(prompt, "Enter %s: ", label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", label, err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading %s: %w", label, err)
	}
	return strings.TrimSpace(line), nil
}
