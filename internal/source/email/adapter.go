package email

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/nhle/mailai/internal/model"
)

// snippetRunes is the length of the preview built from the body.
const snippetRunes = 200

// DefaultLimit is the number of messages read when none is configured.
const DefaultLimit = 20

var strictPolicy = bluemonday.StrictPolicy()

// Adapter implements source.Inbox by reading the IMAP inbox directly.
type Adapter struct {
	imapClient *IMAPClient
	limit      int
}

// NewAdapter creates an inbox adapter for cfg. The password comes from the
// keyring and is never part of the configuration file.
func NewAdapter(cfg model.IMAPConfig, password string, limit int) *Adapter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Adapter{
		imapClient: NewIMAPClient(
			cfg.Host, cfg.Port, cfg.Username, password, cfg.TLS,
		),
		limit: limit,
	}
}

// ValidateConnection verifies IMAP credentials by connecting,
// authenticating, and selecting INBOX.
func (a *Adapter) ValidateConnection(ctx context.Context) error {
	if err := a.imapClient.ValidateConnection(ctx); err != nil {
		return fmt.Errorf("validating email connection: %w", err)
	}
	return nil
}

// FetchEmails reads the newest messages and converts them to backend
// records. Identifiers are positions, 0 being the newest message.
func (a *Adapter) FetchEmails(ctx context.Context) ([]model.RawEmail, error) {
	messages, err := a.imapClient.FetchRecent(ctx, a.limit)
	if err != nil {
		return nil, fmt.Errorf("fetching inbox: %w", err)
	}
	return toRawEmails(messages), nil
}

func toRawEmails(messages []ParsedMessage) []model.RawEmail {
	emails := make([]model.RawEmail, 0, len(messages))
	for i, msg := range messages {
		emails = append(emails, messageToRaw(int64(i), msg))
	}
	return emails
}

// messageToRaw converts a parsed message to the record shape the backend
// returns.
func messageToRaw(id int64, msg ParsedMessage) model.RawEmail {
	body := readableBody(msg)

	raw := model.RawEmail{
		ID:       id,
		ThreadID: msg.Envelope.MessageID,
		Snippet:  makeSnippet(body, snippetRunes),
		Body:     body,
		Subject:  msg.Envelope.Subject,
		Sender:   msg.Envelope.From,
	}
	if !msg.Envelope.Date.IsZero() {
		date := msg.Envelope.Date.UTC().Format(time.RFC3339)
		raw.Date = &date
	}
	return raw
}

// readableBody prefers the plain text part and falls back to the HTML
// part with every tag removed.
func readableBody(msg ParsedMessage) string {
	if text := strings.TrimSpace(msg.TextBody); text != "" {
		return text
	}
	if msg.HTMLBody == "" {
		return ""
	}
	return stripHTML(msg.HTMLBody)
}

// stripHTML removes markup with bluemonday's strict policy and decodes
// the entities it leaves behind.
func stripHTML(s string) string {
	for _, tag := range []string{
		"<br>", "<br/>", "<br />", "</p>", "</div>", "</li>",
	} {
		s = strings.ReplaceAll(s, tag, tag+"\n")
	}

	text := html.UnescapeString(strictPolicy.Sanitize(s))

	lines := strings.Split(text, "\n")
	out := lines[:0]
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}

// makeSnippet collapses whitespace and keeps the first n runes.
func makeSnippet(body string, n int) string {
	collapsed := strings.Join(strings.Fields(body), " ")
	if utf8.RuneCountInString(collapsed) <= n {
		return collapsed
	}
	runes := []rune(collapsed)
	return string(runes[:n])
}
