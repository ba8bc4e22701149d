package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/nhle/mailai/internal/model"
)

// wireEmail mirrors a backend email record. Pointers distinguish missing
// fields from empty ones; strings may be null.
type wireEmail struct {
	ID       *json.Number `json:"id"`
	ThreadID *string      `json:"threadId"`
	Snippet  *string      `json:"snippet"`
	Body     *string      `json:"body"`
	Subject  *string      `json:"subject"`
	Sender   *string      `json:"sender"`
	Date     *string      `json:"date"`
}

type wireBlock struct {
	GlobalSummary *string     `json:"global_summary"`
	Emails        []wireEmail `json:"emails"`
	EmailCount    *int        `json:"email_count"`
}

// decodeEmailsPayload validates {"emails": [...]}.
func decodeEmailsPayload(data []byte) ([]model.RawEmail, error) {
	var payload struct {
		Emails *[]wireEmail `json:"emails"`
	}
	if err := unmarshalStrict(data, &payload); err != nil {
		return nil, &DecodeError{Endpoint: "emails", Err: err}
	}
	if payload.Emails == nil {
		return nil, &DecodeError{
			Endpoint: "emails",
			Field:    "emails",
			Err:      errors.New("missing or null"),
		}
	}

	emails, err := toRawEmails(*payload.Emails, "emails")
	if err != nil {
		return nil, &DecodeError{Endpoint: "emails", Err: err}
	}
	return emails, nil
}

// decodeAnalysisPayload validates {"analysis": {name: block, ...}} and
// keeps the category order of the JSON object.
func decodeAnalysisPayload(data []byte) ([]model.AnalysisEntry, error) {
	var payload struct {
		Analysis json.RawMessage `json:"analysis"`
	}
	if err := unmarshalStrict(data, &payload); err != nil {
		return nil, &DecodeError{Endpoint: "analysis", Err: err}
	}
	raw := bytes.TrimSpace(payload.Analysis)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, &DecodeError{
			Endpoint: "analysis",
			Field:    "analysis",
			Err:      errors.New("missing or null"),
		}
	}

	entries, err := decodeOrderedBlocks(raw)
	if err != nil {
		return nil, &DecodeError{Endpoint: "analysis", Field: "analysis", Err: err}
	}
	return entries, nil
}

// decodeOrderedBlocks walks a JSON object token by token so the category
// order survives decoding.
func decodeOrderedBlocks(raw []byte) ([]model.AnalysisEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var entries []model.AnalysisEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected category name, got %v", tok)
		}

		var blk *wireBlock
		if err := dec.Decode(&blk); err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}

		entry := model.AnalysisEntry{Name: name}
		if blk != nil {
			if blk.GlobalSummary != nil {
				entry.Block.GlobalSummary = *blk.GlobalSummary
			}
			if blk.EmailCount != nil {
				entry.Block.EmailCount = *blk.EmailCount
			}
			emails, err := toRawEmails(blk.Emails, fmt.Sprintf("%s.emails", name))
			if err != nil {
				return nil, err
			}
			entry.Block.Emails = emails
		}
		entries = append(entries, entry)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return entries, nil
}

// toRawEmails validates wire records; every record needs an integer id.
func toRawEmails(items []wireEmail, path string) ([]model.RawEmail, error) {
	emails := make([]model.RawEmail, 0, len(items))
	for i, w := range items {
		if w.ID == nil {
			return nil, fmt.Errorf("%s[%d].id: missing", path, i)
		}
		id, err := parseID(*w.ID)
		if err != nil {
			return nil, fmt.Errorf("%s[%d].id: %w", path, i, err)
		}

		emails = append(emails, model.RawEmail{
			ID:       id,
			ThreadID: deref(w.ThreadID),
			Snippet:  deref(w.Snippet),
			Body:     deref(w.Body),
			Subject:  deref(w.Subject),
			Sender:   deref(w.Sender),
			Date:     w.Date,
		})
	}
	return emails, nil
}

// parseID accepts integral JSON numbers, including forms like 3.0.
func parseID(n json.Number) (int64, error) {
	if id, err := n.Int64(); err == nil {
		return id, nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %s", n)
	}
	return int64(f), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// unmarshalStrict decodes a single JSON value and rejects trailing data.
func unmarshalStrict(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}
