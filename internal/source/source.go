package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/mailai/internal/model"
)

// AuthError indicates that authentication has failed for an inbox source.
type AuthError struct {
	Kind    string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.Kind, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// Inbox is where the general email list comes from.
type Inbox interface {
	// FetchEmails returns the most recent inbox records.
	FetchEmails(ctx context.Context) ([]model.RawEmail, error)
}

// Analyser produces the categorized view of the inbox.
type Analyser interface {
	FetchAnalysis(ctx context.Context) ([]model.AnalysisEntry, error)
}

// InboxFunc adapts a plain function to the Inbox interface.
type InboxFunc func(ctx context.Context) ([]model.RawEmail, error)

// FetchEmails calls f(ctx).
func (f InboxFunc) FetchEmails(ctx context.Context) ([]model.RawEmail, error) {
	return f(ctx)
}

// AnalyserFunc adapts a plain function to the Analyser interface.
type AnalyserFunc func(ctx context.Context) ([]model.AnalysisEntry, error)

// FetchAnalysis calls f(ctx).
func (f AnalyserFunc) FetchAnalysis(ctx context.Context) ([]model.AnalysisEntry, error) {
	return f(ctx)
}
