// Package backend talks to the categorization service: the inbox
// endpoint (POST, empty JSON body) and the analysis endpoint (GET).
package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nhle/mailai/internal/model"
)

// maxBodyBytes caps response bodies; analysis summaries are long but not
// this long.
const maxBodyBytes = 16 << 20

// Client is a thin HTTP client for the two backend endpoints. It does not
// retry: a failed call surfaces to the user, who triggers it again.
type Client struct {
	emailsURL   string
	analysisURL string
	token       string
	httpClient  *http.Client
	logger      *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithToken sends token as a Bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the endpoints in cfg.
func NewClient(cfg model.BackendConfig, opts ...Option) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	c := &Client{
		emailsURL:   cfg.EmailsURL,
		analysisURL: cfg.AnalysisURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchEmails posts an empty JSON object to the emails endpoint and
// returns the validated records.
func (c *Client) FetchEmails(ctx context.Context) ([]model.RawEmail, error) {
	body, err := c.do(ctx, "emails", http.MethodPost, c.emailsURL, []byte("{}"))
	if err != nil {
		return nil, err
	}
	return decodeEmailsPayload(body)
}

// FetchAnalysis requests the categorized inbox and returns the categories
// in the order the backend listed them.
func (c *Client) FetchAnalysis(ctx context.Context) ([]model.AnalysisEntry, error) {
	body, err := c.do(ctx, "analysis", http.MethodGet, c.analysisURL, nil)
	if err != nil {
		return nil, err
	}
	return decodeAnalysisPayload(body)
}

// do performs a single request and returns the body of a 2xx response.
func (c *Client) do(
	ctx context.Context,
	op string,
	method string,
	url string,
	payload []byte,
) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	log := c.logger.With(
		zap.String("op", op),
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("url", url),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("executing request %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	log.Info("request done",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Method:     method,
			URL:        url,
		}
	}

	return body, nil
}
