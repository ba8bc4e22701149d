package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/nhle/mailai/internal/model"
)

// Response is a canned reply from the fake backend.
type Response struct {
	Status int
	Body   string
}

// Request records what the fake backend received.
type Request struct {
	Method  string
	Path    string
	Body    string
	Headers http.Header
}

// FakeBackend serves /emails and /analyse from canned responses.
type FakeBackend struct {
	Server *httptest.Server

	mu       sync.Mutex
	emails   Response
	analysis Response
	requests []Request
}

// NewFakeBackend starts an httptest server answering both endpoints. It is
// closed automatically when the test completes.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	fb := &FakeBackend{
		emails:   Response{Status: http.StatusOK, Body: `{"emails":[]}`},
		analysis: Response{Status: http.StatusOK, Body: `{"analysis":{}}`},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/emails", fb.handle(func() Response { return fb.emails }))
	mux.HandleFunc("/analyse", fb.handle(func() Response { return fb.analysis }))

	fb.Server = httptest.NewServer(mux)
	t.Cleanup(fb.Server.Close)

	return fb
}

// Config returns a backend configuration pointing at the fake server.
func (fb *FakeBackend) Config() model.BackendConfig {
	return model.BackendConfig{
		EmailsURL:   fb.Server.URL + "/emails",
		AnalysisURL: fb.Server.URL + "/analyse",
		TimeoutSec:  5,
	}
}

// SetEmails sets the reply of the emails endpoint.
func (fb *FakeBackend) SetEmails(status int, body string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.emails = Response{Status: status, Body: body}
}

// SetAnalysis sets the reply of the analysis endpoint.
func (fb *FakeBackend) SetAnalysis(status int, body string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.analysis = Response{Status: status, Body: body}
}

// Requests returns a copy of the received requests.
func (fb *FakeBackend) Requests() []Request {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]Request, len(fb.requests))
	copy(out, fb.requests)
	return out
}

func (fb *FakeBackend) handle(reply func() Response) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		fb.mu.Lock()
		fb.requests = append(fb.requests, Request{
			Method:  r.Method,
			Path:    r.URL.Path,
			Body:    string(body),
			Headers: r.Header.Clone(),
		})
		resp := reply()
		fb.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.Status)
		_, _ = io.WriteString(w, resp.Body)
	}
}
