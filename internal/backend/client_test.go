package backend_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nhle/mailai/internal/backend"
	"github.com/nhle/mailai/internal/model"
	"github.com/nhle/mailai/tests/testutil"
)

func TestFetchEmailsSendsEmptyJSONPost(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.SetEmails(http.StatusOK, `{"emails":[
		{"id":0,"threadId":"t0","snippet":"hola","body":"","subject":"Hi","sender":"a@b.c","date":"2025-01-01T00:00:00Z"},
		{"id":1,"threadId":"t1","snippet":"","body":"cuerpo","subject":null,"sender":"x","date":null}
	]}`)

	c := backend.NewClient(fb.Config(), backend.WithToken("secret"))
	emails, err := c.FetchEmails(context.Background())
	if err != nil {
		t.Fatalf("FetchEmails: %v", err)
	}
	if len(emails) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(emails))
	}
	if emails[0].ThreadID != "t0" || emails[0].Date == nil || *emails[0].Date != "2025-01-01T00:00:00Z" {
		t.Errorf("unexpected first email %+v", emails[0])
	}
	if emails[1].Subject != "" || emails[1].Date != nil || emails[1].Body != "cuerpo" {
		t.Errorf("unexpected second email %+v", emails[1])
	}

	reqs := fb.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	r := reqs[0]
	if r.Method != http.MethodPost || r.Body != "{}" {
		t.Errorf("expected POST {}, got %s %q", r.Method, r.Body)
	}
	if r.Headers.Get("Content-Type") != "application/json" {
		t.Errorf("unexpected content type %q", r.Headers.Get("Content-Type"))
	}
	if r.Headers.Get("Authorization") != "Bearer secret" {
		t.Errorf("missing bearer token")
	}
	if r.Headers.Get("X-Request-ID") == "" {
		t.Errorf("missing request id")
	}
}

func TestFetchAnalysisKeepsCategoryOrder(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.SetAnalysis(http.StatusOK, `{"analysis":{
		"Zeta":{"global_summary":"z","emails":[{"id":3}],"email_count":1},
		"Alfa":{"emails":[],"email_count":0},
		"Media":null
	}}`)

	c := backend.NewClient(fb.Config())
	entries, err := c.FetchAnalysis(context.Background())
	if err != nil {
		t.Fatalf("FetchAnalysis: %v", err)
	}

	want := []string{"Zeta", "Alfa", "Media"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, name := range want {
		if entries[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, entries[i].Name)
		}
	}
	if entries[0].Block.GlobalSummary != "z" || len(entries[0].Block.Emails) != 1 {
		t.Errorf("unexpected block %+v", entries[0].Block)
	}

	if reqs := fb.Requests(); reqs[0].Method != http.MethodGet {
		t.Errorf("expected GET, got %s", reqs[0].Method)
	}
}

func TestNon2xxIsStatusError(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.SetEmails(http.StatusInternalServerError, `{"detail":"boom"}`)
	fb.SetAnalysis(http.StatusBadGateway, ``)

	c := backend.NewClient(fb.Config())

	_, err := c.FetchEmails(context.Background())
	var statusErr *backend.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if err.Error() != "HTTP 500" || backend.UserMessage(err) != "HTTP 500" {
		t.Errorf("unexpected message %q", err.Error())
	}

	_, err = c.FetchAnalysis(context.Background())
	if !backend.IsStatusError(err) || err.Error() != "HTTP 502" {
		t.Errorf("expected HTTP 502, got %v", err)
	}
}

func TestMalformedPayloadsAreDecodeErrors(t *testing.T) {
	emailBodies := []string{
		`not json`,
		`{}`,
		`{"emails":null}`,
		`{"emails":{}}`,
		`{"emails":[{"subject":"no id"}]}`,
		`{"emails":[{"id":"abc"}]}`,
		`{"emails":[{"id":1.5}]}`,
		`{"emails":[{"id":1,"subject":42}]}`,
		`{"emails":[]} trailing`,
	}
	for _, body := range emailBodies {
		fb := testutil.NewFakeBackend(t)
		fb.SetEmails(http.StatusOK, body)
		_, err := backend.NewClient(fb.Config()).FetchEmails(context.Background())
		if !backend.IsDecodeError(err) {
			t.Errorf("emails %q: expected DecodeError, got %v", body, err)
		}
	}

	analysisBodies := []string{
		`[]`,
		`{"analysis":null}`,
		`{"analysis":[]}`,
		`{"analysis":{"A":{"emails":[{"id":null}]}}}`,
		`{"analysis":{"A":"text"}}`,
	}
	for _, body := range analysisBodies {
		fb := testutil.NewFakeBackend(t)
		fb.SetAnalysis(http.StatusOK, body)
		_, err := backend.NewClient(fb.Config()).FetchAnalysis(context.Background())
		if !backend.IsDecodeError(err) {
			t.Errorf("analysis %q: expected DecodeError, got %v", body, err)
		}
	}
}

func TestIntegralFloatIDAccepted(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.SetEmails(http.StatusOK, `{"emails":[{"id":4.0}]}`)

	emails, err := backend.NewClient(fb.Config()).FetchEmails(context.Background())
	if err != nil {
		t.Fatalf("FetchEmails: %v", err)
	}
	if emails[0].ID != 4 {
		t.Errorf("expected id 4, got %d", emails[0].ID)
	}
}

func TestCancelledContextAbortsRequest(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := backend.NewClient(model.BackendConfig{
		EmailsURL:   srv.URL + "/emails",
		AnalysisURL: srv.URL + "/analyse",
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.FetchEmails(ctx)
		errCh <- err
	}()

	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("request was not aborted")
	}
}

func TestUserMessage(t *testing.T) {
	if backend.UserMessage(nil) != "" {
		t.Error("expected empty message for nil")
	}
	wrapped := errors.Join(errors.New("context"), &backend.StatusError{StatusCode: 404})
	if got := backend.UserMessage(wrapped); got != "HTTP 404" {
		t.Errorf("expected HTTP 404, got %q", got)
	}
	if got := backend.UserMessage(errors.New("dial tcp: refused")); got != "dial tcp: refused" {
		t.Errorf("unexpected message %q", got)
	}
}
