package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nhle/mailai/internal/credential"
	"github.com/nhle/mailai/internal/datefmt"
	"github.com/nhle/mailai/internal/model"
	"github.com/nhle/mailai/tests/testutil"
)

// writeConfig stores a config file pointing at fb with logging disabled.
func writeConfig(t *testing.T, fb *testutil.FakeBackend, extra string) string {
	t.Helper()
	cfg := fb.Config()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := fmt.Sprintf(`backend:
  emails_url: %s
  analysis_url: %s
  timeout_sec: 5
log:
  path: ""
display:
  locale: es
%s`, cfg.EmailsURL, cfg.AnalysisURL, extra)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func stubSecrets(t *testing.T, secrets map[string]string) {
	t.Helper()
	orig := lookupSecret
	lookupSecret = func(key string) (string, error) {
		return secrets[key], nil
	}
	t.Cleanup(func() { lookupSecret = orig })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    outputFormat
		wantErr bool
	}{
		{"text", formatText, false},
		{"JSON", formatJSON, false},
		{" yaml ", formatYAML, false},
		{"yml", formatYAML, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := parseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseFormat(%q) = (%q, %v), want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestValidators(t *testing.T) {
	if err := validateURL("http://localhost:8000/analyse"); err != nil {
		t.Errorf("valid URL rejected: %v", err)
	}
	for _, bad := range []string{"", "localhost:8000", "/analyse"} {
		if err := validateURL(bad); err == nil {
			t.Errorf("validateURL(%q) accepted", bad)
		}
	}

	if err := validatePort("993"); err != nil {
		t.Errorf("valid port rejected: %v", err)
	}
	for _, bad := range []string{"", "abc", "0", "70000"} {
		if err := validatePort(bad); err == nil {
			t.Errorf("validatePort(%q) accepted", bad)
		}
	}

	if err := validateRequired("Name")("  "); err == nil {
		t.Error("blank value accepted")
	}
}

func TestEmailsCommandJSON(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.SetEmails(200, `{"emails":[
		{"id":1,"subject":"Hola","sender":"\"Ana\"","snippet":"uno","date":"2025-01-01T10:00:00Z"},
		{"id":2,"subject":"","sender":"","body":"dos","date":"2025-02-01T10:00:00Z"}
	]}`)
	stubSecrets(t, map[string]string{credential.BackendTokenKey: "tok"})

	out, err := execute(t, "--config", writeConfig(t, fb, ""), "emails", "-o", "json")
	if err != nil {
		t.Fatalf("emails failed: %v", err)
	}

	var emails []model.Email
	if err := json.Unmarshal([]byte(out), &emails); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, out)
	}
	if len(emails) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(emails))
	}
	if emails[0].ID != "g-2" || emails[0].Subject != "(Sin asunto)" || emails[0].Sender != "Desconocido" {
		t.Errorf("unexpected first email %+v", emails[0])
	}
	if emails[1].Sender != "Ana" {
		t.Errorf("expected quotes stripped, got %q", emails[1].Sender)
	}

	reqs := fb.Requests()
	if len(reqs) != 1 || reqs[0].Method != "POST" || reqs[0].Body != "{}" {
		t.Fatalf("unexpected requests %+v", reqs)
	}
	if got := reqs[0].Headers.Get("Authorization"); got != "Bearer tok" {
		t.Errorf("expected bearer token, got %q", got)
	}
}

func TestEmailsCommandHTTPError(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.SetEmails(502, `bad gateway`)
	stubSecrets(t, nil)

	_, err := execute(t, "--config", writeConfig(t, fb, ""), "emails")
	if err == nil || !strings.Contains(err.Error(), "HTTP 502") {
		t.Errorf("expected HTTP 502, got %v", err)
	}
}

func TestEmailsURLFlagOverridesConfig(t *testing.T) {
	configured := testutil.NewFakeBackend(t)
	override := testutil.NewFakeBackend(t)
	stubSecrets(t, nil)

	_, err := execute(t,
		"--config", writeConfig(t, configured, ""),
		"--emails-url", override.Config().EmailsURL,
		"emails",
	)
	if err != nil {
		t.Fatalf("emails failed: %v", err)
	}
	if len(configured.Requests()) != 0 || len(override.Requests()) != 1 {
		t.Errorf("expected the override endpoint to be used")
	}
}

func TestAnalyseCommandText(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.SetAnalysis(200, `{"analysis":{
		"Facturas":{"global_summary":"Pagos pendientes","emails":[{"id":7,"subject":"Factura","sender":"banco","date":"2025-03-01T10:00:00Z"}],"email_count":1},
		"Clientes VIP":{"global_summary":"","emails":[{"id":8},{"id":9}],"email_count":2}
	}}`)
	stubSecrets(t, nil)

	out, err := execute(t, "--config", writeConfig(t, fb, ""), "analyse")
	if err != nil {
		t.Fatalf("analyse failed: %v", err)
	}

	vip := strings.Index(out, "Clientes VIP [clientes-vip] (2 correos)")
	facturas := strings.Index(out, "Facturas [facturas] (1 correo)")
	if vip < 0 || facturas < 0 || vip > facturas {
		t.Errorf("expected categories by count, got:\n%s", out)
	}
	if !strings.Contains(out, "  Pagos pendientes") || !strings.Contains(out, "  - Factura · banco") {
		t.Errorf("expected summary and emails, got:\n%s", out)
	}
}

func TestAnalyseCommandYAML(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.SetAnalysis(200, `{"analysis":{"Otros":{"global_summary":"**nada**","emails":[]}}}`)
	stubSecrets(t, nil)

	out, err := execute(t, "--config", writeConfig(t, fb, ""), "analyse", "-o", "yaml")
	if err != nil {
		t.Fatalf("analyse failed: %v", err)
	}

	var cats []model.Category
	if err := yaml.Unmarshal([]byte(out), &cats); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, out)
	}
	if len(cats) != 1 || cats[0].ID != "otros" || cats[0].Summary != "**nada**" {
		t.Errorf("unexpected categories %+v", cats)
	}
}

func TestIMAPSourceNeedsPassword(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	stubSecrets(t, nil)

	path := writeConfig(t, fb, `source:
  kind: imap
  imap:
    host: imap.example.com
    username: ana@example.com
`)
	_, err := execute(t, "--config", path, "emails")
	if err == nil || !strings.Contains(err.Error(), "token set --imap") {
		t.Errorf("expected missing password error, got %v", err)
	}
}

func TestTokenSetAndClear(t *testing.T) {
	stored := map[string]string{}
	origStore, origDelete := storeSecret, deleteSecret
	storeSecret = func(key, value string) error {
		stored[key] = value
		return nil
	}
	deleteSecret = func(key string) error {
		delete(stored, key)
		return nil
	}
	t.Cleanup(func() { storeSecret, deleteSecret = origStore, origDelete })

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader("  secreto \n"))
	cmd.SetArgs([]string{"token", "set", "--imap"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("token set failed: %v", err)
	}
	if stored[credential.IMAPPasswordKey] != "secreto" {
		t.Errorf("expected trimmed password stored, got %v", stored)
	}

	cmd = NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs([]string{"token", "set"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected empty token to be rejected")
	}

	cmd = NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"token", "clear", "--imap"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("token clear failed: %v", err)
	}
	if _, ok := stored[credential.IMAPPasswordKey]; ok {
		t.Error("expected password removed")
	}
}

func TestPrintEmailsText(t *testing.T) {
	var out bytes.Buffer
	emails := []model.Email{
		{ID: "g-1", Subject: "Hola", Sender: "Ana", Date: "2025-03-05T14:30:00Z"},
	}
	if err := printEmails(&out, formatText, emails, datefmt.New("en", time.UTC)); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "ID") {
		t.Fatalf("unexpected table:\n%s", out.String())
	}
	for _, want := range []string{"g-1", "Ana", "Hola", "Mar 5, 2025"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("row %q missing %q", lines[1], want)
		}
	}
}
