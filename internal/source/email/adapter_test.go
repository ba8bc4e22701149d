package email

import (
	"strings"
	"testing"
	"time"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"paragraphs", "<p>Hola <b>mundo</b></p><p>adios</p>", "Hola mundo\nadios"},
		{"entities", "<div>Tom &amp; Jerry</div>", "Tom & Jerry"},
		{"script dropped", "<script>alert(1)</script><p>ok</p>", "ok"},
		{"blank runs collapse", "<p>a</p><br><br><br><p>b</p>", "a\n\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripHTML(tt.in); got != tt.want {
				t.Errorf("stripHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMakeSnippet(t *testing.T) {
	if got := makeSnippet("  uno\n\ndos\ttres ", 200); got != "uno dos tres" {
		t.Errorf("unexpected snippet %q", got)
	}

	long := strings.Repeat("ñ", 250)
	got := makeSnippet(long, 200)
	if len([]rune(got)) != 200 {
		t.Errorf("expected 200 runes, got %d", len([]rune(got)))
	}
}

func TestFormatAddress(t *testing.T) {
	tests := []struct {
		name, addr, want string
	}{
		{"Ana", "ana@example.com", "Ana <ana@example.com>"},
		{"", "ana@example.com", "ana@example.com"},
		{"Ana", "", "Ana"},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := formatAddress(tt.name, tt.addr); got != tt.want {
			t.Errorf("formatAddress(%q, %q) = %q, want %q", tt.name, tt.addr, got, tt.want)
		}
	}
}

func TestToRawEmailsAssignsPositions(t *testing.T) {
	date := time.Date(2025, 3, 1, 14, 5, 0, 0, time.UTC)
	messages := []ParsedMessage{
		{
			Envelope: Envelope{MessageID: "m1", Subject: "Nuevo", From: "Ana <ana@x.es>", Date: date},
			TextBody: "hola",
		},
		{
			Envelope: Envelope{MessageID: "m0", Subject: "Viejo"},
			HTMLBody: "<p>solo html</p>",
		},
	}

	raw := toRawEmails(messages)
	if len(raw) != 2 {
		t.Fatalf("expected 2 records, got %d", len(raw))
	}
	if raw[0].ID != 0 || raw[1].ID != 1 {
		t.Errorf("expected positional ids, got %d and %d", raw[0].ID, raw[1].ID)
	}
	if raw[0].Date == nil || *raw[0].Date != "2025-03-01T14:05:00Z" {
		t.Errorf("unexpected date %v", raw[0].Date)
	}
	if raw[0].Sender != "Ana <ana@x.es>" || raw[0].ThreadID != "m1" || raw[0].Snippet != "hola" {
		t.Errorf("unexpected record %+v", raw[0])
	}
	if raw[1].Date != nil {
		t.Errorf("expected nil date for zero time")
	}
	if raw[1].Body != "solo html" {
		t.Errorf("expected HTML fallback body, got %q", raw[1].Body)
	}
}

func TestParseMIMEBody(t *testing.T) {
	raw := strings.Join([]string{
		"From: ana@example.com",
		"Subject: prueba",
		"MIME-Version: 1.0",
		`Content-Type: multipart/alternative; boundary="b1"`,
		"",
		"--b1",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"texto plano",
		"--b1",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<p>texto html</p>",
		"--b1--",
		"",
	}, "\r\n")

	text, htmlBody := parseMIMEBody([]byte(raw))
	if strings.TrimSpace(text) != "texto plano" {
		t.Errorf("unexpected text body %q", text)
	}
	if strings.TrimSpace(htmlBody) != "<p>texto html</p>" {
		t.Errorf("unexpected html body %q", htmlBody)
	}
}
