package markdown

import (
	"errors"
	"strings"
	"testing"
)

func TestRenderFormatsMarkdown(t *testing.T) {
	r := New("notty")

	out := r.Render("# Resumen\n\nTres correos **urgentes**.", 60)
	if !out.Formatted || out.Err != nil {
		t.Fatalf("expected formatted output, got %+v", out)
	}
	if !strings.Contains(out.Text, "Resumen") || !strings.Contains(out.Text, "urgentes") {
		t.Errorf("rendered text lost content: %q", out.Text)
	}
}

func TestRenderFallsBackOnError(t *testing.T) {
	r := New("")
	boom := errors.New("boom")
	r.render = func(string, int) (string, error) { return "", boom }

	out := r.Render("*texto*", 40)
	if out.Formatted {
		t.Error("expected unformatted fallback")
	}
	if out.Text != "*texto*" || !errors.Is(out.Err, boom) {
		t.Errorf("unexpected fallback %+v", out)
	}
}

func TestRenderRecoversFromPanic(t *testing.T) {
	r := New("")
	r.render = func(string, int) (string, error) { panic("bad input") }

	out := r.Render("texto", 40)
	if out.Formatted || out.Text != "texto" || out.Err == nil {
		t.Errorf("expected recovered fallback, got %+v", out)
	}
}

func TestRenderEmpty(t *testing.T) {
	r := New("")
	r.render = func(string, int) (string, error) {
		t.Fatal("renderer must not be called for empty input")
		return "", nil
	}

	if out := r.Render("   ", 40); out.Text != "" || !out.Formatted {
		t.Errorf("unexpected output %+v", out)
	}
}

func TestUnknownStyleFallsBack(t *testing.T) {
	r := New("no-such-style")

	out := r.Render("hola", 40)
	if out.Text == "" {
		t.Error("expected some text even with an unknown style")
	}
}
