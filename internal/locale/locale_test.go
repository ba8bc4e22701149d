package locale

import "testing"

func TestSpanishIsDefault(t *testing.T) {
	for _, lang := range []string{"es", "fr", ""} {
		l := MustNew(lang)
		if got := l.T(SidebarTitle); got != "Categorías" {
			t.Errorf("lang %q: expected Categorías, got %q", lang, got)
		}
	}
}

func TestEnglish(t *testing.T) {
	l := MustNew("en")
	if got := l.T(SidebarTitle); got != "Categories" {
		t.Errorf("expected Categories, got %q", got)
	}
	if got := l.TData(EmailsError, map[string]interface{}{"Error": "HTTP 500"}); got != "Could not load emails: HTTP 500" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestTemplateAndPlural(t *testing.T) {
	l := MustNew("es")

	got := l.TData(EmailsError, map[string]interface{}{"Error": "HTTP 500"})
	if got != "No se pudieron cargar los correos: HTTP 500" {
		t.Errorf("unexpected message %q", got)
	}
	if got := l.TCount(EmailCount, 1); got != "1 correo" {
		t.Errorf("expected singular, got %q", got)
	}
	if got := l.TCount(EmailCount, 3); got != "3 correos" {
		t.Errorf("expected plural, got %q", got)
	}
}

func TestUnknownIDIsReturned(t *testing.T) {
	l := MustNew("es")
	if got := l.T("no_such_message"); got != "no_such_message" {
		t.Errorf("expected id back, got %q", got)
	}
}

func TestPlaceholders(t *testing.T) {
	p := MustNew("es").Placeholders()
	if p.NoSubject != "(Sin asunto)" || p.NoContent != "(Sin contenido)" || p.Unknown != "Desconocido" {
		t.Errorf("unexpected placeholders %+v", p)
	}

	p = MustNew("en").Placeholders()
	if p.NoSubject != "(No subject)" || p.Unknown != "Unknown" {
		t.Errorf("unexpected placeholders %+v", p)
	}
}
