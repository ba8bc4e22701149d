package model

import "testing"

func TestNewMailDataSeedsGeneral(t *testing.T) {
	d := NewMailData()
	if len(d.Categories) != 1 {
		t.Fatalf("expected 1 category, got %d", len(d.Categories))
	}
	g := d.Categories[0]
	if g.ID != GeneralID || len(g.Emails) != 0 {
		t.Fatalf("unexpected seeded category: %+v", g)
	}
}

func TestSetGeneralEmailsLeavesOthersUntouched(t *testing.T) {
	d := MailData{Categories: []Category{
		NewGeneralCategory(),
		{ID: "facturas", Name: "Facturas", Emails: []Email{{ID: "g-3"}}},
	}}

	next := d.SetGeneralEmails([]Email{{ID: "g-1"}, {ID: "g-2"}})

	if got := len(next.General().Emails); got != 2 {
		t.Fatalf("expected 2 general emails, got %d", got)
	}
	other, ok := next.Find("facturas")
	if !ok || len(other.Emails) != 1 || other.Emails[0].ID != "g-3" {
		t.Fatalf("dynamic category changed: %+v", other)
	}
	if len(d.General().Emails) != 0 {
		t.Fatalf("original MailData was mutated")
	}
}

func TestReplaceDynamicKeepsGeneralFirst(t *testing.T) {
	d := MailData{Categories: []Category{
		{ID: "old", Name: "Old"},
		{ID: GeneralID, Name: "General", Emails: []Email{{ID: "g-1"}}},
	}}

	next := d.ReplaceDynamic([]Category{
		{ID: "soporte", Name: "Soporte"},
		{ID: GeneralID, Name: "Impostor"},
		{ID: "ventas", Name: "Ventas"},
	})

	want := []string{GeneralID, "soporte", "ventas"}
	if len(next.Categories) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(next.Categories))
	}
	for i, id := range want {
		if next.Categories[i].ID != id {
			t.Errorf("position %d: expected %q, got %q", i, id, next.Categories[i].ID)
		}
	}
	if next.Categories[0].Name != "General" || len(next.Categories[0].Emails) != 1 {
		t.Errorf("general category not preserved: %+v", next.Categories[0])
	}
}

func TestReplaceDynamicSeedsMissingGeneral(t *testing.T) {
	next := MailData{}.ReplaceDynamic([]Category{{ID: "a"}})
	if len(next.Categories) != 2 || next.Categories[0].ID != GeneralID {
		t.Fatalf("expected seeded general first, got %+v", next.Categories)
	}
}
