package lizechat

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func mustCollection(t *testing.T, reg *Registry, name string) Collection {
	t.Helper()
	col, ok := reg.Get(name)
	if !ok {
		t.Fatalf("collection %q not declared", name)
	}
	return col
}

func TestValidateTitleOnly(t *testing.T) {
	fm := map[string]any{"title": "Only a title"}

	optional := mustCollection(t, DefaultRegistry(), CollectionDialogue)
	e, err := optional.Validate("only-title", fm)
	if err != nil {
		t.Fatalf("title-only entry should pass with optional dates: %v", err)
	}
	if _, ok := e.Published(); ok {
		t.Error("entry without dates should be undated")
	}

	strict := mustCollection(t, DefaultRegistry(WithRequired(CollectionDialogue, FieldDate)), CollectionDialogue)
	_, err = strict.Validate("only-title", fm)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError when date is required, got %v", err)
	}
	if !ve.Has(FieldDate) {
		t.Errorf("expected date failure, got %v", ve)
	}
}

func TestValidateMissingTitle(t *testing.T) {
	col := mustCollection(t, DefaultRegistry(), CollectionBlog)
	for _, fm := range []map[string]any{
		{},
		{"title": nil},
	} {
		_, err := col.Validate("x", fm)
		var ve *ValidationError
		if !errors.As(err, &ve) || !ve.Has(FieldTitle) {
			t.Errorf("Validate(%v) should fail on title, got %v", fm, err)
		}
	}
}

func TestValidateEmptyTitleIsPresent(t *testing.T) {
	col := mustCollection(t, DefaultRegistry(), CollectionBlog)
	for _, title := range []string{"", "   "} {
		e, err := col.Validate("x", map[string]any{"title": title})
		if err != nil {
			t.Errorf("Validate(title=%q) error: %v", title, err)
			continue
		}
		if e.Title != title {
			t.Errorf("Title = %q, want %q", e.Title, title)
		}
	}
}

func TestValidateDialogueISODate(t *testing.T) {
	col := mustCollection(t, DefaultRegistry(), CollectionDialogue)
	e, err := col.Validate("talk", map[string]any{"title": "Talk", "date": "2024-05-20"})
	if err != nil {
		t.Fatal(err)
	}
	got, ok := e.Date(FieldDate)
	if !ok {
		t.Fatal("date not parsed")
	}
	if want := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("date = %v, want %v", got, want)
	}
}

func TestValidateBothDateNamesIndependent(t *testing.T) {
	col := mustCollection(t, DefaultRegistry(), CollectionBlog)
	e, err := col.Validate("both", map[string]any{
		"title":   "Both",
		"date":    "2023-12-01",
		"pubDate": "2024-02-10",
	})
	if err != nil {
		t.Fatal(err)
	}
	d, _ := e.Date(FieldDate)
	p, _ := e.Date(FieldPubDate)
	if !d.Equal(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", d)
	}
	if !p.Equal(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("pubDate = %v", p)
	}
	if e.DateSource() != FieldPubDate {
		t.Errorf("blog should resolve from pubDate, got %q", e.DateSource())
	}

	dialogue := mustCollection(t, DefaultRegistry(), CollectionDialogue)
	e, err = dialogue.Validate("both", map[string]any{
		"title":   "Both",
		"date":    "2023-12-01",
		"pubDate": "2024-02-10",
	})
	if err != nil {
		t.Fatal(err)
	}
	if e.DateSource() != FieldDate {
		t.Errorf("dialogue should resolve from date, got %q", e.DateSource())
	}
}

func TestValidateInvalidDateDoesNotAffectOther(t *testing.T) {
	col := mustCollection(t, DefaultRegistry(), CollectionBlog)
	e, err := col.Validate("broken", map[string]any{
		"title":   "Broken",
		"date":    "not a date",
		"pubDate": "2024-02-10",
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !ve.Has(FieldDate) || ve.Has(FieldPubDate) {
		t.Errorf("only date should fail, got %v", ve)
	}
	if _, ok := e.Date(FieldPubDate); !ok {
		t.Error("pubDate should still be parsed")
	}
	if !errors.Is(err, ErrUncoercibleDate) {
		t.Errorf("error should wrap ErrUncoercibleDate: %v", err)
	}
}

func TestValidateFallsBackToLegacyDate(t *testing.T) {
	col := mustCollection(t, DefaultRegistry(), CollectionBlog)
	e, err := col.Validate("legacy", map[string]any{"title": "Legacy", "date": "2022-06-01"})
	if err != nil {
		t.Fatal(err)
	}
	got, ok := e.Published()
	if !ok || !got.Equal(time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Published = %v, %v", got, ok)
	}
	if e.DateSource() != FieldDate {
		t.Errorf("DateSource = %q, want date", e.DateSource())
	}
	if e.PublishedString() != "2022-06-01" {
		t.Errorf("PublishedString = %q", e.PublishedString())
	}
}

func TestValidateFieldKinds(t *testing.T) {
	col := mustCollection(t, DefaultRegistry(), CollectionDialogue)
	e, err := col.Validate("full", map[string]any{
		"title":        "Full",
		"description":  "desc",
		"participants": []any{"Ann", "Bo"},
		"guest":        "Bo",
		"host":         "Ann",
		"tags":         []any{"ai", "talk"},
		"slideUrl":     "https://example.com/slides",
		"draft":        true,
		"layout":       "wide",
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"Ann", "Bo"}, e.Participants); diff != "" {
		t.Errorf("participants (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ai", "talk"}, e.Tags); diff != "" {
		t.Errorf("tags (-want +got):\n%s", diff)
	}
	if e.Guest != "Bo" || e.Host != "Ann" || e.SlideURL != "https://example.com/slides" || e.Description != "desc" {
		t.Errorf("string fields not set: %+v", e)
	}
	if !e.Draft {
		t.Error("draft should be true")
	}
	if e.Extra["layout"] != "wide" {
		t.Errorf("unknown key should pass through, Extra = %v", e.Extra)
	}
}

func TestValidateRejectsWrongKinds(t *testing.T) {
	col := mustCollection(t, DefaultRegistry(), CollectionBlog)
	_, err := col.Validate("bad", map[string]any{
		"title":        42,
		"tags":         "ai",
		"participants": []any{"Ann", 3},
		"draft":        "yes",
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, f := range []string{FieldTitle, FieldTags, FieldParticipants, FieldDraft} {
		if !ve.Has(f) {
			t.Errorf("expected failure on %s, got %v", f, ve)
		}
	}
	if len(ve.Errs) != 4 {
		t.Errorf("got %d errors, want 4: %v", len(ve.Errs), ve)
	}
}

func TestValidateNullOptionalField(t *testing.T) {
	col := mustCollection(t, DefaultRegistry(), CollectionBlog)
	if _, err := col.Validate("nulls", map[string]any{"title": "t", "pubDate": nil, "tags": nil}); err != nil {
		t.Errorf("null optional fields should be treated as absent: %v", err)
	}
}
