package service

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseSectionKinds(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want SectionKind
	}{
		{"text", `{"kind":"text","body":"Slow **down**"}`, SectionText},
		{"hero", `{"kind":"hero","heading":"Feel the heat","videoUrl":"/uploads/hero.mp4"}`, SectionHero},
		{"features", `{"kind":"features","items":[{"title":"Sauna","body":"Finnish style","icon":"flame"}]}`, SectionFeatures},
		{"quote", `{"kind":"quote","text":"Best evening","attribution":"Guest"}`, SectionQuote},
		{"cta", `{"kind":"cta","label":"Book","href":"/events"}`, SectionCTA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, canonical, err := ParseSection([]byte(tt.raw))
			if err != nil {
				t.Fatalf("ParseSection returned error: %v", err)
			}
			if doc.Kind != tt.want {
				t.Fatalf("expected kind %s, got %s", tt.want, doc.Kind)
			}
			if !json.Valid(canonical) {
				t.Fatalf("canonical form is not JSON: %s", canonical)
			}
		})
	}

	doc, _, err := ParseSection([]byte(`{"kind":"text","body":"Slow **down**"}`))
	if err != nil {
		t.Fatalf("ParseSection returned error: %v", err)
	}
	if doc.Body != "Slow **down**" {
		t.Fatalf("expected editor markup kept as written, got %q", doc.Body)
	}
}

func TestParseSectionRejects(t *testing.T) {
	cases := map[string]string{
		"empty":         ``,
		"null":          `null`,
		"not object":    `"hello"`,
		"missing kind":  `{"body":"x"}`,
		"unknown kind":  `{"kind":"carousel"}`,
		"foreign field": `{"kind":"quote","text":"x","heading":"y"}`,
		"hero heading":  `{"kind":"hero","videoUrl":"/v.mp4"}`,
		"empty items":   `{"kind":"features","items":[]}`,
		"cta href":      `{"kind":"cta","label":"Book"}`,
	}
	for name, raw := range cases {
		if _, _, err := ParseSection([]byte(raw)); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestSectionCreateUpdateAndConflicts(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewSectionService(gdb)

	opacity := 0.4
	created, err := svc.Create(PageContentInput{
		Page:           strPtr("home"),
		Section:        strPtr("hero"),
		Title:          strPtr("Welcome"),
		Content:        json.RawMessage(`{"kind":"hero","heading":"Feel the heat"}`),
		OverlayOpacity: &opacity,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.Create(PageContentInput{
		Page:    strPtr("home"),
		Section: strPtr("hero"),
		Content: json.RawMessage(`{"kind":"quote","text":"again"}`),
	}); !errors.Is(err, ErrSectionTaken) {
		t.Fatalf("expected ErrSectionTaken, got %v", err)
	}

	tooDark := 1.5
	if _, err := svc.Update(created.ID, PageContentInput{OverlayOpacity: &tooDark}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	updated, err := svc.Update(created.ID, PageContentInput{Subtitle: strPtr("Since 2019")})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.OverlayOpacity != 0.4 || updated.Title != "Welcome" || updated.Subtitle != "Since 2019" {
		t.Fatalf("unexpected update result %#v", updated)
	}
	if DecodeSection(updated.Content).Heading != "Feel the heat" {
		t.Fatalf("content lost on partial update: %s", updated.Content)
	}

	found, err := svc.Find("home", "hero")
	if err != nil || found.ID != created.ID {
		t.Fatalf("Find returned %v, %v", found, err)
	}

	list, err := svc.List(ListOptions{Page: "home"})
	if err != nil || len(list) != 1 {
		t.Fatalf("List returned %d rows, %v", len(list), err)
	}

	if err := svc.Delete(created.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := svc.Get(created.ID); !errors.Is(err, ErrPageContentNotFound) {
		t.Fatalf("expected ErrPageContentNotFound, got %v", err)
	}
}

func TestSectionRequiresPageSectionAndContent(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewSectionService(gdb)

	cases := []PageContentInput{
		{Section: strPtr("hero"), Content: json.RawMessage(`{"kind":"text","body":"x"}`)},
		{Page: strPtr("home"), Content: json.RawMessage(`{"kind":"text","body":"x"}`)},
		{Page: strPtr("home"), Section: strPtr("intro")},
	}
	for i, input := range cases {
		if _, err := svc.Create(input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestPageContentViewMalformedContent(t *testing.T) {
	view := PageContentToView(pageContentRow(`{broken`))
	if string(view.Content) != `{}` {
		t.Fatalf("expected empty object, got %s", view.Content)
	}
	if DecodeSection(`{broken`).Kind != "" {
		t.Fatal("expected empty document")
	}
}
