package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/emberhaus/internal/markup"
)

func TestPreviewMarkup(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.login(t)

	w := env.request(t, http.MethodPost, "/api/markup/preview", map[string]string{
		"text": "Warm **stones**<script>alert(1)</script>",
	}, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeJSON[map[string]string](t, w)
	if !strings.Contains(body["html"], "<strong>stones</strong>") {
		t.Fatalf("expected rendered markup, got %q", body["html"])
	}
	if strings.Contains(body["html"], "<script") {
		t.Fatalf("expected script to be stripped, got %q", body["html"])
	}
}

func TestFormatMarkup(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.login(t)

	w := env.request(t, http.MethodPost, "/api/markup/format", map[string]interface{}{
		"text":      "Warm stones",
		"selection": map[string]int{"start": 5, "end": 11},
		"action":    "bold",
	}, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	edit := decodeJSON[markup.Edit](t, w)
	if edit.Text != "Warm **stones**" {
		t.Fatalf("unexpected text %q", edit.Text)
	}

	w = env.request(t, http.MethodPost, "/api/markup/format", map[string]interface{}{
		"text":   "Warm stones",
		"action": "strike",
	}, cookies)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown action, got %d", w.Code)
	}
}
