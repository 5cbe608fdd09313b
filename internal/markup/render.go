// Package markup implements the admin editor's lightweight markup: toolbar
// substitutions, rendering to HTML and sanitising rich-text fields.
package markup

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var engine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps(), html.WithUnsafe()),
)

// Render converts editor markup to sanitised HTML. Raw HTML inside the markup is kept
// only where the sanitising policy allows it.
func Render(text string) (template.HTML, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := engine.Convert([]byte(expandVideoEmbeds(text)), &buf); err != nil {
		return "", err
	}
	return template.HTML(Policy().SanitizeBytes(buf.Bytes())), nil
}

// Trusted turns a stored rich-text value into template HTML. Stored HTML is
// sanitised again; editor markup is rendered first.
func Trusted(stored string) template.HTML {
	if strings.HasPrefix(strings.TrimSpace(stored), "<") {
		return template.HTML(SanitizeHTML(stored))
	}
	rendered, err := Render(stored)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(stored))
	}
	return template.HTML(strings.TrimSpace(string(rendered)))
}

// RichText normalises a submitted rich-text field for storage. Values containing
// tags are sanitised; plain editor markup is stored as written and rendered when
// the page is built.
func RichText(value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	if !strings.Contains(value, "<") {
		return value, nil
	}
	return SanitizeHTML(value), nil
}
