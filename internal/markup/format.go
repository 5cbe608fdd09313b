package markup

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Action is a toolbar button of the admin editor.
type Action string

const (
	ActionBold   Action = "bold"
	ActionItalic Action = "italic"
	ActionList   Action = "list"
	ActionLink   Action = "link"
)

// ErrUnknownAction is returned for toolbar actions the editor does not offer.
var ErrUnknownAction = errors.New("unknown formatting action")

// Selection is a half-open rune range [Start, End) inside the editor text.
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Edit is the editor state after a toolbar action.
type Edit struct {
	Text      string    `json:"text"`
	Selection Selection `json:"selection"`
}

var placeholders = map[Action]string{
	ActionBold:   "bold text",
	ActionItalic: "italic text",
	ActionList:   "list item",
	ActionLink:   "link text",
}

// Apply performs a toolbar substitution on the selected range. Offsets are clamped to
// the text; an empty selection inserts a placeholder which comes back selected.
func Apply(text string, sel Selection, action Action, href string) (Edit, error) {
	placeholder, ok := placeholders[action]
	if !ok {
		return Edit{}, ErrUnknownAction
	}

	runes := []rune(text)
	start, end := clamp(sel.Start, len(runes)), clamp(sel.End, len(runes))
	if start > end {
		start, end = end, start
	}

	before := string(runes[:start])
	selected := string(runes[start:end])
	after := string(runes[end:])
	if selected == "" {
		selected = placeholder
	}

	var prefix, body, suffix string
	switch action {
	case ActionBold:
		prefix, body, suffix = "**", selected, "**"
	case ActionItalic:
		prefix, body, suffix = "*", selected, "*"
	case ActionLink:
		target := strings.TrimSpace(href)
		if target == "" {
			target = "https://"
		}
		prefix, body, suffix = "[", selected, "]("+target+")"
	case ActionList:
		if start > 0 && !strings.HasSuffix(before, "\n") {
			prefix = "\n"
		}
		body = bulletLines(selected)
	}

	newStart := utf8.RuneCountInString(before) + utf8.RuneCountInString(prefix)
	return Edit{
		Text: before + prefix + body + suffix + after,
		Selection: Selection{
			Start: newStart,
			End:   newStart + utf8.RuneCountInString(body),
		},
	}, nil
}

func bulletLines(selected string) string {
	lines := strings.Split(selected, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "- ") {
			continue
		}
		lines[i] = "- " + line
	}
	return strings.Join(lines, "\n")
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
