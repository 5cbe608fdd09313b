package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/emberhaus/internal/markup"
	"gorm.io/gorm"
)

// findOne loads a single row matching the condition. Drafts are treated as missing
// unless includeDrafts is set.
func findOne[T any](tx *gorm.DB, includeDrafts bool, sentinel error, cond string, args ...interface{}) (*T, error) {
	var row T
	query := tx.Where(cond, args...)
	if !includeDrafts {
		query = query.Where("published = ?", true)
	}
	if err := query.First(&row).Error; err != nil {
		return nil, notFound(err, sentinel)
	}
	return &row, nil
}

// deleteByID hard deletes a row and reports sentinel when nothing matched.
func deleteByID[T any](tx *gorm.DB, id uint, sentinel error) error {
	result := tx.Delete(new(T), id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return sentinel
	}
	return nil
}

// richText sanitises an HTML field; nil leaves the stored value alone.
func richText(value *string, current string) (string, error) {
	if value == nil {
		return current, nil
	}
	html, err := markup.RichText(*value)
	if err != nil {
		return "", fmt.Errorf("render rich text: %w", err)
	}
	return html, nil
}

func setString(dst *string, value *string) {
	if value != nil {
		*dst = strings.TrimSpace(*value)
	}
}

func setBool(dst *bool, value *bool) {
	if value != nil {
		*dst = *value
	}
}

// ParseDate accepts RFC3339 timestamps or plain calendar dates and returns UTC.
func ParseDate(value string) (time.Time, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return time.Time{}, invalid("date is required")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, invalid("date %q must be RFC3339 or YYYY-MM-DD", raw)
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// estimateReadTime counts words of the visible text at 200 words per minute.
func estimateReadTime(html string) string {
	words := len(strings.Fields(htmlTagPattern.ReplaceAllString(html, " ")))
	if words == 0 {
		return ""
	}
	minutes := words / 200
	if words%200 != 0 {
		minutes++
	}
	return fmt.Sprintf("%d min read", minutes)
}
