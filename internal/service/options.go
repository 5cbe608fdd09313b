package service

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// ListOptions describes filters shared by the collection list endpoints.
type ListOptions struct {
	IncludeDrafts bool
	Category      string
	Page          string
	Sort          string
	Limit         int
	From          *time.Time
}

// sortColumns maps the public sort keys onto columns.
var sortColumns = map[string]string{
	"date":    "date",
	"title":   "title",
	"created": "created_at",
	"updated": "updated_at",
}

// applySort orders by the requested key, falling back to def. A leading "-" sorts
// descending. id breaks ties so paging stays stable.
func applySort(query *gorm.DB, requested, def string, allowed ...string) *gorm.DB {
	key := strings.TrimSpace(requested)
	if !sortAllowed(strings.TrimPrefix(key, "-"), allowed) {
		key = def
	}

	desc := strings.HasPrefix(key, "-")
	column := sortColumns[strings.TrimPrefix(key, "-")]
	if column == "" {
		column = "id"
	}
	if desc {
		return query.Order(column + " desc").Order("id desc")
	}
	return query.Order(column + " asc").Order("id asc")
}

func sortAllowed(key string, allowed []string) bool {
	for _, candidate := range allowed {
		if candidate == key {
			return true
		}
	}
	return false
}

func applyVisibility(query *gorm.DB, opts ListOptions) *gorm.DB {
	if opts.IncludeDrafts {
		return query
	}
	return query.Where("published = ?", true)
}

func applyLimit(query *gorm.DB, limit int) *gorm.DB {
	if limit > 0 {
		return query.Limit(limit)
	}
	return query
}

func trimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
