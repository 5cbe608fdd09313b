package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringList stores string lists as JSON text. Legacy rows holding a bare string or a
// comma separated value still read back as a list; unreadable values read back empty.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value interface{}) error {
	if l == nil {
		return fmt.Errorf("db.StringList: Scan on nil pointer")
	}
	raw, ok := columnText(value)
	if !ok || raw == "" || raw == "null" {
		*l = StringList{}
		return nil
	}

	var arr []string
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		*l = StringList(arr)
		return nil
	}

	if strings.HasPrefix(raw, "[") || strings.HasPrefix(raw, "{") {
		*l = StringList{}
		return nil
	}

	*l = SplitList(raw)
	return nil
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(raw string) StringList {
	parts := strings.Split(raw, ",")
	out := make(StringList, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// JSONList stores a list of structs as JSON text. Malformed rows read back empty.
type JSONList[T any] []T

// Value implements driver.Valuer.
func (l JSONList[T]) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]T(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *JSONList[T]) Scan(value interface{}) error {
	if l == nil {
		return fmt.Errorf("db.JSONList: Scan on nil pointer")
	}
	raw, ok := columnText(value)
	if !ok || raw == "" || raw == "null" {
		*l = JSONList[T]{}
		return nil
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		*l = JSONList[T]{}
		return nil
	}
	*l = JSONList[T](items)
	return nil
}

func columnText(value interface{}) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case []byte:
		return strings.TrimSpace(string(v)), true
	case string:
		return strings.TrimSpace(v), true
	default:
		return "", false
	}
}
