package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrJournalPostNotFound    = errors.New("journal post not found")
	ErrEventNotFound          = errors.New("event not found")
	ErrRitualNotFound         = errors.New("ritual not found")
	ErrPageContentNotFound    = errors.New("page content not found")
	ErrStandalonePageNotFound = errors.New("page not found")

	// ErrSlugTaken is returned when a create or update would duplicate a slug.
	ErrSlugTaken = errors.New("slug already in use")
	// ErrSectionTaken is returned when a page/section pair already exists.
	ErrSectionTaken = errors.New("page section already exists")
	// ErrInvalidInput wraps every field validation failure.
	ErrInvalidInput = errors.New("invalid input")
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// notFound maps gorm's missing-row error onto the collection's sentinel.
func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// conflict maps a unique violation that slipped past the pre-checks.
func conflict(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return sentinel
	}
	return err
}

// IsNotFound reports whether err is one of the collection not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrJournalPostNotFound) ||
		errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrRitualNotFound) ||
		errors.Is(err, ErrPageContentNotFound) ||
		errors.Is(err, ErrStandalonePageNotFound)
}
