package service

import (
	"strings"
	"time"

	"github.com/emberhaus/internal/db"
	"gorm.io/gorm"
)

// EventService wraps event database operations.
type EventService struct {
	db *gorm.DB
}

// EventInput represents fields accepted when creating or updating an event.
type EventInput struct {
	Slug        *string `json:"slug"`
	Title       *string `json:"title"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Location    *string `json:"location"`
	Capacity    *int    `json:"capacity"`
	Price       *string `json:"price"`
	Published   *bool   `json:"published"`
}

// NewEventService creates an EventService instance.
func NewEventService(gdb *gorm.DB) *EventService {
	return &EventService{db: gdb}
}

// List returns events in calendar order unless another sort is requested. From
// restricts the result to events on or after that instant's UTC calendar day, so an
// event stays listed for the whole of its day.
func (s *EventService) List(opts ListOptions) ([]db.Event, error) {
	query := applyVisibility(s.db.Model(&db.Event{}), opts)
	if category := strings.TrimSpace(opts.Category); category != "" {
		query = query.Where("LOWER(category) = ?", strings.ToLower(category))
	}
	if opts.From != nil {
		query = query.Where("date >= ?", opts.From.UTC().Truncate(24*time.Hour))
	}
	query = applySort(query, opts.Sort, "date", "date", "title", "created", "updated")
	query = applyLimit(query, opts.Limit)

	var events []db.Event
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Get fetches an event by id.
func (s *EventService) Get(id uint, includeDrafts bool) (*db.Event, error) {
	return findOne[db.Event](s.db, includeDrafts, ErrEventNotFound, "id = ?", id)
}

// GetBySlug fetches an event by slug.
func (s *EventService) GetBySlug(slug string, includeDrafts bool) (*db.Event, error) {
	return findOne[db.Event](s.db, includeDrafts, ErrEventNotFound, "slug = ?", strings.TrimSpace(slug))
}

// Create validates and inserts an event. Title and date are required.
func (s *EventService) Create(input EventInput) (*db.Event, error) {
	title := trimmed(input.Title)
	if title == "" {
		return nil, invalid("title is required")
	}
	if input.Date == nil {
		return nil, invalid("date is required")
	}

	var event db.Event
	if err := s.apply(&event, input); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		slug, err := resolveSlug(tx, &db.Event{}, input.Slug, title, 0)
		if err != nil {
			return err
		}
		event.Slug = slug
		return tx.Create(&event).Error
	})
	if err != nil {
		return nil, conflict(err, ErrSlugTaken)
	}
	return &event, nil
}

// Update applies a partial update to an existing event.
func (s *EventService) Update(id uint, input EventInput) (*db.Event, error) {
	var event db.Event
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&event, id).Error; err != nil {
			return notFound(err, ErrEventNotFound)
		}
		if input.Title != nil && trimmed(input.Title) == "" {
			return invalid("title is required")
		}
		if err := s.apply(&event, input); err != nil {
			return err
		}
		if input.Slug != nil {
			slug := trimmed(input.Slug)
			if !IsValidSlug(slug) {
				return invalidSlug(slug)
			}
			if err := ensureSlugFree(tx, &db.Event{}, slug, event.ID); err != nil {
				return err
			}
			event.Slug = slug
		}
		return tx.Save(&event).Error
	})
	if err != nil {
		return nil, conflict(err, ErrSlugTaken)
	}
	return &event, nil
}

// Delete removes an event by id.
func (s *EventService) Delete(id uint) error {
	return deleteByID[db.Event](s.db, id, ErrEventNotFound)
}

func (s *EventService) apply(event *db.Event, input EventInput) error {
	setString(&event.Title, input.Title)
	setString(&event.Category, input.Category)
	setString(&event.Image, input.Image)
	setString(&event.Time, input.Time)
	setString(&event.Location, input.Location)
	setString(&event.Price, input.Price)
	setBool(&event.Published, input.Published)

	description, err := richText(input.Description, event.Description)
	if err != nil {
		return err
	}
	event.Description = description

	if input.Date != nil {
		date, err := ParseDate(*input.Date)
		if err != nil {
			return err
		}
		event.Date = date
	}
	if input.Capacity != nil {
		if *input.Capacity < 0 {
			return invalid("capacity must not be negative")
		}
		event.Capacity = *input.Capacity
	}
	return nil
}
