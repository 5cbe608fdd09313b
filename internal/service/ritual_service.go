package service

import (
	"strings"

	"github.com/emberhaus/internal/db"
	"gorm.io/gorm"
)

// RitualService wraps ritual database operations.
type RitualService struct {
	db *gorm.DB
}

// InstructorInput carries the nested instructor object of a ritual request.
type InstructorInput struct {
	Name  *string `json:"name"`
	Bio   *string `json:"bio"`
	Image *string `json:"image"`
}

// RitualInput represents fields accepted when creating or updating a ritual. List
// fields replace the stored list as a whole when present.
type RitualInput struct {
	Slug             *string            `json:"slug"`
	Title            *string            `json:"title"`
	Subtitle         *string            `json:"subtitle"`
	ShortDescription *string            `json:"shortDescription"`
	LongDescription  *string            `json:"longDescription"`
	Image            *string            `json:"image"`
	Duration         *string            `json:"duration"`
	Instructor       *InstructorInput   `json:"instructor"`
	Schedule         *[]db.ScheduleItem `json:"schedule"`
	Benefits         *[]string          `json:"benefits"`
	FAQ              *[]db.FAQItem      `json:"faq"`
	Published        *bool              `json:"published"`
}

// NewRitualService creates a RitualService instance.
func NewRitualService(gdb *gorm.DB) *RitualService {
	return &RitualService{db: gdb}
}

// List returns rituals by title unless another sort is requested.
func (s *RitualService) List(opts ListOptions) ([]db.Ritual, error) {
	query := applyVisibility(s.db.Model(&db.Ritual{}), opts)
	query = applySort(query, opts.Sort, "title", "title", "created", "updated")
	query = applyLimit(query, opts.Limit)

	var rituals []db.Ritual
	if err := query.Find(&rituals).Error; err != nil {
		return nil, err
	}
	return rituals, nil
}

// Get fetches a ritual by id.
func (s *RitualService) Get(id uint, includeDrafts bool) (*db.Ritual, error) {
	return findOne[db.Ritual](s.db, includeDrafts, ErrRitualNotFound, "id = ?", id)
}

// GetBySlug fetches a ritual by slug.
func (s *RitualService) GetBySlug(slug string, includeDrafts bool) (*db.Ritual, error) {
	return findOne[db.Ritual](s.db, includeDrafts, ErrRitualNotFound, "slug = ?", strings.TrimSpace(slug))
}

// Create validates and inserts a ritual.
func (s *RitualService) Create(input RitualInput) (*db.Ritual, error) {
	title := trimmed(input.Title)
	if title == "" {
		return nil, invalid("title is required")
	}

	ritual := db.Ritual{
		Schedule: db.JSONList[db.ScheduleItem]{},
		Benefits: db.StringList{},
		FAQ:      db.JSONList[db.FAQItem]{},
	}
	if err := s.apply(&ritual, input); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		slug, err := resolveSlug(tx, &db.Ritual{}, input.Slug, title, 0)
		if err != nil {
			return err
		}
		ritual.Slug = slug
		return tx.Create(&ritual).Error
	})
	if err != nil {
		return nil, conflict(err, ErrSlugTaken)
	}
	return &ritual, nil
}

// Update applies a partial update to an existing ritual.
func (s *RitualService) Update(id uint, input RitualInput) (*db.Ritual, error) {
	var ritual db.Ritual
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&ritual, id).Error; err != nil {
			return notFound(err, ErrRitualNotFound)
		}
		if input.Title != nil && trimmed(input.Title) == "" {
			return invalid("title is required")
		}
		if err := s.apply(&ritual, input); err != nil {
			return err
		}
		if input.Slug != nil {
			slug := trimmed(input.Slug)
			if !IsValidSlug(slug) {
				return invalidSlug(slug)
			}
			if err := ensureSlugFree(tx, &db.Ritual{}, slug, ritual.ID); err != nil {
				return err
			}
			ritual.Slug = slug
		}
		return tx.Save(&ritual).Error
	})
	if err != nil {
		return nil, conflict(err, ErrSlugTaken)
	}
	return &ritual, nil
}

// Delete removes a ritual by id.
func (s *RitualService) Delete(id uint) error {
	return deleteByID[db.Ritual](s.db, id, ErrRitualNotFound)
}

func (s *RitualService) apply(ritual *db.Ritual, input RitualInput) error {
	setString(&ritual.Title, input.Title)
	setString(&ritual.Subtitle, input.Subtitle)
	setString(&ritual.Image, input.Image)
	setString(&ritual.Duration, input.Duration)
	setBool(&ritual.Published, input.Published)

	short, err := richText(input.ShortDescription, ritual.ShortDescription)
	if err != nil {
		return err
	}
	ritual.ShortDescription = short

	long, err := richText(input.LongDescription, ritual.LongDescription)
	if err != nil {
		return err
	}
	ritual.LongDescription = long

	if input.Instructor != nil {
		setString(&ritual.Instructor.Name, input.Instructor.Name)
		setString(&ritual.Instructor.Bio, input.Instructor.Bio)
		setString(&ritual.Instructor.Image, input.Instructor.Image)
	}
	if input.Schedule != nil {
		schedule := make(db.JSONList[db.ScheduleItem], 0, len(*input.Schedule))
		for i, item := range *input.Schedule {
			item.Time = strings.TrimSpace(item.Time)
			item.Activity = strings.TrimSpace(item.Activity)
			if item.Time == "" && item.Activity == "" {
				return invalid("schedule entry %d is blank", i+1)
			}
			schedule = append(schedule, item)
		}
		ritual.Schedule = schedule
	}
	if input.Benefits != nil {
		benefits, err := cleanList("benefits", *input.Benefits)
		if err != nil {
			return err
		}
		ritual.Benefits = benefits
	}
	if input.FAQ != nil {
		faq := make(db.JSONList[db.FAQItem], 0, len(*input.FAQ))
		for i, item := range *input.FAQ {
			item.Question = strings.TrimSpace(item.Question)
			item.Answer = strings.TrimSpace(item.Answer)
			if item.Question == "" {
				return invalid("faq entry %d has no question", i+1)
			}
			faq = append(faq, item)
		}
		ritual.FAQ = faq
	}
	return nil
}
