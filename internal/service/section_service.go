package service

import (
	"encoding/json"
	"strings"

	"github.com/emberhaus/internal/db"
	"gorm.io/gorm"
)

// SectionService manages editable page sections.
type SectionService struct {
	db *gorm.DB
}

// PageContentInput represents fields accepted when creating or updating a section.
type PageContentInput struct {
	Page            *string         `json:"page"`
	Section         *string         `json:"section"`
	Title           *string         `json:"title"`
	Subtitle        *string         `json:"subtitle"`
	Content         json.RawMessage `json:"content"`
	BackgroundImage *string         `json:"backgroundImage"`
	OverlayOpacity  *float64        `json:"overlayOpacity"`
}

// NewSectionService creates a SectionService instance.
func NewSectionService(gdb *gorm.DB) *SectionService {
	return &SectionService{db: gdb}
}

// List returns sections ordered by page then section, optionally for one page.
func (s *SectionService) List(opts ListOptions) ([]db.PageContent, error) {
	query := s.db.Model(&db.PageContent{})
	if page := strings.TrimSpace(opts.Page); page != "" {
		query = query.Where("page = ?", page)
	}
	switch strings.TrimSpace(opts.Sort) {
	case "created", "-created", "updated", "-updated", "title", "-title":
		query = applySort(query, opts.Sort, "title", "title", "created", "updated")
	default:
		query = query.Order("page asc").Order("section asc").Order("id asc")
	}
	query = applyLimit(query, opts.Limit)

	var sections []db.PageContent
	if err := query.Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

// Get fetches a section by id.
func (s *SectionService) Get(id uint) (*db.PageContent, error) {
	return findOne[db.PageContent](s.db, true, ErrPageContentNotFound, "id = ?", id)
}

// Find fetches a section by page and section name.
func (s *SectionService) Find(page, section string) (*db.PageContent, error) {
	return findOne[db.PageContent](s.db, true, ErrPageContentNotFound, "page = ? AND section = ?", strings.TrimSpace(page), strings.TrimSpace(section))
}

// Create validates and inserts a section. Page, section and content are required and
// the page/section pair must be free.
func (s *SectionService) Create(input PageContentInput) (*db.PageContent, error) {
	if trimmed(input.Page) == "" || trimmed(input.Section) == "" {
		return nil, invalid("page and section are required")
	}
	if len(input.Content) == 0 {
		return nil, invalid("content is required")
	}

	var row db.PageContent
	if err := s.apply(&row, input); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.ensurePairFree(tx, row.Page, row.Section, 0); err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, conflict(err, ErrSectionTaken)
	}
	return &row, nil
}

// Update applies a partial update to an existing section.
func (s *SectionService) Update(id uint, input PageContentInput) (*db.PageContent, error) {
	var row db.PageContent
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, id).Error; err != nil {
			return notFound(err, ErrPageContentNotFound)
		}
		if (input.Page != nil && trimmed(input.Page) == "") || (input.Section != nil && trimmed(input.Section) == "") {
			return invalid("page and section are required")
		}
		if err := s.apply(&row, input); err != nil {
			return err
		}
		if err := s.ensurePairFree(tx, row.Page, row.Section, row.ID); err != nil {
			return err
		}
		return tx.Save(&row).Error
	})
	if err != nil {
		return nil, conflict(err, ErrSectionTaken)
	}
	return &row, nil
}

// Delete removes a section by id.
func (s *SectionService) Delete(id uint) error {
	return deleteByID[db.PageContent](s.db, id, ErrPageContentNotFound)
}

func (s *SectionService) apply(row *db.PageContent, input PageContentInput) error {
	setString(&row.Page, input.Page)
	setString(&row.Section, input.Section)
	setString(&row.Title, input.Title)
	setString(&row.Subtitle, input.Subtitle)
	setString(&row.BackgroundImage, input.BackgroundImage)

	if input.OverlayOpacity != nil {
		opacity := *input.OverlayOpacity
		if opacity < 0 || opacity > 1 {
			return invalid("overlayOpacity must be between 0 and 1")
		}
		row.OverlayOpacity = opacity
	}
	if len(input.Content) > 0 {
		_, canonical, err := ParseSection(input.Content)
		if err != nil {
			return err
		}
		row.Content = string(canonical)
	}
	return nil
}

func (s *SectionService) ensurePairFree(tx *gorm.DB, page, section string, excludeID uint) error {
	var count int64
	query := tx.Model(&db.PageContent{}).Where("page = ? AND section = ?", page, section)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrSectionTaken
	}
	return nil
}
