package service

import (
	"strings"
	"unicode/utf8"

	"github.com/emberhaus/internal/db"
	"gorm.io/gorm"
)

// reservedSlugs are first path segments owned by fixed routes; a standalone page
// with one of these slugs could never be reached.
var reservedSlugs = map[string]struct{}{
	"admin":    {},
	"api":      {},
	"events":   {},
	"rituals":  {},
	"journal":  {},
	"uploads":  {},
	"static":   {},
	"healthz":  {},
	"sitemap":  {},
	"robots":   {},
	"index":    {},
	"home":     {},
	"login":    {},
	"logout":   {},
	"feed":     {},
	"settings": {},
}

// StandalonePageService manages freestanding pages such as Terms or About.
type StandalonePageService struct {
	db *gorm.DB
}

// StandalonePageInput represents fields accepted when creating or updating a page.
type StandalonePageInput struct {
	Slug            *string `json:"slug"`
	Title           *string `json:"title"`
	Content         *string `json:"content"`
	MetaTitle       *string `json:"metaTitle"`
	MetaDescription *string `json:"metaDescription"`
	Published       *bool   `json:"published"`
}

// NewStandalonePageService returns a new StandalonePageService instance.
func NewStandalonePageService(gdb *gorm.DB) *StandalonePageService {
	return &StandalonePageService{db: gdb}
}

// List returns pages by title unless another sort is requested.
func (s *StandalonePageService) List(opts ListOptions) ([]db.StandalonePage, error) {
	query := applyVisibility(s.db.Model(&db.StandalonePage{}), opts)
	query = applySort(query, opts.Sort, "title", "title", "created", "updated")
	query = applyLimit(query, opts.Limit)

	var pages []db.StandalonePage
	if err := query.Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

// Get fetches a page by id.
func (s *StandalonePageService) Get(id uint, includeDrafts bool) (*db.StandalonePage, error) {
	return findOne[db.StandalonePage](s.db, includeDrafts, ErrStandalonePageNotFound, "id = ?", id)
}

// GetBySlug fetches a page for a given slug.
func (s *StandalonePageService) GetBySlug(slug string, includeDrafts bool) (*db.StandalonePage, error) {
	return findOne[db.StandalonePage](s.db, includeDrafts, ErrStandalonePageNotFound, "slug = ?", strings.TrimSpace(slug))
}

// Create validates and inserts a page.
func (s *StandalonePageService) Create(input StandalonePageInput) (*db.StandalonePage, error) {
	title := trimmed(input.Title)
	if title == "" {
		return nil, invalid("title is required")
	}

	var page db.StandalonePage
	if err := s.apply(&page, input); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		slug, err := resolveSlug(tx, &db.StandalonePage{}, input.Slug, title, 0)
		if err != nil {
			return err
		}
		if isReservedSlug(slug) {
			return invalid("slug %q is reserved", slug)
		}
		page.Slug = slug
		return tx.Create(&page).Error
	})
	if err != nil {
		return nil, conflict(err, ErrSlugTaken)
	}
	return &page, nil
}

// Update applies a partial update to an existing page.
func (s *StandalonePageService) Update(id uint, input StandalonePageInput) (*db.StandalonePage, error) {
	var page db.StandalonePage
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&page, id).Error; err != nil {
			return notFound(err, ErrStandalonePageNotFound)
		}
		if input.Title != nil && trimmed(input.Title) == "" {
			return invalid("title is required")
		}
		if err := s.apply(&page, input); err != nil {
			return err
		}
		if input.Slug != nil {
			slug := trimmed(input.Slug)
			if !IsValidSlug(slug) {
				return invalidSlug(slug)
			}
			if isReservedSlug(slug) {
				return invalid("slug %q is reserved", slug)
			}
			if err := ensureSlugFree(tx, &db.StandalonePage{}, slug, page.ID); err != nil {
				return err
			}
			page.Slug = slug
		}
		return tx.Save(&page).Error
	})
	if err != nil {
		return nil, conflict(err, ErrSlugTaken)
	}
	return &page, nil
}

// Delete removes a page by id.
func (s *StandalonePageService) Delete(id uint) error {
	return deleteByID[db.StandalonePage](s.db, id, ErrStandalonePageNotFound)
}

func (s *StandalonePageService) apply(page *db.StandalonePage, input StandalonePageInput) error {
	setString(&page.Title, input.Title)
	setString(&page.MetaTitle, input.MetaTitle)
	setString(&page.MetaDescription, input.MetaDescription)
	setBool(&page.Published, input.Published)

	content, err := richText(input.Content, page.Content)
	if err != nil {
		return err
	}
	page.Content = content
	return nil
}

func isReservedSlug(slug string) bool {
	_, ok := reservedSlugs[slug]
	return ok
}

// Summarize flattens HTML to plain text and cuts it at limit runes, for meta
// descriptions and list teasers.
func Summarize(html string, limit int) string {
	plain := strings.Join(strings.Fields(htmlTagPattern.ReplaceAllString(html, " ")), " ")
	plain = strings.NewReplacer("&amp;", "&", "&#39;", "'", "&quot;", `"`, "&lt;", "<", "&gt;", ">", "&nbsp;", " ").Replace(plain)
	if plain == "" || limit <= 0 {
		return plain
	}
	if utf8.RuneCountInString(plain) <= limit {
		return plain
	}
	runes := []rune(plain)
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
