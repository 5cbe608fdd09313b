package service

import (
	"sort"
	"strings"
	"time"

	"github.com/emberhaus/internal/db"
	"gorm.io/gorm"
)

// JournalService wraps journal post database operations.
type JournalService struct {
	db  *gorm.DB
	now func() time.Time
}

// AuthorInput carries the nested author object of a journal post request.
type AuthorInput struct {
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
}

// JournalPostInput represents fields accepted when creating or updating a post.
// Nil fields are left unchanged on update.
type JournalPostInput struct {
	Slug       *string      `json:"slug"`
	Title      *string      `json:"title"`
	Excerpt    *string      `json:"excerpt"`
	Content    *string      `json:"content"`
	Date       *string      `json:"date"`
	ReadTime   *string      `json:"readTime"`
	Categories *[]string    `json:"categories"`
	Author     *AuthorInput `json:"author"`
	Image      *string      `json:"image"`
	ImageAlt   *string      `json:"imageAlt"`
	Published  *bool        `json:"published"`
}

// CategoryUsage counts posts per category.
type CategoryUsage struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// NewJournalService creates a JournalService instance.
func NewJournalService(gdb *gorm.DB) *JournalService {
	return &JournalService{db: gdb, now: time.Now}
}

// List returns posts newest first unless another sort is requested.
func (s *JournalService) List(opts ListOptions) ([]db.JournalPost, error) {
	query := applyVisibility(s.db.Model(&db.JournalPost{}), opts)
	query = applySort(query, opts.Sort, "-date", "date", "title", "created", "updated")

	category := strings.TrimSpace(opts.Category)
	if category == "" {
		query = applyLimit(query, opts.Limit)
	}

	var posts []db.JournalPost
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	if category == "" {
		return posts, nil
	}

	filtered := posts[:0]
	for _, post := range posts {
		if hasCategory(post.Categories, category) {
			filtered = append(filtered, post)
		}
	}
	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[:opts.Limit]
	}
	return filtered, nil
}

// Get fetches a post by id.
func (s *JournalService) Get(id uint, includeDrafts bool) (*db.JournalPost, error) {
	return findOne[db.JournalPost](s.db, includeDrafts, ErrJournalPostNotFound, "id = ?", id)
}

// GetBySlug fetches a post by slug.
func (s *JournalService) GetBySlug(slug string, includeDrafts bool) (*db.JournalPost, error) {
	return findOne[db.JournalPost](s.db, includeDrafts, ErrJournalPostNotFound, "slug = ?", strings.TrimSpace(slug))
}

// Create validates and inserts a post. Title is required; slug and readTime are
// derived when omitted and date defaults to now.
func (s *JournalService) Create(input JournalPostInput) (*db.JournalPost, error) {
	title := trimmed(input.Title)
	if title == "" {
		return nil, invalid("title is required")
	}

	post := db.JournalPost{Date: s.now().UTC(), Categories: db.StringList{}}
	if err := s.apply(&post, input); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		slug, err := resolveSlug(tx, &db.JournalPost{}, input.Slug, title, 0)
		if err != nil {
			return err
		}
		post.Slug = slug
		return tx.Create(&post).Error
	})
	if err != nil {
		return nil, conflict(err, ErrSlugTaken)
	}
	return &post, nil
}

// Update applies a partial update to an existing post.
func (s *JournalService) Update(id uint, input JournalPostInput) (*db.JournalPost, error) {
	var post db.JournalPost
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, id).Error; err != nil {
			return notFound(err, ErrJournalPostNotFound)
		}
		if input.Title != nil && trimmed(input.Title) == "" {
			return invalid("title is required")
		}
		if err := s.apply(&post, input); err != nil {
			return err
		}
		if input.Slug != nil {
			slug := trimmed(input.Slug)
			if !IsValidSlug(slug) {
				return invalidSlug(slug)
			}
			if err := ensureSlugFree(tx, &db.JournalPost{}, slug, post.ID); err != nil {
				return err
			}
			post.Slug = slug
		}
		return tx.Save(&post).Error
	})
	if err != nil {
		return nil, conflict(err, ErrSlugTaken)
	}
	return &post, nil
}

// Delete removes a post by id.
func (s *JournalService) Delete(id uint) error {
	return deleteByID[db.JournalPost](s.db, id, ErrJournalPostNotFound)
}

// Categories returns category usage across posts, most used first.
func (s *JournalService) Categories(includeDrafts bool) ([]CategoryUsage, error) {
	posts, err := s.List(ListOptions{IncludeDrafts: includeDrafts})
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	names := make(map[string]string)
	for _, post := range posts {
		for _, category := range post.Categories {
			key := strings.ToLower(strings.TrimSpace(category))
			if key == "" {
				continue
			}
			if _, ok := names[key]; !ok {
				names[key] = strings.TrimSpace(category)
			}
			counts[key]++
		}
	}

	usages := make([]CategoryUsage, 0, len(counts))
	for key, count := range counts {
		usages = append(usages, CategoryUsage{Name: names[key], Count: count})
	}
	sort.Slice(usages, func(i, j int) bool {
		if usages[i].Count != usages[j].Count {
			return usages[i].Count > usages[j].Count
		}
		return usages[i].Name < usages[j].Name
	})
	return usages, nil
}

func (s *JournalService) apply(post *db.JournalPost, input JournalPostInput) error {
	setString(&post.Title, input.Title)
	setString(&post.Excerpt, input.Excerpt)
	setString(&post.Image, input.Image)
	setString(&post.ImageAlt, input.ImageAlt)
	setBool(&post.Published, input.Published)

	content, err := richText(input.Content, post.Content)
	if err != nil {
		return err
	}
	post.Content = content

	if input.Date != nil {
		date, err := ParseDate(*input.Date)
		if err != nil {
			return err
		}
		post.Date = date
	}
	if input.Categories != nil {
		categories, err := cleanList("categories", *input.Categories)
		if err != nil {
			return err
		}
		post.Categories = categories
	}
	if input.Author != nil {
		setString(&post.AuthorName, input.Author.Name)
		setString(&post.AuthorAvatar, input.Author.Avatar)
	}

	setString(&post.ReadTime, input.ReadTime)
	if input.ReadTime == nil || trimmed(input.ReadTime) == "" {
		if input.Content != nil || post.ReadTime == "" {
			post.ReadTime = estimateReadTime(post.Content)
		}
	}
	return nil
}

func hasCategory(categories db.StringList, want string) bool {
	for _, category := range categories {
		if strings.EqualFold(strings.TrimSpace(category), want) {
			return true
		}
	}
	return false
}

// cleanList trims entries, keeping order. A blank entry is an input error rather
// than something to skip, so a caller never loses a row without hearing about it.
func cleanList(field string, values []string) (db.StringList, error) {
	out := make(db.StringList, 0, len(values))
	for i, value := range values {
		v := strings.TrimSpace(value)
		if v == "" {
			return nil, invalid("%s entry %d is blank", field, i+1)
		}
		out = append(out, v)
	}
	return out, nil
}
