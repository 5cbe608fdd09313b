package service

import (
	"encoding/json"
	"time"

	"github.com/emberhaus/internal/db"
)

// AuthorView is the nested author object of a journal post.
type AuthorView struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// JournalPostView is the public JSON shape of a journal post.
type JournalPostView struct {
	ID         uint       `json:"id"`
	Slug       string     `json:"slug"`
	Title      string     `json:"title"`
	Excerpt    string     `json:"excerpt"`
	Content    string     `json:"content"`
	Date       time.Time  `json:"date"`
	ReadTime   string     `json:"readTime"`
	Categories []string   `json:"categories"`
	Author     AuthorView `json:"author"`
	Image      string     `json:"image"`
	ImageAlt   string     `json:"imageAlt"`
	Published  bool       `json:"published"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// EventView is the public JSON shape of an event.
type EventView struct {
	ID          uint      `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	Price       string    `json:"price"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// RitualView is the public JSON shape of a ritual.
type RitualView struct {
	ID               uint              `json:"id"`
	Slug             string            `json:"slug"`
	Title            string            `json:"title"`
	Subtitle         string            `json:"subtitle"`
	ShortDescription string            `json:"shortDescription"`
	LongDescription  string            `json:"longDescription"`
	Image            string            `json:"image"`
	Duration         string            `json:"duration"`
	Instructor       db.Instructor     `json:"instructor"`
	Schedule         []db.ScheduleItem `json:"schedule"`
	Benefits         []string          `json:"benefits"`
	FAQ              []db.FAQItem      `json:"faq"`
	Published        bool              `json:"published"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// PageContentView is the public JSON shape of a page section.
type PageContentView struct {
	ID              uint            `json:"id"`
	Page            string          `json:"page"`
	Section         string          `json:"section"`
	Title           string          `json:"title"`
	Subtitle        string          `json:"subtitle"`
	Content         json.RawMessage `json:"content"`
	BackgroundImage string          `json:"backgroundImage"`
	OverlayOpacity  float64         `json:"overlayOpacity"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// StandalonePageView is the public JSON shape of a standalone page.
type StandalonePageView struct {
	ID              uint      `json:"id"`
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	MetaTitle       string    `json:"metaTitle"`
	MetaDescription string    `json:"metaDescription"`
	Published       bool      `json:"published"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func JournalPostToView(p db.JournalPost) JournalPostView {
	return JournalPostView{
		ID:         p.ID,
		Slug:       p.Slug,
		Title:      p.Title,
		Excerpt:    p.Excerpt,
		Content:    p.Content,
		Date:       p.Date.UTC(),
		ReadTime:   p.ReadTime,
		Categories: nonNil(p.Categories),
		Author:     AuthorView{Name: p.AuthorName, Avatar: p.AuthorAvatar},
		Image:      p.Image,
		ImageAlt:   p.ImageAlt,
		Published:  p.Published,
		CreatedAt:  p.CreatedAt.UTC(),
		UpdatedAt:  p.UpdatedAt.UTC(),
	}
}

// JournalPostFromView is the inverse used by snapshot restore; ids and timestamps are kept.
func JournalPostFromView(v JournalPostView) db.JournalPost {
	return db.JournalPost{
		ID:           v.ID,
		Slug:         v.Slug,
		Title:        v.Title,
		Excerpt:      v.Excerpt,
		Content:      v.Content,
		Date:         v.Date.UTC(),
		ReadTime:     v.ReadTime,
		Categories:   db.StringList(nonNil(v.Categories)),
		AuthorName:   v.Author.Name,
		AuthorAvatar: v.Author.Avatar,
		Image:        v.Image,
		ImageAlt:     v.ImageAlt,
		Published:    v.Published,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

func EventToView(e db.Event) EventView {
	return EventView{
		ID:          e.ID,
		Slug:        e.Slug,
		Title:       e.Title,
		Category:    e.Category,
		Description: e.Description,
		Image:       e.Image,
		Date:        e.Date.UTC(),
		Time:        e.Time,
		Location:    e.Location,
		Capacity:    e.Capacity,
		Price:       e.Price,
		Published:   e.Published,
		CreatedAt:   e.CreatedAt.UTC(),
		UpdatedAt:   e.UpdatedAt.UTC(),
	}
}

func EventFromView(v EventView) db.Event {
	return db.Event{
		ID:          v.ID,
		Slug:        v.Slug,
		Title:       v.Title,
		Category:    v.Category,
		Description: v.Description,
		Image:       v.Image,
		Date:        v.Date.UTC(),
		Time:        v.Time,
		Location:    v.Location,
		Capacity:    v.Capacity,
		Price:       v.Price,
		Published:   v.Published,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

func RitualToView(r db.Ritual) RitualView {
	return RitualView{
		ID:               r.ID,
		Slug:             r.Slug,
		Title:            r.Title,
		Subtitle:         r.Subtitle,
		ShortDescription: r.ShortDescription,
		LongDescription:  r.LongDescription,
		Image:            r.Image,
		Duration:         r.Duration,
		Instructor:       r.Instructor,
		Schedule:         nonNil(r.Schedule),
		Benefits:         nonNil(r.Benefits),
		FAQ:              nonNil(r.FAQ),
		Published:        r.Published,
		CreatedAt:        r.CreatedAt.UTC(),
		UpdatedAt:        r.UpdatedAt.UTC(),
	}
}

func RitualFromView(v RitualView) db.Ritual {
	return db.Ritual{
		ID:               v.ID,
		Slug:             v.Slug,
		Title:            v.Title,
		Subtitle:         v.Subtitle,
		ShortDescription: v.ShortDescription,
		LongDescription:  v.LongDescription,
		Image:            v.Image,
		Duration:         v.Duration,
		Instructor:       v.Instructor,
		Schedule:         db.JSONList[db.ScheduleItem](nonNil(v.Schedule)),
		Benefits:         db.StringList(nonNil(v.Benefits)),
		FAQ:              db.JSONList[db.FAQItem](nonNil(v.FAQ)),
		Published:        v.Published,
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
	}
}

// PageContentToView emits the stored section document; a malformed document comes
// out as an empty object.
func PageContentToView(p db.PageContent) PageContentView {
	content := json.RawMessage(p.Content)
	if !json.Valid(content) {
		content = json.RawMessage(`{}`)
	}
	return PageContentView{
		ID:              p.ID,
		Page:            p.Page,
		Section:         p.Section,
		Title:           p.Title,
		Subtitle:        p.Subtitle,
		Content:         content,
		BackgroundImage: p.BackgroundImage,
		OverlayOpacity:  p.OverlayOpacity,
		CreatedAt:       p.CreatedAt.UTC(),
		UpdatedAt:       p.UpdatedAt.UTC(),
	}
}

func PageContentFromView(v PageContentView) db.PageContent {
	return db.PageContent{
		ID:              v.ID,
		Page:            v.Page,
		Section:         v.Section,
		Title:           v.Title,
		Subtitle:        v.Subtitle,
		Content:         string(v.Content),
		BackgroundImage: v.BackgroundImage,
		OverlayOpacity:  v.OverlayOpacity,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

func StandalonePageToView(p db.StandalonePage) StandalonePageView {
	return StandalonePageView{
		ID:              p.ID,
		Slug:            p.Slug,
		Title:           p.Title,
		Content:         p.Content,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
		Published:       p.Published,
		CreatedAt:       p.CreatedAt.UTC(),
		UpdatedAt:       p.UpdatedAt.UTC(),
	}
}

func StandalonePageFromView(v StandalonePageView) db.StandalonePage {
	return db.StandalonePage{
		ID:              v.ID,
		Slug:            v.Slug,
		Title:           v.Title,
		Content:         v.Content,
		MetaTitle:       v.MetaTitle,
		MetaDescription: v.MetaDescription,
		Published:       v.Published,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

// MapViews applies an adapter to every row.
func MapViews[R any, V any](rows []R, fn func(R) V) []V {
	out := make([]V, 0, len(rows))
	for _, row := range rows {
		out = append(out, fn(row))
	}
	return out
}

func nonNil[S ~[]E, E any](s S) S {
	if s == nil {
		return S{}
	}
	return s
}
