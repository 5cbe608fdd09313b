package handler

import (
	"context"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/emberhaus/internal/markup"
	"github.com/emberhaus/internal/media"
	"github.com/emberhaus/internal/seo"
	"github.com/emberhaus/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	homePage      = "home"
	homeListLimit = 3
)

// clientHintHeaders are the request headers the hero video decision depends on.
var clientHintHeaders = []string{
	"Sec-CH-UA-Mobile",
	"Sec-CH-Prefers-Reduced-Motion",
	"ECT",
	"Downlink",
	"Save-Data",
}

// homeSection pairs a page section with its decoded document and, for heroes, the
// video delivery decision.
type homeSection struct {
	Row      service.PageContentView
	Doc      service.SectionDocument
	Playback media.Playback
	Player   *media.Player
}

// TemplateFuncs are the helpers available to every template.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"html": func(stored string) template.HTML {
			return markup.Trusted(stored)
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.UTC().Format("2 January 2006")
		},
		"isoDate": func(t time.Time) string {
			return t.UTC().Format("2006-01-02")
		},
		"summary": func(html string, limit int) string {
			return service.Summarize(html, limit)
		},
		"join": strings.Join,
		"opacity": func(v float64) string {
			s := strings.TrimRight(strings.TrimRight(strconv.FormatFloat(v, 'f', 2, 64), "0"), ".")
			if s == "" {
				return "0"
			}
			return s
		},
	}
}

// MediaVariant keys cached pages by the visitor's video delivery decision.
func MediaVariant(c *gin.Context) string {
	return media.Decide(media.ProfileFromRequest(c.Request)).Reason
}

// ShowHome renders hero sections, upcoming events, rituals and the latest journal posts.
func (a *API) ShowHome(c *gin.Context) {
	c.Header("Accept-CH", strings.Join(clientHintHeaders, ", "))
	c.Header("Vary", "User-Agent, "+strings.Join(clientHintHeaders, ", "))

	rows, err := a.sections.List(service.ListOptions{Page: homePage})
	if err != nil {
		a.renderError(c, err)
		return
	}

	playback := media.Decide(media.ProfileFromRequest(c.Request))
	sections := make([]homeSection, 0, len(rows))
	for _, row := range rows {
		section := homeSection{
			Row: service.PageContentToView(row),
			Doc: service.DecodeSection(row.Content),
		}
		if section.Doc.Kind == service.SectionHero {
			section.Playback = playback
			section.Player = media.NewPlayer(playback, section.Doc.VideoURL != "")
		}
		sections = append(sections, section)
	}

	now := a.now().UTC()
	events, err := a.events.List(service.ListOptions{From: &now, Limit: homeListLimit})
	if err != nil {
		a.renderError(c, err)
		return
	}
	rituals, err := a.rituals.List(service.ListOptions{Sort: "-created", Limit: homeListLimit})
	if err != nil {
		a.renderError(c, err)
		return
	}
	posts, err := a.journal.List(service.ListOptions{Limit: homeListLimit})
	if err != nil {
		a.renderError(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "home.html", gin.H{
		"title":       a.siteName,
		"sections":    sections,
		"events":      service.MapViews(events, service.EventToView),
		"rituals":     service.MapViews(rituals, service.RitualToView),
		"posts":       service.MapViews(posts, service.JournalPostToView),
		"transitions": media.Transitions,
	})
}

// ShowEvents lists upcoming published events.
func (a *API) ShowEvents(c *gin.Context) {
	now := a.now().UTC()
	category := strings.TrimSpace(c.Query("category"))
	events, err := a.events.List(service.ListOptions{From: &now, Category: category})
	if err != nil {
		a.renderError(c, err)
		return
	}
	a.renderHTML(c, http.StatusOK, "events.html", gin.H{
		"title":    "Events",
		"category": category,
		"events":   service.MapViews(events, service.EventToView),
	})
}

// ShowEvent renders one published event.
func (a *API) ShowEvent(c *gin.Context) {
	event, err := a.events.GetBySlug(c.Param("slug"), false)
	if err != nil {
		a.renderError(c, err)
		return
	}
	view := service.EventToView(*event)
	a.renderHTML(c, http.StatusOK, "event.html", gin.H{
		"title":       view.Title,
		"description": service.Summarize(view.Description, 160),
		"event":       view,
	})
}

// ShowRituals lists published rituals.
func (a *API) ShowRituals(c *gin.Context) {
	rituals, err := a.rituals.List(service.ListOptions{})
	if err != nil {
		a.renderError(c, err)
		return
	}
	a.renderHTML(c, http.StatusOK, "rituals.html", gin.H{
		"title":   "Rituals",
		"rituals": service.MapViews(rituals, service.RitualToView),
	})
}

// ShowRitual renders one published ritual.
func (a *API) ShowRitual(c *gin.Context) {
	ritual, err := a.rituals.GetBySlug(c.Param("slug"), false)
	if err != nil {
		a.renderError(c, err)
		return
	}
	view := service.RitualToView(*ritual)
	a.renderHTML(c, http.StatusOK, "ritual.html", gin.H{
		"title":       view.Title,
		"description": service.Summarize(view.ShortDescription, 160),
		"ritual":      view,
	})
}

// ShowJournal lists published posts, optionally for one category.
func (a *API) ShowJournal(c *gin.Context) {
	category := strings.TrimSpace(c.Query("category"))
	posts, err := a.journal.List(service.ListOptions{Category: category})
	if err != nil {
		a.renderError(c, err)
		return
	}
	categories, err := a.journal.Categories(false)
	if err != nil {
		a.renderError(c, err)
		return
	}
	a.renderHTML(c, http.StatusOK, "journal.html", gin.H{
		"title":      "Journal",
		"category":   category,
		"categories": categories,
		"posts":      service.MapViews(posts, service.JournalPostToView),
	})
}

// ShowJournalPost renders one published post.
func (a *API) ShowJournalPost(c *gin.Context) {
	post, err := a.journal.GetBySlug(c.Param("slug"), false)
	if err != nil {
		a.renderError(c, err)
		return
	}
	view := service.JournalPostToView(*post)
	description := view.Excerpt
	if description == "" {
		description = service.Summarize(view.Content, 160)
	}
	a.renderHTML(c, http.StatusOK, "journal_post.html", gin.H{
		"title":       view.Title,
		"description": description,
		"post":        view,
	})
}

// NotFound serves standalone pages for single-segment paths and 404s for everything
// else. API paths get a JSON body.
func (a *API) NotFound(c *gin.Context) {
	path := c.Request.URL.Path
	if strings.HasPrefix(path, "/api/") || path == "/api" {
		respondError(c, http.StatusNotFound, "not found")
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.Status(http.StatusNotFound)
		return
	}

	slug := strings.Trim(path, "/")
	if slug == "" || strings.Contains(slug, "/") || !service.IsValidSlug(slug) {
		a.renderNotFound(c)
		return
	}

	page, err := a.pages.GetBySlug(slug, false)
	if err != nil {
		a.renderError(c, err)
		return
	}
	view := service.StandalonePageToView(*page)
	title := view.MetaTitle
	if title == "" {
		title = view.Title
	}
	description := view.MetaDescription
	if description == "" {
		description = service.Summarize(view.Content, 160)
	}
	a.renderHTML(c, http.StatusOK, "page.html", gin.H{
		"title":       title,
		"description": description,
		"page":        view,
	})
}

// Sitemap lists the public pages and every published item.
func (a *API) Sitemap(c *gin.Context) {
	builder := seo.NewSitemapBuilder(a.siteURL)

	sections, err := a.sections.List(service.ListOptions{Page: homePage})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	var homeUpdated time.Time
	for _, section := range sections {
		if section.UpdatedAt.After(homeUpdated) {
			homeUpdated = section.UpdatedAt
		}
	}
	builder.AddHomepage(homeUpdated)

	events, err := a.events.List(service.ListOptions{})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	rituals, err := a.rituals.List(service.ListOptions{})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	posts, err := a.journal.List(service.ListOptions{})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	pages, err := a.pages.List(service.ListOptions{})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	eventEntries := make([]seo.Entry, 0, len(events))
	var eventsUpdated time.Time
	for _, event := range events {
		eventEntries = append(eventEntries, seo.Entry{Path: "/events/" + event.Slug, UpdatedAt: event.UpdatedAt})
		eventsUpdated = latest(eventsUpdated, event.UpdatedAt)
	}
	ritualEntries := make([]seo.Entry, 0, len(rituals))
	var ritualsUpdated time.Time
	for _, ritual := range rituals {
		ritualEntries = append(ritualEntries, seo.Entry{Path: "/rituals/" + ritual.Slug, UpdatedAt: ritual.UpdatedAt})
		ritualsUpdated = latest(ritualsUpdated, ritual.UpdatedAt)
	}
	postEntries := make([]seo.Entry, 0, len(posts))
	var journalUpdated time.Time
	for _, post := range posts {
		postEntries = append(postEntries, seo.Entry{Path: "/journal/" + post.Slug, UpdatedAt: post.UpdatedAt})
		journalUpdated = latest(journalUpdated, post.UpdatedAt)
	}
	pageEntries := make([]seo.Entry, 0, len(pages))
	for _, page := range pages {
		pageEntries = append(pageEntries, seo.Entry{Path: "/" + page.Slug, UpdatedAt: page.UpdatedAt})
	}

	builder.AddIndex(seo.Entry{Path: "/events", UpdatedAt: eventsUpdated})
	builder.AddIndex(seo.Entry{Path: "/rituals", UpdatedAt: ritualsUpdated})
	builder.AddIndex(seo.Entry{Path: "/journal", UpdatedAt: journalUpdated})
	builder.AddEntries(eventEntries, seo.ChangeFreqWeekly, "0.7")
	builder.AddEntries(ritualEntries, seo.ChangeFreqMonthly, "0.7")
	builder.AddEntries(postEntries, seo.ChangeFreqMonthly, "0.6")
	builder.AddEntries(pageEntries, seo.ChangeFreqMonthly, "0.5")

	body, err := builder.Build()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}

// Robots serves robots.txt.
func (a *API) Robots(c *gin.Context) {
	c.String(http.StatusOK, seo.Robots(a.siteURL, a.noIndex))
}

// Healthz reports whether the database answers.
func (a *API) Healthz(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *API) renderNotFound(c *gin.Context) {
	a.renderHTML(c, http.StatusNotFound, "not_found.html", gin.H{"title": "Not found"})
}

// renderError shows the 404 page for missing or draft items and a generic error page
// otherwise.
func (a *API) renderError(c *gin.Context, err error) {
	if service.IsNotFound(err) {
		a.renderNotFound(c)
		return
	}
	_ = c.Error(err)
	a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{"title": "Something went wrong"})
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
