package handler

import (
	"context"
	"strings"
	"time"

	"github.com/emberhaus/internal/cache"
	"github.com/emberhaus/internal/middleware"
	"github.com/emberhaus/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options carries the site settings handlers need beyond the database.
type Options struct {
	SiteName          string
	SiteURL           string
	UploadDir         string
	UploadURL         string
	AdminPasswordHash []byte
	Cache             cache.Store
	Logger            *zap.Logger
	// NoIndex makes robots.txt disallow everything, for staging deployments.
	NoIndex           bool
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	journal   *service.JournalService
	events    *service.EventService
	rituals   *service.RitualService
	sections  *service.SectionService
	pages     *service.StandalonePageService
	stats     *service.StatsService
	cache     cache.Store
	log       *zap.Logger
	siteName  string
	siteURL   string
	uploadDir string
	uploadURL string
	adminHash []byte
	noIndex   bool
	now       func() time.Time
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, opts Options) *API {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	name := strings.TrimSpace(opts.SiteName)
	if name == "" {
		name = "Emberhaus"
	}
	uploadURL := "/" + strings.Trim(strings.TrimSpace(opts.UploadURL), "/")
	if uploadURL == "/" {
		uploadURL = "/uploads"
	}

	return &API{
		db:        gdb,
		journal:   service.NewJournalService(gdb),
		events:    service.NewEventService(gdb),
		rituals:   service.NewRitualService(gdb),
		sections:  service.NewSectionService(gdb),
		pages:     service.NewStandalonePageService(gdb),
		stats:     service.NewStatsService(gdb),
		cache:     opts.Cache,
		log:       log,
		siteName:  name,
		siteURL:   strings.TrimRight(strings.TrimSpace(opts.SiteURL), "/"),
		uploadDir: opts.UploadDir,
		uploadURL: uploadURL,
		adminHash: opts.AdminPasswordHash,
		noIndex:   opts.NoIndex,
		now:       time.Now,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// renderHTML adds the site settings and session state every template reads.
func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["site"]; !exists {
		payload["site"] = gin.H{
			"name": a.siteName,
			"url":  a.siteURL,
		}
	}
	if _, exists := payload["year"]; !exists {
		payload["year"] = a.now().Year()
	}
	if _, exists := payload["path"]; !exists {
		payload["path"] = c.Request.URL.Path
	}
	payload["isAdmin"] = middleware.IsAdmin(c)

	c.HTML(status, template, payload)
}

// purgeCache drops cached public responses after a successful mutation.
func (a *API) purgeCache(c *gin.Context) {
	if a.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := middleware.PurgeHTTPCache(ctx, a.cache); err != nil {
		a.log.Warn("cache purge failed", zap.Error(err))
	}
}
