package router

import (
	"net/http"
	"time"

	"github.com/emberhaus/internal/cache"
	"github.com/emberhaus/internal/config"
	"github.com/emberhaus/internal/handler"
	"github.com/emberhaus/internal/middleware"
	"github.com/emberhaus/web"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	sessionName   = "emberhaus_session"
	sessionMaxAge = 7 * 24 * 60 * 60
)

// Deps are the long-lived objects the router wires into handlers.
type Deps struct {
	API    *handler.API
	Cache  cache.Store
	Logger *zap.Logger
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg config.AppConfig, deps Deps) (*gin.Engine, error) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.Logger(log), gin.Recovery())

	// 跨域配置，预检请求不匹配任何路由
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.Use(middleware.HTTPCache(deps.Cache, middleware.HTTPCacheOptions{
		TTL:         cfg.CacheDuration(),
		SkipPaths:   []string{"/admin*", "/healthz", "/static*", cfg.UploadURLPath + "*"},
		QueryParams: handler.QueryParams,
		Logger:      log,

		KeyFunc: handler.MediaVariant,
	}))

	// 加载模板并添加自定义函数
	tmpl, err := web.ParseTemplates(handler.TemplateFuncs())
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	// 静态文件服务
	r.StaticFS("/static", http.FS(web.StaticFS()))
	r.Static(cfg.UploadURLPath, cfg.UploadDir)

	api := deps.API

	r.GET("/", api.ShowHome)
	r.GET("/events", api.ShowEvents)
	r.GET("/events/:slug", api.ShowEvent)
	r.GET("/rituals", api.ShowRituals)
	r.GET("/rituals/:slug", api.ShowRitual)
	r.GET("/journal", api.ShowJournal)
	r.GET("/journal/:slug", api.ShowJournalPost)
	r.GET("/sitemap.xml", api.Sitemap)
	r.GET("/robots.txt", api.Robots)
	r.GET("/healthz", api.Healthz)

	// 内容 API
	apiGroup := r.Group("/api")
	{
		authed := handler.APIAuthRequired()
		for _, col := range api.Collections() {
			base := "/" + col.Name
			apiGroup.GET(base, col.List)
			apiGroup.GET(base+"/:key", col.Get)
			apiGroup.POST(base, authed, col.Create)
			apiGroup.PUT(base+"/:key", authed, col.Update)
			apiGroup.DELETE(base+"/:key", authed, col.Delete)
		}

		apiGroup.GET("/stats", authed, api.GetStats)
		apiGroup.POST("/markup/preview", authed, api.PreviewMarkup)
		apiGroup.POST("/markup/format", authed, api.FormatMarkup)
		apiGroup.POST("/uploads", authed, api.UploadImage)
	}

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.GET("/login", api.ShowLoginPage)
		admin.POST("/login", middleware.RateLimitPerMinute(cfg.LoginRatePerMin), api.Login)
		admin.POST("/logout", api.Logout)
		admin.GET("", handler.AuthRequired(), api.ShowDashboard)
	}

	r.NoRoute(api.NotFound)

	return r, nil
}
