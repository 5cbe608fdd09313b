package handler

import (
	"net/http"
	"strings"

	"github.com/emberhaus/internal/middleware"
	"github.com/emberhaus/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Password string `json:"password" form:"password"`
}

// ShowLoginPage 渲染登录页面
func (a *API) ShowLoginPage(c *gin.Context) {
	if middleware.IsAdmin(c) {
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	a.renderHTML(c, http.StatusOK, "admin_login.html", gin.H{
		"title": "Sign in",
	})
}

// Login checks the shared admin password and starts an admin session. Form posts are
// redirected to the dashboard; JSON callers get a JSON answer.
func (a *API) Login(c *gin.Context) {
	wantsJSON := strings.Contains(c.GetHeader("Content-Type"), "application/json")

	var req loginRequest
	if err := c.ShouldBind(&req); err != nil || strings.TrimSpace(req.Password) == "" {
		a.loginFailed(c, wantsJSON, http.StatusBadRequest, "Password is required.")
		return
	}

	if len(a.adminHash) == 0 || bcrypt.CompareHashAndPassword(a.adminHash, []byte(req.Password)) != nil {
		a.log.Info("admin login rejected", zap.String("ip", c.ClientIP()))
		a.loginFailed(c, wantsJSON, http.StatusUnauthorized, "Incorrect password.")
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Set(middleware.SessionAdminKey, true)
	if err := session.Save(); err != nil {
		_ = c.Error(err)
		a.loginFailed(c, wantsJSON, http.StatusInternalServerError, "Could not start the session.")
		return
	}

	if wantsJSON {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin")
}

func (a *API) loginFailed(c *gin.Context, wantsJSON bool, status int, message string) {
	if wantsJSON {
		respondError(c, status, message)
		return
	}
	a.renderHTML(c, status, "admin_login.html", gin.H{
		"title": "Sign in",
		"error": message,
	})
}

// Logout 处理用户登出
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		_ = c.Error(err)
	}
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.Status(http.StatusNoContent)
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/login")
}

// ShowDashboard renders the single-page admin shell; the page script drives the API.
func (a *API) ShowDashboard(c *gin.Context) {
	stats, err := a.stats.Collect()
	if err != nil {
		_ = c.Error(err)
		stats = &service.Stats{}
	}
	a.renderHTML(c, http.StatusOK, "admin_dashboard.html", gin.H{
		"title":     "Dashboard",
		"stats":     stats,
		"uploadURL": a.uploadURL,
	})
}

// AuthRequired redirects visitors without an admin session to the login page.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !middleware.IsAdmin(c) {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// APIAuthRequired answers 401 to API calls without an admin session.
func APIAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !middleware.IsAdmin(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}
