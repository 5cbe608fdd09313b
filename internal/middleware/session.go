package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// SessionAdminKey is the session value set after a successful admin login.
const SessionAdminKey = "admin"

// IsAdmin reports whether the request carries an admin session. It is false when the
// sessions middleware is not installed.
func IsAdmin(c *gin.Context) bool {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return false
	}
	authed, _ := sessions.Default(c).Get(SessionAdminKey).(bool)
	return authed
}
