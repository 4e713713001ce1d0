package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextUserKey is the gin context key holding the session claims
const ContextUserKey = "auth.claims"

// PublicPrefixes are reachable without a session
var PublicPrefixes = []string{
	"/login",
	"/news",
	"/unsubscribe",
	"/api/news",
	"/api/newsletter/subscribe",
	"/api/newsletter/unsubscribe",
	"/api/auth",
	"/healthz",
}

// IsPublic reports whether path needs no session
func IsPublic(path string) bool {
	for _, prefix := range PublicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware guards everything outside PublicPrefixes. API calls without a
// session get 401; page requests are redirected to /login.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		var claims *Claims
		if cookie, err := c.Cookie(CookieName); err == nil && cookie != "" {
			if parsed, err := a.ParseToken(cookie); err == nil {
				claims = parsed
				c.Set(ContextUserKey, claims)
			}
		}

		if claims != nil && strings.HasPrefix(path, "/login") {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		if claims != nil || IsPublic(path) {
			c.Next()
			return
		}

		if strings.HasPrefix(path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

// SetSessionCookie writes the token cookie
func (a *Authenticator) SetSessionCookie(c *gin.Context, token string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(a.ttl.Seconds()), "/", "", secure, true)
}

// ClearSessionCookie removes the token cookie
func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", secure, true)
}
