package internal

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Public pages reachable without a session.
var publicPaths = []string{"/", "/login", "/accredit"}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if p == "/" {
			if path == "/" {
				return true
			}
			continue
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// RouteGuard gates page access using only the auth_token and user_role
// cookies. Cookie values are trusted as-is: this is a UX convenience, the
// real boundary is the upstream API rejecting a bad bearer token.
func RouteGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		token, _ := c.Cookie(tokenCookie)
		role, _ := c.Cookie(roleCookie)

		if !isPublicPath(path) && token == "" {
			c.Redirect(http.StatusFound, "/login?redirect="+url.QueryEscape(path))
			c.Abort()
			return
		}

		if token != "" && role != "" {
			if role == RoleAdmin && strings.HasPrefix(path, "/dashboard") {
				c.Redirect(http.StatusFound, "/admin")
				c.Abort()
				return
			}
			if role == RoleStudent && strings.HasPrefix(path, "/admin") {
				c.Redirect(http.StatusFound, "/dashboard")
				c.Abort()
				return
			}
		}

		c.Next()
	}
}

// RequireSession rejects portal API calls without a verified session and
// stashes the session for the handler.
func RequireSession(sessions *SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Current(c)
		if sess == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}
		c.Set("session", sess)
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		if sess == nil || sess.User.Role != RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) *Session {
	v, ok := c.Get("session")
	if !ok {
		return nil
	}
	sess, _ := v.(*Session)
	return sess
}

// RequestLog logs every portal API request with a request ID.
func RequestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := uuid.NewString()
		c.Set("request_id", reqID)

		c.Next()

		slog.Info("portal request",
			"id", reqID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
