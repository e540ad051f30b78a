package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Hitesh-Saha/FeastAI/internal/service"
)

// SessionCookie carries the signed session token.
const SessionCookie = "_feast_session"

const sessionKey = "session"

// SessionParser verifies a session token.
type SessionParser interface {
	ParseSession(token string) (*service.Session, error)
}

// Session attaches the caller's session to the context when the request
// carries a valid token. Requests without one pass through anonymously.
func Session(parser SessionParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.Next()
			return
		}

		session, err := parser.ParseSession(token)
		if err != nil {
			Logger(c).WithError(err).Debug("ignoring invalid session token")
			c.Next()
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// RequireSession rejects anonymous requests.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := SessionFrom(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":  false,
				"message":  "Authentication required",
				"redirect": "/login",
			})
			return
		}
		c.Next()
	}
}

// SessionFrom returns the session attached by Session.
func SessionFrom(c *gin.Context) (*service.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	session, ok := v.(*service.Session)
	return session, ok && session != nil
}

// UserID returns the caller's id, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	if session, ok := SessionFrom(c); ok {
		return session.UserID
	}
	return ""
}

// sessionToken prefers the cookie and falls back to a Bearer header.
func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}

	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
