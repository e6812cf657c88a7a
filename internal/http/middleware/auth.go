// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file gates the chat surface on a live login session, replacing the
// original UI's page router: requests without a valid session never reach
// the orchestrator.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yesai/go-assistant-backend/internal/session"
)

const (
	// sessionKey is the Gin context key holding the *session.Session.
	sessionKey = "session"
	// SessionCookie is the cookie fallback for browser clients.
	SessionCookie = "session_token"
)

// SessionAuth resolves the bearer token (Authorization header, falling back
// to the session cookie) to a live session. On success it stores the session
// and the account ID ("userID") in the Gin context; otherwise it aborts with
// a 401 envelope.
func SessionAuth(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if v, err := c.Cookie(SessionCookie); err == nil {
				token = v
			}
		}

		s, ok := sessions.Get(token)
		if token == "" || !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get("X-Request-ID"),
				"code":       "unauthorized",
				"message":    "authentication required",
			})
			return
		}

		c.Set(sessionKey, s)
		c.Set("userID", s.AccountID)
		c.Next()
	}
}

// SessionFrom returns the live session attached by SessionAuth, or nil when
// the route is unauthenticated.
func SessionFrom(c *gin.Context) *session.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*session.Session); ok {
			return s
		}
	}
	return nil
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
