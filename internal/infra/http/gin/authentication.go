package ginserver

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/domain/auth"
)

const (
	sessionContextKey = "stayhub.session"

	UserIDHeader    = "X-User-ID"
	UserRolesHeader = "X-User-Roles"
	TimezoneHeader  = "X-Timezone"
)

// IdentityMiddleware resolves the caller session from the identity headers
// the upstream gateway sets after authenticating the user. Requests without
// them proceed anonymously; the buses decide what anonymous callers may do.
type IdentityMiddleware struct {
	Logger *slog.Logger
}

func (m IdentityMiddleware) Handle(c *gin.Context) {
	userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
	if userID == "" {
		c.Next()
		return
	}
	session, err := auth.NewSession(userID, splitCSV(c.GetHeader(UserRolesHeader)))
	if err != nil {
		c.Next()
		return
	}
	c.Set(sessionContextKey, session)
	if m.Logger != nil {
		m.Logger.Debug("session resolved", "user_id", session.UserID, "roles", session.Roles)
	}
	c.Next()
}

func currentSession(c *gin.Context) auth.Session {
	val, exists := c.Get(sessionContextKey)
	if !exists {
		return auth.Session{}
	}
	s, _ := val.(auth.Session)
	return s
}

func requireSession(c *gin.Context) (auth.Session, bool) {
	s := currentSession(c)
	if !s.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return auth.Session{}, false
	}
	return s, true
}

// callerLocation returns the caller's time zone from the X-Timezone header
// or the tz query parameter. Unknown zones fall back to UTC.
func callerLocation(c *gin.Context) *time.Location {
	name := strings.TrimSpace(c.GetHeader(TimezoneHeader))
	if name == "" {
		name = strings.TrimSpace(c.Query("tz"))
	}
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
