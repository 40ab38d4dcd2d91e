package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tripmate/backend/internal/models"
	"github.com/tripmate/backend/pkg/utils"
)

const (
	userKey      = "user"
	sessionIDKey = "session_id"
)

// SessionResolver turns a session id into its user.
type SessionResolver interface {
	Authenticate(ctx context.Context, sessionID string) (*models.User, error)
}

// OptionalSession attaches the user when a valid session is present and never rejects.
func OptionalSession(auth SessionResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		resolve(c, auth, cookieName)
		c.Next()
	}
}

// RequireSession rejects requests without a valid session with 401.
func RequireSession(auth SessionResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !resolve(c, auth, cookieName) {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Login required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireSession.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			utils.ErrorResponse(c, http.StatusForbidden, "Administrator access required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func resolve(c *gin.Context, auth SessionResolver, cookieName string) bool {
	sessionID := utils.SessionIDFromRequest(c, cookieName)
	if !utils.ValidateSessionID(sessionID) {
		return false
	}

	user, err := auth.Authenticate(c.Request.Context(), sessionID)
	if err != nil || user == nil {
		return false
	}

	c.Set(userKey, user)
	c.Set(sessionIDKey, sessionID)
	return true
}

// CurrentUser returns the authenticated user, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func CurrentSessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
