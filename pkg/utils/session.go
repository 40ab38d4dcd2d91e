package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHeader carries the session id for clients that cannot use cookies.
const SessionHeader = "X-Session-ID"

// ValidateSessionID reports whether sessionID has the uuid shape sessions are issued with.
func ValidateSessionID(sessionID string) bool {
	_, err := uuid.Parse(sessionID)
	return err == nil
}

// SessionIDFromRequest returns the session id from the cookie, then the header.
func SessionIDFromRequest(c *gin.Context, cookieName string) string {
	if id, err := c.Cookie(cookieName); err == nil && id != "" {
		return id
	}
	return c.GetHeader(SessionHeader)
}

func SetSessionCookie(c *gin.Context, name, sessionID string, maxAgeSeconds int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, sessionID, maxAgeSeconds, "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, name string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", secure, true)
}
