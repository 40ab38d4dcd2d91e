package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/tripmate/backend/internal/models"
	"github.com/tripmate/backend/pkg/utils"
)

type fakeResolver struct {
	sessions map[string]*models.User
}

func (f fakeResolver) Authenticate(ctx context.Context, sessionID string) (*models.User, error) {
	if u, ok := f.sessions[sessionID]; ok {
		return u, nil
	}
	return nil, errors.New("session not found")
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestRateLimit_RejectsAfterBurst(t *testing.T) {
	r := newRouter()
	r.Use(NewRateLimiter(2).RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes[i] = w.Code
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_CleanupDropsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(10)
	rl.limiterFor("10.0.0.1")
	rl.idle = 0

	rl.Cleanup()

	assert.Empty(t, rl.visitors)
}

func TestRequestID(t *testing.T) {
	r := newRouter()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
	assert.NoError(t, err)
	assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "given")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "given", w.Header().Get("X-Request-ID"))
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	r := newRouter()
	r.Use(RequestLogger(logger))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestRequireSession(t *testing.T) {
	sessionID := uuid.NewString()
	resolver := fakeResolver{sessions: map[string]*models.User{
		sessionID: {Nickname: "traveler", Role: models.RoleUser},
	}}

	r := newRouter()
	r.GET("/me", RequireSession(resolver, "sid"), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Nickname)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(utils.SessionHeader, uuid.NewString())
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: sessionID})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "traveler", w.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	userSession, adminSession := uuid.NewString(), uuid.NewString()
	resolver := fakeResolver{sessions: map[string]*models.User{
		userSession:  {Role: models.RoleUser},
		adminSession: {Role: models.RoleAdmin},
	}}

	r := newRouter()
	r.GET("/admin", RequireSession(resolver, "sid"), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for session, want := range map[string]int{userSession: http.StatusForbidden, adminSession: http.StatusNoContent} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set(utils.SessionHeader, session)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code)
	}
}

func TestOptionalSession_NeverRejects(t *testing.T) {
	r := newRouter()
	r.GET("/", OptionalSession(fakeResolver{}, "sid"), func(c *gin.Context) {
		assert.Nil(t, CurrentUser(c))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
