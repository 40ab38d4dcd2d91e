package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tripmate/backend/internal/middleware"
	"github.com/tripmate/backend/internal/models"
	"github.com/tripmate/backend/pkg/utils"
)

// AuthService is implemented by services.AuthService.
type AuthService interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context, sessionID string) error
}

type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	auth   AuthService
	cookie CookieConfig
	logger *logrus.Logger
}

func NewAuthHandler(auth AuthService, cookie CookieConfig, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		cookie: cookie,
		logger: logger,
	}
}

func (h *AuthHandler) HandleSignup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid signup request", err)
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Signup failed")
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Account created", user)
}

func (h *AuthHandler) HandleLogin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid login request", err)
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Login failed")
		return
	}

	utils.SetSessionCookie(c, h.cookie.Name, resp.SessionID, resp.ExpiresIn, h.cookie.Secure)
	utils.SuccessResponse(c, http.StatusOK, "Logged in", resp)
}

func (h *AuthHandler) HandleLogout(c *gin.Context) {
	if sessionID := middleware.CurrentSessionID(c); sessionID != "" {
		if err := h.auth.Logout(c.Request.Context(), sessionID); err != nil {
			h.logger.WithError(err).Warn("Failed to delete session")
		}
	}
	utils.ClearSessionCookie(c, h.cookie.Name, h.cookie.Secure)
	utils.SuccessResponse(c, http.StatusOK, "Logged out", nil)
}

func (h *AuthHandler) HandleMe(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Current user", middleware.CurrentUser(c))
}
