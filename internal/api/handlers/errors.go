package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tripmate/backend/internal/services"
	"github.com/tripmate/backend/pkg/utils"
)

// statusFor maps service errors to HTTP statuses. Unknown errors get fallback.
func statusFor(err error, fallback int) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrDuplicate), errors.Is(err, services.ErrGroupFull):
		return http.StatusConflict
	case errors.Is(err, services.ErrAccountLocked):
		return http.StatusLocked
	default:
		return fallback
	}
}

func writeError(c *gin.Context, logger *logrus.Logger, err error, fallback int, message string) {
	status := statusFor(err, fallback)

	var locked *services.LockedError
	if errors.As(err, &locked) {
		c.Header("Retry-After", strconv.Itoa(int(locked.Remaining.Seconds())))
	}

	if status >= 500 {
		logger.WithFields(logrus.Fields{
			"path":       c.FullPath(),
			"request_id": c.GetString("request_id"),
		}).WithError(err).Error(message)
		// Internal details stay in the log.
		utils.ErrorResponse(c, status, message, nil)
		return
	}
	utils.ErrorResponse(c, status, message, err)
}

// pathID parses a positive numeric path parameter.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}
