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

// WishlistService is implemented by services.WishlistService.
type WishlistService interface {
	Add(ctx context.Context, user *models.User, req models.WishlistRequest) (*models.WishlistItem, error)
	List(ctx context.Context, user *models.User) ([]models.WishlistItem, error)
	Remove(ctx context.Context, user *models.User, contentID string) error
}

type WishlistHandler struct {
	wishlist WishlistService
	logger   *logrus.Logger
}

func NewWishlistHandler(wishlist WishlistService, logger *logrus.Logger) *WishlistHandler {
	return &WishlistHandler{
		wishlist: wishlist,
		logger:   logger,
	}
}

func (h *WishlistHandler) HandleAdd(c *gin.Context) {
	var req models.WishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid wishlist item", err)
		return
	}
	item, err := h.wishlist.Add(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Failed to save wishlist item")
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Saved to wishlist", item)
}

func (h *WishlistHandler) HandleList(c *gin.Context) {
	items, err := h.wishlist.List(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Failed to list wishlist")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Wishlist retrieved", items)
}

func (h *WishlistHandler) HandleRemove(c *gin.Context) {
	if err := h.wishlist.Remove(c.Request.Context(), middleware.CurrentUser(c), c.Param("contentId")); err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Failed to remove wishlist item")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Removed from wishlist", nil)
}
