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

// GroupService is implemented by services.GroupService.
type GroupService interface {
	Create(ctx context.Context, user *models.User, req models.TravelGroupRequest) (*models.TravelGroup, error)
	List(ctx context.Context, areaCode string, offset, limit int) ([]models.TravelGroup, int64, error)
	Get(ctx context.Context, id uint) (*models.TravelGroup, error)
	Join(ctx context.Context, user *models.User, id uint) (*models.TravelGroup, error)
	Leave(ctx context.Context, user *models.User, id uint) error
	Delete(ctx context.Context, user *models.User, id uint) error
}

type GroupHandler struct {
	groups GroupService
	logger *logrus.Logger
}

func NewGroupHandler(groups GroupService, logger *logrus.Logger) *GroupHandler {
	return &GroupHandler{
		groups: groups,
		logger: logger,
	}
}

func (h *GroupHandler) HandleCreate(c *gin.Context) {
	var req models.TravelGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid group", err)
		return
	}
	group, err := h.groups.Create(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Failed to create group")
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Group created", group)
}

func (h *GroupHandler) HandleList(c *gin.Context) {
	page, size, offset := utils.Pagination(c)

	groups, total, err := h.groups.List(c.Request.Context(), c.Query("areaCode"), offset, size)
	if err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Failed to list groups")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Groups retrieved", models.Page{Items: groups, Total: total, Page: page, Size: size})
}

func (h *GroupHandler) HandleGet(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	group, err := h.groups.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Failed to load group")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Group retrieved", group)
}

func (h *GroupHandler) HandleJoin(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	group, err := h.groups.Join(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Failed to join group")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Joined group", group)
}

func (h *GroupHandler) HandleLeave(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.groups.Leave(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Failed to leave group")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Left group", nil)
}

func (h *GroupHandler) HandleDelete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.groups.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Failed to delete group")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Group deleted", nil)
}
