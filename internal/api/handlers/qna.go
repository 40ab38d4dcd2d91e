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

// SupportService is implemented by services.SupportService.
type SupportService interface {
	Create(ctx context.Context, user *models.User, req models.InquiryRequest) (*models.Inquiry, error)
	List(ctx context.Context, user *models.User, offset, limit int) ([]models.Inquiry, int64, error)
	Get(ctx context.Context, user *models.User, id uint) (*models.Inquiry, error)
	Answer(ctx context.Context, admin *models.User, id uint, req models.AnswerRequest) (*models.Inquiry, error)
}

type QnAHandler struct {
	support SupportService
	logger  *logrus.Logger
}

func NewQnAHandler(support SupportService, logger *logrus.Logger) *QnAHandler {
	return &QnAHandler{
		support: support,
		logger:  logger,
	}
}

func (h *QnAHandler) HandleCreate(c *gin.Context) {
	var req models.InquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid inquiry", err)
		return
	}
	inquiry, err := h.support.Create(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Failed to create inquiry")
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Inquiry created", inquiry)
}

func (h *QnAHandler) HandleList(c *gin.Context) {
	page, size, offset := utils.Pagination(c)

	inquiries, total, err := h.support.List(c.Request.Context(), middleware.CurrentUser(c), offset, size)
	if err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Failed to list inquiries")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Inquiries retrieved", models.Page{Items: inquiries, Total: total, Page: page, Size: size})
}

func (h *QnAHandler) HandleGet(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	inquiry, err := h.support.Get(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Failed to load inquiry")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Inquiry retrieved", inquiry)
}

func (h *QnAHandler) HandleAnswer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid answer", err)
		return
	}
	inquiry, err := h.support.Answer(c.Request.Context(), middleware.CurrentUser(c), id, req)
	if err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Failed to answer inquiry")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Inquiry answered", inquiry)
}
