package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tripmate/backend/internal/category"
	"github.com/tripmate/backend/internal/middleware"
	"github.com/tripmate/backend/internal/models"
	"github.com/tripmate/backend/internal/search"
	"github.com/tripmate/backend/internal/services"
	"github.com/tripmate/backend/pkg/utils"
)

// TourService is implemented by services.TourService.
type TourService interface {
	Filter(ctx context.Context, params map[string]string, meta services.SearchMeta) *search.Result
	Keyword(ctx context.Context, keyword, areaCode string, numOfRows, pageNo int) (*services.KeywordResult, error)
	Suggestions(ctx context.Context, q string, limit int) ([]string, error)
	PopularKeywords(ctx context.Context, limit int) ([]models.PopularKeyword, error)
	Detail(ctx context.Context, contentID string) (*services.TourDetailView, error)
	BarrierFree(ctx context.Context, contentID string) (*search.AccessibilityInfo, error)
	Areas() []category.Area
	Sigungu(ctx context.Context, areaCode string) ([]models.RegionCode, error)
}

type TourHandler struct {
	tours  TourService
	logger *logrus.Logger
}

func NewTourHandler(tours TourService, logger *logrus.Logger) *TourHandler {
	return &TourHandler{
		tours:  tours,
		logger: logger,
	}
}

// HandleFilter runs the multi-filter search. The envelope is always 200; Success
// reports whether anything was found.
func (h *TourHandler) HandleFilter(c *gin.Context) {
	params := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	meta := services.SearchMeta{IPAddress: c.ClientIP()}
	if user := middleware.CurrentUser(c); user != nil {
		id := user.ID
		meta.UserID = &id
	}

	h.logger.WithFields(logrus.Fields{
		"params":     params,
		"request_id": c.GetString("request_id"),
	}).Debug("Processing filter search")

	c.JSON(http.StatusOK, h.tours.Filter(c.Request.Context(), params, meta))
}

// HandleKeyword serves GET /api/tours/search
func (h *TourHandler) HandleKeyword(c *gin.Context) {
	rows, _ := strconv.Atoi(c.Query("numOfRows"))
	page, _ := strconv.Atoi(c.Query("pageNo"))

	result, err := h.tours.Keyword(c.Request.Context(), c.Query("keyword"), c.Query("areaCode"), rows, page)
	if err != nil {
		writeError(c, h.logger, err, http.StatusBadGateway, "Keyword search failed")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Search completed", result)
}

// HandleSuggestions returns popular keywords containing ?q=
func (h *TourHandler) HandleSuggestions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if limit < 1 || limit > 10 {
		limit = 5
	}

	suggestions, err := h.tours.Suggestions(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Failed to get suggestions")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Suggestions retrieved", suggestions)
}

func (h *TourHandler) HandlePopular(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 20 {
		limit = 10
	}

	keywords, err := h.tours.PopularKeywords(c.Request.Context(), limit)
	if err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Failed to get popular keywords")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Popular keywords retrieved", keywords)
}

func (h *TourHandler) HandleDetail(c *gin.Context) {
	detail, err := h.tours.Detail(c.Request.Context(), c.Param("contentId"))
	if err != nil {
		writeError(c, h.logger, err, http.StatusBadGateway, "Failed to load tour detail")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Tour detail retrieved", detail)
}

func (h *TourHandler) HandleBarrierFree(c *gin.Context) {
	info, err := h.tours.BarrierFree(c.Request.Context(), c.Param("contentId"))
	if err != nil {
		writeError(c, h.logger, err, http.StatusBadGateway, "Failed to load accessibility info")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Accessibility info retrieved", info)
}

func (h *TourHandler) HandleAreas(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Areas retrieved", h.tours.Areas())
}

func (h *TourHandler) HandleSigungu(c *gin.Context) {
	codes, err := h.tours.Sigungu(c.Request.Context(), c.Param("areaCode"))
	if err != nil {
		writeError(c, h.logger, err, http.StatusBadGateway, "Failed to load district codes")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "District codes retrieved", codes)
}
