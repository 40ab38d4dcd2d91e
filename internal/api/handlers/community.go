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

// CommunityService is implemented by services.CommunityService.
type CommunityService interface {
	ListPosts(ctx context.Context, category string, offset, limit int) ([]models.Post, int64, error)
	GetPost(ctx context.Context, id uint) (*models.Post, error)
	CreatePost(ctx context.Context, user *models.User, req models.PostRequest) (*models.Post, error)
	UpdatePost(ctx context.Context, user *models.User, id uint, req models.PostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, user *models.User, id uint) error
	AddComment(ctx context.Context, user *models.User, postID uint, req models.CommentRequest) (*models.Comment, error)
	ListComments(ctx context.Context, postID uint) ([]models.Comment, error)
	DeleteComment(ctx context.Context, user *models.User, id uint) error
	ToggleLike(ctx context.Context, user *models.User, postID uint) (*models.LikeResponse, error)
}

type CommunityHandler struct {
	community CommunityService
	logger    *logrus.Logger
}

func NewCommunityHandler(community CommunityService, logger *logrus.Logger) *CommunityHandler {
	return &CommunityHandler{
		community: community,
		logger:    logger,
	}
}

func (h *CommunityHandler) HandleListPosts(c *gin.Context) {
	page, size, offset := utils.Pagination(c)

	posts, total, err := h.community.ListPosts(c.Request.Context(), c.Query("category"), offset, size)
	if err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Failed to list posts")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Posts retrieved", models.Page{Items: posts, Total: total, Page: page, Size: size})
}

func (h *CommunityHandler) HandleGetPost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	post, err := h.community.GetPost(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Failed to load post")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Post retrieved", post)
}

func (h *CommunityHandler) HandleCreatePost(c *gin.Context) {
	var req models.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid post", err)
		return
	}
	post, err := h.community.CreatePost(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Failed to create post")
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Post created", post)
}

func (h *CommunityHandler) HandleUpdatePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid post", err)
		return
	}
	post, err := h.community.UpdatePost(c.Request.Context(), middleware.CurrentUser(c), id, req)
	if err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Failed to update post")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Post updated", post)
}

func (h *CommunityHandler) HandleDeletePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.community.DeletePost(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Failed to delete post")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Post deleted", nil)
}

func (h *CommunityHandler) HandleAddComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid comment", err)
		return
	}
	comment, err := h.community.AddComment(c.Request.Context(), middleware.CurrentUser(c), id, req)
	if err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Failed to add comment")
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Comment added", comment)
}

func (h *CommunityHandler) HandleListComments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	comments, err := h.community.ListComments(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Failed to list comments")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Comments retrieved", comments)
}

func (h *CommunityHandler) HandleDeleteComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.community.DeleteComment(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Failed to delete comment")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Comment deleted", nil)
}

func (h *CommunityHandler) HandleToggleLike(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	like, err := h.community.ToggleLike(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		writeError(c, h.logger, err, http.StatusInternalServerError, "Failed to toggle like")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Like toggled", like)
}
