package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tripmate/backend/internal/content"
	"github.com/tripmate/backend/internal/models"
)

// PostCategories are the board sections a post can be filed under.
var PostCategories = map[string]bool{
	"free":     true,
	"review":   true,
	"tip":      true,
	"question": true,
}

type CommunityService struct {
	posts     models.PostRepository
	comments  models.CommentRepository
	likes     models.PostLikeRepository
	processor *content.Processor
	logger    *logrus.Logger
}

func NewCommunityService(posts models.PostRepository, comments models.CommentRepository, likes models.PostLikeRepository, processor *content.Processor, logger *logrus.Logger) *CommunityService {
	return &CommunityService{
		posts:     posts,
		comments:  comments,
		likes:     likes,
		processor: processor,
		logger:    logger,
	}
}

func canModify(user *models.User, ownerID uint) bool {
	return user != nil && (user.ID == ownerID || user.IsAdmin())
}

func (s *CommunityService) ListPosts(ctx context.Context, category string, offset, limit int) ([]models.Post, int64, error) {
	if category != "" && !PostCategories[category] {
		return nil, 0, fmt.Errorf("category %q: %w", category, ErrInvalidInput)
	}
	posts, total, err := s.posts.List(category, offset, limit)
	if err != nil {
		return nil, 0, translate(err, "list posts")
	}
	return posts, total, nil
}

// GetPost loads a post and counts the view.
func (s *CommunityService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return nil, translate(err, "load post")
	}
	if err := s.posts.IncrementViewCount(id); err != nil {
		s.logger.WithError(err).WithField("post_id", id).Warn("Failed to count post view")
	} else {
		post.ViewCount++
	}
	return post, nil
}

func (s *CommunityService) applyRequest(post *models.Post, req models.PostRequest) error {
	category := req.Category
	if category == "" {
		category = "free"
	}
	if !PostCategories[category] {
		return fmt.Errorf("category %q: %w", category, ErrInvalidInput)
	}

	post.Title = s.processor.PlainText(req.Title)
	post.Content = s.processor.SanitizeHTML(req.Content)
	post.Category = category
	post.AreaCode = req.AreaCode

	if post.Title == "" || post.Content == "" {
		return fmt.Errorf("title and content: %w", ErrInvalidInput)
	}
	return nil
}

func (s *CommunityService) CreatePost(ctx context.Context, user *models.User, req models.PostRequest) (*models.Post, error) {
	post := &models.Post{UserID: user.ID}
	if err := s.applyRequest(post, req); err != nil {
		return nil, err
	}
	if err := s.posts.Create(post); err != nil {
		return nil, translate(err, "create post")
	}
	post.Author = *user
	return post, nil
}

func (s *CommunityService) UpdatePost(ctx context.Context, user *models.User, id uint, req models.PostRequest) (*models.Post, error) {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return nil, translate(err, "load post")
	}
	if !canModify(user, post.UserID) {
		return nil, ErrForbidden
	}
	if err := s.applyRequest(post, req); err != nil {
		return nil, err
	}
	if err := s.posts.Update(post); err != nil {
		return nil, translate(err, "update post")
	}
	return post, nil
}

func (s *CommunityService) DeletePost(ctx context.Context, user *models.User, id uint) error {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return translate(err, "load post")
	}
	if !canModify(user, post.UserID) {
		return ErrForbidden
	}
	return translate(s.posts.Delete(id), "delete post")
}

func (s *CommunityService) AddComment(ctx context.Context, user *models.User, postID uint, req models.CommentRequest) (*models.Comment, error) {
	if _, err := s.posts.GetByID(postID); err != nil {
		return nil, translate(err, "load post")
	}

	comment := &models.Comment{
		PostID:  postID,
		UserID:  user.ID,
		Content: s.processor.PlainText(req.Content),
	}
	if comment.Content == "" {
		return nil, fmt.Errorf("comment: %w", ErrInvalidInput)
	}
	if err := s.comments.Create(comment); err != nil {
		return nil, translate(err, "create comment")
	}
	comment.Author = *user
	return comment, nil
}

func (s *CommunityService) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	if _, err := s.posts.GetByID(postID); err != nil {
		return nil, translate(err, "load post")
	}
	comments, err := s.comments.ListByPost(postID)
	if err != nil {
		return nil, translate(err, "list comments")
	}
	return comments, nil
}

func (s *CommunityService) DeleteComment(ctx context.Context, user *models.User, id uint) error {
	comment, err := s.comments.GetByID(id)
	if err != nil {
		return translate(err, "load comment")
	}
	if !canModify(user, comment.UserID) {
		return ErrForbidden
	}
	return translate(s.comments.Delete(comment), "delete comment")
}

// ToggleLike flips the user's like and returns the new state.
func (s *CommunityService) ToggleLike(ctx context.Context, user *models.User, postID uint) (*models.LikeResponse, error) {
	if _, err := s.posts.GetByID(postID); err != nil {
		return nil, translate(err, "load post")
	}
	liked, count, err := s.likes.Toggle(postID, user.ID)
	if err != nil {
		return nil, translate(err, "toggle like")
	}
	return &models.LikeResponse{Liked: liked, LikeCount: count}, nil
}
