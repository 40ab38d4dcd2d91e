package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tripmate/backend/internal/content"
	"github.com/tripmate/backend/internal/models"
)

// SupportService runs the QnA board.
type SupportService struct {
	inquiries models.InquiryRepository
	processor *content.Processor
	logger    *logrus.Logger
}

func NewSupportService(inquiries models.InquiryRepository, processor *content.Processor, logger *logrus.Logger) *SupportService {
	return &SupportService{
		inquiries: inquiries,
		processor: processor,
		logger:    logger,
	}
}

func (s *SupportService) Create(ctx context.Context, user *models.User, req models.InquiryRequest) (*models.Inquiry, error) {
	inquiry := &models.Inquiry{
		UserID:    user.ID,
		Title:     s.processor.PlainText(req.Title),
		Content:   s.processor.SanitizeHTML(req.Content),
		IsPrivate: req.IsPrivate,
		Status:    models.InquiryPending,
	}
	if inquiry.Title == "" || inquiry.Content == "" {
		return nil, fmt.Errorf("title and content: %w", ErrInvalidInput)
	}
	if err := s.inquiries.Create(inquiry); err != nil {
		return nil, translate(err, "create inquiry")
	}
	inquiry.Author = *user
	return inquiry, nil
}

// List returns public inquiries plus the viewer's own; admins see everything.
// user may be nil for anonymous viewers.
func (s *SupportService) List(ctx context.Context, user *models.User, offset, limit int) ([]models.Inquiry, int64, error) {
	var userID uint
	includePrivate := false
	if user != nil {
		userID = user.ID
		includePrivate = user.IsAdmin()
	}
	inquiries, total, err := s.inquiries.ListVisible(userID, includePrivate, offset, limit)
	if err != nil {
		return nil, 0, translate(err, "list inquiries")
	}
	return inquiries, total, nil
}

func (s *SupportService) Get(ctx context.Context, user *models.User, id uint) (*models.Inquiry, error) {
	inquiry, err := s.inquiries.GetByID(id)
	if err != nil {
		return nil, translate(err, "load inquiry")
	}
	if inquiry.IsPrivate && !canModify(user, inquiry.UserID) {
		return nil, ErrForbidden
	}
	return inquiry, nil
}

func (s *SupportService) Answer(ctx context.Context, admin *models.User, id uint, req models.AnswerRequest) (*models.Inquiry, error) {
	if admin == nil || !admin.IsAdmin() {
		return nil, ErrForbidden
	}
	answer := s.processor.SanitizeHTML(req.Answer)
	if answer == "" {
		return nil, fmt.Errorf("answer: %w", ErrInvalidInput)
	}
	if err := s.inquiries.Answer(id, admin.ID, answer); err != nil {
		return nil, translate(err, "answer inquiry")
	}

	s.logger.WithFields(logrus.Fields{
		"inquiry_id": id,
		"admin_id":   admin.ID,
	}).Info("Inquiry answered")

	inquiry, err := s.inquiries.GetByID(id)
	if err != nil {
		return nil, translate(err, "load inquiry")
	}
	return inquiry, nil
}
