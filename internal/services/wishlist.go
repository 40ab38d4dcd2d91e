package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tripmate/backend/internal/models"
	"github.com/tripmate/backend/internal/search"
)

type WishlistService struct {
	wishlist    models.WishlistRepository
	placeholder string
	logger      *logrus.Logger
}

func NewWishlistService(wishlist models.WishlistRepository, placeholder string, logger *logrus.Logger) *WishlistService {
	return &WishlistService{
		wishlist:    wishlist,
		placeholder: placeholder,
		logger:      logger,
	}
}

// Add saves an attraction; saving the same content id twice yields ErrDuplicate.
func (s *WishlistService) Add(ctx context.Context, user *models.User, req models.WishlistRequest) (*models.WishlistItem, error) {
	item := &models.WishlistItem{
		UserID:    user.ID,
		ContentID: strings.TrimSpace(req.ContentID),
		Title:     strings.TrimSpace(req.Title),
		Image:     search.OptimizeImageURL(req.Image, "", s.placeholder),
		AreaCode:  req.AreaCode,
	}
	if err := s.wishlist.Create(item); err != nil {
		return nil, translate(err, "save wishlist item")
	}
	return item, nil
}

func (s *WishlistService) List(ctx context.Context, user *models.User) ([]models.WishlistItem, error) {
	items, err := s.wishlist.ListByUser(user.ID)
	if err != nil {
		return nil, translate(err, "list wishlist")
	}
	return items, nil
}

func (s *WishlistService) Remove(ctx context.Context, user *models.User, contentID string) error {
	return translate(s.wishlist.Delete(user.ID, contentID), "remove wishlist item")
}
