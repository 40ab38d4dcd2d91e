package repository

import (
	"time"

	"github.com/tripmate/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepositoryImpl implements UserRepository
type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) models.UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepositoryImpl) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRepositoryImpl) ExistsByNickname(nickname string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("nickname = ?", nickname).Count(&count).Error
	return count > 0, err
}

func (r *UserRepositoryImpl) UpdateLastLogin(id uint, at time.Time) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// PostRepositoryImpl implements PostRepository
type PostRepositoryImpl struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) models.PostRepository {
	return &PostRepositoryImpl{db: db}
}

func (r *PostRepositoryImpl) Create(post *models.Post) error {
	return r.db.Create(post).Error
}

func (r *PostRepositoryImpl) GetByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.Preload("Author").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepositoryImpl) List(category string, offset, limit int) ([]models.Post, int64, error) {
	query := r.db.Model(&models.Post{})
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.Post
	err := query.Preload("Author").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, total, err
}

func (r *PostRepositoryImpl) Update(post *models.Post) error {
	return r.db.Model(post).
		Select("title", "content", "category", "area_code").
		Updates(post).Error
}

func (r *PostRepositoryImpl) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}

func (r *PostRepositoryImpl) IncrementViewCount(id uint) error {
	return r.db.Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// CommentRepositoryImpl implements CommentRepository
type CommentRepositoryImpl struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) models.CommentRepository {
	return &CommentRepositoryImpl{db: db}
}

func (r *CommentRepositoryImpl) Create(comment *models.Comment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
	})
}

func (r *CommentRepositoryImpl) GetByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepositoryImpl) ListByPost(postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Where("post_id = ?", postID).
		Preload("Author").
		Order("created_at").
		Find(&comments).Error
	return comments, err
}

func (r *CommentRepositoryImpl) Delete(comment *models.Comment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Comment{}, comment.ID).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).
			Where("id = ? AND comment_count > 0", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - 1")).Error
	})
}

// PostLikeRepositoryImpl implements PostLikeRepository
type PostLikeRepositoryImpl struct {
	db *gorm.DB
}

func NewPostLikeRepository(db *gorm.DB) models.PostLikeRepository {
	return &PostLikeRepositoryImpl{db: db}
}

func (r *PostLikeRepositoryImpl) Toggle(postID, userID uint) (bool, int, error) {
	var liked bool
	var count int

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "like_count").
			First(&post, postID).Error; err != nil {
			return err
		}

		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostLike{})
		if res.Error != nil {
			return res.Error
		}

		delta := -1
		if res.RowsAffected == 0 {
			if err := tx.Create(&models.PostLike{PostID: postID, UserID: userID}).Error; err != nil {
				return err
			}
			delta = 1
			liked = true
		}

		count = post.LikeCount + delta
		if count < 0 {
			count = 0
		}
		return tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("like_count", count).Error
	})
	return liked, count, err
}

// InquiryRepositoryImpl implements InquiryRepository
type InquiryRepositoryImpl struct {
	db *gorm.DB
}

func NewInquiryRepository(db *gorm.DB) models.InquiryRepository {
	return &InquiryRepositoryImpl{db: db}
}

func (r *InquiryRepositoryImpl) Create(inquiry *models.Inquiry) error {
	return r.db.Create(inquiry).Error
}

func (r *InquiryRepositoryImpl) GetByID(id uint) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	if err := r.db.Preload("Author").First(&inquiry, id).Error; err != nil {
		return nil, err
	}
	return &inquiry, nil
}

func (r *InquiryRepositoryImpl) ListVisible(userID uint, includePrivate bool, offset, limit int) ([]models.Inquiry, int64, error) {
	query := r.db.Model(&models.Inquiry{})
	if !includePrivate {
		query = query.Where("is_private = ? OR user_id = ?", false, userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var inquiries []models.Inquiry
	err := query.Preload("Author").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&inquiries).Error
	return inquiries, total, err
}

func (r *InquiryRepositoryImpl) Answer(id, adminID uint, answer string) error {
	res := r.db.Model(&models.Inquiry{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"answer":      answer,
			"answered_by": adminID,
			"answered_at": time.Now(),
			"status":      models.InquiryAnswered,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// TravelGroupRepositoryImpl implements TravelGroupRepository
type TravelGroupRepositoryImpl struct {
	db *gorm.DB
}

func NewTravelGroupRepository(db *gorm.DB) models.TravelGroupRepository {
	return &TravelGroupRepositoryImpl{db: db}
}

func (r *TravelGroupRepositoryImpl) Create(group *models.TravelGroup) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		group.MemberCount = 1
		if err := tx.Omit("Members").Create(group).Error; err != nil {
			return err
		}
		leader := models.GroupMember{
			GroupID:  group.ID,
			UserID:   group.LeaderID,
			Role:     models.MemberRoleLeader,
			JoinedAt: time.Now(),
		}
		return tx.Create(&leader).Error
	})
}

func (r *TravelGroupRepositoryImpl) GetByID(id uint) (*models.TravelGroup, error) {
	var group models.TravelGroup
	err := r.db.Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("joined_at")
	}).Preload("Members.User").First(&group, id).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *TravelGroupRepositoryImpl) List(areaCode string, offset, limit int) ([]models.TravelGroup, int64, error) {
	query := r.db.Model(&models.TravelGroup{})
	if areaCode != "" {
		query = query.Where("area_code = ?", areaCode)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var groups []models.TravelGroup
	err := query.Order("start_date").
		Offset(offset).
		Limit(limit).
		Find(&groups).Error
	return groups, total, err
}

// AddMember enrolls a user while holding a row lock on the group so concurrent joins
// cannot exceed the capacity.
func (r *TravelGroupRepositoryImpl) AddMember(groupID, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var group models.TravelGroup
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&group, groupID).Error; err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.GroupMember{}).
			Where("group_id = ? AND user_id = ?", groupID, userID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return models.ErrAlreadyMember
		}
		if group.MemberCount >= group.Capacity {
			return models.ErrGroupFull
		}

		member := models.GroupMember{
			GroupID:  groupID,
			UserID:   userID,
			Role:     models.MemberRoleMember,
			JoinedAt: time.Now(),
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		return tx.Model(&models.TravelGroup{}).
			Where("id = ?", groupID).
			UpdateColumn("member_count", gorm.Expr("member_count + 1")).Error
	})
}

func (r *TravelGroupRepositoryImpl) RemoveMember(groupID, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.GroupMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.TravelGroup{}).
			Where("id = ? AND member_count > 0", groupID).
			UpdateColumn("member_count", gorm.Expr("member_count - 1")).Error
	})
}

func (r *TravelGroupRepositoryImpl) IsMember(groupID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *TravelGroupRepositoryImpl) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.TravelGroup{}, id).Error
	})
}

// WishlistRepositoryImpl implements WishlistRepository
type WishlistRepositoryImpl struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) models.WishlistRepository {
	return &WishlistRepositoryImpl{db: db}
}

// Create returns gorm.ErrDuplicatedKey when the user already saved the content id.
// The connection must be opened with TranslateError.
func (r *WishlistRepositoryImpl) Create(item *models.WishlistItem) error {
	return r.db.Create(item).Error
}

func (r *WishlistRepositoryImpl) ListByUser(userID uint) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *WishlistRepositoryImpl) Delete(userID uint, contentID string) error {
	res := r.db.Where("user_id = ? AND content_id = ?", userID, contentID).Delete(&models.WishlistItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	User           models.UserRepository
	Post           models.PostRepository
	Comment        models.CommentRepository
	PostLike       models.PostLikeRepository
	Inquiry        models.InquiryRepository
	TravelGroup    models.TravelGroupRepository
	Wishlist       models.WishlistRepository
	RegionCode     models.RegionCodeRepository
	SearchLog      models.SearchLogRepository
	PopularKeyword models.PopularKeywordRepository
	SystemHealth   models.SystemHealthRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		User:           NewUserRepository(db),
		Post:           NewPostRepository(db),
		Comment:        NewCommentRepository(db),
		PostLike:       NewPostLikeRepository(db),
		Inquiry:        NewInquiryRepository(db),
		TravelGroup:    NewTravelGroupRepository(db),
		Wishlist:       NewWishlistRepository(db),
		RegionCode:     NewRegionCodeRepository(db),
		SearchLog:      NewSearchLogRepository(db),
		PopularKeyword: NewPopularKeywordRepository(db),
		SystemHealth:   NewSystemHealthRepository(db),
	}
}
