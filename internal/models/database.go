package models

// GORM models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

var (
	// ErrGroupFull is returned when a join would exceed the group's capacity.
	ErrGroupFull = errors.New("travel group is full")
	// ErrAlreadyMember is returned when the user already belongs to the group.
	ErrAlreadyMember = errors.New("already a member of the travel group")
)

// StringArray for PostgreSQL array support
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "{}", nil
	}
	quoted := make([]string, len(s))
	for i, v := range s {
		quoted[i] = `"` + strings.ReplaceAll(strings.ReplaceAll(v, `\`, `\\`), `"`, `\"`) + `"`
	}
	return fmt.Sprintf("{%s}", strings.Join(quoted, ",")), nil
}

func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}

	switch v := value.(type) {
	case string:
		v = strings.Trim(v, "{}")
		if v == "" {
			*s = StringArray{}
			return nil
		}
		parts := strings.Split(v, ",")
		for i, p := range parts {
			parts[i] = strings.Trim(p, `"`)
		}
		*s = StringArray(parts)
	case []byte:
		return s.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into StringArray", value)
	}
	return nil
}

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a community account
type User struct {
	BaseModel
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"not null"`
	Nickname     string     `json:"nickname" gorm:"uniqueIndex;not null"`
	Role         string     `json:"role" gorm:"not null;default:'user';check:role IN ('user','admin')"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Post is a community board article
type Post struct {
	BaseModel
	UserID       uint   `json:"user_id" gorm:"not null;index"`
	Title        string `json:"title" gorm:"not null"`
	Content      string `json:"content" gorm:"type:text;not null"`
	Category     string `json:"category" gorm:"not null;default:'free';index"`
	AreaCode     string `json:"area_code"`
	ViewCount    int    `json:"view_count" gorm:"default:0"`
	LikeCount    int    `json:"like_count" gorm:"default:0"`
	CommentCount int    `json:"comment_count" gorm:"default:0"`

	// Associations
	Author User `json:"author" gorm:"foreignKey:UserID"`
}

// Comment belongs to a post
type Comment struct {
	BaseModel
	PostID  uint   `json:"post_id" gorm:"not null;index"`
	UserID  uint   `json:"user_id" gorm:"not null"`
	Content string `json:"content" gorm:"type:text;not null"`

	// Associations
	Author User `json:"author" gorm:"foreignKey:UserID"`
}

// PostLike records one user's like of a post
type PostLike struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"not null;uniqueIndex:idx_post_likes_post_user"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_post_likes_post_user"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	InquiryPending  = "pending"
	InquiryAnswered = "answered"
)

// Inquiry is a customer-support question
type Inquiry struct {
	BaseModel
	UserID     uint       `json:"user_id" gorm:"not null;index"`
	Title      string     `json:"title" gorm:"not null"`
	Content    string     `json:"content" gorm:"type:text;not null"`
	IsPrivate  bool       `json:"is_private" gorm:"default:false"`
	Status     string     `json:"status" gorm:"not null;default:'pending';check:status IN ('pending','answered')"`
	Answer     string     `json:"answer" gorm:"type:text"`
	AnsweredBy *uint      `json:"answered_by"`
	AnsweredAt *time.Time `json:"answered_at"`

	// Associations
	Author User `json:"author" gorm:"foreignKey:UserID"`
}

const (
	MemberRoleLeader = "leader"
	MemberRoleMember = "member"
)

// TravelGroup is a companion-finding group for a trip
type TravelGroup struct {
	BaseModel
	LeaderID    uint      `json:"leader_id" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	AreaCode    string    `json:"area_code" gorm:"index"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Capacity    int       `json:"capacity" gorm:"not null;check:capacity BETWEEN 2 AND 50"`
	MemberCount int       `json:"member_count" gorm:"default:0"`

	// Associations
	Members []GroupMember `json:"members,omitempty" gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
}

// GroupMember is a user's membership in a travel group
type GroupMember struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	GroupID  uint      `json:"group_id" gorm:"not null;uniqueIndex:idx_group_members_group_user"`
	UserID   uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_group_members_group_user"`
	Role     string    `json:"role" gorm:"not null;default:'member';check:role IN ('leader','member')"`
	JoinedAt time.Time `json:"joined_at"`

	// Associations
	User User `json:"user" gorm:"foreignKey:UserID"`
}

// WishlistItem is an attraction a user saved
type WishlistItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_wishlist_user_content"`
	ContentID string    `json:"content_id" gorm:"not null;uniqueIndex:idx_wishlist_user_content"`
	Title     string    `json:"title"`
	Image     string    `json:"image"`
	AreaCode  string    `json:"area_code"`
	CreatedAt time.Time `json:"created_at"`
}

// RegionCode is a sigungu code synced from the tourism API
type RegionCode struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	AreaCode    string    `json:"area_code" gorm:"not null;uniqueIndex:idx_region_codes_area_sigungu"`
	SigunguCode string    `json:"sigungu_code" gorm:"not null;uniqueIndex:idx_region_codes_area_sigungu"`
	Name        string    `json:"name" gorm:"not null"`
	SortOrder   int       `json:"sort_order"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SearchLog records one filter search
type SearchLog struct {
	ID             uint        `json:"id" gorm:"primaryKey"`
	Themes         StringArray `json:"themes" gorm:"type:text[]"`
	Activities     StringArray `json:"activities" gorm:"type:text[]"`
	Places         StringArray `json:"places" gorm:"type:text[]"`
	AreaCode       string      `json:"area_code"`
	SigunguCode    string      `json:"sigungu_code"`
	BarrierFree    bool        `json:"barrier_free"`
	ResultCount    int         `json:"result_count"`
	Fallback       bool        `json:"fallback"`
	APICalls       int         `json:"api_calls"`
	ResponseTimeMs int         `json:"response_time_ms"`
	UserID         *uint       `json:"user_id"`
	IPAddress      string      `json:"ip_address"`
	CreatedAt      time.Time   `json:"created_at" gorm:"index"`
}

// PopularKeyword represents frequently searched keywords
type PopularKeyword struct {
	BaseModel
	Keyword      string    `json:"keyword" gorm:"uniqueIndex;not null"`
	SearchCount  int       `json:"search_count" gorm:"default:1"`
	LastSearched time.Time `json:"last_searched" gorm:"default:NOW()"`
}

// SystemHealth represents service health monitoring
type SystemHealth struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ServiceName    string    `json:"service_name" gorm:"not null"`
	Status         string    `json:"status" gorm:"not null;check:status IN ('healthy','degraded','unhealthy')"`
	ResponseTimeMs int       `json:"response_time_ms"`
	ErrorMessage   string    `json:"error_message"`
	CheckedAt      time.Time `json:"checked_at" gorm:"default:NOW()"`
}

// Database interfaces for repository pattern
type UserRepository interface {
	Create(user *User) error
	GetByID(id uint) (*User, error)
	GetByEmail(email string) (*User, error)
	ExistsByEmail(email string) (bool, error)
	ExistsByNickname(nickname string) (bool, error)
	UpdateLastLogin(id uint, at time.Time) error
}

type PostRepository interface {
	Create(post *Post) error
	GetByID(id uint) (*Post, error)
	List(category string, offset, limit int) ([]Post, int64, error)
	Update(post *Post) error
	Delete(id uint) error
	IncrementViewCount(id uint) error
}

type CommentRepository interface {
	Create(comment *Comment) error
	GetByID(id uint) (*Comment, error)
	ListByPost(postID uint) ([]Comment, error)
	Delete(comment *Comment) error
}

type PostLikeRepository interface {
	// Toggle adds the like if absent and removes it otherwise, returning the new
	// state and the post's like count.
	Toggle(postID, userID uint) (bool, int, error)
}

type InquiryRepository interface {
	Create(inquiry *Inquiry) error
	GetByID(id uint) (*Inquiry, error)
	ListVisible(userID uint, includePrivate bool, offset, limit int) ([]Inquiry, int64, error)
	Answer(id, adminID uint, answer string) error
}

type TravelGroupRepository interface {
	// Create stores the group and enrolls its leader.
	Create(group *TravelGroup) error
	GetByID(id uint) (*TravelGroup, error)
	List(areaCode string, offset, limit int) ([]TravelGroup, int64, error)
	AddMember(groupID, userID uint) error
	RemoveMember(groupID, userID uint) error
	IsMember(groupID, userID uint) (bool, error)
	Delete(id uint) error
}

type WishlistRepository interface {
	Create(item *WishlistItem) error
	ListByUser(userID uint) ([]WishlistItem, error)
	Delete(userID uint, contentID string) error
}

type RegionCodeRepository interface {
	Upsert(codes []RegionCode) error
	ListByArea(areaCode string) ([]RegionCode, error)
}

type SearchLogRepository interface {
	Create(log *SearchLog) error
	CountSince(since time.Time) (int64, error)
}

type PopularKeywordRepository interface {
	IncrementCount(keyword string) error
	GetTop(limit int) ([]PopularKeyword, error)
	Suggest(fragment string, limit int) ([]PopularKeyword, error)
}

type SystemHealthRepository interface {
	UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error
	GetServiceHealth(serviceName string) (*SystemHealth, error)
	GetAllServicesHealth() ([]SystemHealth, error)
	GetUnhealthyServices() ([]SystemHealth, error)
}

// TableName methods for custom table names
func (User) TableName() string           { return "users" }
func (Post) TableName() string           { return "posts" }
func (Comment) TableName() string        { return "comments" }
func (PostLike) TableName() string       { return "post_likes" }
func (Inquiry) TableName() string        { return "inquiries" }
func (TravelGroup) TableName() string    { return "travel_groups" }
func (GroupMember) TableName() string    { return "group_members" }
func (WishlistItem) TableName() string   { return "wishlist_items" }
func (RegionCode) TableName() string     { return "region_codes" }
func (SearchLog) TableName() string      { return "search_logs" }
func (PopularKeyword) TableName() string { return "popular_keywords" }
func (SystemHealth) TableName() string   { return "system_health" }

// AllModels lists every table for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Post{},
		&Comment{},
		&PostLike{},
		&Inquiry{},
		&TravelGroup{},
		&GroupMember{},
		&WishlistItem{},
		&RegionCode{},
		&SearchLog{},
		&PopularKeyword{},
		&SystemHealth{},
	}
}

// Model validation methods
func (u *User) Validate() error {
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return fmt.Errorf("valid email is required")
	}
	if u.Nickname == "" {
		return fmt.Errorf("nickname is required")
	}
	if u.Role != "" && u.Role != RoleUser && u.Role != RoleAdmin {
		return fmt.Errorf("invalid role: %s", u.Role)
	}
	return nil
}

func (p *Post) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("post title is required")
	}
	if strings.TrimSpace(p.Content) == "" {
		return fmt.Errorf("post content is required")
	}
	return nil
}

func (g *TravelGroup) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("group name is required")
	}
	if g.Capacity < 2 || g.Capacity > 50 {
		return fmt.Errorf("capacity must be between 2 and 50, got %d", g.Capacity)
	}
	if !g.EndDate.IsZero() && g.EndDate.Before(g.StartDate) {
		return fmt.Errorf("end date is before start date")
	}
	return nil
}

func (i *Inquiry) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return fmt.Errorf("inquiry title is required")
	}
	validStatuses := map[string]bool{
		"":              true,
		InquiryPending:  true,
		InquiryAnswered: true,
	}
	if !validStatuses[i.Status] {
		return fmt.Errorf("invalid inquiry status: %s", i.Status)
	}
	return nil
}

// GORM hooks
func (u *User) BeforeCreate(tx *gorm.DB) error {
	return u.Validate()
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	return p.Validate()
}

func (p *Post) BeforeUpdate(tx *gorm.DB) error {
	return p.Validate()
}

func (g *TravelGroup) BeforeCreate(tx *gorm.DB) error {
	return g.Validate()
}

func (i *Inquiry) BeforeCreate(tx *gorm.DB) error {
	return i.Validate()
}
