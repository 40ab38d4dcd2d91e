package models

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Nickname string `json:"nickname" binding:"required,min=2,max=20"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	User      *User  `json:"user"`
	SessionID string `json:"session_id"`
	ExpiresIn int    `json:"expires_in"`
}

type PostRequest struct {
	Title    string `json:"title" binding:"required,max=200"`
	Content  string `json:"content" binding:"required"`
	Category string `json:"category"`
	AreaCode string `json:"area_code"`
}

type CommentRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

type InquiryRequest struct {
	Title     string `json:"title" binding:"required,max=200"`
	Content   string `json:"content" binding:"required"`
	IsPrivate bool   `json:"is_private"`
}

type AnswerRequest struct {
	Answer string `json:"answer" binding:"required"`
}

type TravelGroupRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	AreaCode    string `json:"area_code"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	Capacity    int    `json:"capacity" binding:"required,min=2,max=50"`
}

type WishlistRequest struct {
	ContentID string `json:"contentId" binding:"required"`
	Title     string `json:"title"`
	Image     string `json:"image"`
	AreaCode  string `json:"areaCode"`
}

// Page wraps one page of a list endpoint
type Page struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
}
