package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/tripmate/backend/internal/api/handlers"
	"github.com/tripmate/backend/internal/middleware"
	"github.com/tripmate/backend/pkg/utils"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Tours     *handlers.TourHandler
	Auth      *handlers.AuthHandler
	Community *handlers.CommunityHandler
	QnA       *handlers.QnAHandler
	Groups    *handlers.GroupHandler
	Wishlist  *handlers.WishlistHandler
	Health    *handlers.HealthHandler
}

type RouterConfig struct {
	AllowedOrigins []string
	CookieName     string
}

func NewRouter(h Handlers, sessions middleware.SessionResolver, limiter *middleware.RateLimiter, config RouterConfig, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RequestLogger(logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", utils.SessionHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", h.Health.HandleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	optional := middleware.OptionalSession(sessions, config.CookieName)
	required := middleware.RequireSession(sessions, config.CookieName)

	api := r.Group("/api")
	api.Use(limiter.RateLimit())

	tours := api.Group("/tours")
	{
		tours.GET("/filter", optional, h.Tours.HandleFilter)
		tours.GET("/search", h.Tours.HandleKeyword)
		tours.GET("/suggestions", h.Tours.HandleSuggestions)
		tours.GET("/popular", h.Tours.HandlePopular)
		tours.GET("/:contentId", h.Tours.HandleDetail)
		tours.GET("/:contentId/barrier-free", h.Tours.HandleBarrierFree)
	}

	areas := api.Group("/areas")
	{
		areas.GET("", h.Tours.HandleAreas)
		areas.GET("/:areaCode/sigungu", h.Tours.HandleSigungu)
	}

	auth := api.Group("/auth")
	{
		auth.POST("/signup", h.Auth.HandleSignup)
		auth.POST("/login", h.Auth.HandleLogin)
		auth.POST("/logout", optional, h.Auth.HandleLogout)
		auth.GET("/me", required, h.Auth.HandleMe)
	}

	posts := api.Group("/posts")
	{
		posts.GET("", h.Community.HandleListPosts)
		posts.GET("/:id", h.Community.HandleGetPost)
		posts.GET("/:id/comments", h.Community.HandleListComments)

		protected := posts.Group("", required)
		protected.POST("", h.Community.HandleCreatePost)
		protected.PUT("/:id", h.Community.HandleUpdatePost)
		protected.DELETE("/:id", h.Community.HandleDeletePost)
		protected.POST("/:id/comments", h.Community.HandleAddComment)
		protected.POST("/:id/like", h.Community.HandleToggleLike)
	}
	api.DELETE("/comments/:id", required, h.Community.HandleDeleteComment)

	qna := api.Group("/qna")
	{
		qna.GET("", optional, h.QnA.HandleList)
		qna.GET("/:id", optional, h.QnA.HandleGet)
		qna.POST("", required, h.QnA.HandleCreate)
		qna.POST("/:id/answer", required, middleware.RequireAdmin(), h.QnA.HandleAnswer)
	}

	groups := api.Group("/groups")
	{
		groups.GET("", h.Groups.HandleList)
		groups.GET("/:id", h.Groups.HandleGet)

		protected := groups.Group("", required)
		protected.POST("", h.Groups.HandleCreate)
		protected.POST("/:id/join", h.Groups.HandleJoin)
		protected.POST("/:id/leave", h.Groups.HandleLeave)
		protected.DELETE("/:id", h.Groups.HandleDelete)
	}

	wishlist := api.Group("/wishlist", required)
	{
		wishlist.POST("", h.Wishlist.HandleAdd)
		wishlist.GET("", h.Wishlist.HandleList)
		wishlist.DELETE("/:contentId", h.Wishlist.HandleRemove)
	}

	return r
}
