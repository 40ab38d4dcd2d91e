package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"github.com/tripmate/backend/internal/api"
	"github.com/tripmate/backend/internal/api/handlers"
	"github.com/tripmate/backend/internal/category"
	"github.com/tripmate/backend/internal/config"
	"github.com/tripmate/backend/internal/content"
	"github.com/tripmate/backend/internal/database"
	"github.com/tripmate/backend/internal/health"
	"github.com/tripmate/backend/internal/middleware"
	"github.com/tripmate/backend/internal/migration"
	"github.com/tripmate/backend/internal/repository"
	"github.com/tripmate/backend/internal/search"
	"github.com/tripmate/backend/internal/services"
	"github.com/tripmate/backend/internal/tourapi"
	"github.com/tripmate/backend/pkg/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := utils.InitLogger(cfg.Server.LogLevel)
	gin.SetMode(cfg.Server.Mode)

	dbManager, err := database.NewManager(&database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    cfg.Server.LogLevel,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}

	if err := migration.NewRunner(dbManager, logger).RunMigrations(cfg.Migrations.Path); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	repos := repository.NewRepositoryManager(dbManager.DB)
	cache := database.NewCache(dbManager.Redis, logger)

	if err := cfg.ValidateTourAPI(); err != nil {
		logger.WithError(err).Warn("Tourism API is not configured; tour endpoints will fail")
	}
	tourClient := tourapi.NewClient(tourapi.Config{
		BaseURL:            cfg.TourAPI.BaseURL,
		BarrierFreeBaseURL: cfg.TourAPI.BarrierFreeBaseURL,
		ServiceKey:         cfg.TourAPI.ServiceKey,
		AppName:            cfg.TourAPI.AppName,
		ConnectTimeout:     cfg.TourAPI.ConnectTimeout,
		RequestTimeout:     cfg.TourAPI.RequestTimeout,
		RatePerSecond:      cfg.TourAPI.RatePerSecond,
		RateBurst:          cfg.TourAPI.RateBurst,
	}, logger)

	mapper := category.Default()
	enricher := search.NewEnricher(tourClient, semaphore.NewWeighted(int64(cfg.TourAPI.EnrichPoolSize)), logger)
	filter := search.NewFilterService(tourClient, mapper, enricher, cache, search.Options{
		Concurrency:        cfg.TourAPI.SearchConcurrency,
		RowsPerCombination: cfg.TourAPI.RowsPerCombination,
		CacheTTL:           cfg.TourAPI.CacheTTL,
		PlaceholderImage:   cfg.TourAPI.PlaceholderImage,
	}, logger)

	processor := content.NewProcessor()

	tourService := services.NewTourService(filter, enricher, tourClient, mapper, services.TourRepositories{
		SearchLog:      repos.SearchLog,
		PopularKeyword: repos.PopularKeyword,
		RegionCode:     repos.RegionCode,
	}, cache, processor, services.TourOptions{
		DetailCacheTTL:   cfg.TourAPI.DetailCacheTTL,
		KeywordCacheTTL:  cfg.TourAPI.CacheTTL,
		PlaceholderImage: cfg.TourAPI.PlaceholderImage,
	}, logger)

	authService := services.NewAuthService(repos.User, cache, processor, services.AuthConfig{
		SessionTTL:       cfg.Auth.SessionTTL,
		MaxLoginAttempts: cfg.Auth.MaxLoginAttempts,
		LockoutDuration:  cfg.Auth.LockoutDuration,
		BcryptCost:       bcrypt.DefaultCost,
	}, logger)
	communityService := services.NewCommunityService(repos.Post, repos.Comment, repos.PostLike, processor, logger)
	supportService := services.NewSupportService(repos.Inquiry, processor, logger)
	groupService := services.NewGroupService(repos.TravelGroup, processor, logger)
	wishlistService := services.NewWishlistService(repos.Wishlist, cfg.TourAPI.PlaceholderImage, logger)

	healthChecker := health.NewHealthChecker(dbManager, tourClient, cache, repos.SystemHealth, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go healthChecker.PeriodicHealthCheck(ctx, cfg.Health.Interval)

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimitPerMinute)
	go limiter.RunCleanup(time.Minute, ctx.Done())

	router := api.NewRouter(api.Handlers{
		Tours:     handlers.NewTourHandler(tourService, logger),
		Auth:      handlers.NewAuthHandler(authService, handlers.CookieConfig{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure}, logger),
		Community: handlers.NewCommunityHandler(communityService, logger),
		QnA:       handlers.NewQnAHandler(supportService, logger),
		Groups:    handlers.NewGroupHandler(groupService, logger),
		Wishlist:  handlers.NewWishlistHandler(wishlistService, logger),
		Health:    handlers.NewHealthHandler(healthChecker, 2*cfg.Health.Interval, logger),
	}, authService, limiter, api.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		CookieName:     cfg.Auth.CookieName,
	}, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	tourService.Wait()
	if err := dbManager.Close(); err != nil {
		logger.WithError(err).Error("Failed to close database connections")
	}
	logger.Info("Server exited")
}
