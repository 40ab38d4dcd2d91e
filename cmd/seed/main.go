// Command seed fills the region_codes table with the sigungu codes of every area
// from the tourism API, so the server never has to fetch them lazily.
package main

import (
	"flag"
	"log"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/tripmate/backend/internal/category"
	"github.com/tripmate/backend/internal/config"
	"github.com/tripmate/backend/internal/database"
	"github.com/tripmate/backend/internal/models"
	"github.com/tripmate/backend/internal/repository"
	"github.com/tripmate/backend/internal/tourapi"
	"github.com/tripmate/backend/pkg/utils"
)

var (
	dryRun     = flag.Bool("dry-run", false, "Fetch and print region codes without writing to the database")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	concurrent = flag.Int("concurrent", 2, "Number of concurrent requests")
	delay      = flag.Duration("delay", 500*time.Millisecond, "Delay between requests")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := utils.InitLogger(cfg.Server.LogLevel)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if err := cfg.ValidateTourAPI(); err != nil {
		logger.WithError(err).Fatal("Tourism API configuration validation failed")
	}

	var store models.RegionCodeRepository
	if !*dryRun {
		dbManager, err := database.NewManager(&database.Config{
			DatabaseURL: cfg.Database.URL,
			RedisURL:    cfg.Redis.URL,
			LogLevel:    cfg.Server.LogLevel,
		}, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize database manager")
		}
		defer dbManager.Close()

		if err := dbManager.Migrate(); err != nil {
			logger.WithError(err).Fatal("Failed to migrate database")
		}
		store = repository.NewRegionCodeRepository(dbManager.DB)
	}

	client := tourapi.NewClient(tourapi.Config{
		BaseURL:    cfg.TourAPI.BaseURL,
		ServiceKey: cfg.TourAPI.ServiceKey,
		AppName:    cfg.TourAPI.AppName,
	}, logger)

	host := cfg.TourAPI.BaseURL
	if u, err := url.Parse(cfg.TourAPI.BaseURL); err == nil && u.Host != "" {
		host = u.Host
	}

	seeder := NewRegionSeeder(client, store, SeederOptions{
		DomainGlob:  host,
		Parallelism: *concurrent,
		Delay:       *delay,
		Timeout:     cfg.TourAPI.RequestTimeout,
		Debug:       *verbose,
	}, logger)

	stats := seeder.Seed(category.Default().Areas())
	logger.WithFields(logrus.Fields{
		"areas":   stats.Areas,
		"codes":   stats.Codes,
		"failed":  stats.Failed,
		"dry_run": *dryRun,
	}).Info("Region seeding completed")

	if stats.Failed > 0 {
		logger.Fatal("Some areas could not be seeded")
	}
}
