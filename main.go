package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wellfield/rigops/internal/analytics"
	"github.com/wellfield/rigops/internal/api"
	"github.com/wellfield/rigops/internal/cache"
	"github.com/wellfield/rigops/internal/config"
	"github.com/wellfield/rigops/internal/handler"
	"github.com/wellfield/rigops/internal/logger"
	"github.com/wellfield/rigops/internal/metrics"
	"github.com/wellfield/rigops/internal/storage"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log, err := createLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	db, err := storage.Connect(cfg.Database.DSN())
	if err != nil {
		log.Error("Failed to connect to record store", logger.Error(err))
		return 1
	}
	defer func() { _ = db.Close() }()

	log.Info("Record store connected",
		logger.String("host", cfg.Database.Host),
		logger.Int("port", cfg.Database.Port),
		logger.String("database", cfg.Database.Database),
	)

	return runServer(cfg, log, db)
}

// loadConfig loads and validates configuration.
func loadConfig() (*config.Config, error) {
	configPath := config.GetConfigPath("config.yml")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return nil, fmt.Errorf("validate config: %w", validationErr)
	}
	return cfg, nil
}

// createLogger creates a logger instance from configuration.
func createLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(logger.String("service", cfg.Service.Name)), nil
}

// runServer assembles all dependencies and runs the HTTP server.
func runServer(cfg *config.Config, log logger.Logger, db *sqlx.DB) int {
	met := metrics.New(prometheus.DefaultRegisterer)

	store := storage.NewRecordStore(db, log)

	engine := analytics.NewEngine(store, log, analytics.Options{
		QueryTimeout: cfg.Analytics.QueryTimeout,
		TopLimit:     cfg.Analytics.TopLimit,
		Metrics:      met,
	})

	var snapCache *cache.SnapshotCache
	if cfg.Cache.Enabled() {
		client, err := cache.Connect(cfg.Cache.Address, cfg.Cache.Password, cfg.Cache.DB)
		if err != nil {
			// The cache is an optimization; the service runs without it.
			log.Warn("Snapshot cache unavailable, continuing without it", logger.Error(err))
		} else {
			defer func() { _ = client.Close() }()
			snapCache = cache.New(client, cfg.Cache.TTL, log, met)
			log.Info("Snapshot cache enabled",
				logger.String("address", cfg.Cache.Address),
				logger.Duration("ttl", cfg.Cache.TTL),
			)
		}
	}

	dashboard := handler.NewDashboardHandler(engine, snapCache, log, cfg.Analytics.TopLimit, time.Now)
	health := handler.NewHealthHandler(store, cfg.Service.Name, cfg.Service.Version)

	server := api.NewServer(cfg, dashboard, health, met, log)

	log.Info("Analytics service starting", logger.Int("port", cfg.Service.Port))

	if err := server.RunWithGracefulShutdown(context.Background()); err != nil {
		log.Error("Server error", logger.Error(err))
		return 1
	}

	log.Info("Analytics service exited cleanly")
	return 0
}
