package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"

	"github.com/franckalain/foodrescue/internal/config"
	"github.com/franckalain/foodrescue/internal/database"
	"github.com/franckalain/foodrescue/internal/logging"
	"github.com/franckalain/foodrescue/internal/ml"
	"github.com/franckalain/foodrescue/internal/server"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	configPath := flag.String("config", config.GetConfigPath(), "path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger, err := logging.New(cfg.Server.Debug)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Initialize database
	dsn := cfg.Database.Path
	if cfg.Database.Driver == "postgres" {
		dsn = cfg.Database.URL
	}
	db, err := database.Open(ctx, cfg.Database.Driver, dsn, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.SeedFile != "" {
		ngos, err := database.LoadNGOSeed(cfg.Database.SeedFile)
		if err != nil {
			logger.Fatal("Failed to load NGO seed file", zap.Error(err))
		}
		if err := database.SeedNGOs(ctx, db, ngos); err != nil {
			logger.Fatal("Failed to seed NGOs", zap.Error(err))
		}
		logger.Info("Seeded NGOs", zap.Int("count", len(ngos)))
	}

	// Initialize ML service
	model, err := ml.NewModel(cfg.ML.Type, cfg.ML.Config, logger)
	if err != nil {
		logger.Fatal("Failed to create ML model", zap.Error(err))
	}
	if err := model.Load(ctx); err != nil {
		logger.Fatal("Failed to load ML model", zap.Error(err))
	}
	if closer, ok := model.(io.Closer); ok {
		defer closer.Close()
	}

	// Initialize and start server
	srv := server.New(db, model, logger, server.Options{
		Debug:          cfg.Server.Debug,
		StaticDir:      cfg.Server.StaticDir,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	if err := srv.Start(ctx, cfg.Server.Port); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}
}
