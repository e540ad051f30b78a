package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Hitesh-Saha/FeastAI/config"
	"github.com/Hitesh-Saha/FeastAI/internal/database"
	"github.com/Hitesh-Saha/FeastAI/internal/logging"
	"github.com/Hitesh-Saha/FeastAI/internal/server"
	"github.com/Hitesh-Saha/FeastAI/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.Environment)
	log.WithField("environment", cfg.Environment).Info("configuration loaded")

	ctx := context.Background()

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer func() { _ = db.Close() }()

	if err := database.Migrate(db.DB); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	// Redis backs the image cache and generation rate limit; both are skipped
	// when it is unavailable.
	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.WithError(err).Warn("continuing without Redis")
			redisClient = nil
		} else {
			defer func() { _ = redisClient.Close() }()
		}
	}

	gemini, err := service.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
	if err != nil {
		log.WithError(err).Fatal("failed to create Gemini client")
	}
	defer func() { _ = gemini.Close() }()

	var imageOpts []service.ImageOption
	if redisClient != nil {
		imageOpts = append(imageOpts, service.WithImageCache(redisClient, 0))
	}
	if cfg.S3Enabled() {
		s3Cfg, err := config.NewS3Config(ctx, cfg.S3Bucket, cfg.AWSRegion)
		if err != nil {
			log.WithError(err).Warn("continuing without S3 image mirror")
		} else {
			imageOpts = append(imageOpts, service.WithImageMirror(
				service.NewImageMirror(s3Cfg.Client, s3Cfg.BucketName, s3Cfg.PublicURL)))
		}
	}
	images := service.NewUnsplashResolver(cfg.UnsplashAccessKey, log, imageOpts...)

	adapter := service.NewAdapter(images, cfg.ImageLookupTimeout, log)
	srv := server.New(cfg, server.Deps{
		DB:         db,
		Redis:      redisClient,
		Auth:       service.NewAuthService(db.DB, cfg.JWTSecret, log),
		Generation: service.NewGenerationService(db.DB, gemini, adapter, cfg.GenerationTimeout, log),
		Recipes:    service.NewRecipeService(db.DB, log),
	}, log)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.WithError(err).Error("server error")
		}
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("received signal")
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown error")
	}
	log.Info("server stopped")
}
