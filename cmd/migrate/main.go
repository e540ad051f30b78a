package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Hitesh-Saha/FeastAI/config"
	"github.com/Hitesh-Saha/FeastAI/internal/database"
	"github.com/Hitesh-Saha/FeastAI/internal/logging"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.Environment)

	db, err := database.New(context.Background(), cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer func() { _ = db.Close() }()

	if err := database.Migrate(db.DB); err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	log.Info("all migrations applied successfully")
}
