package main

import (
	"os"

	"github.com/noah-isme/backend-grosir/internal/config"
	"github.com/noah-isme/backend-grosir/internal/db"
	"github.com/noah-isme/backend-grosir/internal/obs"
)

func main() {
	logger := obs.NewLogger(os.Getenv("OBS_LOG_FORMAT"), os.Getenv("OBS_LOG_LEVEL"))

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load configuration")
	}

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}
	logger.Info().Msg("migrations applied")
}
