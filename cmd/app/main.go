package main

import (
	"driveease/config"
	"driveease/di"
	"driveease/helper"
	"driveease/shared/logger"

	"github.com/rs/zerolog/log"
)

// @title                      DriveEase API
// @version                    1.0
// @description                Car rental marketplace: catalog, bookings, payments and administration.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
	}

	http := di.InitializeService()
	http.Serve()
}
