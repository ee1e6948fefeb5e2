// cmd/seed/main.go
package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/laihecha/tea-api/internal/config"
	"github.com/laihecha/tea-api/internal/database"
	"github.com/laihecha/tea-api/internal/logging"
	"github.com/laihecha/tea-api/internal/seed"
	"github.com/laihecha/tea-api/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal("Failed to load configuration: ", err)
	}
	if err := logging.Setup(cfg.Log); err != nil {
		logrus.Fatal("Failed to configure logging: ", err)
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		logrus.Fatal("Failed to initialize database: ", err)
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		logrus.Fatal("Failed to run migrations: ", err)
	}

	if _, err := seed.Run(context.Background(), db, services.SystemClock); err != nil {
		logrus.Fatal("Failed to seed catalog: ", err)
	}
}
