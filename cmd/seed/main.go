// seed loads the demo customers, catalog and documents into an empty database.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"

	"quote-to-cash/internal/app"
	"quote-to-cash/internal/config"
	"quote-to-cash/internal/core"
	"quote-to-cash/internal/logger"
	"quote-to-cash/internal/store"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatal("config", zap.Error(err))
	}
	logger.Init(cfg.Env)
	defer logger.Sync()
	log := logger.L()

	if cfg.StoreDriver != config.DriverPostgres {
		log.Fatal("seed needs a database; set DATABASE_URL")
	}

	ctx := context.Background()
	st, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatal("store", zap.Error(err))
	}
	defer closeStore()

	svc := app.NewAppService(st, cfg.Settings, core.SystemClock{}, nil)
	if _, err := svc.Seed(ctx); err != nil {
		log.Fatal("seed", zap.Error(err))
	}
}
