// migrate applies the embedded SQL migrations to DATABASE_URL.
//
// Usage: go run ./cmd/migrate
package main

import (
	"context"
	"time"

	"quote-to-cash/internal/config"
	"quote-to-cash/internal/db"
	"quote-to-cash/internal/logger"
	"quote-to-cash/migrations"

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

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("connect", zap.Error(err))
	}
	defer pool.Close()

	ms, err := db.LoadMigrations(migrations.FS)
	if err != nil {
		log.Fatal("load migrations", zap.Error(err))
	}
	applied, err := db.Migrate(ctx, pool, ms, log)
	if err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
	log.Info("all migrations processed", zap.Int("applied", len(applied)), zap.Int("known", len(ms)))
}
