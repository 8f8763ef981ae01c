// Package store selects the core.Store implementation named by configuration.
package store

import (
	"context"
	"fmt"

	"quote-to-cash/internal/config"
	"quote-to-cash/internal/core"
	"quote-to-cash/internal/db"
	"quote-to-cash/internal/store/memory"
	"quote-to-cash/internal/store/postgres"
)

// Open returns the configured store and a func releasing its resources.
func Open(ctx context.Context, cfg *config.Config) (core.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return memory.New(), func() {}, nil
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("database: %w", err)
		}
		return postgres.New(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
