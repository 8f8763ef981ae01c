package main

import (
	"context"
	"fmt"
	"os"

	"quote-to-cash/internal/adapters/cli"
	"quote-to-cash/internal/ai"
	"quote-to-cash/internal/app"
	"quote-to-cash/internal/config"
	"quote-to-cash/internal/core"
	"quote-to-cash/internal/logger"
	"quote-to-cash/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Init(cfg.Env)
	defer logger.Sync()

	ctx := context.Background()
	st, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var drafter ai.Drafter
	if cfg.OpenAIAPIKey != "" {
		drafter = ai.NewAgent(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	svc := app.NewAppService(st, cfg.Settings, core.SystemClock{}, drafter)

	// The memory store starts empty on every run, so one-shot commands get the demo data.
	if cfg.StoreDriver == config.DriverMemory && (len(os.Args) < 2 || os.Args[1] != "seed") {
		if _, err := svc.Seed(ctx); err != nil {
			return err
		}
	}

	return cli.Run(ctx, svc, os.Args[1:], os.Stdin, os.Stdout)
}
