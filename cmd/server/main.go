package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	webAdapter "quote-to-cash/internal/adapters/web"
	"quote-to-cash/internal/ai"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatal("store", zap.Error(err))
	}
	defer closeStore()

	var drafter ai.Drafter
	if cfg.OpenAIAPIKey != "" {
		drafter = ai.NewAgent(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	} else {
		log.Warn("OPENAI_API_KEY is not set, quote drafting is disabled")
	}

	svc := app.NewAppService(st, cfg.Settings, core.SystemClock{}, drafter)
	go app.RunSweeper(ctx, svc, cfg.SweepInterval)

	handler := webAdapter.NewHandler(svc, webAdapter.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting",
			zap.String("port", cfg.Port),
			zap.String("store", cfg.StoreDriver),
			zap.Duration("sweep_interval", cfg.SweepInterval))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
