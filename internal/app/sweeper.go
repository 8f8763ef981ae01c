package app

import (
	"context"
	"time"

	"quote-to-cash/internal/logger"

	"go.uber.org/zap"
)

// RunSweeper calls SweepExpired every interval until ctx is cancelled.
// A non-positive interval disables the loop.
func RunSweeper(ctx context.Context, svc ApplicationService, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.SweepExpired(ctx); err != nil && ctx.Err() == nil {
				logger.L().Error("expiry sweep failed", zap.Error(err))
			}
		}
	}
}
