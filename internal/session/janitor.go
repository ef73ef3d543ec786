package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type cleaner interface {
	CleanupExpired(ctx context.Context) (int64, int64, error)
}

// Janitor periodically purges expired sessions and revoked tokens.
type Janitor struct {
	cleaner  cleaner
	interval time.Duration
	logger   *zap.Logger
}

func NewJanitor(c cleaner, interval time.Duration, logger *zap.Logger) *Janitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Janitor{cleaner: c, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("session janitor started", zap.Duration("interval", j.interval))
	for {
		select {
		case <-ctx.Done():
			j.logger.Info("session janitor stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	sessions, tokens, err := j.cleaner.CleanupExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			j.logger.Warn("session cleanup failed", zap.Error(err))
		}
		return
	}
	if sessions > 0 || tokens > 0 {
		j.logger.Info("expired sessions purged",
			zap.Int64("sessions", sessions),
			zap.Int64("tokens", tokens),
		)
	}
}
