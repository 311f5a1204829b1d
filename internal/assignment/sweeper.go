package assignment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"live-ai-photo-backend/internal/models"
)

// SettingsProvider yields the current workflow settings on each sweep, so a
// changed confirmation timeout takes effect without a restart.
type SettingsProvider interface {
	GetSettings(ctx context.Context) (models.Settings, error)
}

// Sweeper proactively expires overdue pending assignments on a fixed
// interval. Expiry is otherwise evaluated lazily when an assignment is next
// read or acted on, so running a sweeper is optional.
type Sweeper struct {
	engine   *Engine
	settings SettingsProvider
	interval time.Duration
	log      *zap.Logger
}

func NewSweeper(engine *Engine, settings SettingsProvider, interval time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{engine: engine, settings: settings, interval: interval, log: log}
}

// Run blocks until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("assignment sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("assignment sweeper stopped")
			return
		case <-ticker.C:
			settings, err := s.settings.GetSettings(ctx)
			if err != nil {
				s.log.Error("sweep skipped, failed to load settings", zap.Error(err))
				continue
			}
			expired, err := s.engine.ExpireOverdue(ctx, settings)
			if err != nil {
				s.log.Error("sweep failed", zap.Error(err))
				continue
			}
			if expired > 0 {
				s.log.Info("sweep expired assignments", zap.Int("count", expired))
			}
		}
	}
}
