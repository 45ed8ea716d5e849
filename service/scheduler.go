package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"codefossils/fetcher"
	"codefossils/logger"
)

// Counter reports how many repositories are stored.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Runner runs one ingestion pass synchronously.
type Runner interface {
	RunSync(ctx context.Context) (int, error)
}

// Scheduler seeds an empty store and then re-ingests on a fixed interval.
type Scheduler struct {
	store    Counter
	runner   Runner
	interval time.Duration
	log      *zap.Logger
}

func NewScheduler(store Counter, runner Runner, interval time.Duration) *Scheduler {
	return &Scheduler{
		store:    store,
		runner:   runner,
		interval: interval,
		log:      logger.Named("scheduler"),
	}
}

// Seed runs an ingestion pass when the store is empty. A failing count is
// logged and treated as empty.
func (s *Scheduler) Seed(ctx context.Context) {
	count, err := s.store.Count(ctx)
	if err != nil {
		s.log.Warn("Failed to count repositories", zap.Error(err))
	}
	if count > 0 {
		s.log.Info("Store already populated, skipping initial fetch", zap.Int("count", count))
		return
	}

	s.log.Info("Store is empty, running initial fetch")
	s.runOnce(ctx)
}

// Run seeds the store and then refreshes every interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	s.Seed(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("Scheduler started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.log.Info("Scheduled refresh triggered")
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if _, err := s.runner.RunSync(ctx); err != nil && !errors.Is(err, fetcher.ErrRefreshInProgress) {
		s.log.Warn("Scheduled refresh failed", zap.Error(err))
	}
}
