package fetcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"codefossils/logger"
)

// DefaultCooldown is the minimum gap between two manually triggered refreshes.
const DefaultCooldown = 5 * time.Minute

var (
	// ErrRefreshCooldown is returned when a manual refresh arrives too soon
	// after the previous one.
	ErrRefreshCooldown = errors.New("refresh on cooldown")
	// ErrRefreshInProgress is returned when an ingestion pass is already running.
	ErrRefreshInProgress = errors.New("refresh already in progress")
)

// CooldownError reports how long a caller must wait before the next manual
// refresh. It matches ErrRefreshCooldown with errors.Is.
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s: retry after %s", ErrRefreshCooldown, e.RetryAfter.Round(time.Second))
}

func (e *CooldownError) Is(target error) bool {
	return target == ErrRefreshCooldown
}

// IngestFunc runs one ingestion pass and returns the stored count.
type IngestFunc func(ctx context.Context) (int, error)

// Refresher serializes ingestion passes. Manual triggers are rate limited by
// a cooldown; scheduled runs are not, but still never overlap a running pass.
type Refresher struct {
	ingest   IngestFunc
	cooldown time.Duration
	now      func() time.Time
	baseCtx  context.Context

	mu          sync.Mutex
	lastTrigger time.Time

	running sync.Mutex
	wg      sync.WaitGroup
}

// NewRefresher creates a Refresher. Background passes started by TriggerAsync
// run under ctx, so cancelling it stops them.
func NewRefresher(ctx context.Context, ingest IngestFunc, cooldown time.Duration) *Refresher {
	if cooldown < 0 {
		cooldown = 0
	}
	return &Refresher{
		ingest:   ingest,
		cooldown: cooldown,
		now:      time.Now,
		baseCtx:  ctx,
	}
}

// NewStoreRefresher builds a Refresher that runs FetchAndStore.
func NewStoreRefresher(ctx context.Context, database DBInterface, client GitHubClientInterface, cooldown time.Duration) *Refresher {
	return NewRefresher(ctx, func(ctx context.Context) (int, error) {
		return FetchAndStore(ctx, database, client)
	}, cooldown)
}

// TriggerAsync starts an ingestion pass in the background. It returns a
// *CooldownError inside the cooldown window and ErrRefreshInProgress while
// another pass is running.
func (r *Refresher) TriggerAsync() error {
	r.mu.Lock()
	now := r.now()
	if !r.lastTrigger.IsZero() {
		if elapsed := now.Sub(r.lastTrigger); elapsed < r.cooldown {
			r.mu.Unlock()
			return &CooldownError{RetryAfter: r.cooldown - elapsed}
		}
	}

	if !r.running.TryLock() {
		r.mu.Unlock()
		return ErrRefreshInProgress
	}
	r.lastTrigger = now
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.running.Unlock()
		r.run(r.baseCtx, "manual")
	}()
	return nil
}

// RunSync runs an ingestion pass in the caller's goroutine. It returns
// ErrRefreshInProgress without running when a pass is already underway.
func (r *Refresher) RunSync(ctx context.Context) (int, error) {
	if !r.running.TryLock() {
		logger.Info("Refresh already in progress, skipping")
		return 0, ErrRefreshInProgress
	}
	defer r.running.Unlock()
	return r.run(ctx, "scheduled")
}

// Wait blocks until background passes started by TriggerAsync finish.
func (r *Refresher) Wait() {
	r.wg.Wait()
}

func (r *Refresher) run(ctx context.Context, trigger string) (int, error) {
	logger.Info("Refresh started", zap.String("trigger", trigger))
	count, err := r.ingest(ctx)
	if err != nil {
		logger.Error("Refresh failed",
			zap.Error(err),
			zap.String("trigger", trigger),
			zap.Int("stored", count))
		return count, err
	}
	logger.Info("Refresh finished",
		zap.String("trigger", trigger),
		zap.Int("stored", count))
	return count, nil
}
