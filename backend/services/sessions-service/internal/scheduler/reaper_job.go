package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"chargeshare/backend/services/sessions-service/internal/cache"
)

// StaleReaper is the reaper operation the job drives.
type StaleReaper interface {
	ReapStale(ctx context.Context, maxAge time.Duration) (int, error)
}

// ReaperJob runs the stale session reaper on an interval. A cache lock keeps replicas
// from running overlapping passes.
type ReaperJob struct {
	reaper   StaleReaper
	locker   cache.Locker
	interval time.Duration
	maxAge   time.Duration
	logger   *zap.Logger
}

// NewReaperJob builds job.
func NewReaperJob(reaper StaleReaper, locker cache.Locker, interval, maxAge time.Duration, logger *zap.Logger) *ReaperJob {
	return &ReaperJob{reaper: reaper, locker: locker, interval: interval, maxAge: maxAge, logger: logger}
}

// RunOnce performs one pass if the lock is free. ran is false when another holder
// owns the lock.
func (j *ReaperJob) RunOnce(ctx context.Context) (reaped int, ran bool, err error) {
	token, ok, err := j.locker.TryLock(ctx, cache.ReaperLockKey, j.interval)
	if err != nil {
		return 0, false, fmt.Errorf("acquire reaper lock: %w", err)
	}
	if !ok {
		return 0, false, nil
	}
	defer func() {
		if unlockErr := j.locker.Unlock(context.WithoutCancel(ctx), cache.ReaperLockKey, token); unlockErr != nil {
			j.logger.Warn("failed to release reaper lock", zap.Error(unlockErr))
		}
	}()

	reaped, err = j.reaper.ReapStale(ctx, j.maxAge)
	return reaped, true, err
}

// RunForever ticks until ctx is cancelled.
func (j *ReaperJob) RunForever(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("reaper job started",
		zap.Duration("interval", j.interval),
		zap.Duration("max_age", j.maxAge),
	)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		reaped, ran, err := j.RunOnce(ctx)
		switch {
		case err != nil:
			j.logger.Warn("reaper pass failed", zap.Error(err))
		case !ran:
			j.logger.Debug("reaper pass skipped, lock held elsewhere")
		case reaped > 0:
			j.logger.Info("reaper pass finished", zap.Int("reaped", reaped))
		}
	}
}
