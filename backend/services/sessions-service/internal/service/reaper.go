package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"chargeshare/backend/services/sessions-service/internal/clock"
	"chargeshare/backend/services/sessions-service/internal/metrics"
	"chargeshare/backend/services/sessions-service/internal/store"
)

// DefaultReapMaxAge is used when a caller does not specify a staleness threshold.
const DefaultReapMaxAge = 15 * time.Minute

// Reaper fails running sessions that stopped reporting progress.
type Reaper struct {
	store   store.Store
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewReaper builds reaper.
func NewReaper(st store.Store, clk clock.Clock, m *metrics.Metrics, logger *zap.Logger) *Reaper {
	return &Reaper{store: st, clock: clk, metrics: m, logger: logger}
}

// ReapStale marks running sessions without progress for maxAge as failed and returns
// how many it changed. Energy and price stay as last reported and nothing is settled.
func (r *Reaper) ReapStale(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, fmt.Errorf("%w: max age must be positive", ErrInvalidInput)
	}
	started := time.Now()
	defer func() { r.metrics.ReaperPass(time.Since(started)) }()

	cutoff := r.clock.Now().Add(-maxAge)
	var ids []int64
	err := r.store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		ids, err = tx.StaleSessionIDs(ctx, cutoff)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("select stale sessions: %w", err)
	}

	reaped := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			r.metrics.SessionsReaped(reaped)
			return reaped, err
		}
		var changed bool
		err := r.store.WithTx(ctx, func(tx store.Tx) error {
			var err error
			changed, err = tx.FailStaleSession(ctx, id, cutoff)
			return err
		})
		if err != nil {
			r.logger.Error("failed to reap session", zap.Int64("session_id", id), zap.Error(err))
			continue
		}
		if changed {
			reaped++
		}
	}

	r.metrics.SessionsReaped(reaped)
	if reaped > 0 || len(ids) > 0 {
		r.logger.Info("stale sessions reaped",
			zap.Int("candidates", len(ids)),
			zap.Int("reaped", reaped),
			zap.Duration("max_age", maxAge),
		)
	}
	return reaped, nil
}
