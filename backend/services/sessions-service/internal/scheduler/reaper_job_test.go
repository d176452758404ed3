package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chargeshare/backend/services/sessions-service/internal/cache"
	"chargeshare/backend/services/sessions-service/internal/cache/cachetest"
	"chargeshare/backend/services/sessions-service/internal/clock"
)

type countingReaper struct {
	calls  atomic.Int32
	maxAge atomic.Int64
	result int
	err    error
}

func (r *countingReaper) ReapStale(_ context.Context, maxAge time.Duration) (int, error) {
	r.calls.Add(1)
	r.maxAge.Store(int64(maxAge))
	return r.result, r.err
}

func newLocker() *cachetest.Fake {
	return cachetest.New(clock.NewFake(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestRunOnceReapsAndReleasesLock(t *testing.T) {
	ctx := context.Background()
	reaper := &countingReaper{result: 2}
	locker := newLocker()
	job := NewReaperJob(reaper, locker, time.Minute, 15*time.Minute, zap.NewNop())

	n, ran, err := job.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(15*time.Minute), reaper.maxAge.Load())

	held, err := locker.Exists(ctx, cache.ReaperLockKey)
	require.NoError(t, err)
	assert.False(t, held)
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	ctx := context.Background()
	reaper := &countingReaper{}
	locker := newLocker()
	_, ok, err := locker.TryLock(ctx, cache.ReaperLockKey, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ran, err := NewReaperJob(reaper, locker, time.Minute, 15*time.Minute, zap.NewNop()).RunOnce(ctx)
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Zero(t, reaper.calls.Load())
}

func TestRunOnceReportsFailures(t *testing.T) {
	ctx := context.Background()

	locker := newLocker()
	locker.SetError(errors.New("redis down"))
	_, _, err := NewReaperJob(&countingReaper{}, locker, time.Minute, time.Minute, zap.NewNop()).RunOnce(ctx)
	assert.Error(t, err)

	boom := errors.New("db down")
	_, ran, err := NewReaperJob(&countingReaper{err: boom}, newLocker(), time.Minute, time.Minute, zap.NewNop()).RunOnce(ctx)
	assert.True(t, ran)
	assert.ErrorIs(t, err, boom)
}

func TestRunForeverStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reaper := &countingReaper{}
	job := NewReaperJob(reaper, newLocker(), 5*time.Millisecond, time.Minute, zap.NewNop())

	done := make(chan struct{})
	go func() {
		job.RunForever(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return reaper.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunForever did not return after cancel")
	}
}
