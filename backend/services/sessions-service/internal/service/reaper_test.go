package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chargeshare/backend/services/sessions-service/internal/models"
)

func TestReapStaleFailsAbandonedSessionWithoutSettlement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sessions := f.sessions()

	res, err := sessions.StartSession(ctx, StartInput{OCPPID: testOCPPID, ConnectorNumber: 1, Tag: acceptedTag})
	require.NoError(t, err)
	require.NoError(t, sessions.ProcessProgress(ctx, res.SessionID, 1200))
	lastProgress := f.clock.Now()

	f.clock.Advance(20 * time.Minute)
	n, err := f.reaper().ReapStale(ctx, 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	s := f.session(t, res.SessionID)
	assert.Equal(t, models.SessionFailed, s.Status)
	require.NotNil(t, s.EndTime)
	assert.Equal(t, lastProgress, *s.EndTime)
	requireDecimal(t, "12.00", s.Price)
	requireDecimal(t, payerOpening, f.balance(t, f.payerID))
	requireDecimal(t, "0", f.balance(t, f.ownerID))

	again, err := f.reaper().ReapStale(ctx, 15*time.Minute)
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestReapStaleSparesRecentProgress(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sessions := f.sessions()

	res, err := sessions.StartSession(ctx, StartInput{OCPPID: testOCPPID, ConnectorNumber: 1, Tag: acceptedTag})
	require.NoError(t, err)

	f.clock.Advance(14 * time.Minute)
	require.NoError(t, sessions.ProcessProgress(ctx, res.SessionID, 500))
	f.clock.Advance(14 * time.Minute)

	n, err := f.reaper().ReapStale(ctx, 15*time.Minute)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, models.SessionRunning, f.session(t, res.SessionID).Status)
}

func TestStopAfterReapReturnsFailedSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sessions := f.sessions()

	res, err := sessions.StartSession(ctx, StartInput{OCPPID: testOCPPID, ConnectorNumber: 1, Tag: acceptedTag})
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	_, err = f.reaper().ReapStale(ctx, DefaultReapMaxAge)
	require.NoError(t, err)

	s, err := sessions.StopSession(ctx, StopInput{SessionID: res.SessionID, MeterStop: 5000})
	require.NoError(t, err)
	assert.Equal(t, models.SessionFailed, s.Status)
	assert.Zero(t, s.EnergyWh)
	requireDecimal(t, payerOpening, f.balance(t, f.payerID))
}

func TestReapStaleSkipsRowFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sessions := f.sessions()
	_, err := sessions.StartSession(ctx, StartInput{OCPPID: testOCPPID, ConnectorNumber: 1, Tag: acceptedTag})
	require.NoError(t, err)
	f.clock.Advance(time.Hour)

	f.store.FailOn("FailStaleSession", errors.New("lock timeout"))
	n, err := f.reaper().ReapStale(ctx, DefaultReapMaxAge)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.store.FailOn("StaleSessionIDs", errors.New("connection reset"))
	_, err = f.reaper().ReapStale(ctx, DefaultReapMaxAge)
	assert.Error(t, err)
}

func TestReapStaleRejectsNonPositiveAge(t *testing.T) {
	_, err := newFixture(t).reaper().ReapStale(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
