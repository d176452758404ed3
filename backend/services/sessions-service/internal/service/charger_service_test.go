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

func TestHeartbeatMarksChargerOnline(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.chargers()

	online, err := svc.IsOnline(ctx, testOCPPID)
	require.NoError(t, err)
	assert.False(t, online)

	at, err := svc.Heartbeat(ctx, testOCPPID)
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now(), at)

	online, err = svc.IsOnline(ctx, testOCPPID)
	require.NoError(t, err)
	assert.True(t, online)

	c, _ := f.store.Charger(f.chargerID)
	require.NotNil(t, c.LastHeartbeat)
	assert.Equal(t, at, *c.LastHeartbeat)

	f.clock.Advance(331 * time.Second)
	online, err = svc.IsOnline(ctx, testOCPPID)
	require.NoError(t, err)
	assert.False(t, online)
}

func TestHeartbeatFromUnregisteredChargerStillAnswers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.chargers().Heartbeat(ctx, "XX-9999")
	require.NoError(t, err)

	f.store.FailOn("TouchChargerHeartbeat", errors.New("db down"))
	_, err = f.chargers().Heartbeat(ctx, testOCPPID)
	require.NoError(t, err)

	f.cache.SetError(errors.New("redis down"))
	_, err = f.chargers().Heartbeat(ctx, testOCPPID)
	assert.Error(t, err)
}

func TestRecordBootFillsOnlyReportedFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.chargers()

	_, err := svc.RecordBoot(ctx, testOCPPID, models.TechnicalInfo{Vendor: "ABB", Model: "Terra AC", FirmwareVersion: "1.4"})
	require.NoError(t, err)
	c, err := svc.RecordBoot(ctx, testOCPPID, models.TechnicalInfo{SerialNumber: "SN-77"})
	require.NoError(t, err)

	assert.Equal(t, "ABB", c.Vendor)
	assert.Equal(t, "SN-77", c.SerialNumber)
	stored, _ := f.store.Charger(f.chargerID)
	assert.Equal(t, "Terra AC", stored.Model)
	assert.Equal(t, "1.4", stored.FirmwareVersion)

	_, err = svc.RecordBoot(ctx, "XX-9999", models.TechnicalInfo{Vendor: "ABB"})
	assert.ErrorIs(t, err, ErrChargerNotFound)
}

func TestCheckAvailability(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	disabledID := f.store.AddCharger(models.Charger{OCPPID: "CZ-0003", IsActive: true, IsEnabled: false})
	svc := f.chargers()

	a, err := svc.CheckAvailability(ctx, testOCPPID)
	require.NoError(t, err)
	assert.Equal(t, models.Availability{ID: f.chargerID, Usable: true}, *a)

	a, err = svc.CheckAvailability(ctx, "CZ-0003")
	require.NoError(t, err)
	assert.Equal(t, models.Availability{ID: disabledID, Usable: false}, *a)

	_, err = svc.CheckAvailability(ctx, "XX-9999")
	assert.ErrorIs(t, err, ErrChargerNotFound)
}
