package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"chargeshare/backend/services/sessions-service/internal/cache"
	"chargeshare/backend/services/sessions-service/internal/clock"
	"chargeshare/backend/services/sessions-service/internal/models"
	"chargeshare/backend/services/sessions-service/internal/store"
)

// ChargerService handles presence signals a charger sends outside of sessions.
type ChargerService struct {
	store        store.Store
	cache        cache.Cache
	clock        clock.Clock
	heartbeatTTL time.Duration
	logger       *zap.Logger
}

// NewChargerService builds service.
func NewChargerService(st store.Store, c cache.Cache, clk clock.Clock, heartbeatTTL time.Duration, logger *zap.Logger) *ChargerService {
	return &ChargerService{store: st, cache: c, clock: clk, heartbeatTTL: heartbeatTTL, logger: logger}
}

// Heartbeat marks the charger online and returns the server time.
func (s *ChargerService) Heartbeat(ctx context.Context, ocppID string) (time.Time, error) {
	now := s.clock.Now()
	if err := s.cache.Set(ctx, cache.HeartbeatKey(ocppID), now.Format(time.RFC3339), s.heartbeatTTL); err != nil {
		return time.Time{}, fmt.Errorf("store heartbeat: %w", err)
	}

	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		return tx.TouchChargerHeartbeat(ctx, ocppID, now)
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.logger.Debug("heartbeat from unregistered charger", zap.String("ocpp_id", ocppID))
	case err != nil:
		s.logger.Warn("failed to persist heartbeat", zap.String("ocpp_id", ocppID), zap.Error(err))
	}
	return now, nil
}

// IsOnline reports whether a heartbeat arrived within the heartbeat TTL.
func (s *ChargerService) IsOnline(ctx context.Context, ocppID string) (bool, error) {
	return s.cache.Exists(ctx, cache.HeartbeatKey(ocppID))
}

// RecordBoot stores the technical details a charger reports on boot.
func (s *ChargerService) RecordBoot(ctx context.Context, ocppID string, info models.TechnicalInfo) (*models.Charger, error) {
	var charger *models.Charger
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		charger, err = tx.ChargerByOCPPID(ctx, ocppID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrChargerNotFound
			}
			return err
		}
		if !info.MergeInto(charger) {
			return nil
		}
		return tx.UpdateChargerTechnical(ctx, charger)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("boot notification",
		zap.String("ocpp_id", ocppID),
		zap.String("vendor", charger.Vendor),
		zap.String("model", charger.Model),
		zap.String("firmware", charger.FirmwareVersion),
	)
	return charger, nil
}

// CheckAvailability answers the gateway's connection handshake.
func (s *ChargerService) CheckAvailability(ctx context.Context, ocppID string) (*models.Availability, error) {
	var availability models.Availability
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		charger, err := tx.ChargerByOCPPID(ctx, ocppID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrChargerNotFound
			}
			return err
		}
		availability = models.Availability{ID: charger.ID, Usable: charger.Usable()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &availability, nil
}
