package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"chargeshare/backend/services/sessions-service/internal/cache"
	"chargeshare/backend/services/sessions-service/internal/metrics"
	"chargeshare/backend/services/sessions-service/internal/models"
	"chargeshare/backend/services/sessions-service/internal/store"
)

// AuthorizationService decides tag admission and remembers the last accepted tag per
// charger for a short window.
type AuthorizationService struct {
	store   store.Store
	cache   cache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewAuthorizationService builds service.
func NewAuthorizationService(st store.Store, c cache.Cache, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger) *AuthorizationService {
	return &AuthorizationService{store: st, cache: c, ttl: ttl, metrics: m, logger: logger}
}

// Authorize checks a presented tag on a charger. The status is always returned as data;
// an error means the store or cache could not be reached.
func (s *AuthorizationService) Authorize(ctx context.Context, ocppID, tag string) (models.AuthorizationStatus, error) {
	tag = strings.TrimSpace(tag)
	var status models.AuthorizationStatus
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.ChargerByOCPPID(ctx, ocppID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				status = models.AuthorizationInvalid
				return nil
			}
			return err
		}
		accessTag, err := tx.AccessTagByValue(ctx, tag)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				status = models.AuthorizationInvalid
				return nil
			}
			return err
		}
		status = accessTag.Status()
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("authorize tag: %w", err)
	}

	if status == models.AuthorizationAccepted {
		if err := s.cache.Set(ctx, cache.AuthorizedTagKey(ocppID), tag, s.ttl); err != nil {
			return "", fmt.Errorf("store pending authorization: %w", err)
		}
	}

	s.metrics.Authorization(string(status))
	s.logger.Info("tag authorization",
		zap.String("ocpp_id", ocppID),
		zap.String("id_tag", tag),
		zap.String("status", string(status)),
	)
	return status, nil
}

// GetPendingAuthorization returns the tag accepted on the charger within the TTL.
func (s *AuthorizationService) GetPendingAuthorization(ctx context.Context, ocppID string) (string, error) {
	tag, err := s.cache.Get(ctx, cache.AuthorizedTagKey(ocppID))
	if errors.Is(err, cache.ErrMiss) {
		return "", ErrNoPendingAuthorization
	}
	if err != nil {
		return "", fmt.Errorf("read pending authorization: %w", err)
	}
	return tag, nil
}
