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

// StatusReport is a connector status notification relayed by the gateway.
type StatusReport struct {
	OCPPID          string
	ConnectorNumber int
	Status          string
	ErrorCode       string
}

// ConnectorService tracks live connector status and discovers connectors on first report.
type ConnectorService struct {
	store     store.Store
	cache     cache.Cache
	statusTTL time.Duration
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewConnectorService builds service.
func NewConnectorService(st store.Store, c cache.Cache, statusTTL time.Duration, m *metrics.Metrics, logger *zap.Logger) *ConnectorService {
	return &ConnectorService{store: st, cache: c, statusTTL: statusTTL, metrics: m, logger: logger}
}

// ReportStatus caches the reported status and makes sure the connector row exists.
func (s *ConnectorService) ReportStatus(ctx context.Context, r StatusReport) (*models.Connector, error) {
	if strings.TrimSpace(r.OCPPID) == "" || r.ConnectorNumber < 0 {
		return nil, fmt.Errorf("%w: ocpp id and non-negative connector number required", ErrInvalidInput)
	}

	// The status is cached even for unknown chargers; the gateway is the source of truth.
	key := cache.ConnectorStatusKey(r.OCPPID, r.ConnectorNumber)
	if err := s.cache.Set(ctx, key, r.Status, s.statusTTL); err != nil {
		s.logger.Warn("failed to cache connector status",
			zap.String("ocpp_id", r.OCPPID),
			zap.Int("connector", r.ConnectorNumber),
			zap.Error(err),
		)
	}

	if r.ErrorCode != "" && r.ErrorCode != models.ErrorCodeNoError {
		s.metrics.ConnectorError(r.ErrorCode)
		s.logger.Warn("connector reported error",
			zap.String("ocpp_id", r.OCPPID),
			zap.Int("connector", r.ConnectorNumber),
			zap.String("status", r.Status),
			zap.String("error_code", r.ErrorCode),
		)
	}

	var (
		connector *models.Connector
		created   bool
	)
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		charger, err := tx.ChargerByOCPPID(ctx, r.OCPPID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrChargerNotFound
			}
			return err
		}
		connector, created, err = tx.EnsureConnector(ctx, &models.Connector{
			ChargerID: charger.ID,
			Number:    r.ConnectorNumber,
			IsActive:  false,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.metrics.ConnectorDiscovered()
		s.logger.Info("connector discovered",
			zap.String("ocpp_id", r.OCPPID),
			zap.Int("connector", r.ConnectorNumber),
			zap.Int64("connector_id", connector.ID),
		)
	}
	return connector, nil
}

// GetWithLiveStatus returns the connector with its cached status, "Unknown" when absent.
func (s *ConnectorService) GetWithLiveStatus(ctx context.Context, connectorID int64) (*models.ConnectorView, error) {
	var view models.ConnectorView
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		connector, ocppID, err := tx.ConnectorWithOCPPID(ctx, connectorID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrConnectorNotFound
			}
			return err
		}
		view.Connector = *connector
		view.OCPPID = ocppID
		return nil
	})
	if err != nil {
		return nil, err
	}

	view.Status = models.StatusUnknown
	status, err := s.cache.Get(ctx, cache.ConnectorStatusKey(view.OCPPID, view.Number))
	switch {
	case err == nil && status != "":
		view.Status = status
	case err != nil && !errors.Is(err, cache.ErrMiss):
		s.logger.Warn("failed to read connector status",
			zap.Int64("connector_id", connectorID),
			zap.Error(err),
		)
	}
	return &view, nil
}

// Configure applies an owner's partial configuration change.
func (s *ConnectorService) Configure(ctx context.Context, connectorID int64, update models.ConnectorUpdate) (*models.Connector, error) {
	if err := update.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var connector *models.Connector
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		connector, err = tx.ConnectorByID(ctx, connectorID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrConnectorNotFound
			}
			return err
		}
		if update.Empty() {
			return nil
		}
		update.Apply(connector)
		return tx.UpdateConnector(ctx, connector)
	})
	if err != nil {
		return nil, err
	}
	return connector, nil
}
