package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"chargeshare/backend/services/sessions-service/internal/clock"
	"chargeshare/backend/services/sessions-service/internal/metrics"
	"chargeshare/backend/services/sessions-service/internal/models"
	"chargeshare/backend/services/sessions-service/internal/store"
)

// StartInput data from a start-transaction event.
type StartInput struct {
	OCPPID          string
	ConnectorNumber int
	Tag             string
	MeterStart      int64
	Timestamp       time.Time
}

// StartResult is returned to the gateway; SessionID doubles as the transaction id.
type StartResult struct {
	SessionID int64
	MaxPowerW *int
}

// StopInput data from a stop-transaction event.
type StopInput struct {
	SessionID int64
	MeterStop int64
	Timestamp time.Time
}

// SessionService runs the session lifecycle and settles completed sessions.
type SessionService struct {
	store   store.Store
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewSessionService builds service.
func NewSessionService(st store.Store, clk clock.Clock, m *metrics.Metrics, logger *zap.Logger) *SessionService {
	return &SessionService{store: st, clock: clk, metrics: m, logger: logger}
}

// StartSession opens a running session on the charger's connector. An unknown tag
// yields an anonymous session.
func (s *SessionService) StartSession(ctx context.Context, in StartInput) (*StartResult, error) {
	now := s.clock.Now()
	if in.Timestamp.IsZero() {
		in.Timestamp = now
	}

	var (
		session   *models.Session
		maxPowerW *int
	)
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		charger, err := tx.ChargerByOCPPID(ctx, in.OCPPID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrChargerNotFound
			}
			return err
		}
		connector, err := tx.ConnectorByNumber(ctx, charger.ID, in.ConnectorNumber)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrConnectorNotFound
			}
			return err
		}

		session = &models.Session{
			ChargerID:      &charger.ID,
			ConnectorID:    &connector.ID,
			StartTime:      in.Timestamp.UTC(),
			MeterStart:     in.MeterStart,
			PricePerKWh:    decimal.Zero,
			Price:          decimal.Zero,
			Status:         models.SessionRunning,
			LastProgressAt: now,
		}
		if connector.PricePerKWh.Valid {
			session.PricePerKWh = connector.PricePerKWh.Decimal
		}

		tag, err := tx.AccessTagByValue(ctx, in.Tag)
		switch {
		case err == nil:
			session.UserID = &tag.UserID
			session.AccessTagID = &tag.ID
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		maxPowerW = connector.MaxPowerW
		return tx.CreateSession(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SessionStarted()
	s.logger.Info("session started",
		zap.Int64("session_id", session.ID),
		zap.String("ocpp_id", in.OCPPID),
		zap.Int("connector", in.ConnectorNumber),
		zap.Bool("anonymous", session.UserID == nil),
		zap.String("price_per_kwh", session.PricePerKWh.StringFixed(2)),
	)
	return &StartResult{SessionID: session.ID, MaxPowerW: maxPowerW}, nil
}

// ProcessProgress records an intermediate meter reading. Readings for unknown or
// finished sessions are dropped without error.
func (s *SessionService) ProcessProgress(ctx context.Context, sessionID, reading int64) error {
	var applied bool
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		session, err := tx.SessionForUpdate(ctx, sessionID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}
		if session.Status.Terminal() {
			return nil
		}
		applyReading(session, reading)
		session.LastProgressAt = s.clock.Now()
		applied = true
		return tx.SaveSessionProgress(ctx, session)
	})
	if err != nil {
		return fmt.Errorf("process meter value: %w", err)
	}
	if !applied {
		s.logger.Debug("meter value ignored", zap.Int64("session_id", sessionID))
	}
	return nil
}

// StopSession completes a running session and settles its price between the user and
// the charger owner. A session that already left running is returned as is.
func (s *SessionService) StopSession(ctx context.Context, in StopInput) (*models.Session, error) {
	if in.Timestamp.IsZero() {
		in.Timestamp = s.clock.Now()
	}

	var (
		session  *models.Session
		settled  decimal.Decimal
		finished bool
	)
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		session, err = tx.SessionForUpdate(ctx, in.SessionID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		if session.Status.Terminal() {
			return nil
		}

		applyReading(session, in.MeterStop)
		end := in.Timestamp.UTC()
		session.EndTime = &end
		session.Status = models.SessionCompleted
		session.LastProgressAt = s.clock.Now()
		if err := tx.CompleteSession(ctx, session); err != nil {
			return err
		}
		finished = true

		settled, err = settle(ctx, tx, session)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !finished {
		s.logger.Info("stop for finished session ignored",
			zap.Int64("session_id", session.ID),
			zap.String("status", string(session.Status)),
		)
		return session, nil
	}

	s.metrics.SessionCompleted(settled)
	s.logger.Info("session completed",
		zap.Int64("session_id", session.ID),
		zap.Int64("energy_wh", session.EnergyWh),
		zap.String("price", session.Price.StringFixed(2)),
		zap.String("settled", settled.StringFixed(2)),
	)
	return session, nil
}

// applyReading stores the reading and recomputes energy and price from it.
func applyReading(session *models.Session, reading int64) {
	stop := reading
	session.MeterStop = &stop
	session.EnergyWh = CalculateDeltaEnergy(session.MeterStart, reading)
	session.Price = CalculatePrice(session.EnergyWh, session.PricePerKWh)
}

// settle moves the session price from the payer to the charger owner. Nothing moves
// unless both sides are known.
func settle(ctx context.Context, tx store.Tx, session *models.Session) (decimal.Decimal, error) {
	if !session.Price.IsPositive() || session.UserID == nil || session.ChargerID == nil {
		return decimal.Zero, nil
	}
	charger, err := tx.ChargerByID(ctx, *session.ChargerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	if charger.OwnerID == nil {
		return decimal.Zero, nil
	}

	if err := tx.AdjustBalance(ctx, *session.UserID, session.Price.Neg()); err != nil {
		return decimal.Zero, fmt.Errorf("debit user %d: %w", *session.UserID, err)
	}
	if err := tx.AdjustBalance(ctx, *charger.OwnerID, session.Price); err != nil {
		return decimal.Zero, fmt.Errorf("credit owner %d: %w", *charger.OwnerID, err)
	}
	return session.Price, nil
}
