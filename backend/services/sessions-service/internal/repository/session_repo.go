package repository

import (
	"context"
	"database/sql"
	"time"

	"chargeshare/backend/services/sessions-service/internal/models"
)

// SessionRepository handles persistence of charging sessions.
type SessionRepository struct {
	db querier
}

// CreateSession inserts a running session and fills its id.
func (r *SessionRepository) CreateSession(ctx context.Context, s *models.Session) error {
	const query = `
		INSERT INTO charge_logs (
			charger_id, connector_id, user_id, rfid_card_id, start_time,
			meter_start, energy_wh, price_per_kwh, price, status, last_progress_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		s.ChargerID,
		s.ConnectorID,
		s.UserID,
		s.AccessTagID,
		s.StartTime,
		s.MeterStart,
		s.EnergyWh,
		s.PricePerKWh,
		s.Price,
		s.Status,
		s.LastProgressAt,
	).Scan(&s.ID)
}

// SessionForUpdate loads a session and row-locks it for the rest of the transaction.
func (r *SessionRepository) SessionForUpdate(ctx context.Context, id int64) (*models.Session, error) {
	const query = `
		SELECT id, charger_id, connector_id, user_id, rfid_card_id, start_time, end_time,
		       meter_start, meter_stop, energy_wh, price_per_kwh, price, status, last_progress_at
		FROM charge_logs
		WHERE id = $1
		FOR UPDATE
	`
	var (
		s                                            models.Session
		chargerID, connectorID, userID, tagID, meter sql.NullInt64
		endTime                                      sql.NullTime
	)
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID,
		&chargerID,
		&connectorID,
		&userID,
		&tagID,
		&s.StartTime,
		&endTime,
		&s.MeterStart,
		&meter,
		&s.EnergyWh,
		&s.PricePerKWh,
		&s.Price,
		&s.Status,
		&s.LastProgressAt,
	); err != nil {
		return nil, notFound(err)
	}
	s.ChargerID = int64Ptr(chargerID)
	s.ConnectorID = int64Ptr(connectorID)
	s.UserID = int64Ptr(userID)
	s.AccessTagID = int64Ptr(tagID)
	s.MeterStop = int64Ptr(meter)
	if endTime.Valid {
		s.EndTime = &endTime.Time
	}
	return &s, nil
}

// SaveSessionProgress stores the latest reading of a running session.
func (r *SessionRepository) SaveSessionProgress(ctx context.Context, s *models.Session) error {
	const query = `
		UPDATE charge_logs
		SET meter_stop = $2,
		    energy_wh = $3,
		    price = $4,
		    last_progress_at = $5
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, s.ID, s.MeterStop, s.EnergyWh, s.Price, s.LastProgressAt)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// CompleteSession finalizes a session.
func (r *SessionRepository) CompleteSession(ctx context.Context, s *models.Session) error {
	const query = `
		UPDATE charge_logs
		SET end_time = $2,
		    meter_stop = $3,
		    energy_wh = $4,
		    price = $5,
		    status = $6,
		    last_progress_at = $7
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.EndTime,
		s.MeterStop,
		s.EnergyWh,
		s.Price,
		s.Status,
		s.LastProgressAt,
	)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// StaleSessionIDs lists running sessions with no progress since cutoff.
func (r *SessionRepository) StaleSessionIDs(ctx context.Context, cutoff time.Time) ([]int64, error) {
	const query = `
		SELECT id
		FROM charge_logs
		WHERE status = 'running' AND last_progress_at < $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// FailStaleSession re-checks staleness under the update so progress that arrived after
// selection keeps the session alive.
func (r *SessionRepository) FailStaleSession(ctx context.Context, id int64, cutoff time.Time) (bool, error) {
	const query = `
		UPDATE charge_logs
		SET status = 'failed',
		    end_time = last_progress_at
		WHERE id = $1 AND status = 'running' AND last_progress_at < $2
	`
	res, err := r.db.ExecContext(ctx, query, id, cutoff)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
