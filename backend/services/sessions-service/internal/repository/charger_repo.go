package repository

import (
	"context"
	"database/sql"
	"time"

	"chargeshare/backend/services/sessions-service/internal/models"
)

// ChargerRepository reads and updates the chargers table.
type ChargerRepository struct {
	db querier
}

const chargerColumns = `
	id, owner_id, ocpp_id, name, is_active, is_enabled,
	vendor, model, serial_number, firmware_version, last_heartbeat, created_at`

// ChargerByOCPPID fetches a charger by its gateway identity.
func (r *ChargerRepository) ChargerByOCPPID(ctx context.Context, ocppID string) (*models.Charger, error) {
	query := `SELECT` + chargerColumns + ` FROM chargers WHERE ocpp_id = $1 LIMIT 1`
	return scanCharger(r.db.QueryRowContext(ctx, query, ocppID))
}

// ChargerByID fetches a charger by primary key.
func (r *ChargerRepository) ChargerByID(ctx context.Context, id int64) (*models.Charger, error) {
	query := `SELECT` + chargerColumns + ` FROM chargers WHERE id = $1`
	return scanCharger(r.db.QueryRowContext(ctx, query, id))
}

// UpdateChargerTechnical stores the boot-reported fields.
func (r *ChargerRepository) UpdateChargerTechnical(ctx context.Context, c *models.Charger) error {
	const query = `
		UPDATE chargers
		SET vendor = NULLIF($2, ''),
		    model = NULLIF($3, ''),
		    serial_number = NULLIF($4, ''),
		    firmware_version = NULLIF($5, '')
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, c.ID, c.Vendor, c.Model, c.SerialNumber, c.FirmwareVersion)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// TouchChargerHeartbeat records the last contact time.
func (r *ChargerRepository) TouchChargerHeartbeat(ctx context.Context, ocppID string, at time.Time) error {
	const query = `UPDATE chargers SET last_heartbeat = $2 WHERE ocpp_id = $1`
	res, err := r.db.ExecContext(ctx, query, ocppID, at)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func scanCharger(row *sql.Row) (*models.Charger, error) {
	var (
		c                                     models.Charger
		ownerID                               sql.NullInt64
		vendor, model, serial, firmware, name sql.NullString
		heartbeat                             sql.NullTime
	)
	if err := row.Scan(
		&c.ID,
		&ownerID,
		&c.OCPPID,
		&name,
		&c.IsActive,
		&c.IsEnabled,
		&vendor,
		&model,
		&serial,
		&firmware,
		&heartbeat,
		&c.CreatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	if ownerID.Valid {
		c.OwnerID = &ownerID.Int64
	}
	if heartbeat.Valid {
		c.LastHeartbeat = &heartbeat.Time
	}
	c.Name = name.String
	c.Vendor = vendor.String
	c.Model = model.String
	c.SerialNumber = serial.String
	c.FirmwareVersion = firmware.String
	return &c, nil
}
