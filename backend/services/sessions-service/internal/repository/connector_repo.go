package repository

import (
	"context"
	"database/sql"
	"errors"

	"chargeshare/backend/services/sessions-service/internal/models"
)

// ConnectorRepository reads and writes the connectors table.
type ConnectorRepository struct {
	db querier
}

const connectorColumns = `
	c.id, c.charger_id, c.ocpp_number, c.type, c.current_type, c.max_power_w, c.price_per_kwh, c.is_active`

// ConnectorByNumber fetches a connector by its per-charger OCPP number.
func (r *ConnectorRepository) ConnectorByNumber(ctx context.Context, chargerID int64, number int) (*models.Connector, error) {
	query := `SELECT` + connectorColumns + ` FROM connectors c WHERE c.charger_id = $1 AND c.ocpp_number = $2`
	return scanConnector(r.db.QueryRowContext(ctx, query, chargerID, number))
}

// ConnectorByID fetches a connector by primary key.
func (r *ConnectorRepository) ConnectorByID(ctx context.Context, id int64) (*models.Connector, error) {
	query := `SELECT` + connectorColumns + ` FROM connectors c WHERE c.id = $1`
	return scanConnector(r.db.QueryRowContext(ctx, query, id))
}

// ConnectorWithOCPPID fetches a connector together with its charger's OCPP identity.
func (r *ConnectorRepository) ConnectorWithOCPPID(ctx context.Context, id int64) (*models.Connector, string, error) {
	query := `SELECT` + connectorColumns + `, ch.ocpp_id
		FROM connectors c
		JOIN chargers ch ON ch.id = c.charger_id
		WHERE c.id = $1`
	var ocppID string
	c, err := scanConnectorRow(r.db.QueryRowContext(ctx, query, id), &ocppID)
	if err != nil {
		return nil, "", err
	}
	return c, ocppID, nil
}

// EnsureConnector inserts a connector if (charger_id, ocpp_number) is free and returns
// the stored row. created is false when a concurrent or earlier insert won.
func (r *ConnectorRepository) EnsureConnector(ctx context.Context, c *models.Connector) (*models.Connector, bool, error) {
	const query = `
		INSERT INTO connectors (charger_id, ocpp_number, type, current_type, max_power_w, price_per_kwh, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (charger_id, ocpp_number) DO NOTHING
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		c.ChargerID,
		c.Number,
		nullableString(c.Type),
		nullableString(c.CurrentType),
		nullableInt(c.MaxPowerW),
		c.PricePerKWh,
		c.IsActive,
	).Scan(&id)
	switch {
	case err == nil:
		stored := *c
		stored.ID = id
		return &stored, true, nil
	case errors.Is(err, sql.ErrNoRows):
		existing, err := r.ConnectorByNumber(ctx, c.ChargerID, c.Number)
		return existing, false, err
	default:
		return nil, false, err
	}
}

// UpdateConnector stores the configurable fields.
func (r *ConnectorRepository) UpdateConnector(ctx context.Context, c *models.Connector) error {
	const query = `
		UPDATE connectors
		SET type = $2,
		    current_type = $3,
		    max_power_w = $4,
		    price_per_kwh = $5,
		    is_active = $6
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		c.ID,
		nullableString(c.Type),
		nullableString(c.CurrentType),
		nullableInt(c.MaxPowerW),
		c.PricePerKWh,
		c.IsActive,
	)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func scanConnector(row *sql.Row) (*models.Connector, error) {
	return scanConnectorRow(row)
}

func scanConnectorRow(row *sql.Row, extra ...any) (*models.Connector, error) {
	var (
		c         models.Connector
		typ, cur  sql.NullString
		maxPowerW sql.NullInt64
	)
	dest := []any{
		&c.ID,
		&c.ChargerID,
		&c.Number,
		&typ,
		&cur,
		&maxPowerW,
		&c.PricePerKWh,
		&c.IsActive,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, notFound(err)
	}
	if typ.Valid {
		t := models.ConnectorType(typ.String)
		c.Type = &t
	}
	if cur.Valid {
		t := models.CurrentType(cur.String)
		c.CurrentType = &t
	}
	if maxPowerW.Valid {
		v := int(maxPowerW.Int64)
		c.MaxPowerW = &v
	}
	return &c, nil
}

func nullableString[T ~string](v *T) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*v), Valid: true}
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
