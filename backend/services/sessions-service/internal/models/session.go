package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionStatus is the lifecycle state of a charging session.
type SessionStatus string

// Status constants.
const (
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
	SessionCancelled SessionStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed.
func (s SessionStatus) Terminal() bool {
	return s != SessionRunning
}

// Session represents one charge from plug-in to plug-out. MeterStop holds the latest
// reading while running and the final reading once completed. All references are
// nullable so the record survives deletion of what it points to.
type Session struct {
	ID             int64           `db:"id" json:"id"`
	ChargerID      *int64          `db:"charger_id" json:"charger_id"`
	ConnectorID    *int64          `db:"connector_id" json:"connector_id"`
	UserID         *int64          `db:"user_id" json:"user_id"`
	AccessTagID    *int64          `db:"rfid_card_id" json:"rfid_card_id"`
	StartTime      time.Time       `db:"start_time" json:"start_time"`
	EndTime        *time.Time      `db:"end_time" json:"end_time"`
	MeterStart     int64           `db:"meter_start" json:"meter_start"`
	MeterStop      *int64          `db:"meter_stop" json:"meter_stop"`
	EnergyWh       int64           `db:"energy_wh" json:"energy_wh"`
	PricePerKWh    decimal.Decimal `db:"price_per_kwh" json:"price_per_kwh"`
	Price          decimal.Decimal `db:"price" json:"price"`
	Status         SessionStatus   `db:"status" json:"status"`
	LastProgressAt time.Time       `db:"last_progress_at" json:"last_progress_at"`
}
