package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ConnectorType is the plug standard.
type ConnectorType string

const (
	ConnectorType1   ConnectorType = "Type1"
	ConnectorType2   ConnectorType = "Type2"
	ConnectorCCS     ConnectorType = "CCS"
	ConnectorCHAdeMO ConnectorType = "CHAdeMO"
	ConnectorTesla   ConnectorType = "Tesla"
)

// CurrentType is AC or DC.
type CurrentType string

const (
	CurrentAC CurrentType = "AC"
	CurrentDC CurrentType = "DC"
)

const (
	// StatusUnknown is reported when the live status is not cached.
	StatusUnknown    = "Unknown"
	ErrorCodeNoError = "NoError"
)

// Connector is one socket of a charger. Configuration fields stay nil until the owner
// (or auto-discovery) fills them in.
type Connector struct {
	ID          int64               `db:"id" json:"id"`
	ChargerID   int64               `db:"charger_id" json:"charger_id"`
	Number      int                 `db:"ocpp_number" json:"ocpp_number"`
	Type        *ConnectorType      `db:"type" json:"type"`
	CurrentType *CurrentType        `db:"current_type" json:"current_type"`
	MaxPowerW   *int                `db:"max_power_w" json:"max_power_w"`
	PricePerKWh decimal.NullDecimal `db:"price_per_kwh" json:"price_per_kwh"`
	IsActive    bool                `db:"is_active" json:"is_active"`
}

// ConnectorView is a connector joined with its live status from the volatile cache.
type ConnectorView struct {
	Connector
	OCPPID string `json:"ocpp_id"`
	Status string `json:"status"`
}

// ConnectorUpdate carries an owner's partial configuration change. Nil fields are left
// untouched by Apply.
type ConnectorUpdate struct {
	Type        *ConnectorType   `json:"type,omitempty"`
	CurrentType *CurrentType     `json:"current_type,omitempty"`
	MaxPowerW   *int             `json:"max_power_w,omitempty"`
	PricePerKWh *decimal.Decimal `json:"price_per_kwh,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

// Validate rejects values that can never be stored.
func (u ConnectorUpdate) Validate() error {
	if u.MaxPowerW != nil && *u.MaxPowerW < 0 {
		return errors.New("max_power_w must not be negative")
	}
	if u.PricePerKWh != nil && u.PricePerKWh.IsNegative() {
		return errors.New("price_per_kwh must not be negative")
	}
	if u.CurrentType != nil && *u.CurrentType != CurrentAC && *u.CurrentType != CurrentDC {
		return errors.New("current_type must be AC or DC")
	}
	return nil
}

// Empty reports whether the update carries no fields.
func (u ConnectorUpdate) Empty() bool {
	return u.Type == nil && u.CurrentType == nil && u.MaxPowerW == nil && u.PricePerKWh == nil && u.IsActive == nil
}

// Apply copies every present field onto c.
func (u ConnectorUpdate) Apply(c *Connector) {
	if u.Type != nil {
		v := *u.Type
		c.Type = &v
	}
	if u.CurrentType != nil {
		v := *u.CurrentType
		c.CurrentType = &v
	}
	if u.MaxPowerW != nil {
		v := *u.MaxPowerW
		c.MaxPowerW = &v
	}
	if u.PricePerKWh != nil {
		c.PricePerKWh = decimal.NewNullDecimal(*u.PricePerKWh)
	}
	if u.IsActive != nil {
		c.IsActive = *u.IsActive
	}
}
