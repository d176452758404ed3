package models

import "time"

// Charger is a physical charge point registered by an owner. OCPPID is the identity
// the gateway addresses it by and is distinct from the internal primary key.
type Charger struct {
	ID              int64      `db:"id" json:"id"`
	OwnerID         *int64     `db:"owner_id" json:"owner_id"`
	OCPPID          string     `db:"ocpp_id" json:"ocpp_id"`
	Name            string     `db:"name" json:"name"`
	IsActive        bool       `db:"is_active" json:"is_active"`
	IsEnabled       bool       `db:"is_enabled" json:"is_enabled"`
	Vendor          string     `db:"vendor" json:"vendor,omitempty"`
	Model           string     `db:"model" json:"model,omitempty"`
	SerialNumber    string     `db:"serial_number" json:"serial_number,omitempty"`
	FirmwareVersion string     `db:"firmware_version" json:"firmware_version,omitempty"`
	LastHeartbeat   *time.Time `db:"last_heartbeat" json:"last_heartbeat,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// Usable reports whether the charger is neither soft-deleted nor switched off.
func (c *Charger) Usable() bool {
	return c.IsActive && c.IsEnabled
}

// TechnicalInfo is what a charger reports about itself on boot.
type TechnicalInfo struct {
	Vendor          string `json:"vendor"`
	Model           string `json:"model"`
	SerialNumber    string `json:"serial_number"`
	FirmwareVersion string `json:"firmware_version"`
}

// MergeInto copies the non-empty fields onto c and reports whether anything changed.
// Stored values are never cleared by an empty report.
func (t TechnicalInfo) MergeInto(c *Charger) bool {
	changed := false
	set := func(dst *string, v string) {
		if v != "" && *dst != v {
			*dst = v
			changed = true
		}
	}
	set(&c.Vendor, t.Vendor)
	set(&c.Model, t.Model)
	set(&c.SerialNumber, t.SerialNumber)
	set(&c.FirmwareVersion, t.FirmwareVersion)
	return changed
}

// Availability is the handshake answer for a charger.
type Availability struct {
	ID     int64 `json:"id"`
	Usable bool  `json:"is_active"`
}
