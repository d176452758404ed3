package models

import "time"

// AuthorizationStatus is the answer given to the gateway for a presented tag.
type AuthorizationStatus string

const (
	AuthorizationAccepted AuthorizationStatus = "Accepted"
	AuthorizationBlocked  AuthorizationStatus = "Blocked"
	AuthorizationInvalid  AuthorizationStatus = "Invalid"
)

// AccessTag is a physical card (RFID) bound to one user.
type AccessTag struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Value     string    `db:"card_uid" json:"card_uid"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	IsEnabled bool      `db:"is_enabled" json:"is_enabled"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Normalize clears IsEnabled on a soft-deleted tag.
func (t *AccessTag) Normalize() {
	if !t.IsActive {
		t.IsEnabled = false
	}
}

// Status maps the tag flags onto an authorization outcome.
func (t *AccessTag) Status() AuthorizationStatus {
	switch {
	case !t.IsActive:
		return AuthorizationInvalid
	case !t.IsEnabled:
		return AuthorizationBlocked
	default:
		return AuthorizationAccepted
	}
}
