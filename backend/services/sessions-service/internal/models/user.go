package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a platform account. Balance only moves through session settlement.
type User struct {
	ID        int64           `db:"id" json:"id"`
	Email     string          `db:"email" json:"email"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
