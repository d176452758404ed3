package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// BalanceRepository moves money on the users table.
type BalanceRepository struct {
	db querier
}

// AdjustBalance adds delta (possibly negative) to the user's balance in place.
func (r *BalanceRepository) AdjustBalance(ctx context.Context, userID int64, delta decimal.Decimal) error {
	const query = `UPDATE users SET balance = balance + $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, userID, delta)
	if err != nil {
		return err
	}
	return expectOne(res)
}
