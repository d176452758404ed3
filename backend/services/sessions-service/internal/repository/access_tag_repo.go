package repository

import (
	"context"
	"strings"

	"chargeshare/backend/services/sessions-service/internal/models"
)

// AccessTagRepository reads the rfid_cards table.
type AccessTagRepository struct {
	db querier
}

// AccessTagByValue fetches a tag by card identifier.
func (r *AccessTagRepository) AccessTagByValue(ctx context.Context, value string) (*models.AccessTag, error) {
	const query = `
		SELECT id, user_id, card_uid, is_active, is_enabled, created_at
		FROM rfid_cards
		WHERE card_uid = $1
		LIMIT 1
	`
	var t models.AccessTag
	if err := r.db.QueryRowContext(ctx, query, strings.TrimSpace(value)).Scan(
		&t.ID,
		&t.UserID,
		&t.Value,
		&t.IsActive,
		&t.IsEnabled,
		&t.CreatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	t.Normalize()
	return &t, nil
}
