package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	libdb "chargeshare/backend/libs/db"
)

//go:embed schema.sql
var schema string

// NewPostgres connects to Postgres using shared library helper.
func NewPostgres(dsn string, maxOpenConns int) (*sql.DB, error) {
	return libdb.NewPostgresDB(dsn, libdb.PoolOptions{MaxOpenConns: maxOpenConns})
}

// EnsureSchema creates missing tables and indexes. Every statement is idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
