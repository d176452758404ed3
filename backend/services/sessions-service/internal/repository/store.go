package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"chargeshare/backend/services/sessions-service/internal/store"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the Postgres-backed system of record.
type Store struct {
	db *sql.DB
}

// NewStore returns a store over db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// WithTx runs fn in a read-committed transaction and commits when fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(newRepos(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// repos binds every repository to the same querier.
type repos struct {
	*ChargerRepository
	*ConnectorRepository
	*AccessTagRepository
	*SessionRepository
	*BalanceRepository
}

func newRepos(q querier) repos {
	return repos{
		ChargerRepository:   &ChargerRepository{db: q},
		ConnectorRepository: &ConnectorRepository{db: q},
		AccessTagRepository: &AccessTagRepository{db: q},
		SessionRepository:   &SessionRepository{db: q},
		BalanceRepository:   &BalanceRepository{db: q},
	}
}

var _ store.Tx = repos{}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func expectOne(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
