// Package store defines the durable system-of-record contract the engine depends on.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"chargeshare/backend/services/sessions-service/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// ChargerRepository reads and updates chargers.
type ChargerRepository interface {
	ChargerByOCPPID(ctx context.Context, ocppID string) (*models.Charger, error)
	ChargerByID(ctx context.Context, id int64) (*models.Charger, error)
	UpdateChargerTechnical(ctx context.Context, charger *models.Charger) error
	TouchChargerHeartbeat(ctx context.Context, ocppID string, at time.Time) error
}

// ConnectorRepository reads and writes connectors.
type ConnectorRepository interface {
	ConnectorByNumber(ctx context.Context, chargerID int64, number int) (*models.Connector, error)
	ConnectorByID(ctx context.Context, id int64) (*models.Connector, error)
	// ConnectorWithOCPPID returns the connector with its charger's external identity.
	ConnectorWithOCPPID(ctx context.Context, id int64) (*models.Connector, string, error)
	// EnsureConnector inserts the connector unless (charger, number) already exists and
	// returns the stored row either way.
	EnsureConnector(ctx context.Context, connector *models.Connector) (*models.Connector, bool, error)
	UpdateConnector(ctx context.Context, connector *models.Connector) error
}

// AccessTagRepository resolves presented card identifiers.
type AccessTagRepository interface {
	AccessTagByValue(ctx context.Context, value string) (*models.AccessTag, error)
}

// SessionRepository persists charging sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *models.Session) error
	// SessionForUpdate loads the session and locks its row until the transaction ends.
	SessionForUpdate(ctx context.Context, id int64) (*models.Session, error)
	SaveSessionProgress(ctx context.Context, session *models.Session) error
	CompleteSession(ctx context.Context, session *models.Session) error
	StaleSessionIDs(ctx context.Context, cutoff time.Time) ([]int64, error)
	// FailStaleSession marks the session failed with end time = last progress, only if it
	// is still running and still older than cutoff. It reports whether a row changed.
	FailStaleSession(ctx context.Context, id int64, cutoff time.Time) (bool, error)
}

// BalanceRepository moves money between users.
type BalanceRepository interface {
	AdjustBalance(ctx context.Context, userID int64, delta decimal.Decimal) error
}

// Tx is the set of operations available inside one transaction.
type Tx interface {
	ChargerRepository
	ConnectorRepository
	AccessTagRepository
	SessionRepository
	BalanceRepository
}

// Store runs fn inside a single durable transaction. fn returning an error rolls back
// every write made through tx.
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}
