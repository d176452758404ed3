package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chargeshare/backend/services/sessions-service/internal/cache/cachetest"
	"chargeshare/backend/services/sessions-service/internal/clock"
	"chargeshare/backend/services/sessions-service/internal/metrics"
	"chargeshare/backend/services/sessions-service/internal/models"
	"chargeshare/backend/services/sessions-service/internal/store/storetest"
)

const (
	testOCPPID    = "CZ-0001"
	acceptedTag   = "TAG-1"
	blockedTag    = "TAG-OFF"
	deletedTag    = "TAG-DEL"
	authorizeTTL  = 60 * time.Second
	statusTTL     = 24 * time.Hour
	heartbeatTTL  = 330 * time.Second
	payerOpening  = "100.00"
	connectorRate = "10.00"
)

// fixture is one charger owned by owner with connector 1 priced at 10.00/kWh and a
// payer holding an active tag.
type fixture struct {
	store   *storetest.Memory
	cache   *cachetest.Fake
	clock   *clock.Fake
	metrics *metrics.Metrics
	logger  *zap.Logger

	ownerID     int64
	payerID     int64
	chargerID   int64
	connectorID int64
	tagID       int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := clock.NewFake(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	f := &fixture{
		store:   storetest.NewMemory(),
		clock:   clk,
		cache:   cachetest.New(clk),
		metrics: metrics.New(),
		logger:  zap.NewNop(),
	}
	f.ownerID = f.store.AddUser(models.User{Email: "owner@example.com", Balance: decimal.Zero})
	f.payerID = f.store.AddUser(models.User{Email: "driver@example.com", Balance: decimal.RequireFromString(payerOpening)})
	f.chargerID = f.store.AddCharger(models.Charger{
		OwnerID:   &f.ownerID,
		OCPPID:    testOCPPID,
		Name:      "Garage",
		IsActive:  true,
		IsEnabled: true,
	})
	power := 22000
	f.connectorID = f.store.AddConnector(models.Connector{
		ChargerID:   f.chargerID,
		Number:      1,
		MaxPowerW:   &power,
		PricePerKWh: decimal.NewNullDecimal(decimal.RequireFromString(connectorRate)),
		IsActive:    true,
	})
	f.tagID = f.store.AddAccessTag(models.AccessTag{UserID: f.payerID, Value: acceptedTag, IsActive: true, IsEnabled: true})
	f.store.AddAccessTag(models.AccessTag{UserID: f.payerID, Value: blockedTag, IsActive: true, IsEnabled: false})
	f.store.AddAccessTag(models.AccessTag{UserID: f.payerID, Value: deletedTag, IsActive: false, IsEnabled: true})
	return f
}

func (f *fixture) authorizations() *AuthorizationService {
	return NewAuthorizationService(f.store, f.cache, authorizeTTL, f.metrics, f.logger)
}

func (f *fixture) connectors() *ConnectorService {
	return NewConnectorService(f.store, f.cache, statusTTL, f.metrics, f.logger)
}

func (f *fixture) chargers() *ChargerService {
	return NewChargerService(f.store, f.cache, f.clock, heartbeatTTL, f.logger)
}

func (f *fixture) sessions() *SessionService {
	return NewSessionService(f.store, f.clock, f.metrics, f.logger)
}

func (f *fixture) reaper() *Reaper {
	return NewReaper(f.store, f.clock, f.metrics, f.logger)
}

func (f *fixture) balance(t *testing.T, userID int64) decimal.Decimal {
	t.Helper()
	u, ok := f.store.User(userID)
	require.True(t, ok)
	return u.Balance
}

func (f *fixture) session(t *testing.T, id int64) models.Session {
	t.Helper()
	s, ok := f.store.Session(id)
	require.True(t, ok)
	return s
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(decimal.RequireFromString(want)), "want %s, got %s", want, got)
}
