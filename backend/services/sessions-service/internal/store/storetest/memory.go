// Package storetest provides an in-memory store.Store for tests. Transactions are
// serialized and roll back on error.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"chargeshare/backend/services/sessions-service/internal/models"
	"chargeshare/backend/services/sessions-service/internal/store"
)

type state struct {
	users      map[int64]models.User
	chargers   map[int64]models.Charger
	connectors map[int64]models.Connector
	tags       map[int64]models.AccessTag
	sessions   map[int64]models.Session
	nextID     int64
}

func (s *state) clone() *state {
	return &state{
		users:      cloneMap(s.users),
		chargers:   cloneMap(s.chargers),
		connectors: cloneMap(s.connectors),
		tags:       cloneMap(s.tags),
		sessions:   cloneMap(s.sessions),
		nextID:     s.nextID,
	}
}

func cloneMap[V any](m map[int64]V) map[int64]V {
	out := make(map[int64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Memory is a store.Store kept in process memory.
type Memory struct {
	mu    sync.Mutex
	st    *state
	fails map[string]error
	// Commits counts successful transactions.
	Commits int
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		st: &state{
			users:      map[int64]models.User{},
			chargers:   map[int64]models.Charger{},
			connectors: map[int64]models.Connector{},
			tags:       map[int64]models.AccessTag{},
			sessions:   map[int64]models.Session{},
		},
		fails: map[string]error{},
	}
}

// FailOn makes every call of the named Tx method return err until cleared with nil.
func (m *Memory) FailOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fails, method)
		return
	}
	m.fails[method] = err
}

// WithTx runs fn against a snapshot that is discarded if fn fails.
func (m *Memory) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	saved := m.st.clone()
	if err := fn(&memTx{m: m}); err != nil {
		m.st = saved
		return err
	}
	m.Commits++
	return nil
}

func (m *Memory) id() int64 {
	m.st.nextID++
	return m.st.nextID
}

// AddUser seeds a user and returns its id.
func (m *Memory) AddUser(u models.User) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == 0 {
		u.ID = m.id()
	}
	m.st.users[u.ID] = u
	return u.ID
}

// AddCharger seeds a charger and returns its id.
func (m *Memory) AddCharger(c models.Charger) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == 0 {
		c.ID = m.id()
	}
	m.st.chargers[c.ID] = c
	return c.ID
}

// AddConnector seeds a connector and returns its id.
func (m *Memory) AddConnector(c models.Connector) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == 0 {
		c.ID = m.id()
	}
	m.st.connectors[c.ID] = c
	return c.ID
}

// AddAccessTag seeds a tag and returns its id.
func (m *Memory) AddAccessTag(t models.AccessTag) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == 0 {
		t.ID = m.id()
	}
	m.st.tags[t.ID] = t
	return t.ID
}

// AddSession seeds a session and returns its id.
func (m *Memory) AddSession(s models.Session) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == 0 {
		s.ID = m.id()
	}
	m.st.sessions[s.ID] = s
	return s.ID
}

// User returns the committed user.
func (m *Memory) User(id int64) (models.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.st.users[id]
	return u, ok
}

// Charger returns the committed charger.
func (m *Memory) Charger(id int64) (models.Charger, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.st.chargers[id]
	return c, ok
}

// Session returns the committed session.
func (m *Memory) Session(id int64) (models.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.st.sessions[id]
	return s, ok
}

// Connectors returns every committed connector of a charger ordered by number.
func (m *Memory) Connectors(chargerID int64) []models.Connector {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Connector
	for _, c := range m.st.connectors {
		if c.ChargerID == chargerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// memTx operates on the live state; Memory.WithTx holds the lock and the snapshot.
type memTx struct {
	m *Memory
}

var _ store.Tx = (*memTx)(nil)

func (t *memTx) fail(method string) error {
	return t.m.fails[method]
}

func (t *memTx) ChargerByOCPPID(_ context.Context, ocppID string) (*models.Charger, error) {
	if err := t.fail("ChargerByOCPPID"); err != nil {
		return nil, err
	}
	for _, c := range t.m.st.chargers {
		if c.OCPPID == ocppID {
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (t *memTx) ChargerByID(_ context.Context, id int64) (*models.Charger, error) {
	if err := t.fail("ChargerByID"); err != nil {
		return nil, err
	}
	c, ok := t.m.st.chargers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (t *memTx) UpdateChargerTechnical(_ context.Context, c *models.Charger) error {
	if err := t.fail("UpdateChargerTechnical"); err != nil {
		return err
	}
	stored, ok := t.m.st.chargers[c.ID]
	if !ok {
		return store.ErrNotFound
	}
	stored.Vendor = c.Vendor
	stored.Model = c.Model
	stored.SerialNumber = c.SerialNumber
	stored.FirmwareVersion = c.FirmwareVersion
	t.m.st.chargers[c.ID] = stored
	return nil
}

func (t *memTx) TouchChargerHeartbeat(_ context.Context, ocppID string, at time.Time) error {
	if err := t.fail("TouchChargerHeartbeat"); err != nil {
		return err
	}
	for id, c := range t.m.st.chargers {
		if c.OCPPID == ocppID {
			c.LastHeartbeat = &at
			t.m.st.chargers[id] = c
			return nil
		}
	}
	return store.ErrNotFound
}

func (t *memTx) ConnectorByNumber(_ context.Context, chargerID int64, number int) (*models.Connector, error) {
	if err := t.fail("ConnectorByNumber"); err != nil {
		return nil, err
	}
	for _, c := range t.m.st.connectors {
		if c.ChargerID == chargerID && c.Number == number {
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (t *memTx) ConnectorByID(_ context.Context, id int64) (*models.Connector, error) {
	if err := t.fail("ConnectorByID"); err != nil {
		return nil, err
	}
	c, ok := t.m.st.connectors[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (t *memTx) ConnectorWithOCPPID(ctx context.Context, id int64) (*models.Connector, string, error) {
	c, err := t.ConnectorByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	charger, ok := t.m.st.chargers[c.ChargerID]
	if !ok {
		return nil, "", store.ErrNotFound
	}
	return c, charger.OCPPID, nil
}

func (t *memTx) EnsureConnector(ctx context.Context, c *models.Connector) (*models.Connector, bool, error) {
	if err := t.fail("EnsureConnector"); err != nil {
		return nil, false, err
	}
	if existing, err := t.ConnectorByNumber(ctx, c.ChargerID, c.Number); err == nil {
		return existing, false, nil
	}
	stored := *c
	stored.ID = t.m.id()
	t.m.st.connectors[stored.ID] = stored
	return &stored, true, nil
}

func (t *memTx) UpdateConnector(_ context.Context, c *models.Connector) error {
	if err := t.fail("UpdateConnector"); err != nil {
		return err
	}
	if _, ok := t.m.st.connectors[c.ID]; !ok {
		return store.ErrNotFound
	}
	t.m.st.connectors[c.ID] = *c
	return nil
}

func (t *memTx) AccessTagByValue(_ context.Context, value string) (*models.AccessTag, error) {
	if err := t.fail("AccessTagByValue"); err != nil {
		return nil, err
	}
	for _, tag := range t.m.st.tags {
		if tag.Value == value {
			tag.Normalize()
			return &tag, nil
		}
	}
	return nil, store.ErrNotFound
}

func (t *memTx) CreateSession(_ context.Context, s *models.Session) error {
	if err := t.fail("CreateSession"); err != nil {
		return err
	}
	s.ID = t.m.id()
	t.m.st.sessions[s.ID] = *s
	return nil
}

func (t *memTx) SessionForUpdate(_ context.Context, id int64) (*models.Session, error) {
	if err := t.fail("SessionForUpdate"); err != nil {
		return nil, err
	}
	s, ok := t.m.st.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &s, nil
}

func (t *memTx) SaveSessionProgress(_ context.Context, s *models.Session) error {
	if err := t.fail("SaveSessionProgress"); err != nil {
		return err
	}
	stored, ok := t.m.st.sessions[s.ID]
	if !ok {
		return store.ErrNotFound
	}
	stored.MeterStop = s.MeterStop
	stored.EnergyWh = s.EnergyWh
	stored.Price = s.Price
	stored.LastProgressAt = s.LastProgressAt
	t.m.st.sessions[s.ID] = stored
	return nil
}

func (t *memTx) CompleteSession(_ context.Context, s *models.Session) error {
	if err := t.fail("CompleteSession"); err != nil {
		return err
	}
	if _, ok := t.m.st.sessions[s.ID]; !ok {
		return store.ErrNotFound
	}
	t.m.st.sessions[s.ID] = *s
	return nil
}

func (t *memTx) StaleSessionIDs(_ context.Context, cutoff time.Time) ([]int64, error) {
	if err := t.fail("StaleSessionIDs"); err != nil {
		return nil, err
	}
	var ids []int64
	for id, s := range t.m.st.sessions {
		if s.Status == models.SessionRunning && s.LastProgressAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (t *memTx) FailStaleSession(_ context.Context, id int64, cutoff time.Time) (bool, error) {
	if err := t.fail("FailStaleSession"); err != nil {
		return false, err
	}
	s, ok := t.m.st.sessions[id]
	if !ok || s.Status != models.SessionRunning || !s.LastProgressAt.Before(cutoff) {
		return false, nil
	}
	end := s.LastProgressAt
	s.Status = models.SessionFailed
	s.EndTime = &end
	t.m.st.sessions[id] = s
	return true, nil
}

func (t *memTx) AdjustBalance(_ context.Context, userID int64, delta decimal.Decimal) error {
	if err := t.fail("AdjustBalance"); err != nil {
		return err
	}
	u, ok := t.m.st.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.Balance = u.Balance.Add(delta)
	t.m.st.users[userID] = u
	return nil
}
