package assignments

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/garmentz-backend/internal/quotes"
	"github.com/angelmondragon/garmentz-backend/internal/suppliers"
	"github.com/angelmondragon/garmentz-backend/pkg/db"
	"github.com/angelmondragon/garmentz-backend/pkg/db/models"
	"github.com/angelmondragon/garmentz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/garmentz-backend/pkg/errors"
	"github.com/angelmondragon/garmentz-backend/pkg/outbox"
	"github.com/angelmondragon/garmentz-backend/pkg/readcache"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db        *gorm.DB
	store     *memoryStore
	quotes    quotes.Service
	suppliers suppliers.Service
	recorder  *fakeRecorder
	svc       Service
}

func setupAssignmentsDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	statements := []string{`
CREATE TABLE profiles (
  id TEXT PRIMARY KEY,
  role TEXT NOT NULL,
  verified INTEGER NOT NULL DEFAULT 0,
  full_name TEXT NOT NULL,
  email TEXT NOT NULL,
  company_name TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE supplier_profiles (
  user_id TEXT PRIMARY KEY,
  company_name TEXT NOT NULL,
  contact_name TEXT NOT NULL,
  contact_email TEXT NOT NULL,
  specialization TEXT NOT NULL DEFAULT '{}',
  location TEXT,
  production_capacity INTEGER NOT NULL,
  rating TEXT NOT NULL DEFAULT '0',
  average_response_time TEXT,
  price_competitiveness INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE quotes (
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL,
  product_type TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  target_price TEXT NOT NULL DEFAULT '0',
  specifications TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  supplier_id TEXT,
  assigned_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  quote_id TEXT,
  buyer_id TEXT NOT NULL,
  supplier_id TEXT,
  status TEXT NOT NULL,
  total_amount TEXT NOT NULL DEFAULT '0',
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload BLOB NOT NULL,
  created_at DATETIME,
  published_at DATETIME
);`}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := setupAssignmentsDB(t)
	store := &memoryStore{data: map[string]string{}}
	cache := readcache.New(store, time.Minute, nil)

	quoteSvc, err := quotes.NewService(quotes.NewRepository(conn), cache, func() time.Time { return fixedNow })
	require.NoError(t, err)
	supplierSvc, err := suppliers.NewService(suppliers.NewRepository(conn), cache, suppliers.StatsFromScan)
	require.NoError(t, err)

	f := &fixture{db: conn, store: store, quotes: quoteSvc, suppliers: supplierSvc, recorder: &fakeRecorder{}}
	f.svc = f.build(t, quoteSvc)
	return f
}

func (f *fixture) build(t *testing.T, quoteSvc quotes.Service) Service {
	t.Helper()
	svc, err := NewService(Deps{
		Repo:      NewRepository(f.db),
		Tx:        db.FromConn(f.db),
		Quotes:    quoteSvc,
		Suppliers: f.suppliers,
		Outbox:    outbox.NewService(outbox.NewRepository(), nil),
		Metrics:   f.recorder,
		Clock:     func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return svc
}

func (f *fixture) supplier(t *testing.T, company, specialization string, capacity int, rating string, verified bool) uuid.UUID {
	t.Helper()
	id := uuid.New()
	created := fixedNow.Add(-time.Duration(len(company)) * time.Hour)
	require.NoError(t, f.db.Exec(
		`INSERT INTO profiles (id, role, verified, full_name, email, created_at, updated_at) VALUES (?, 'supplier', ?, ?, ?, ?, ?)`,
		id.String(), verified, company, strings.ToLower(company)+"@factory.test", created, created,
	).Error)
	require.NoError(t, f.db.Exec(
		`INSERT INTO supplier_profiles (user_id, company_name, contact_name, contact_email, specialization, production_capacity, rating, created_at, updated_at)
		 VALUES (?, ?, 'Karim', 'karim@factory.test', ?, ?, ?, ?, ?)`,
		id.String(), company, specialization, capacity, rating, created, created,
	).Error)
	return id
}

func (f *fixture) quote(t *testing.T, product string, quantity int, age time.Duration) uuid.UUID {
	t.Helper()
	id := uuid.New()
	created := fixedNow.Add(-age)
	require.NoError(t, f.db.Exec(
		`INSERT INTO quotes (id, buyer_id, product_type, quantity, status, created_at, updated_at) VALUES (?, ?, ?, ?, 'pending', ?, ?)`,
		id.String(), uuid.NewString(), product, quantity, created, created,
	).Error)
	return id
}

func (f *fixture) loadQuote(t *testing.T, id uuid.UUID) models.Quote {
	t.Helper()
	var quote models.Quote
	require.NoError(t, f.db.Where("id = ?", id).Take(&quote).Error)
	return quote
}

func (f *fixture) outboxCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.OutboxEvent{}).Count(&count).Error)
	return count
}

func (f *fixture) warmCaches(t *testing.T) {
	t.Helper()
	_, err := f.quotes.ListUnassigned(context.Background(), quotes.ListParams{})
	require.NoError(t, err)
	_, err = f.suppliers.ListEligible(context.Background())
	require.NoError(t, err)
	require.Len(t, f.store.keys(), 2)
}

func TestAssignWritesQuoteEventAndInvalidatesCaches(t *testing.T) {
	f := newFixture(t)
	supplierID := f.supplier(t, "Dhaka Knit", `{"T-Shirts"}`, 100, "5.0", true)
	quoteID := f.quote(t, "T-Shirts", 300, time.Hour)
	f.warmCaches(t)

	admin := uuid.New()
	result, err := f.svc.Assign(context.Background(), AssignInput{QuoteID: quoteID, SupplierID: supplierID, ActorID: admin, ActorRole: "admin"})
	require.NoError(t, err)

	assert.Equal(t, enums.AssignmentModeManual, result.Mode)
	require.NotNil(t, result.Score)
	assert.Equal(t, 100, *result.Score)

	stored := f.loadQuote(t, quoteID)
	require.NotNil(t, stored.SupplierID)
	assert.Equal(t, supplierID, *stored.SupplierID)
	assert.Equal(t, enums.QuoteStatusAssigned, stored.Status)
	require.NotNil(t, stored.AssignedAt)
	assert.True(t, stored.AssignedAt.Equal(fixedNow))

	var event models.OutboxEvent
	require.NoError(t, f.db.Take(&event).Error)
	assert.Equal(t, enums.EventQuoteAssigned, event.EventType)
	assert.Equal(t, quoteID, event.AggregateID)

	assert.Empty(t, f.store.keys())
	assert.Equal(t, 1, f.recorder.count("manual", "assigned"))

	pool, err := f.quotes.ListUnassigned(context.Background(), quotes.ListParams{})
	require.NoError(t, err)
	assert.Empty(t, pool)
}

func TestAssignRejectsDoubleAssignment(t *testing.T) {
	f := newFixture(t)
	first := f.supplier(t, "First", `{"Polo"}`, 100, "4.0", true)
	second := f.supplier(t, "Second Mill", `{"Polo"}`, 100, "4.0", true)
	quoteID := f.quote(t, "Polo", 100, time.Hour)

	_, err := f.svc.Assign(context.Background(), AssignInput{QuoteID: quoteID, SupplierID: first})
	require.NoError(t, err)

	_, err = f.svc.Assign(context.Background(), AssignInput{QuoteID: quoteID, SupplierID: second})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))

	stored := f.loadQuote(t, quoteID)
	assert.Equal(t, first, *stored.SupplierID)
	assert.Equal(t, int64(1), f.outboxCount(t))
	assert.Equal(t, 1, f.recorder.count("manual", "conflict"))
}

// staleQuotes serves an unassigned view regardless of what the store holds.
type staleQuotes struct {
	quotes.Service
	view quotes.QuoteView
}

func (s staleQuotes) Get(context.Context, uuid.UUID) (*quotes.QuoteView, error) {
	view := s.view
	return &view, nil
}

func TestAssignGuardCatchesStaleRead(t *testing.T) {
	f := newFixture(t)
	winner := f.supplier(t, "Winner", `{"Polo"}`, 100, "4.0", true)
	loser := f.supplier(t, "Loser Mill", `{"Polo"}`, 100, "4.0", true)
	quoteID := f.quote(t, "Polo", 100, time.Hour)

	view, err := f.quotes.Get(context.Background(), quoteID)
	require.NoError(t, err)
	_, err = f.svc.Assign(context.Background(), AssignInput{QuoteID: quoteID, SupplierID: winner})
	require.NoError(t, err)

	stale := f.build(t, staleQuotes{Service: f.quotes, view: *view})
	_, err = stale.Assign(context.Background(), AssignInput{QuoteID: quoteID, SupplierID: loser})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
	assert.Equal(t, winner, *f.loadQuote(t, quoteID).SupplierID)
}

func TestAssignValidation(t *testing.T) {
	f := newFixture(t)
	unverified := f.supplier(t, "Unverified", `{"Polo"}`, 100, "5.0", false)
	quoteID := f.quote(t, "Polo", 100, time.Hour)

	_, err := f.svc.Assign(context.Background(), AssignInput{QuoteID: quoteID})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Assign(context.Background(), AssignInput{SupplierID: unverified})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Assign(context.Background(), AssignInput{QuoteID: quoteID, SupplierID: unverified})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Assign(context.Background(), AssignInput{QuoteID: quoteID, SupplierID: unverified, Mode: "random"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Assign(context.Background(), AssignInput{QuoteID: uuid.New(), SupplierID: f.supplier(t, "Real", `{"Polo"}`, 10, "3.0", true)})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	assert.Nil(t, f.loadQuote(t, quoteID).SupplierID)
	assert.Zero(t, f.outboxCount(t))
}

func TestQuickAssignPicksRankOne(t *testing.T) {
	f := newFixture(t)
	f.supplier(t, "Generalist", `{"Denim"}`, 100, "5.0", true)
	best := f.supplier(t, "Tee", `{"T-Shirts"}`, 100, "4.0", true)
	quoteID := f.quote(t, "T-Shirts", 200, time.Hour)

	result, err := f.svc.QuickAssign(context.Background(), QuickAssignInput{QuoteID: quoteID, ActorID: uuid.New(), ActorRole: "admin"})
	require.NoError(t, err)

	assert.Equal(t, best, result.SupplierID)
	assert.Equal(t, enums.AssignmentModeQuick, result.Mode)
	require.NotNil(t, result.Match)
	assert.Equal(t, 96, result.Match.Score)
	assert.Equal(t, best, *f.loadQuote(t, quoteID).SupplierID)
	assert.Equal(t, 1, f.recorder.count("quick", "assigned"))
	assert.Equal(t, 2, f.recorder.poolSize)
}

func TestQuickAssignWithEmptyPoolFails(t *testing.T) {
	f := newFixture(t)
	f.supplier(t, "Unverified", `{"Polo"}`, 100, "5.0", false)
	quoteID := f.quote(t, "Polo", 100, time.Hour)

	result, err := f.svc.QuickAssign(context.Background(), QuickAssignInput{QuoteID: quoteID})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNoCandidates))
	assert.Equal(t, "no suitable suppliers found", pkgerrors.As(err).Message())

	assert.Nil(t, f.loadQuote(t, quoteID).SupplierID)
	assert.Zero(t, f.outboxCount(t))
	assert.Equal(t, 1, f.recorder.count("quick", "no_candidates"))
}

func TestQuickAssignAlreadyAssigned(t *testing.T) {
	f := newFixture(t)
	supplierID := f.supplier(t, "Only", `{"Polo"}`, 100, "5.0", true)
	quoteID := f.quote(t, "Polo", 100, time.Hour)

	_, err := f.svc.QuickAssign(context.Background(), QuickAssignInput{QuoteID: quoteID})
	require.NoError(t, err)

	_, err = f.svc.QuickAssign(context.Background(), QuickAssignInput{QuoteID: quoteID})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
	assert.Equal(t, supplierID, *f.loadQuote(t, quoteID).SupplierID)
}

func TestAutoAssignSpreadsLoad(t *testing.T) {
	f := newFixture(t)
	strong := f.supplier(t, "Strong", `{"Polo"}`, 4, "5.0", true)
	runnerUp := f.supplier(t, "Runner Up", `{"Polo"}`, 4, "4.0", true)
	older := f.quote(t, "Polo", 100, 30*time.Hour)
	newer := f.quote(t, "Polo", 100, time.Hour)
	urgent := f.quote(t, "Gloves", 1500, 2*time.Hour)
	for _, id := range []uuid.UUID{strong, runnerUp} {
		require.NoError(t, f.db.Exec(
			`INSERT INTO orders (id, buyer_id, supplier_id, status, total_amount) VALUES (?, ?, ?, 'delivered', '10')`,
			uuid.NewString(), uuid.NewString(), id.String(),
		).Error)
	}

	result, err := f.svc.AutoAssign(context.Background(), AutoAssignInput{Urgency: enums.UrgencyFilterAll})
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 3)

	assert.Equal(t, urgent, result.Outcomes[0].QuoteID)
	assert.Equal(t, enums.UrgencyHigh, result.Outcomes[0].Urgency)
	assert.Equal(t, older, result.Outcomes[1].QuoteID)
	assert.Equal(t, newer, result.Outcomes[2].QuoteID)
	for _, outcome := range result.Outcomes {
		assert.Equal(t, OutcomeAssigned, outcome.Status)
	}
	assert.Equal(t, 3, result.Counts[OutcomeAssigned])

	assert.Equal(t, strong, *f.loadQuote(t, urgent).SupplierID)
	assert.Equal(t, runnerUp, *f.loadQuote(t, older).SupplierID)
	assert.Equal(t, strong, *f.loadQuote(t, newer).SupplierID)
	assert.Equal(t, int64(3), f.outboxCount(t))
	assert.Equal(t, 3, f.recorder.count("auto", "assigned"))
}

func TestAutoAssignDryRunWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.supplier(t, "Only", `{"Polo"}`, 100, "5.0", true)
	quoteID := f.quote(t, "Polo", 100, time.Hour)

	result, err := f.svc.AutoAssign(context.Background(), AutoAssignInput{DryRun: true, Limit: 5})
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, OutcomePlanned, result.Outcomes[0].Status)
	require.NotNil(t, result.Outcomes[0].Score)

	assert.Nil(t, f.loadQuote(t, quoteID).SupplierID)
	assert.Zero(t, f.outboxCount(t))
	assert.Zero(t, f.recorder.count("auto", "planned"))
}

func TestAutoAssignWithoutSuppliers(t *testing.T) {
	f := newFixture(t)
	f.quote(t, "Polo", 100, time.Hour)
	f.quote(t, "Denim", 100, 2*time.Hour)

	result, err := f.svc.AutoAssign(context.Background(), AutoAssignInput{Limit: 1})
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, OutcomeNoCandidates, result.Outcomes[0].Status)
	assert.Equal(t, 1, result.Counts[OutcomeNoCandidates])
}

func TestPrioritize(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	low := quotes.QuoteView{ID: uuid.New(), Urgency: enums.UrgencyLow, CreatedAt: base}
	mediumNew := quotes.QuoteView{ID: uuid.New(), Urgency: enums.UrgencyMedium, CreatedAt: base.Add(time.Hour)}
	mediumOld := quotes.QuoteView{ID: uuid.New(), Urgency: enums.UrgencyMedium, CreatedAt: base}
	high := quotes.QuoteView{ID: uuid.New(), Urgency: enums.UrgencyHigh, CreatedAt: base.Add(2 * time.Hour)}
	input := []quotes.QuoteView{low, mediumNew, high, mediumOld}

	ordered := Prioritize(input)

	ids := make([]uuid.UUID, 0, len(ordered))
	for _, q := range ordered {
		ids = append(ids, q.ID)
	}
	assert.Equal(t, []uuid.UUID{high.ID, mediumOld.ID, mediumNew.ID, low.ID}, ids)
	assert.Equal(t, low.ID, input[0].ID)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(Deps{})
	require.Error(t, err)
}

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return value, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	return nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryStore) CacheKey(parts ...string) string {
	return "gz:cache:" + strings.Join(parts, ":")
}

func (m *memoryStore) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.data))
	for key := range m.data {
		out = append(out, key)
	}
	return out
}

type fakeRecorder struct {
	mu       sync.Mutex
	counts   map[string]int
	scores   []int
	poolSize int
}

func (r *fakeRecorder) IncAssignment(mode, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[mode+"/"+outcome]++
}

func (r *fakeRecorder) ObserveScore(_ string, score int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scores = append(r.scores, score)
}

func (r *fakeRecorder) SetPoolSize(size int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.poolSize = size
}

func (r *fakeRecorder) count(mode, outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[mode+"/"+outcome]
}
