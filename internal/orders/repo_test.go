package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/garmentz-backend/internal/suppliers"
	"github.com/angelmondragon/garmentz-backend/pkg/db"
	"github.com/angelmondragon/garmentz-backend/pkg/db/models"
	"github.com/angelmondragon/garmentz-backend/pkg/enums"
	"github.com/angelmondragon/garmentz-backend/pkg/outbox"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  quote_id TEXT,
  buyer_id TEXT NOT NULL,
  supplier_id TEXT,
  status TEXT NOT NULL,
  total_amount TEXT NOT NULL DEFAULT '0',
  created_at DATETIME,
  updated_at DATETIME
);`
	stats := `
CREATE TABLE IF NOT EXISTS supplier_order_stats (
  supplier_id TEXT PRIMARY KEY,
  total_orders INTEGER NOT NULL DEFAULT 0,
  delivered_orders INTEGER NOT NULL DEFAULT 0,
  order_value TEXT NOT NULL DEFAULT '0',
  refreshed_at DATETIME NOT NULL
);`
	events := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload BLOB NOT NULL,
  created_at DATETIME,
  published_at DATETIME
);`
	for _, stmt := range []string{orders, stats, events} {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func insertOrder(t *testing.T, conn *gorm.DB, supplierID uuid.UUID, status enums.OrderStatus) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, conn.Exec(
		`INSERT INTO orders (id, buyer_id, supplier_id, status, total_amount, created_at, updated_at) VALUES (?, ?, ?, ?, '120.00', ?, ?)`,
		id.String(), uuid.NewString(), supplierID.String(), string(status), time.Now().UTC(), time.Now().UTC(),
	).Error)
	return id
}

func TestRepositoryUpdateStatus(t *testing.T) {
	conn := setupOrdersTestDB(t)
	id := insertOrder(t, conn, uuid.New(), enums.OrderStatusPending)
	repo := NewRepository(conn)

	require.NoError(t, repo.UpdateStatus(context.Background(), id, enums.OrderStatusConfirmed, time.Now().UTC()))

	order, err := repo.FindOrder(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, order.Status)
	assert.Equal(t, "120", order.TotalAmount.String())

	err = repo.UpdateStatus(context.Background(), uuid.New(), enums.OrderStatusConfirmed, time.Now().UTC())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRecordStatusChangeMaintainsAggregate(t *testing.T) {
	conn := setupOrdersTestDB(t)
	supplierID := uuid.New()
	delivered := insertOrder(t, conn, supplierID, enums.OrderStatusShipped)
	insertOrder(t, conn, supplierID, enums.OrderStatusInProduction)

	svc, err := NewService(
		NewRepository(conn),
		db.FromConn(conn),
		StatsAdapter{Repo: suppliers.NewStatsRepository(conn)},
		outbox.NewService(outbox.NewRepository(), nil),
		nil,
		nil,
	)
	require.NoError(t, err)

	change, err := svc.RecordStatusChange(context.Background(), StatusChangeInput{OrderID: delivered, Status: enums.OrderStatusDelivered})
	require.NoError(t, err)
	assert.True(t, change.Changed)

	var stats models.SupplierOrderStats
	require.NoError(t, conn.First(&stats, "supplier_id = ?", supplierID).Error)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, 1, stats.DeliveredOrders)

	var events int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Where("event_type = ?", string(enums.EventOrderStatusChanged)).Count(&events).Error)
	assert.Equal(t, int64(1), events)
}
