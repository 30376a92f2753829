package suppliers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/garmentz-backend/pkg/db/models"
	"github.com/angelmondragon/garmentz-backend/pkg/enums"
)

// StatsRepository maintains the supplier_order_stats aggregate.
type StatsRepository interface {
	WithTx(tx *gorm.DB) StatsRepository
	RefreshSupplier(ctx context.Context, supplierID uuid.UUID, at time.Time) error
	RefreshAll(ctx context.Context, at time.Time) (int, error)
}

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository builds the aggregate maintenance repository.
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) WithTx(tx *gorm.DB) StatsRepository {
	if tx == nil {
		return r
	}
	return &statsRepository{db: tx}
}

func (r *statsRepository) grouped(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("orders").
		Select(
			"supplier_id, COUNT(*) AS total_orders, "+
				"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS delivered_orders, "+
				"COALESCE(SUM(total_amount), 0) AS order_value",
			string(enums.OrderStatusDelivered),
		).
		Where("supplier_id IS NOT NULL").
		Group("supplier_id")
}

// RefreshSupplier recounts one supplier's orders and upserts its aggregate row.
func (r *statsRepository) RefreshSupplier(ctx context.Context, supplierID uuid.UUID, at time.Time) error {
	var rows []models.SupplierOrderStats
	if err := r.grouped(ctx).Where("supplier_id = ?", supplierID).Scan(&rows).Error; err != nil {
		return err
	}
	row := models.SupplierOrderStats{SupplierID: supplierID, OrderValue: decimal.Zero}
	if len(rows) > 0 {
		row = rows[0]
	}
	row.RefreshedAt = at
	return r.upsert(ctx, []models.SupplierOrderStats{row})
}

// RefreshAll rebuilds the aggregate from the full order history and drops rows
// for suppliers that no longer have orders. It returns the number of rows written.
func (r *statsRepository) RefreshAll(ctx context.Context, at time.Time) (int, error) {
	var rows []models.SupplierOrderStats
	if err := r.grouped(ctx).Scan(&rows).Error; err != nil {
		return 0, err
	}
	for i := range rows {
		rows[i].RefreshedAt = at
	}
	if err := r.upsert(ctx, rows); err != nil {
		return 0, err
	}
	err := r.db.WithContext(ctx).
		Where("refreshed_at < ?", at).
		Delete(&models.SupplierOrderStats{}).Error
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (r *statsRepository) upsert(ctx context.Context, rows []models.SupplierOrderStats) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "supplier_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"total_orders", "delivered_orders", "order_value", "refreshed_at"}),
		}).
		Create(&rows).Error
}

// DeriveStats groups order signals per supplier.
func DeriveStats(signals []OrderSignal) map[uuid.UUID]Stats {
	totals := make(map[uuid.UUID]*models.SupplierOrderStats)
	for _, signal := range signals {
		agg, ok := totals[signal.SupplierID]
		if !ok {
			agg = &models.SupplierOrderStats{SupplierID: signal.SupplierID, OrderValue: decimal.Zero}
			totals[signal.SupplierID] = agg
		}
		agg.TotalOrders++
		if signal.Status.IsDelivered() {
			agg.DeliveredOrders++
		}
		agg.OrderValue = agg.OrderValue.Add(signal.TotalAmount)
	}
	out := make(map[uuid.UUID]Stats, len(totals))
	for id, agg := range totals {
		out[id] = StatsFrom(agg.TotalOrders, agg.DeliveredOrders, agg.OrderValue)
	}
	return out
}

// StatsFrom computes the derived figures. A supplier with no orders reports a
// 100% on-time rate. Workload is the lifetime order count.
func StatsFrom(total, delivered int, value decimal.Decimal) Stats {
	rate := 100.0
	if total > 0 {
		rate = float64(delivered) / float64(total) * 100
	}
	return Stats{
		TotalOrders:        total,
		DeliveredOrders:    delivered,
		CurrentWorkload:    total,
		OnTimeDeliveryRate: rate,
		OrderValue:         value,
	}
}
