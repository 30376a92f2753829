package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplierOrderStats is the maintained per-supplier order aggregate.
type SupplierOrderStats struct {
	SupplierID      uuid.UUID       `gorm:"column:supplier_id;type:uuid;primaryKey"`
	TotalOrders     int             `gorm:"column:total_orders;not null;default:0"`
	DeliveredOrders int             `gorm:"column:delivered_orders;not null;default:0"`
	OrderValue      decimal.Decimal `gorm:"column:order_value;type:numeric(16,2);not null;default:0"`
	RefreshedAt     time.Time       `gorm:"column:refreshed_at;not null"`
}

func (SupplierOrderStats) TableName() string {
	return "supplier_order_stats"
}
