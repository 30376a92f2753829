package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/garmentz-backend/pkg/enums"
)

// Order is a production order attributed to a supplier.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuoteID     *uuid.UUID        `gorm:"column:quote_id;type:uuid"`
	BuyerID     uuid.UUID         `gorm:"column:buyer_id;type:uuid;not null"`
	SupplierID  *uuid.UUID        `gorm:"column:supplier_id;type:uuid"`
	Status      enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'pending'"`
	TotalAmount decimal.Decimal   `gorm:"column:total_amount;type:numeric(14,2);not null;default:0"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
