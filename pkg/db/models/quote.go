package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/garmentz-backend/pkg/enums"
)

// Quote is a buyer's manufacturing request awaiting or holding a supplier assignment.
type Quote struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID        uuid.UUID         `gorm:"column:buyer_id;type:uuid;not null"`
	ProductType    string            `gorm:"column:product_type;not null"`
	Quantity       int               `gorm:"column:quantity;not null"`
	TargetPrice    decimal.Decimal   `gorm:"column:target_price;type:numeric(12,2);not null;default:0"`
	Specifications map[string]any    `gorm:"column:specifications;type:jsonb;serializer:json"`
	Status         enums.QuoteStatus `gorm:"column:status;type:quote_status;not null;default:'pending'"`
	SupplierID     *uuid.UUID        `gorm:"column:supplier_id;type:uuid"`
	AssignedAt     *time.Time        `gorm:"column:assigned_at"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// IsAssigned reports whether a supplier has been attached to the quote.
func (q Quote) IsAssigned() bool {
	return q.SupplierID != nil && *q.SupplierID != uuid.Nil
}
