package quotes

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/garmentz-backend/pkg/enums"
)

// QuoteRecord is a quote row joined with the buyer's display fields.
type QuoteRecord struct {
	ID             uuid.UUID         `gorm:"column:id" json:"id"`
	BuyerID        uuid.UUID         `gorm:"column:buyer_id" json:"buyer_id"`
	BuyerName      *string           `gorm:"column:buyer_name" json:"buyer_name,omitempty"`
	BuyerEmail     *string           `gorm:"column:buyer_email" json:"buyer_email,omitempty"`
	BuyerCompany   *string           `gorm:"column:buyer_company" json:"buyer_company,omitempty"`
	ProductType    string            `gorm:"column:product_type" json:"product_type"`
	Quantity       int               `gorm:"column:quantity" json:"quantity"`
	TargetPrice    decimal.Decimal   `gorm:"column:target_price" json:"target_price"`
	Specifications map[string]any    `gorm:"column:specifications;serializer:json" json:"specifications,omitempty"`
	Status         enums.QuoteStatus `gorm:"column:status" json:"status"`
	SupplierID     *uuid.UUID        `gorm:"column:supplier_id" json:"supplier_id,omitempty"`
	AssignedAt     *time.Time        `gorm:"column:assigned_at" json:"assigned_at,omitempty"`
	CreatedAt      time.Time         `gorm:"column:created_at" json:"created_at"`
}

// Buyer groups the denormalized buyer display fields.
type Buyer struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Company string    `json:"company,omitempty"`
}

// QuoteView is a quote annotated with its derived urgency.
type QuoteView struct {
	ID             uuid.UUID          `json:"id"`
	Buyer          Buyer              `json:"buyer"`
	ProductType    string             `json:"product_type"`
	Quantity       int                `json:"quantity"`
	TargetPrice    decimal.Decimal    `json:"target_price"`
	Specifications map[string]any     `json:"specifications,omitempty"`
	Status         enums.QuoteStatus  `json:"status"`
	SupplierID     *uuid.UUID         `json:"supplier_id,omitempty"`
	AssignedAt     *time.Time         `json:"assigned_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	AgeDays        int                `json:"age_days"`
	Urgency        enums.Urgency      `json:"urgency"`
	UrgencyBadge   enums.UrgencyBadge `json:"urgency_badge"`
}

// IsAssigned reports whether the quote already left the unassigned pool.
func (q QuoteView) IsAssigned() bool {
	return q.SupplierID != nil && *q.SupplierID != uuid.Nil
}

// ListParams narrows the unassigned quote listing.
type ListParams struct {
	Urgency enums.UrgencyFilter
	Search  string
}
