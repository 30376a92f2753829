package suppliers

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/garmentz-backend/pkg/enums"
)

// SupplierRecord is a supplier profile joined with its account row.
type SupplierRecord struct {
	UserID               uuid.UUID       `gorm:"column:user_id"`
	CompanyName          string          `gorm:"column:company_name"`
	ContactName          string          `gorm:"column:contact_name"`
	ContactEmail         string          `gorm:"column:contact_email"`
	Specialization       pq.StringArray  `gorm:"column:specialization"`
	Location             string          `gorm:"column:location"`
	ProductionCapacity   int             `gorm:"column:production_capacity"`
	Rating               decimal.Decimal `gorm:"column:rating"`
	AverageResponseTime  string          `gorm:"column:average_response_time"`
	PriceCompetitiveness int             `gorm:"column:price_competitiveness"`
	Verified             bool            `gorm:"column:verified"`
	CreatedAt            time.Time       `gorm:"column:created_at"`
}

// OrderSignal is the slice of an order the supply loader derives statistics from.
type OrderSignal struct {
	SupplierID  uuid.UUID         `gorm:"column:supplier_id"`
	Status      enums.OrderStatus `gorm:"column:status"`
	TotalAmount decimal.Decimal   `gorm:"column:total_amount"`
}

// Stats are the order-derived performance figures of one supplier.
type Stats struct {
	TotalOrders        int             `json:"total_orders"`
	DeliveredOrders    int             `json:"delivered_orders"`
	CurrentWorkload    int             `json:"current_workload"`
	OnTimeDeliveryRate float64         `json:"on_time_delivery_rate"`
	OrderValue         decimal.Decimal `json:"order_value"`
}

// SupplierView is an eligible supplier annotated with derived statistics.
type SupplierView struct {
	ID                   uuid.UUID       `json:"id"`
	CompanyName          string          `json:"company_name"`
	ContactName          string          `json:"contact_name"`
	ContactEmail         string          `json:"contact_email"`
	Specialization       []string        `json:"specialization"`
	Location             string          `json:"location"`
	ProductionCapacity   int             `json:"production_capacity"`
	Rating               decimal.Decimal `json:"rating"`
	AverageResponseTime  string          `json:"average_response_time,omitempty"`
	PriceCompetitiveness int             `json:"price_competitiveness"`
	Stats
}

// StatsSource selects where derived statistics come from.
type StatsSource string

const (
	// StatsFromScan derives statistics from the full order history on every load.
	StatsFromScan StatsSource = "scan"
	// StatsFromAggregate reads the maintained supplier_order_stats table.
	StatsFromAggregate StatsSource = "aggregate"
)
