package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// SupplierProfile holds the manufacturing details of a supplier account.
type SupplierProfile struct {
	UserID               uuid.UUID       `gorm:"column:user_id;type:uuid;primaryKey"`
	CompanyName          string          `gorm:"column:company_name;not null"`
	ContactName          string          `gorm:"column:contact_name;not null"`
	ContactEmail         string          `gorm:"column:contact_email;not null"`
	Specialization       pq.StringArray  `gorm:"column:specialization;type:text[];not null;default:'{}'"`
	Location             string          `gorm:"column:location"`
	ProductionCapacity   int             `gorm:"column:production_capacity;not null"`
	Rating               decimal.Decimal `gorm:"column:rating;type:numeric(3,2);not null;default:0"`
	AverageResponseTime  string          `gorm:"column:average_response_time"`
	PriceCompetitiveness int             `gorm:"column:price_competitiveness;not null;default:0"`
	CreatedAt            time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
