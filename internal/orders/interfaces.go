package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/garmentz-backend/pkg/db/models"
	"github.com/angelmondragon/garmentz-backend/pkg/enums"
)

// Repository defines the order reads and writes status notifications need.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, at time.Time) error
}

// StatsMaintainer keeps the per-supplier order aggregate current.
type StatsMaintainer interface {
	RefreshSupplier(ctx context.Context, tx *gorm.DB, supplierID uuid.UUID, at time.Time) error
}

// CacheInvalidator drops the supplier read model after statistics change.
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context) error
}
