package assignments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/garmentz-backend/pkg/db/models"
	"github.com/angelmondragon/garmentz-backend/pkg/enums"
)

// Repository performs the guarded quote write.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	AssignIfUnassigned(ctx context.Context, quoteID, supplierID uuid.UUID, at time.Time) (bool, error)
	FindQuote(ctx context.Context, id uuid.UUID) (*models.Quote, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an assignments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// AssignIfUnassigned attaches the supplier only while the quote has none. It
// reports false when no row matched.
func (r *repository) AssignIfUnassigned(ctx context.Context, quoteID, supplierID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("id = ? AND supplier_id IS NULL", quoteID).
		Updates(map[string]any{
			"supplier_id": supplierID,
			"status":      string(enums.QuoteStatusAssigned),
			"assigned_at": at,
			"updated_at":  at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) FindQuote(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&quote).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}
