package quotes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads quotes joined with their buyer profile.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListUnassigned(ctx context.Context) ([]QuoteRecord, error)
	FindByID(ctx context.Context, id uuid.UUID) (*QuoteRecord, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a quotes repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

const quoteColumns = `q.id, q.buyer_id,
  p.full_name AS buyer_name, p.email AS buyer_email, p.company_name AS buyer_company,
  q.product_type, q.quantity, q.target_price, q.specifications, q.status,
  q.supplier_id, q.assigned_at, q.created_at`

func (r *repository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("quotes AS q").
		Select(quoteColumns).
		Joins("LEFT JOIN profiles p ON p.id = q.buyer_id")
}

func (r *repository) ListUnassigned(ctx context.Context) ([]QuoteRecord, error) {
	var rows []QuoteRecord
	err := r.baseQuery(ctx).
		Where("q.supplier_id IS NULL").
		Order("q.created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*QuoteRecord, error) {
	var row QuoteRecord
	err := r.baseQuery(ctx).
		Where("q.id = ?", id).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
