package suppliers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/garmentz-backend/pkg/db/models"
	"github.com/angelmondragon/garmentz-backend/pkg/enums"
)

// Repository reads the supplier pool and the order history behind its statistics.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListEligible(ctx context.Context) ([]SupplierRecord, error)
	FindEligible(ctx context.Context, id uuid.UUID) (*SupplierRecord, error)
	ListOrderSignals(ctx context.Context, supplierIDs ...uuid.UUID) ([]OrderSignal, error)
	ListAggregates(ctx context.Context, supplierIDs ...uuid.UUID) ([]models.SupplierOrderStats, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a suppliers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

const supplierColumns = `sp.user_id, sp.company_name, sp.contact_name, sp.contact_email,
  sp.specialization, sp.location, sp.production_capacity, sp.rating,
  sp.average_response_time, sp.price_competitiveness, p.verified, sp.created_at`

// eligible joins the account row so role and verification are enforced by the query itself.
func (r *repository) eligible(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("supplier_profiles AS sp").
		Select(supplierColumns).
		Joins("JOIN profiles p ON p.id = sp.user_id").
		Where("p.role = ? AND p.verified = ?", string(enums.ProfileRoleSupplier), true)
}

func (r *repository) ListEligible(ctx context.Context) ([]SupplierRecord, error) {
	var rows []SupplierRecord
	err := r.eligible(ctx).
		Order("sp.created_at ASC").
		Order("sp.user_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindEligible(ctx context.Context, id uuid.UUID) (*SupplierRecord, error) {
	var row SupplierRecord
	if err := r.eligible(ctx).Where("sp.user_id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListOrderSignals(ctx context.Context, supplierIDs ...uuid.UUID) ([]OrderSignal, error) {
	query := r.db.WithContext(ctx).
		Table("orders").
		Select("supplier_id, status, total_amount").
		Where("supplier_id IS NOT NULL")
	if len(supplierIDs) > 0 {
		query = query.Where("supplier_id IN ?", supplierIDs)
	}
	var rows []OrderSignal
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListAggregates(ctx context.Context, supplierIDs ...uuid.UUID) ([]models.SupplierOrderStats, error) {
	query := r.db.WithContext(ctx).Model(&models.SupplierOrderStats{})
	if len(supplierIDs) > 0 {
		query = query.Where("supplier_id IN ?", supplierIDs)
	}
	var rows []models.SupplierOrderStats
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
