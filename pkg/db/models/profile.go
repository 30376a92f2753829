package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/garmentz-backend/pkg/enums"
)

// Profile is the marketplace identity shared by buyers, suppliers and admins.
type Profile struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Role        enums.ProfileRole `gorm:"column:role;type:profile_role;not null"`
	Verified    bool              `gorm:"column:verified;not null;default:false"`
	FullName    string            `gorm:"column:full_name;not null"`
	Email       string            `gorm:"column:email;not null"`
	CompanyName *string           `gorm:"column:company_name"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// IsEligibleSupplier reports whether the profile may enter the matching pool.
func (p Profile) IsEligibleSupplier() bool {
	return p.Role == enums.ProfileRoleSupplier && p.Verified
}
