package vendors

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/shipfee-backend/internal/repo"
	"github.com/angelmondragon/shipfee-backend/pkg/db/models"
)

// Repository persists vendors and their shipping preferences.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, vendor *models.Vendor) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	UpdateShipping(ctx context.Context, id uuid.UUID, baseRegion *string, prefs models.VendorShippingPreferences) error
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Base.WithTx(tx)}
}

func (r *repository) Create(ctx context.Context, vendor *models.Vendor) error {
	return r.DB(ctx).Create(vendor).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.DB(ctx).Where("id = ?", id).First(&vendor).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *repository) UpdateShipping(ctx context.Context, id uuid.UUID, baseRegion *string, prefs models.VendorShippingPreferences) error {
	return r.UpdateExisting(ctx, &models.Vendor{}, id, map[string]any{
		"base_region":                         baseRegion,
		"shipping_default_base_rate":          prefs.DefaultBaseRate,
		"shipping_default_out_of_region_rate": prefs.DefaultOutOfRegionRate,
		"shipping_regional_rates_enabled":     prefs.RegionalRatesEnabled,
	})
}
