package zones

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/shipfee-backend/pkg/db/models"
)

// Repository persists shipping zones.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, zone *models.ShippingZone) error
	Update(ctx context.Context, zone *models.ShippingZone) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ShippingZone, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.ShippingZone, error)
	ListGlobal(ctx context.Context) ([]models.ShippingZone, error)
	ClearDefault(ctx context.Context, vendorID *uuid.UUID, exceptID uuid.UUID) error
	UpdateVendorRegion(ctx context.Context, vendorID uuid.UUID, region string) (int64, error)
	ListVendorIDsWithZones(ctx context.Context) ([]uuid.UUID, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, zone *models.ShippingZone) error {
	return r.db.WithContext(ctx).Create(zone).Error
}

func (r *repository) Update(ctx context.Context, zone *models.ShippingZone) error {
	return r.db.WithContext(ctx).Save(zone).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ShippingZone{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ShippingZone, error) {
	var zone models.ShippingZone
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&zone).Error; err != nil {
		return nil, err
	}
	return &zone, nil
}

// ListByVendor returns the vendor's zones ordered by (created_at, id).
func (r *repository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.ShippingZone, error) {
	var zones []models.ShippingZone
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&zones).Error
	return zones, err
}

// ListGlobal returns the vendor-less zones ordered by (created_at, id).
func (r *repository) ListGlobal(ctx context.Context) ([]models.ShippingZone, error) {
	var zones []models.ShippingZone
	err := r.db.WithContext(ctx).
		Where("vendor_id IS NULL").
		Order("created_at ASC").
		Order("id ASC").
		Find(&zones).Error
	return zones, err
}

// ClearDefault unsets is_default on every zone in the vendor's scope except
// exceptID. A nil vendorID targets the global scope.
func (r *repository) ClearDefault(ctx context.Context, vendorID *uuid.UUID, exceptID uuid.UUID) error {
	query := r.db.WithContext(ctx).Model(&models.ShippingZone{}).Where("is_default = ?", true)
	if vendorID == nil {
		query = query.Where("vendor_id IS NULL")
	} else {
		query = query.Where("vendor_id = ?", *vendorID)
	}
	if exceptID != uuid.Nil {
		query = query.Where("id <> ?", exceptID)
	}
	return query.Update("is_default", false).Error
}

// UpdateVendorRegion stamps region onto the vendor's zones that carry a
// different value and returns how many rows changed.
func (r *repository) UpdateVendorRegion(ctx context.Context, vendorID uuid.UUID, region string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ShippingZone{}).
		Where("vendor_id = ? AND vendor_region <> ?", vendorID, region).
		Update("vendor_region", region)
	return res.RowsAffected, res.Error
}

func (r *repository) ListVendorIDsWithZones(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.ShippingZone{}).
		Where("vendor_id IS NOT NULL").
		Distinct("vendor_id").
		Order("vendor_id").
		Pluck("vendor_id", &ids).Error
	return ids, err
}
