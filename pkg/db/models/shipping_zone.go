package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/shipfee-backend/pkg/types"
)

// ShippingZone is a shipping rate for a named destination region. VendorID is
// nil for global zones.
type ShippingZone struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID         *uuid.UUID           `gorm:"column:vendor_id;type:uuid"`
	Name             string               `gorm:"column:name;not null"`
	Region           string               `gorm:"column:region;not null"`
	BaseRate         decimal.Decimal      `gorm:"column:base_rate;type:numeric(12,2);not null"`
	IsDefault        bool                 `gorm:"column:is_default;not null;default:false"`
	VendorRegion     string               `gorm:"column:vendor_region;not null;default:''"`
	SameRegionCapFee decimal.NullDecimal  `gorm:"column:same_region_cap_fee;type:numeric(12,2)"`
	SurchargeRules   types.SurchargeRules `gorm:"column:surcharge_rules;type:jsonb;not null"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (ShippingZone) TableName() string { return "shipping_zones" }

func (z *ShippingZone) BeforeCreate(*gorm.DB) error {
	assignID(&z.ID)
	return nil
}

// IsGlobal reports whether the zone belongs to no vendor.
func (z ShippingZone) IsGlobal() bool {
	return z.VendorID == nil
}
