package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VendorShippingPreferences are the fallback rates used when no zone matches.
type VendorShippingPreferences struct {
	DefaultBaseRate        decimal.NullDecimal `gorm:"column:default_base_rate;type:numeric(12,2)" json:"default_base_rate"`
	DefaultOutOfRegionRate decimal.NullDecimal `gorm:"column:default_out_of_region_rate;type:numeric(12,2)" json:"default_out_of_region_rate"`
	RegionalRatesEnabled   bool                `gorm:"column:regional_rates_enabled;not null;default:false" json:"regional_rates_enabled"`
}

// Vendor is a selling account. BaseRegion is the vendor's home region.
type Vendor struct {
	ID                  uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                string                    `gorm:"column:name;not null"`
	BaseRegion          *string                   `gorm:"column:base_region"`
	ShippingPreferences VendorShippingPreferences `gorm:"embedded;embeddedPrefix:shipping_"`
	CreatedAt           time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

func (Vendor) TableName() string { return "vendors" }

func (v *Vendor) BeforeCreate(*gorm.DB) error {
	assignID(&v.ID)
	return nil
}

// HomeRegion returns the trimmed base region, or "" when unset.
func (v *Vendor) HomeRegion() string {
	if v == nil || v.BaseRegion == nil {
		return ""
	}
	return strings.TrimSpace(*v.BaseRegion)
}
