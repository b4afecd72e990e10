package vendors

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shipfee-backend/pkg/db/models"
)

// PreferencesDTO is the vendor's shipping fallback configuration.
type PreferencesDTO struct {
	VendorID               uuid.UUID           `json:"vendor_id"`
	BaseRegion             *string             `json:"base_region,omitempty"`
	DefaultBaseRate        decimal.NullDecimal `json:"default_base_rate"`
	DefaultOutOfRegionRate decimal.NullDecimal `json:"default_out_of_region_rate"`
	RegionalRatesEnabled   bool                `json:"regional_rates_enabled"`
	ZonesHealed            int64               `json:"zones_healed,omitempty"`
}

// UpdatePreferencesInput replaces the vendor's shipping settings.
type UpdatePreferencesInput struct {
	BaseRegion             *string             `json:"base_region" validate:"omitempty,max=120"`
	DefaultBaseRate        decimal.NullDecimal `json:"default_base_rate"`
	DefaultOutOfRegionRate decimal.NullDecimal `json:"default_out_of_region_rate"`
	RegionalRatesEnabled   bool                `json:"regional_rates_enabled"`
}

func (in UpdatePreferencesInput) normalizedRegion() *string {
	if in.BaseRegion == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*in.BaseRegion)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (in UpdatePreferencesInput) validate() map[string]string {
	problems := map[string]string{}
	if in.DefaultBaseRate.Valid && in.DefaultBaseRate.Decimal.IsNegative() {
		problems["default_base_rate"] = "must be zero or greater"
	}
	if in.DefaultOutOfRegionRate.Valid && in.DefaultOutOfRegionRate.Decimal.IsNegative() {
		problems["default_out_of_region_rate"] = "must be zero or greater"
	}
	return problems
}

// FromModel maps a vendor row into a PreferencesDTO.
func FromModel(v *models.Vendor) *PreferencesDTO {
	if v == nil {
		return nil
	}
	return &PreferencesDTO{
		VendorID:               v.ID,
		BaseRegion:             v.BaseRegion,
		DefaultBaseRate:        v.ShippingPreferences.DefaultBaseRate,
		DefaultOutOfRegionRate: v.ShippingPreferences.DefaultOutOfRegionRate,
		RegionalRatesEnabled:   v.ShippingPreferences.RegionalRatesEnabled,
	}
}
