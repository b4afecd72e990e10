package zones

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shipfee-backend/pkg/db/models"
	"github.com/angelmondragon/shipfee-backend/pkg/types"
)

// ZoneDTO is the API view of a shipping zone.
type ZoneDTO struct {
	ID               uuid.UUID             `json:"id"`
	VendorID         *uuid.UUID            `json:"vendor_id,omitempty"`
	Name             string                `json:"name"`
	Region           string                `json:"region"`
	BaseRate         decimal.Decimal       `json:"base_rate"`
	IsDefault        bool                  `json:"is_default"`
	VendorRegion     string                `json:"vendor_region"`
	SameRegionCapFee decimal.NullDecimal   `json:"same_region_cap_fee"`
	SurchargeRules   []types.SurchargeRule `json:"surcharge_rules"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// ZoneInput is the writable part of a zone.
type ZoneInput struct {
	Name             string                `json:"name" validate:"required,max=120"`
	Region           string                `json:"region" validate:"required,max=120"`
	BaseRate         decimal.Decimal       `json:"base_rate"`
	IsDefault        bool                  `json:"is_default"`
	SameRegionCapFee decimal.NullDecimal   `json:"same_region_cap_fee"`
	SurchargeRules   []types.SurchargeRule `json:"surcharge_rules" validate:"omitempty,dive"`
}

func (in ZoneInput) validate() map[string]string {
	problems := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		problems["name"] = "is required"
	}
	if strings.TrimSpace(in.Region) == "" {
		problems["region"] = "is required"
	}
	if in.BaseRate.IsNegative() {
		problems["base_rate"] = "must be zero or greater"
	}
	if in.SameRegionCapFee.Valid && in.SameRegionCapFee.Decimal.IsNegative() {
		problems["same_region_cap_fee"] = "must be zero or greater"
	}
	for i, rule := range in.SurchargeRules {
		if !rule.Kind.IsValid() {
			problems[fmt.Sprintf("surcharge_rules[%d].kind", i)] = "must be weight or price"
		}
		if rule.Threshold.IsNegative() {
			problems[fmt.Sprintf("surcharge_rules[%d].threshold", i)] = "must be zero or greater"
		}
	}
	return problems
}

func (in ZoneInput) apply(zone *models.ShippingZone) {
	zone.Name = strings.TrimSpace(in.Name)
	zone.Region = strings.TrimSpace(in.Region)
	zone.BaseRate = in.BaseRate
	zone.IsDefault = in.IsDefault
	zone.SameRegionCapFee = in.SameRegionCapFee
	zone.SurchargeRules = types.SurchargeRules(in.SurchargeRules)
}

// FromModel maps a zone row into a ZoneDTO.
func FromModel(zone *models.ShippingZone) *ZoneDTO {
	if zone == nil {
		return nil
	}
	rules := []types.SurchargeRule(zone.SurchargeRules)
	if rules == nil {
		rules = []types.SurchargeRule{}
	}
	return &ZoneDTO{
		ID:               zone.ID,
		VendorID:         zone.VendorID,
		Name:             zone.Name,
		Region:           zone.Region,
		BaseRate:         zone.BaseRate,
		IsDefault:        zone.IsDefault,
		VendorRegion:     zone.VendorRegion,
		SameRegionCapFee: zone.SameRegionCapFee,
		SurchargeRules:   rules,
		CreatedAt:        zone.CreatedAt,
		UpdatedAt:        zone.UpdatedAt,
	}
}
