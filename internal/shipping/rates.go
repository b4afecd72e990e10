package shipping

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shipfee-backend/internal/zones"
	"github.com/angelmondragon/shipfee-backend/pkg/db/models"
	"github.com/angelmondragon/shipfee-backend/pkg/enums"
	"github.com/angelmondragon/shipfee-backend/pkg/types"
)

// baseRate picks the starting fee for a vendor group. A configured zone wins;
// otherwise the vendor's preferences apply, and with none of those the rate
// is zero.
func baseRate(res zones.Resolution, vendor *models.Vendor, destRegion string) (decimal.Decimal, enums.RateSource) {
	if res.Configured() {
		return res.Zone.BaseRate, enums.RateSourceZone
	}
	if vendor == nil {
		return decimal.Zero, enums.RateSourceNone
	}

	prefs := vendor.ShippingPreferences
	home := vendor.HomeRegion()
	if prefs.RegionalRatesEnabled && home != "" && prefs.DefaultOutOfRegionRate.Valid && !zones.RegionsMatch(home, destRegion) {
		return prefs.DefaultOutOfRegionRate.Decimal, enums.RateSourceVendorOutOfRegion
	}
	if prefs.DefaultBaseRate.Valid {
		return prefs.DefaultBaseRate.Decimal, enums.RateSourceVendorDefault
	}
	return decimal.Zero, enums.RateSourceNone
}

// applySurcharges adds every rule that fires, in input order. The running
// fee may go negative; the caller clamps.
func applySurcharges(fee decimal.Decimal, rules types.SurchargeRules, weightKg, value decimal.Decimal) (decimal.Decimal, []types.AppliedSurcharge) {
	var applied []types.AppliedSurcharge
	for _, rule := range rules {
		if !rule.Applies(weightKg, value) {
			continue
		}
		fee = fee.Add(rule.AdditionalFee)
		applied = append(applied, types.AppliedSurcharge{
			Kind:          rule.Kind,
			Threshold:     rule.Threshold,
			AdditionalFee: rule.AdditionalFee,
		})
	}
	return fee, applied
}

// capSameRegion limits the fee when the destination lies in the zone
// owner's region and the zone carries a cap.
func capSameRegion(fee decimal.Decimal, zone models.ShippingZone, destRegion string) decimal.Decimal {
	if !zone.SameRegionCapFee.Valid || !zones.RegionsMatch(zone.VendorRegion, destRegion) {
		return fee
	}
	return decimal.Min(fee, zone.SameRegionCapFee.Decimal)
}

// finalizeFee clamps to zero and rounds to cents.
func finalizeFee(fee decimal.Decimal) decimal.Decimal {
	if fee.IsNegative() {
		return decimal.Zero
	}
	return fee.Round(2)
}
