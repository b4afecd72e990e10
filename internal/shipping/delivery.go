package shipping

import (
	"github.com/angelmondragon/shipfee-backend/internal/zones"
	"github.com/angelmondragon/shipfee-backend/pkg/config"
	"github.com/angelmondragon/shipfee-backend/pkg/types"
)

// estimateDelivery uses the same-region window only when every vendor ships
// from the destination region.
func estimateDelivery(cfg config.ShippingConfig, homeRegions []string, destRegion string) types.DeliveryEstimate {
	local := len(homeRegions) > 0
	for _, home := range homeRegions {
		if !zones.RegionsMatch(home, destRegion) {
			local = false
			break
		}
	}
	if local {
		return types.DeliveryEstimate{MinDays: cfg.SameRegionMinDays, MaxDays: cfg.SameRegionMaxDays}
	}
	return types.DeliveryEstimate{MinDays: cfg.OutOfRegionMinDays, MaxDays: cfg.OutOfRegionMaxDays}
}
