package zones

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/shipfee-backend/pkg/db/models"
	"github.com/angelmondragon/shipfee-backend/pkg/types"
)

type zoneLister interface {
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.ShippingZone, error)
	ListGlobal(ctx context.Context) ([]models.ShippingZone, error)
}

// Finder loads zones and resolves a destination against them. It never
// writes.
type Finder struct {
	zones zoneLister
}

func NewFinder(zones zoneLister) (*Finder, error) {
	if zones == nil {
		return nil, fmt.Errorf("zone repository required")
	}
	return &Finder{zones: zones}, nil
}

// FindShippingZone resolves the zone for a vendor and destination. Global
// zones are only loaded when none of the vendor's own zones match. The
// unassigned vendor key skips straight to the global tiers.
func (f *Finder) FindShippingZone(ctx context.Context, city, region string, vendor types.VendorKey) (Resolution, error) {
	dest := NewDestination(city, region)

	if vendorID, ok := vendor.VendorID(); ok {
		vendorZones, err := f.zones.ListByVendor(ctx, vendorID)
		if err != nil {
			return Resolution{}, fmt.Errorf("list vendor zones: %w", err)
		}
		if res, ok := MatchVendor(dest, vendorZones); ok {
			return res, nil
		}
	}

	globalZones, err := f.zones.ListGlobal(ctx)
	if err != nil {
		return Resolution{}, fmt.Errorf("list global zones: %w", err)
	}
	return MatchGlobal(dest, globalZones), nil
}
