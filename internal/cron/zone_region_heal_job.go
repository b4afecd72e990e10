package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/shipfee-backend/pkg/logger"
)

const ZoneRegionHealJobName = "zone-region-heal"

type ZoneRegionHealJobParams struct {
	Logger *logger.Logger
	Zones  zoneOwnerLister
	Healer vendorRegionHealer
}

type zoneOwnerLister interface {
	ListVendorIDsWithZones(ctx context.Context) ([]uuid.UUID, error)
}

type vendorRegionHealer interface {
	HealVendorRegions(ctx context.Context, vendorID uuid.UUID) (int64, error)
}

func NewZoneRegionHealJob(params ZoneRegionHealJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Zones == nil {
		return nil, fmt.Errorf("zones repository required")
	}
	if params.Healer == nil {
		return nil, fmt.Errorf("zone healer required")
	}
	return &zoneRegionHealJob{logg: params.Logger, zones: params.Zones, healer: params.Healer}, nil
}

// zoneRegionHealJob re-stamps vendor_region on every vendor's zones so the
// same-region cap keeps tracking home-region edits that bypassed the API.
type zoneRegionHealJob struct {
	logg   *logger.Logger
	zones  zoneOwnerLister
	healer vendorRegionHealer
}

func (j *zoneRegionHealJob) Name() string { return ZoneRegionHealJobName }

func (j *zoneRegionHealJob) Run(ctx context.Context) error {
	vendorIDs, err := j.zones.ListVendorIDsWithZones(ctx)
	if err != nil {
		return fmt.Errorf("list zone owners: %w", err)
	}
	var (
		errs   error
		healed int64
	)
	for _, vendorID := range vendorIDs {
		if ctx.Err() != nil {
			return multierr.Append(errs, ctx.Err())
		}
		n, err := j.healer.HealVendorRegions(ctx, vendorID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("heal vendor %s: %w", vendorID, err))
			continue
		}
		healed += n
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"vendors":      len(vendorIDs),
		"zones_healed": healed,
	}), "zone region heal complete")
	return errs
}
