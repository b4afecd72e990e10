package vendors

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/shipfee-backend/pkg/db"
	"github.com/angelmondragon/shipfee-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shipfee-backend/pkg/errors"
	"github.com/angelmondragon/shipfee-backend/pkg/logger"
)

type regionHealer interface {
	HealVendorRegions(ctx context.Context, vendorID uuid.UUID) (int64, error)
}

// Service reads and updates vendor shipping preferences.
type Service interface {
	GetPreferences(ctx context.Context, vendorID uuid.UUID) (*PreferencesDTO, error)
	UpdatePreferences(ctx context.Context, vendorID uuid.UUID, input UpdatePreferencesInput) (*PreferencesDTO, error)
}

type service struct {
	repo   Repository
	healer regionHealer
	logg   *logger.Logger
}

func NewService(repo Repository, healer regionHealer, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vendor repository required")
	}
	if healer == nil {
		return nil, fmt.Errorf("zone region healer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, healer: healer, logg: logg}, nil
}

func (s *service) GetPreferences(ctx context.Context, vendorID uuid.UUID) (*PreferencesDTO, error) {
	vendor, err := s.load(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	return FromModel(vendor), nil
}

// UpdatePreferences stores the new settings and, when the home region moved,
// re-stamps the vendor's zones with it.
func (s *service) UpdatePreferences(ctx context.Context, vendorID uuid.UUID, input UpdatePreferencesInput) (*PreferencesDTO, error) {
	if problems := input.validate(); len(problems) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid shipping preferences").WithDetails(problems)
	}

	current, err := s.load(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	region := input.normalizedRegion()
	prefs := models.VendorShippingPreferences{
		DefaultBaseRate:        input.DefaultBaseRate,
		DefaultOutOfRegionRate: input.DefaultOutOfRegionRate,
		RegionalRatesEnabled:   input.RegionalRatesEnabled,
	}
	if err := s.repo.UpdateShipping(ctx, vendorID, region, prefs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vendor shipping preferences")
	}

	updated := *current
	updated.BaseRegion = region
	updated.ShippingPreferences = prefs
	dto := FromModel(&updated)

	if updated.HomeRegion() != "" && updated.HomeRegion() != current.HomeRegion() {
		healed, err := s.healer.HealVendorRegions(ctx, vendorID)
		if err != nil {
			// the cron heal job will retry; the preference change itself succeeded.
			s.logg.Error(s.logg.WithVendorID(ctx, vendorID.String()), "zone region heal after preference update failed", err)
		}
		dto.ZonesHealed = healed
	}
	return dto, nil
}

func (s *service) load(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error) {
	vendor, err := s.repo.FindByID(ctx, vendorID)
	if err != nil {
		if db.IsRecordNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}
	return vendor, nil
}
