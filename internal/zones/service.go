package zones

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/shipfee-backend/pkg/db"
	"github.com/angelmondragon/shipfee-backend/pkg/db/models"
	"github.com/angelmondragon/shipfee-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shipfee-backend/pkg/errors"
	"github.com/angelmondragon/shipfee-backend/pkg/logger"
	"github.com/angelmondragon/shipfee-backend/pkg/outbox"
	"github.com/angelmondragon/shipfee-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type vendorLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service manages a vendor's shipping zones.
type Service interface {
	List(ctx context.Context, vendorID uuid.UUID) ([]ZoneDTO, error)
	Get(ctx context.Context, vendorID, zoneID uuid.UUID) (*ZoneDTO, error)
	Create(ctx context.Context, vendorID uuid.UUID, input ZoneInput) (*ZoneDTO, error)
	Update(ctx context.Context, vendorID, zoneID uuid.UUID, input ZoneInput) (*ZoneDTO, error)
	Delete(ctx context.Context, vendorID, zoneID uuid.UUID) error
	HealVendorRegions(ctx context.Context, vendorID uuid.UUID) (int64, error)
}

type service struct {
	repo    Repository
	vendors vendorLoader
	tx      txRunner
	outbox  outboxEmitter
	logg    *logger.Logger
}

func NewService(repo Repository, vendors vendorLoader, tx txRunner, emitter outboxEmitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("zone repository required")
	}
	if vendors == nil {
		return nil, fmt.Errorf("vendor loader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, vendors: vendors, tx: tx, outbox: emitter, logg: logg}, nil
}

func (s *service) List(ctx context.Context, vendorID uuid.UUID) ([]ZoneDTO, error) {
	rows, err := s.repo.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shipping zones")
	}
	out := make([]ZoneDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, vendorID, zoneID uuid.UUID) (*ZoneDTO, error) {
	zone, err := s.owned(ctx, s.repo, vendorID, zoneID)
	if err != nil {
		return nil, err
	}
	return FromModel(zone), nil
}

func (s *service) Create(ctx context.Context, vendorID uuid.UUID, input ZoneInput) (*ZoneDTO, error) {
	if problems := input.validate(); len(problems) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid shipping zone").WithDetails(problems)
	}
	vendor, err := s.loadVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	zone := &models.ShippingZone{VendorID: &vendor.ID, VendorRegion: vendor.HomeRegion()}
	input.apply(zone)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, zone); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shipping zone")
		}
		if zone.IsDefault {
			if err := repo.ClearDefault(ctx, zone.VendorID, zone.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear previous default zone")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"vendor_id": vendorID.String(),
		"zone_id":   zone.ID.String(),
	}), "shipping zone created")
	return FromModel(zone), nil
}

func (s *service) Update(ctx context.Context, vendorID, zoneID uuid.UUID, input ZoneInput) (*ZoneDTO, error) {
	if problems := input.validate(); len(problems) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid shipping zone").WithDetails(problems)
	}

	var updated *models.ShippingZone
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		zone, err := s.owned(ctx, repo, vendorID, zoneID)
		if err != nil {
			return err
		}
		if zone.IsDefault && !input.IsDefault {
			return pkgerrors.New(pkgerrors.CodeConflict, "zone is the vendor default; mark another zone as default first")
		}
		input.apply(zone)
		if err := repo.Update(ctx, zone); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shipping zone")
		}
		if zone.IsDefault {
			if err := repo.ClearDefault(ctx, zone.VendorID, zone.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear previous default zone")
			}
		}
		updated = zone
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, vendorID, zoneID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		zone, err := s.owned(ctx, repo, vendorID, zoneID)
		if err != nil {
			return err
		}
		if zone.IsDefault {
			return pkgerrors.New(pkgerrors.CodeConflict, "cannot delete the default zone; reassign default first")
		}
		if err := repo.Delete(ctx, zone.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete shipping zone")
		}
		return nil
	})
}

// HealVendorRegions copies the vendor's current home region onto every zone
// of that vendor whose stored vendor_region differs. It returns the number of
// zones rewritten.
func (s *service) HealVendorRegions(ctx context.Context, vendorID uuid.UUID) (int64, error) {
	vendor, err := s.loadVendor(ctx, vendorID)
	if err != nil {
		return 0, err
	}
	region := vendor.HomeRegion()
	if region == "" {
		return 0, nil
	}

	var healed int64
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := s.repo.WithTx(tx).UpdateVendorRegion(ctx, vendorID, region)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update zone vendor region")
		}
		healed = n
		if n == 0 {
			return nil
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventZoneVendorRegionHealed,
			AggregateType: enums.AggregateZone,
			AggregateID:   vendorID,
			Data: payloads.ZoneVendorRegionHealedEvent{
				VendorID:     vendorID,
				VendorRegion: region,
				ZonesUpdated: n,
			},
		})
	})
	if err != nil {
		return 0, err
	}
	if healed > 0 {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"vendor_id":     vendorID.String(),
			"vendor_region": region,
			"zones_updated": healed,
		}), "zone vendor region healed")
	}
	return healed, nil
}

func (s *service) owned(ctx context.Context, repo Repository, vendorID, zoneID uuid.UUID) (*models.ShippingZone, error) {
	zone, err := repo.FindByID(ctx, zoneID)
	if err != nil {
		if db.IsRecordNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipping zone not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipping zone")
	}
	if zone.VendorID == nil || *zone.VendorID != vendorID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipping zone not found")
	}
	return zone, nil
}

func (s *service) loadVendor(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error) {
	vendor, err := s.vendors.FindByID(ctx, vendorID)
	if err != nil {
		if db.IsRecordNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}
	return vendor, nil
}
