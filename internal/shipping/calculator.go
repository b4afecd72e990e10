package shipping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shipfee-backend/internal/zones"
	"github.com/angelmondragon/shipfee-backend/pkg/config"
	"github.com/angelmondragon/shipfee-backend/pkg/db"
	"github.com/angelmondragon/shipfee-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shipfee-backend/pkg/errors"
	"github.com/angelmondragon/shipfee-backend/pkg/logger"
	"github.com/angelmondragon/shipfee-backend/pkg/metrics"
	"github.com/angelmondragon/shipfee-backend/pkg/types"
)

const warnWeightsUnavailable = "product weights unavailable; default item weight applied"

type zoneFinder interface {
	FindShippingZone(ctx context.Context, city, region string, vendor types.VendorKey) (zones.Resolution, error)
}

type vendorLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
}

type weightLoader interface {
	FindWeights(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
}

// Calculator prices multi-vendor carts.
type Calculator struct {
	zones   zoneFinder
	vendors vendorLoader
	weights weightLoader
	cfg     config.ShippingConfig
	metrics *metrics.ShippingMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewCalculator(zones zoneFinder, vendors vendorLoader, weights weightLoader, cfg config.ShippingConfig, m *metrics.ShippingMetrics, logg *logger.Logger) (*Calculator, error) {
	if zones == nil {
		return nil, fmt.Errorf("zone finder required")
	}
	if vendors == nil {
		return nil, fmt.Errorf("vendor loader required")
	}
	if weights == nil {
		return nil, fmt.Errorf("product weight loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if _, err := decimal.NewFromString(cfg.DefaultItemWeightKg); err != nil {
		return nil, fmt.Errorf("invalid default item weight: %w", err)
	}
	return &Calculator{
		zones:   zones,
		vendors: vendors,
		weights: weights,
		cfg:     cfg,
		metrics: m,
		logg:    logg,
		now:     time.Now,
	}, nil
}

// Calculate computes per-vendor shipping fees for items delivered to addr.
// Only invalid input and context cancellation are returned as errors; lookup
// failures degrade the affected vendor and set Details.IsError.
func (c *Calculator) Calculate(ctx context.Context, items []types.CartItem, addr *types.ShippingAddress) (*types.ShippingQuote, error) {
	if err := validateInput(items, addr); err != nil {
		c.metrics.IncQuote(metrics.QuoteOutcomeInvalid)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	city := strings.TrimSpace(addr.City)
	region := strings.TrimSpace(addr.Region)
	details := types.QuoteDetails{
		CustomerCity:   city,
		CustomerRegion: region,
		CalculatedAt:   c.now().UTC(),
	}

	weights, err := c.weights.FindWeights(ctx, productIDs(items))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "product weight lookup failed; using default weight")
		details.Warnings = append(details.Warnings, warnWeightsUnavailable)
		weights = nil
	}

	groups := groupByVendor(items, weights, c.cfg.DefaultItemWeight())
	breakdown := make(types.VendorFeeBreakdown, len(groups))
	homeRegions := make([]string, 0, len(groups))
	total := decimal.Zero

	for _, group := range groups {
		priced, err := c.priceGroup(ctx, group, city, region)
		if err != nil {
			return nil, err
		}
		if priced.fee.Degraded {
			details.IsError = true
		}
		breakdown[group.Key] = priced.fee
		homeRegions = append(homeRegions, priced.homeRegion)
		total = total.Add(priced.fee.Fee)
	}

	details.VendorCount = len(groups)
	quote := &types.ShippingQuote{
		TotalShippingFee:  total,
		AdminShippingFees: breakdown,
		EstimatedDelivery: estimateDelivery(c.cfg, homeRegions, region),
		Details:           details,
	}

	if details.IsError {
		c.metrics.IncQuote(metrics.QuoteOutcomeDegraded)
	} else {
		c.metrics.IncQuote(metrics.QuoteOutcomeOK)
	}
	return quote, nil
}

type pricedGroup struct {
	fee        types.VendorFee
	homeRegion string
}

func (c *Calculator) priceGroup(ctx context.Context, group *vendorGroup, city, region string) (pricedGroup, error) {
	logCtx := c.logg.WithField(ctx, "vendor", group.Key.String())
	degraded := false

	res, err := c.zones.FindShippingZone(ctx, city, region, group.Key)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return pricedGroup{}, ctxErr
		}
		c.logg.Error(logCtx, "shipping zone lookup failed; pricing from vendor preferences", err)
		degraded = true
		res = zones.FallbackZone()
	}

	vendor, err := c.loadVendor(ctx, group.Key)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return pricedGroup{}, ctxErr
		}
		c.logg.Error(logCtx, "vendor lookup failed; shipping preferences unavailable", err)
		degraded = true
	}

	fee, source := baseRate(res, vendor, region)
	c.metrics.IncRateSource(source.String())
	if !res.Configured() {
		c.logg.Debug(c.logg.WithFields(logCtx, map[string]any{
			"rate_source": source.String(),
			"base_rate":   fee.String(),
		}), "no shipping zone matched; using fallback rate")
	}

	var applied []types.AppliedSurcharge
	if res.Configured() {
		fee, applied = applySurcharges(fee, res.Zone.SurchargeRules, group.WeightKg, group.Value)
		fee = capSameRegion(fee, res.Zone, region)
	}
	fee = finalizeFee(fee)

	entry := types.VendorFee{
		Fee:            fee,
		Zone:           types.UnknownZoneName,
		MatchTier:      res.Tier,
		RateSource:     source,
		ItemCount:      len(group.Items),
		CartValue:      group.Value,
		TotalWeightKg:  group.WeightKg,
		CustomerRegion: region,
		Items:          group.Items,
		Surcharges:     applied,
		Degraded:       degraded,
	}
	if res.Configured() {
		zoneID := res.Zone.ID
		entry.Zone = res.Zone.Name
		entry.ZoneID = &zoneID
	}
	return pricedGroup{fee: entry, homeRegion: vendor.HomeRegion()}, nil
}

// loadVendor returns nil without error for the unassigned bucket and for
// vendors that no longer exist.
func (c *Calculator) loadVendor(ctx context.Context, key types.VendorKey) (*models.Vendor, error) {
	vendorID, ok := key.VendorID()
	if !ok {
		return nil, nil
	}
	vendor, err := c.vendors.FindByID(ctx, vendorID)
	if err != nil {
		if db.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return vendor, nil
}

func validateInput(items []types.CartItem, addr *types.ShippingAddress) error {
	problems := map[string]string{}
	if len(items) == 0 {
		problems["cart_items"] = "at least one item is required"
	}
	for i, item := range items {
		if item.Quantity < 1 {
			problems[fmt.Sprintf("cart_items[%d].quantity", i)] = "must be at least 1"
		}
		if item.UnitPrice.IsNegative() {
			problems[fmt.Sprintf("cart_items[%d].unit_price", i)] = "must be zero or greater"
		}
	}
	if addr == nil || (strings.TrimSpace(addr.City) == "" && strings.TrimSpace(addr.Region) == "") {
		problems["address"] = "city or region is required"
	}
	if len(problems) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid shipping calculation input").WithDetails(problems)
	}
	return nil
}
