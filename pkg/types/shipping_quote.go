package types

import (
	"database/sql/driver"
	"sort"
	"time"

	"github.com/angelmondragon/shipfee-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnknownZoneName labels breakdown entries that were not priced from a
// configured zone.
const UnknownZoneName = "unknown"

// ItemSummary is the per-line snapshot kept inside a vendor breakdown.
type ItemSummary struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	WeightKg  decimal.Decimal `json:"weight_kg"`
}

// AppliedSurcharge records a surcharge rule that fired.
type AppliedSurcharge struct {
	Kind          enums.SurchargeKind `json:"kind"`
	Threshold     decimal.Decimal     `json:"threshold"`
	AdditionalFee decimal.Decimal     `json:"additional_fee"`
}

// VendorFee is one vendor group's entry in the shipping breakdown.
type VendorFee struct {
	Fee            decimal.Decimal     `json:"fee"`
	Zone           string              `json:"zone"`
	ZoneID         *uuid.UUID          `json:"zone_id,omitempty"`
	MatchTier      enums.ZoneMatchTier `json:"match_tier,omitempty"`
	RateSource     enums.RateSource    `json:"rate_source,omitempty"`
	ItemCount      int                 `json:"item_count"`
	CartValue      decimal.Decimal     `json:"cart_value"`
	TotalWeightKg  decimal.Decimal     `json:"total_weight_kg"`
	CustomerRegion string              `json:"customer_region"`
	Items          []ItemSummary       `json:"items"`
	Surcharges     []AppliedSurcharge  `json:"surcharges,omitempty"`
	Degraded       bool                `json:"degraded,omitempty"`
}

// VendorFeeBreakdown maps each vendor group to its fee entry.
type VendorFeeBreakdown map[VendorKey]VendorFee

// Total sums every entry's fee.
func (b VendorFeeBreakdown) Total() decimal.Decimal {
	total := decimal.Zero
	for _, entry := range b {
		total = total.Add(entry.Fee)
	}
	return total
}

// Keys returns the vendor keys in a stable order (assigned vendors by id, the
// unassigned bucket last).
func (b VendorFeeBreakdown) Keys() []VendorKey {
	keys := make([]VendorKey, 0, len(b))
	for key := range b {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].IsAssigned() != keys[j].IsAssigned() {
			return keys[i].IsAssigned()
		}
		return keys[i].String() < keys[j].String()
	})
	return keys
}

func (b VendorFeeBreakdown) Value() (driver.Value, error) {
	if b == nil {
		return "{}", nil
	}
	return jsonValue(map[VendorKey]VendorFee(b))
}

func (b *VendorFeeBreakdown) Scan(value any) error {
	if value == nil {
		*b = nil
		return nil
	}
	decoded := map[VendorKey]VendorFee{}
	if err := scanJSON(value, &decoded); err != nil {
		return err
	}
	*b = decoded
	return nil
}

// DeliveryEstimate is a business-day window.
type DeliveryEstimate struct {
	MinDays int `json:"min_days"`
	MaxDays int `json:"max_days"`
}

type QuoteDetails struct {
	// IsError is set when at least one vendor was priced from degraded data.
	IsError        bool      `json:"is_error"`
	VendorCount    int       `json:"vendor_count"`
	CustomerCity   string    `json:"customer_city"`
	CustomerRegion string    `json:"customer_region"`
	Warnings       []string  `json:"warnings,omitempty"`
	CalculatedAt   time.Time `json:"calculated_at"`
}

// ShippingQuote is the calculator's result for one cart and destination.
type ShippingQuote struct {
	TotalShippingFee  decimal.Decimal    `json:"total_shipping_fee"`
	AdminShippingFees VendorFeeBreakdown `json:"admin_shipping_fees"`
	EstimatedDelivery DeliveryEstimate   `json:"estimated_delivery"`
	Details           QuoteDetails       `json:"details"`
}

// ShippingDetails is the display projection of a quote stored in order
// metadata.
type ShippingDetails struct {
	TotalShippingFee  decimal.Decimal    `json:"total_shipping_fee"`
	VendorBreakdown   VendorFeeBreakdown `json:"vendor_breakdown"`
	CustomerRegion    string             `json:"customer_region"`
	EstimatedDelivery DeliveryEstimate   `json:"estimated_delivery"`
	CalculatedAt      time.Time          `json:"calculated_at"`
	Recalculated      bool               `json:"recalculated,omitempty"`
	RecalculatedAt    *time.Time         `json:"recalculated_at,omitempty"`
}

// ShippingDetailsFromQuote projects a quote into order metadata.
func ShippingDetailsFromQuote(q *ShippingQuote) *ShippingDetails {
	if q == nil {
		return nil
	}
	return &ShippingDetails{
		TotalShippingFee:  q.TotalShippingFee,
		VendorBreakdown:   q.AdminShippingFees,
		CustomerRegion:    q.Details.CustomerRegion,
		EstimatedDelivery: q.EstimatedDelivery,
		CalculatedAt:      q.Details.CalculatedAt,
	}
}

// OrderMetadata is the free-form metadata column on orders.
type OrderMetadata struct {
	Source          string           `json:"source,omitempty"`
	ShippingDetails *ShippingDetails `json:"shipping_details,omitempty"`
}

func (m OrderMetadata) Value() (driver.Value, error) {
	return jsonValue(m)
}

func (m *OrderMetadata) Scan(value any) error {
	if value == nil {
		*m = OrderMetadata{}
		return nil
	}
	return scanJSON(value, m)
}
