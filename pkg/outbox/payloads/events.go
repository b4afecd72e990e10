package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderPlacedEvent announces a new order with its quoted shipping.
type OrderPlacedEvent struct {
	OrderID     uuid.UUID       `json:"order_id"`
	BuyerID     *uuid.UUID      `json:"buyer_id,omitempty"`
	VendorIDs   []uuid.UUID     `json:"vendor_ids"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// VendorFeeChange is one vendor's old and new fee after a correction.
type VendorFeeChange struct {
	Vendor      string          `json:"vendor"`
	PreviousFee decimal.Decimal `json:"previous_fee"`
	NewFee      decimal.Decimal `json:"new_fee"`
}

// ShippingFeeCorrectedEvent is emitted when reconciliation rewrites an order's
// stored shipping fees.
type ShippingFeeCorrectedEvent struct {
	OrderID             uuid.UUID         `json:"order_id"`
	PreviousShippingFee decimal.Decimal   `json:"previous_shipping_fee"`
	NewShippingFee      decimal.Decimal   `json:"new_shipping_fee"`
	NewTotalAmount      decimal.Decimal   `json:"new_total_amount"`
	Version             int               `json:"version"`
	VendorChanges       []VendorFeeChange `json:"vendor_changes,omitempty"`
	CorrectedAt         time.Time         `json:"corrected_at"`
}

// ZoneVendorRegionHealedEvent records that a vendor's zones were re-stamped
// with the vendor's current home region.
type ZoneVendorRegionHealedEvent struct {
	VendorID     uuid.UUID `json:"vendor_id"`
	VendorRegion string    `json:"vendor_region"`
	ZonesUpdated int64     `json:"zones_updated"`
}
