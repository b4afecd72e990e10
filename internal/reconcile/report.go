package reconcile

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shipfee-backend/pkg/types"
)

// IssueType classifies a reconciliation finding.
type IssueType string

const (
	IssueShippingFeeMismatch   IssueType = "shipping_fee_mismatch"
	IssueBreakdownSumMismatch  IssueType = "breakdown_sum_mismatch"
	IssueMetadataMismatch      IssueType = "metadata_mismatch"
	IssueVendorFeeMismatch     IssueType = "vendor_fee_mismatch"
	IssueRecalculationDegraded IssueType = "recalculation_degraded"
)

// Severity separates discrepancies from advisory warnings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

const (
	recommendNone    = "Stored shipping fees match the recalculation; no action required."
	recommendFix     = "Run the fix operation to overwrite stored shipping fees with the recalculated values."
	recommendDegrade = "Recalculation used degraded zone or vendor data; retry once lookups are healthy before fixing."
)

type Issue struct {
	Type       IssueType        `json:"type"`
	Severity   Severity         `json:"severity"`
	Vendor     *types.VendorKey `json:"vendor,omitempty"`
	Stored     decimal.Decimal  `json:"stored"`
	Recomputed decimal.Decimal  `json:"recomputed"`
	Message    string           `json:"message"`
}

// DiagnosticReport compares an order's stored shipping fields with a fresh
// calculation.
type DiagnosticReport struct {
	OrderID               uuid.UUID                `json:"order_id"`
	Version               int                      `json:"version"`
	StoredShippingFee     decimal.Decimal          `json:"stored_shipping_fee"`
	StoredBreakdownTotal  decimal.Decimal          `json:"stored_breakdown_total"`
	MetadataShippingFee   *decimal.Decimal         `json:"metadata_shipping_fee,omitempty"`
	RecomputedShippingFee decimal.Decimal          `json:"recomputed_shipping_fee"`
	Difference            decimal.Decimal          `json:"difference"`
	RecomputedBreakdown   types.VendorFeeBreakdown `json:"recomputed_breakdown"`
	HasDiscrepancy        bool                     `json:"has_discrepancy"`
	Degraded              bool                     `json:"degraded"`
	Issues                []Issue                  `json:"issues"`
	Recommendation        string                   `json:"recommendation"`
	CheckedAt             time.Time                `json:"checked_at"`
}

// FixResult describes the outcome of a fix request.
type FixResult struct {
	OrderID             uuid.UUID         `json:"order_id"`
	Changed             bool              `json:"changed"`
	PreviousShippingFee decimal.Decimal   `json:"previous_shipping_fee"`
	NewShippingFee      decimal.Decimal   `json:"new_shipping_fee"`
	NewTotalAmount      decimal.Decimal   `json:"new_total_amount"`
	Version             int               `json:"version"`
	Report              *DiagnosticReport `json:"report"`
}
