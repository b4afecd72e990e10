package reconcile

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/shipfee-backend/internal/orders"
	"github.com/angelmondragon/shipfee-backend/internal/products"
	"github.com/angelmondragon/shipfee-backend/internal/shipping"
	"github.com/angelmondragon/shipfee-backend/internal/vendors"
	"github.com/angelmondragon/shipfee-backend/internal/zones"
	"github.com/angelmondragon/shipfee-backend/pkg/config"
	"github.com/angelmondragon/shipfee-backend/pkg/db"
	"github.com/angelmondragon/shipfee-backend/pkg/db/dbtest"
	"github.com/angelmondragon/shipfee-backend/pkg/db/models"
	"github.com/angelmondragon/shipfee-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shipfee-backend/pkg/errors"
	"github.com/angelmondragon/shipfee-backend/pkg/logger"
	"github.com/angelmondragon/shipfee-backend/pkg/outbox"
	"github.com/angelmondragon/shipfee-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/shipfee-backend/pkg/types"
)

var tolerance = decimal.RequireFromString("0.01")

type harness struct {
	conn     *gorm.DB
	orders   orders.Repository
	calc     *shipping.Calculator
	emitter  *outbox.Service
	vendorID uuid.UUID
}

func newHarness(t *testing.T) harness {
	t.Helper()
	ctx := context.Background()
	conn := dbtest.Open(t)

	vendorRepo := vendors.NewRepository(conn)
	vendor := &models.Vendor{Name: "Acme"}
	require.NoError(t, vendorRepo.Create(ctx, vendor))

	zoneRepo := zones.NewRepository(conn)
	require.NoError(t, zoneRepo.Create(ctx, &models.ShippingZone{
		VendorID: &vendor.ID,
		Name:     "Accra Metro",
		Region:   "Greater Accra",
		BaseRate: decimal.NewFromInt(40),
	}))

	finder, err := zones.NewFinder(zoneRepo)
	require.NoError(t, err)
	cfg := config.ShippingConfig{DefaultItemWeightKg: "0.5", ReconcileTolerance: "0.01", SameRegionMinDays: 1, SameRegionMaxDays: 2, OutOfRegionMinDays: 3, OutOfRegionMaxDays: 5}
	calc, err := shipping.NewCalculator(finder, vendorRepo, products.NewRepository(conn), cfg, nil, logger.Nop())
	require.NoError(t, err)

	return harness{
		conn:     conn,
		orders:   orders.NewRepository(conn),
		calc:     calc,
		emitter:  outbox.NewService(outbox.NewRepository(conn), nil),
		vendorID: vendor.ID,
	}
}

func (h harness) service(t *testing.T, ordersRepo orders.Repository, calc calculator) Service {
	t.Helper()
	svc, err := NewService(ordersRepo, calc, db.Wrap(h.conn), h.emitter, tolerance, nil, logger.Nop())
	require.NoError(t, err)
	return svc
}

// seedOrder stores an order whose shipping fields all claim fee.
func (h harness) seedOrder(t *testing.T, fee string, withMetadata bool) *models.Order {
	t.Helper()
	amount := decimal.RequireFromString(fee)
	subtotal := decimal.NewFromInt(20)
	breakdown := types.VendorFeeBreakdown{types.VendorKeyFor(h.vendorID): {Fee: amount, Zone: "Accra Metro"}}
	order := &models.Order{
		CartItems:         types.CartItems{{ProductID: uuid.New(), VendorID: &h.vendorID, Quantity: 2, UnitPrice: decimal.NewFromInt(10)}},
		AddressInfo:       types.ShippingAddress{City: "Accra", Region: "Greater Accra"},
		Subtotal:          subtotal,
		ShippingFee:       amount,
		AdminShippingFees: breakdown,
		TotalAmount:       subtotal.Add(amount),
	}
	if withMetadata {
		order.Metadata.ShippingDetails = &types.ShippingDetails{TotalShippingFee: amount, VendorBreakdown: breakdown}
	}
	require.NoError(t, h.orders.Create(context.Background(), order))
	return order
}

func issueTypes(report *DiagnosticReport) []IssueType {
	out := make([]IssueType, 0, len(report.Issues))
	for _, issue := range report.Issues {
		out = append(out, issue.Type)
	}
	return out
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(nil, nil, nil, nil, tolerance, nil, logger.Nop())
	require.Error(t, err)
}

func TestDiagnoseConsistentOrder(t *testing.T) {
	h := newHarness(t)
	order := h.seedOrder(t, "40", true)

	report, err := h.service(t, h.orders, h.calc).Diagnose(context.Background(), order.ID)
	require.NoError(t, err)
	assert.False(t, report.HasDiscrepancy)
	assert.Empty(t, report.Issues)
	assert.Equal(t, recommendNone, report.Recommendation)
}

func TestDiagnoseWithinTolerance(t *testing.T) {
	h := newHarness(t)
	order := h.seedOrder(t, "40.01", true)

	report, err := h.service(t, h.orders, h.calc).Diagnose(context.Background(), order.ID)
	require.NoError(t, err)
	assert.False(t, report.HasDiscrepancy)
}

func TestDiagnoseReportsDrift(t *testing.T) {
	h := newHarness(t)
	order := h.seedOrder(t, "25", false)

	report, err := h.service(t, h.orders, h.calc).Diagnose(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, report.HasDiscrepancy)
	assert.True(t, decimal.NewFromInt(40).Equal(report.RecomputedShippingFee))
	assert.True(t, decimal.NewFromInt(15).Equal(report.Difference))
	assert.ElementsMatch(t, []IssueType{IssueShippingFeeMismatch, IssueMetadataMismatch, IssueVendorFeeMismatch}, issueTypes(report))
	assert.Equal(t, recommendFix, report.Recommendation)
}

func TestDiagnoseNotFound(t *testing.T) {
	h := newHarness(t)
	_, err := h.service(t, h.orders, h.calc).Diagnose(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestFixRewritesAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	order := h.seedOrder(t, "25", true)
	svc := h.service(t, h.orders, h.calc)

	result, err := svc.Fix(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, 2, result.Version)
	assert.True(t, decimal.NewFromInt(40).Equal(result.NewShippingFee))
	assert.True(t, decimal.NewFromInt(60).Equal(result.NewTotalAmount))

	stored, err := h.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(40).Equal(stored.ShippingFee))
	assert.True(t, decimal.NewFromInt(60).Equal(stored.TotalAmount))
	require.NotNil(t, stored.Metadata.ShippingDetails)
	assert.True(t, stored.Metadata.ShippingDetails.Recalculated)
	assert.NotNil(t, stored.Metadata.ShippingDetails.RecalculatedAt)

	report, err := svc.Diagnose(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, report.HasDiscrepancy, "diagnose after fix: %v", issueTypes(report))

	again, err := svc.Fix(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, again.Changed)
	assert.Equal(t, 2, again.Version)

	var events []models.OutboxEvent
	require.NoError(t, h.conn.Where("event_type = ?", enums.EventShippingFeeCorrected).Find(&events).Error)
	require.Len(t, events, 1)

	var envelope outbox.PayloadEnvelope
	require.NoError(t, json.Unmarshal(events[0].Payload, &envelope))
	var payload payloads.ShippingFeeCorrectedEvent
	require.NoError(t, json.Unmarshal(envelope.Data, &payload))
	assert.Equal(t, order.ID, payload.OrderID)
	require.Len(t, payload.VendorChanges, 1)
	assert.True(t, decimal.NewFromInt(25).Equal(payload.VendorChanges[0].PreviousFee))
}

// staleOrders hands out an order one version behind the stored row, as if
// another writer updated it after the read.
type staleOrders struct {
	orders.Repository
}

func (s staleOrders) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.Repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Version--
	return order, nil
}

func TestFixDetectsConcurrentModification(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	order := h.seedOrder(t, "25", true)

	_, err := h.service(t, staleOrders{h.orders}, h.calc).Fix(ctx, order.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	stored, err := h.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(25).Equal(stored.ShippingFee))
	assert.Equal(t, 1, stored.Version)

	var count int64
	require.NoError(t, h.conn.Model(&models.OutboxEvent{}).Count(&count).Error)
	assert.Zero(t, count)
}

type degradedCalc struct{}

func (degradedCalc) Calculate(context.Context, []types.CartItem, *types.ShippingAddress) (*types.ShippingQuote, error) {
	return &types.ShippingQuote{
		TotalShippingFee:  decimal.Zero,
		AdminShippingFees: types.VendorFeeBreakdown{},
		Details:           types.QuoteDetails{IsError: true},
	}, nil
}

func TestFixRefusesDegradedRecalculation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	order := h.seedOrder(t, "40", true)
	svc := h.service(t, h.orders, degradedCalc{})

	report, err := svc.Diagnose(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, report.Degraded)
	assert.Contains(t, issueTypes(report), IssueRecalculationDegraded)
	assert.Equal(t, recommendDegrade, report.Recommendation)

	_, err = svc.Fix(ctx, order.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestDiagnoseBreakdownSumMismatch(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	order := h.seedOrder(t, "40", true)
	require.NoError(t, h.conn.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("admin_shipping_fees", types.VendorFeeBreakdown{types.VendorKeyFor(h.vendorID): {Fee: decimal.NewFromInt(40)}, types.UnassignedVendor: {Fee: decimal.NewFromInt(5)}}).Error)

	report, err := h.service(t, h.orders, h.calc).Diagnose(ctx, order.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []IssueType{IssueBreakdownSumMismatch, IssueVendorFeeMismatch}, issueTypes(report))
	var vendorIssue Issue
	for _, issue := range report.Issues {
		if issue.Type == IssueVendorFeeMismatch {
			vendorIssue = issue
		}
	}
	require.NotNil(t, vendorIssue.Vendor)
	assert.Equal(t, types.UnassignedVendor, *vendorIssue.Vendor)
}
