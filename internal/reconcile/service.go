package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/shipfee-backend/internal/orders"
	"github.com/angelmondragon/shipfee-backend/pkg/db"
	"github.com/angelmondragon/shipfee-backend/pkg/db/models"
	"github.com/angelmondragon/shipfee-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shipfee-backend/pkg/errors"
	"github.com/angelmondragon/shipfee-backend/pkg/logger"
	"github.com/angelmondragon/shipfee-backend/pkg/metrics"
	"github.com/angelmondragon/shipfee-backend/pkg/outbox"
	"github.com/angelmondragon/shipfee-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/shipfee-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type calculator interface {
	Calculate(ctx context.Context, items []types.CartItem, addr *types.ShippingAddress) (*types.ShippingQuote, error)
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service diagnoses and repairs stored order shipping fees.
type Service interface {
	Diagnose(ctx context.Context, orderID uuid.UUID) (*DiagnosticReport, error)
	Fix(ctx context.Context, orderID uuid.UUID) (*FixResult, error)
}

type service struct {
	orders    orders.Repository
	calc      calculator
	tx        txRunner
	outbox    outboxEmitter
	tolerance decimal.Decimal
	metrics   *metrics.ShippingMetrics
	logg      *logger.Logger
	now       func() time.Time
}

func NewService(
	ordersRepo orders.Repository,
	calc calculator,
	tx txRunner,
	emitter outboxEmitter,
	tolerance decimal.Decimal,
	m *metrics.ShippingMetrics,
	logg *logger.Logger,
) (Service, error) {
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if calc == nil {
		return nil, fmt.Errorf("shipping calculator required")
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
	if tolerance.IsNegative() {
		return nil, fmt.Errorf("tolerance must not be negative")
	}
	return &service{
		orders:    ordersRepo,
		calc:      calc,
		tx:        tx,
		outbox:    emitter,
		tolerance: tolerance,
		metrics:   m,
		logg:      logg,
		now:       time.Now,
	}, nil
}

func (s *service) Diagnose(ctx context.Context, orderID uuid.UUID) (*DiagnosticReport, error) {
	_, _, report, err := s.inspect(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if report.HasDiscrepancy {
		s.metrics.IncReconcile(metrics.ReconcileActionDetected)
	}
	return report, nil
}

// Fix rewrites the order's shipping fields with a fresh calculation when
// Diagnose finds a discrepancy. It is a no-op on a consistent order, refuses
// degraded recalculations, and fails with a conflict when the order changed
// since it was read.
func (s *service) Fix(ctx context.Context, orderID uuid.UUID) (*FixResult, error) {
	order, quote, report, err := s.inspect(ctx, orderID)
	if err != nil {
		return nil, err
	}

	result := &FixResult{
		OrderID:             order.ID,
		PreviousShippingFee: order.ShippingFee,
		NewShippingFee:      order.ShippingFee,
		NewTotalAmount:      order.TotalAmount,
		Version:             order.Version,
		Report:              report,
	}
	if !report.HasDiscrepancy {
		s.metrics.IncReconcile(metrics.ReconcileActionSkipped)
		return result, nil
	}
	s.metrics.IncReconcile(metrics.ReconcileActionDetected)
	if report.Degraded {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "recalculation is degraded; refusing to overwrite stored shipping fees").
			WithDetails(map[string]any{"order_id": order.ID.String()})
	}

	now := s.now().UTC()
	details := types.ShippingDetailsFromQuote(quote)
	details.Recalculated = true
	details.RecalculatedAt = &now
	metadata := order.Metadata
	metadata.ShippingDetails = details
	newTotal := order.Subtotal.Add(quote.TotalShippingFee)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.orders.WithTx(tx).UpdateShippingFees(ctx, orders.ShippingFeeUpdate{
			OrderID:           order.ID,
			ExpectedVersion:   order.Version,
			ShippingFee:       quote.TotalShippingFee,
			AdminShippingFees: quote.AdminShippingFees,
			Metadata:          metadata,
			TotalAmount:       newTotal,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order shipping fees")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "order was modified concurrently; retry the fix")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventShippingFeeCorrected,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: payloads.ShippingFeeCorrectedEvent{
				OrderID:             order.ID,
				PreviousShippingFee: order.ShippingFee,
				NewShippingFee:      quote.TotalShippingFee,
				NewTotalAmount:      newTotal,
				Version:             order.Version + 1,
				VendorChanges:       vendorChanges(order.AdminShippingFees, quote.AdminShippingFees, s.tolerance),
				CorrectedAt:         now,
			},
		})
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			s.metrics.IncReconcile(metrics.ReconcileActionConflict)
		}
		return nil, err
	}

	s.metrics.IncReconcile(metrics.ReconcileActionFixed)
	s.logg.Info(s.logg.WithFields(s.logg.WithOrderID(ctx, order.ID.String()), map[string]any{
		"previous_shipping_fee": order.ShippingFee.String(),
		"new_shipping_fee":      quote.TotalShippingFee.String(),
		"version":               order.Version + 1,
	}), "order shipping fees corrected")

	result.Changed = true
	result.NewShippingFee = quote.TotalShippingFee
	result.NewTotalAmount = newTotal
	result.Version = order.Version + 1
	return result, nil
}

func (s *service) inspect(ctx context.Context, orderID uuid.UUID) (*models.Order, *types.ShippingQuote, *DiagnosticReport, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if db.IsRecordNotFound(err) {
			return nil, nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	quote, err := s.calc.Calculate(ctx, order.CartItems, &order.AddressInfo)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			return nil, nil, nil, pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "stored order cannot be recalculated").
				WithDetails(pkgerrors.As(err).Details())
		}
		return nil, nil, nil, err
	}

	return order, quote, compare(order, quote, s.tolerance, s.now().UTC()), nil
}

func compare(order *models.Order, quote *types.ShippingQuote, tolerance decimal.Decimal, now time.Time) *DiagnosticReport {
	report := &DiagnosticReport{
		OrderID:               order.ID,
		Version:               order.Version,
		StoredShippingFee:     order.ShippingFee,
		StoredBreakdownTotal:  order.AdminShippingFees.Total(),
		RecomputedShippingFee: quote.TotalShippingFee,
		Difference:            quote.TotalShippingFee.Sub(order.ShippingFee),
		RecomputedBreakdown:   quote.AdminShippingFees,
		Degraded:              quote.Details.IsError,
		Issues:                []Issue{},
		CheckedAt:             now,
	}

	if exceeds(order.ShippingFee, quote.TotalShippingFee, tolerance) {
		report.addIssue(Issue{
			Type:       IssueShippingFeeMismatch,
			Stored:     order.ShippingFee,
			Recomputed: quote.TotalShippingFee,
			Message:    fmt.Sprintf("stored shipping fee %s differs from recalculated %s", order.ShippingFee.StringFixed(2), quote.TotalShippingFee.StringFixed(2)),
		})
	}
	if exceeds(order.ShippingFee, report.StoredBreakdownTotal, tolerance) {
		report.addIssue(Issue{
			Type:       IssueBreakdownSumMismatch,
			Stored:     order.ShippingFee,
			Recomputed: report.StoredBreakdownTotal,
			Message:    fmt.Sprintf("stored shipping fee %s differs from its vendor breakdown sum %s", order.ShippingFee.StringFixed(2), report.StoredBreakdownTotal.StringFixed(2)),
		})
	}

	if details := order.Metadata.ShippingDetails; details == nil {
		report.addIssue(Issue{
			Type:       IssueMetadataMismatch,
			Stored:     decimal.Zero,
			Recomputed: order.ShippingFee,
			Message:    "order metadata has no shipping details",
		})
	} else {
		metaFee := details.TotalShippingFee
		report.MetadataShippingFee = &metaFee
		if exceeds(metaFee, order.ShippingFee, tolerance) {
			report.addIssue(Issue{
				Type:       IssueMetadataMismatch,
				Stored:     metaFee,
				Recomputed: order.ShippingFee,
				Message:    fmt.Sprintf("metadata shipping total %s differs from stored shipping fee %s", metaFee.StringFixed(2), order.ShippingFee.StringFixed(2)),
			})
		}
	}

	for _, key := range unionKeys(order.AdminShippingFees, quote.AdminShippingFees) {
		stored := order.AdminShippingFees[key].Fee
		fresh := quote.AdminShippingFees[key].Fee
		if !exceeds(stored, fresh, tolerance) {
			continue
		}
		vendor := key
		report.addIssue(Issue{
			Type:       IssueVendorFeeMismatch,
			Vendor:     &vendor,
			Stored:     stored,
			Recomputed: fresh,
			Message:    fmt.Sprintf("vendor %s stored fee %s differs from recalculated %s", key, stored.StringFixed(2), fresh.StringFixed(2)),
		})
	}

	if report.Degraded {
		report.Issues = append(report.Issues, Issue{
			Type:       IssueRecalculationDegraded,
			Severity:   SeverityWarning,
			Stored:     order.ShippingFee,
			Recomputed: quote.TotalShippingFee,
			Message:    "recalculation fell back to degraded data for at least one vendor",
		})
	}

	switch {
	case report.Degraded:
		report.Recommendation = recommendDegrade
	case report.HasDiscrepancy:
		report.Recommendation = recommendFix
	default:
		report.Recommendation = recommendNone
	}
	return report
}

func (r *DiagnosticReport) addIssue(issue Issue) {
	issue.Severity = SeverityError
	r.Issues = append(r.Issues, issue)
	r.HasDiscrepancy = true
}

func exceeds(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().GreaterThan(tolerance)
}

func unionKeys(a, b types.VendorFeeBreakdown) []types.VendorKey {
	merged := make(types.VendorFeeBreakdown, len(a)+len(b))
	for key, entry := range a {
		merged[key] = entry
	}
	for key, entry := range b {
		merged[key] = entry
	}
	return merged.Keys()
}

func vendorChanges(before, after types.VendorFeeBreakdown, tolerance decimal.Decimal) []payloads.VendorFeeChange {
	var changes []payloads.VendorFeeChange
	for _, key := range unionKeys(before, after) {
		prev, next := before[key].Fee, after[key].Fee
		if !exceeds(prev, next, tolerance) {
			continue
		}
		changes = append(changes, payloads.VendorFeeChange{Vendor: key.String(), PreviousFee: prev, NewFee: next})
	}
	return changes
}
