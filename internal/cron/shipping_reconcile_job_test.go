package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/angelmondragon/shipfee-backend/internal/orders"
	"github.com/angelmondragon/shipfee-backend/internal/products"
	"github.com/angelmondragon/shipfee-backend/internal/reconcile"
	"github.com/angelmondragon/shipfee-backend/internal/shipping"
	"github.com/angelmondragon/shipfee-backend/internal/vendors"
	"github.com/angelmondragon/shipfee-backend/internal/zones"
	"github.com/angelmondragon/shipfee-backend/pkg/config"
	"github.com/angelmondragon/shipfee-backend/pkg/db"
	"github.com/angelmondragon/shipfee-backend/pkg/db/dbtest"
	"github.com/angelmondragon/shipfee-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shipfee-backend/pkg/errors"
	"github.com/angelmondragon/shipfee-backend/pkg/logger"
	"github.com/angelmondragon/shipfee-backend/pkg/outbox"
	"github.com/angelmondragon/shipfee-backend/pkg/pagination"
	"github.com/angelmondragon/shipfee-backend/pkg/types"
)

// pagedOrders serves ids in fixed pages, ignoring the query filters.
type pagedOrders struct {
	pages   [][]uuid.UUID
	queries []orders.ReconcileQuery
}

func (p *pagedOrders) ListForReconciliation(_ context.Context, q orders.ReconcileQuery) ([]models.Order, *pagination.Cursor, error) {
	idx := len(p.queries)
	p.queries = append(p.queries, q)
	rows := make([]models.Order, 0, len(p.pages[idx]))
	for _, id := range p.pages[idx] {
		rows = append(rows, models.Order{ID: id})
	}
	if idx == len(p.pages)-1 {
		return rows, nil, nil
	}
	last := rows[len(rows)-1]
	return rows, &pagination.Cursor{CreatedAt: time.Now(), ID: last.ID}, nil
}

type scriptedReconciler struct {
	diagnosed []uuid.UUID
	fixed     []uuid.UUID
	fixErrs   map[uuid.UUID]error
	drifted   map[uuid.UUID]bool
}

func (s *scriptedReconciler) Diagnose(_ context.Context, id uuid.UUID) (*reconcile.DiagnosticReport, error) {
	s.diagnosed = append(s.diagnosed, id)
	return &reconcile.DiagnosticReport{OrderID: id, HasDiscrepancy: s.drifted[id]}, nil
}

func (s *scriptedReconciler) Fix(_ context.Context, id uuid.UUID) (*reconcile.FixResult, error) {
	s.fixed = append(s.fixed, id)
	if err := s.fixErrs[id]; err != nil {
		return nil, err
	}
	drifted := s.drifted[id]
	return &reconcile.FixResult{OrderID: id, Changed: drifted, Report: &reconcile.DiagnosticReport{HasDiscrepancy: drifted}}, nil
}

func TestShippingReconcileJobDiagnosesEveryPage(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	lister := &pagedOrders{pages: [][]uuid.UUID{{a, b}, {c}}}
	reconciler := &scriptedReconciler{drifted: map[uuid.UUID]bool{b: true}}
	job, err := NewShippingReconcileJob(ShippingReconcileJobParams{
		Logger:     logger.Nop(),
		Orders:     lister,
		Reconciler: reconciler,
		Lookback:   time.Hour,
		BatchSize:  2,
	})
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []uuid.UUID{a, b, c}, reconciler.diagnosed)
	assert.Empty(t, reconciler.fixed, "diagnose-only mode never fixes")

	require.Len(t, lister.queries, 2)
	assert.Nil(t, lister.queries[0].Cursor)
	require.NotNil(t, lister.queries[1].Cursor)
	assert.Equal(t, b, lister.queries[1].Cursor.ID)
	assert.Equal(t, 2, lister.queries[0].Limit)
	assert.WithinDuration(t, time.Now().Add(-time.Hour), lister.queries[0].Since, time.Minute)
}

func TestShippingReconcileJobAutoFixToleratesConflicts(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	reconciler := &scriptedReconciler{
		drifted: map[uuid.UUID]bool{a: true},
		fixErrs: map[uuid.UUID]error{
			b: pkgerrors.New(pkgerrors.CodeConflict, "order was modified concurrently"),
			c: errors.New("db down"),
		},
	}
	job, err := NewShippingReconcileJob(ShippingReconcileJobParams{
		Logger:     logger.Nop(),
		Orders:     &pagedOrders{pages: [][]uuid.UUID{{a, b, c}}},
		Reconciler: reconciler,
		AutoFix:    true,
	})
	require.NoError(t, err)

	err = job.Run(context.Background())
	require.Error(t, err)
	errs := multierr.Errors(err)
	require.Len(t, errs, 1, "conflicts are skipped, other failures reported")
	assert.Contains(t, errs[0].Error(), c.String())
	assert.Equal(t, []uuid.UUID{a, b, c}, reconciler.fixed)
}

func TestShippingReconcileJobFixesDriftedOrders(t *testing.T) {
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

	orderRepo := orders.NewRepository(conn)
	reconciler, err := reconcile.NewService(orderRepo, calc, db.Wrap(conn), outbox.NewService(outbox.NewRepository(conn), nil), cfg.Tolerance(), nil, logger.Nop())
	require.NoError(t, err)

	var ids []uuid.UUID
	for _, fee := range []string{"25", "40", "10"} {
		amount := decimal.RequireFromString(fee)
		order := &models.Order{
			CartItems:         types.CartItems{{ProductID: uuid.New(), VendorID: &vendor.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
			AddressInfo:       types.ShippingAddress{City: "Accra", Region: "Greater Accra"},
			Subtotal:          decimal.NewFromInt(10),
			ShippingFee:       amount,
			AdminShippingFees: types.VendorFeeBreakdown{types.VendorKeyFor(vendor.ID): {Fee: amount, Zone: "Accra Metro"}},
			TotalAmount:       decimal.NewFromInt(10).Add(amount),
		}
		order.Metadata.ShippingDetails = &types.ShippingDetails{TotalShippingFee: amount, VendorBreakdown: order.AdminShippingFees}
		require.NoError(t, orderRepo.Create(ctx, order))
		ids = append(ids, order.ID)
	}

	job, err := NewShippingReconcileJob(ShippingReconcileJobParams{
		Logger:     logger.Nop(),
		Orders:     orderRepo,
		Reconciler: reconciler,
		BatchSize:  2,
		AutoFix:    true,
	})
	require.NoError(t, err)
	require.NoError(t, job.Run(ctx))

	for i, id := range ids {
		stored, err := orderRepo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(40).Equal(stored.ShippingFee), "order %d fee %s", i, stored.ShippingFee)
		assert.True(t, decimal.NewFromInt(50).Equal(stored.TotalAmount))
	}
	untouched, err := orderRepo.FindByID(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, 1, untouched.Version)
}
