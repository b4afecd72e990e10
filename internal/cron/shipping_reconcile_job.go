package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/shipfee-backend/internal/orders"
	"github.com/angelmondragon/shipfee-backend/internal/reconcile"
	"github.com/angelmondragon/shipfee-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shipfee-backend/pkg/errors"
	"github.com/angelmondragon/shipfee-backend/pkg/logger"
	"github.com/angelmondragon/shipfee-backend/pkg/pagination"
)

const (
	ShippingReconcileJobName = "shipping-reconcile"
	defaultReconcileLookback = 7 * 24 * time.Hour
)

type ShippingReconcileJobParams struct {
	Logger     *logger.Logger
	Orders     reconcileOrderLister
	Reconciler orderReconciler
	Lookback   time.Duration
	BatchSize  int
	AutoFix    bool
}

type reconcileOrderLister interface {
	ListForReconciliation(ctx context.Context, query orders.ReconcileQuery) ([]models.Order, *pagination.Cursor, error)
}

type orderReconciler interface {
	Diagnose(ctx context.Context, orderID uuid.UUID) (*reconcile.DiagnosticReport, error)
	Fix(ctx context.Context, orderID uuid.UUID) (*reconcile.FixResult, error)
}

func NewShippingReconcileJob(params ShippingReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Reconciler == nil {
		return nil, fmt.Errorf("reconcile service required")
	}
	lookback := params.Lookback
	if lookback <= 0 {
		lookback = defaultReconcileLookback
	}
	return &shippingReconcileJob{
		logg:       params.Logger,
		orders:     params.Orders,
		reconciler: params.Reconciler,
		lookback:   lookback,
		batchSize:  pagination.NormalizeLimit(params.BatchSize),
		autoFix:    params.AutoFix,
		now:        time.Now,
	}, nil
}

type shippingReconcileJob struct {
	logg       *logger.Logger
	orders     reconcileOrderLister
	reconciler orderReconciler
	lookback   time.Duration
	batchSize  int
	autoFix    bool
	now        func() time.Time
}

type reconcileTally struct {
	checked       int
	discrepancies int
	fixed         int
	skipped       int
}

func (j *shippingReconcileJob) Name() string { return ShippingReconcileJobName }

// Run walks orders created inside the lookback window page by page. A single
// order failing does not stop the walk; failures are combined into the
// returned error.
func (j *shippingReconcileJob) Run(ctx context.Context) error {
	query := orders.ReconcileQuery{
		Since: j.now().UTC().Add(-j.lookback),
		Limit: j.batchSize,
	}
	var (
		tally reconcileTally
		errs  error
	)
	for {
		rows, next, err := j.orders.ListForReconciliation(ctx, query)
		if err != nil {
			return multierr.Append(errs, fmt.Errorf("list orders: %w", err))
		}
		for i := range rows {
			if ctx.Err() != nil {
				return multierr.Append(errs, ctx.Err())
			}
			errs = multierr.Append(errs, j.reconcileOrder(ctx, rows[i].ID, &tally))
		}
		if next == nil {
			break
		}
		j.logg.Debug(j.logg.WithField(ctx, "cursor", pagination.EncodeCursor(*next)), "reconcile page complete")
		query.Cursor = next
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"since":         query.Since,
		"auto_fix":      j.autoFix,
		"checked":       tally.checked,
		"discrepancies": tally.discrepancies,
		"fixed":         tally.fixed,
		"skipped":       tally.skipped,
		"failed":        len(multierr.Errors(errs)),
	}), "shipping reconcile complete")
	return errs
}

func (j *shippingReconcileJob) reconcileOrder(ctx context.Context, orderID uuid.UUID, tally *reconcileTally) error {
	orderCtx := j.logg.WithOrderID(ctx, orderID.String())
	tally.checked++

	if !j.autoFix {
		report, err := j.reconciler.Diagnose(ctx, orderID)
		if err != nil {
			return fmt.Errorf("diagnose %s: %w", orderID, err)
		}
		if report.HasDiscrepancy {
			tally.discrepancies++
			j.logg.Warn(j.logg.WithFields(orderCtx, map[string]any{
				"stored_shipping_fee":     report.StoredShippingFee.String(),
				"recomputed_shipping_fee": report.RecomputedShippingFee.String(),
				"issues":                  len(report.Issues),
			}), "shipping fee discrepancy detected")
		}
		return nil
	}

	result, err := j.reconciler.Fix(ctx, orderID)
	switch {
	case pkgerrors.IsCode(err, pkgerrors.CodeConflict), pkgerrors.IsCode(err, pkgerrors.CodeStateConflict):
		// concurrent writes and degraded recalculations are retried next cycle
		tally.discrepancies++
		tally.skipped++
		j.logg.Warn(j.logg.WithField(orderCtx, "reason", pkgerrors.CodeOf(err)), "shipping fee fix skipped")
		return nil
	case err != nil:
		return fmt.Errorf("fix %s: %w", orderID, err)
	}
	if result.Report != nil && result.Report.HasDiscrepancy {
		tally.discrepancies++
	}
	if result.Changed {
		tally.fixed++
	}
	return nil
}
