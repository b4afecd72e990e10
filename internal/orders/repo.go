package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/shipfee-backend/pkg/db/models"
	"github.com/angelmondragon/shipfee-backend/pkg/pagination"
	"github.com/angelmondragon/shipfee-backend/pkg/types"
)

// ShippingFeeUpdate is a compare-and-swap rewrite of an order's shipping
// fields. It applies only while the stored version equals ExpectedVersion.
type ShippingFeeUpdate struct {
	OrderID           uuid.UUID
	ExpectedVersion   int
	ShippingFee       decimal.Decimal
	AdminShippingFees types.VendorFeeBreakdown
	Metadata          types.OrderMetadata
	TotalAmount       decimal.Decimal
}

// ReconcileQuery pages orders created at or after Since, oldest first.
type ReconcileQuery struct {
	Since  time.Time
	Limit  int
	Cursor *pagination.Cursor
}

// Repository persists orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateShippingFees(ctx context.Context, update ShippingFeeUpdate) (int64, error)
	ListForReconciliation(ctx context.Context, query ReconcileQuery) ([]models.Order, *pagination.Cursor, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateShippingFees returns the number of rows changed; zero means the
// version moved underneath the caller or the order is gone.
func (r *repository) UpdateShippingFees(ctx context.Context, update ShippingFeeUpdate) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND version = ?", update.OrderID, update.ExpectedVersion).
		Updates(map[string]any{
			"shipping_fee":        update.ShippingFee,
			"admin_shipping_fees": update.AdminShippingFees,
			"metadata":            update.Metadata,
			"total_amount":        update.TotalAmount,
			"version":             gorm.Expr("version + 1"),
			"updated_at":          time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *repository) ListForReconciliation(ctx context.Context, query ReconcileQuery) ([]models.Order, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(query.Limit)
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if !query.Since.IsZero() {
		q = q.Where("created_at >= ?", query.Since)
	}
	if query.Cursor != nil {
		q = q.Where("(created_at > ? OR (created_at = ? AND id > ?))", query.Cursor.CreatedAt, query.Cursor.CreatedAt, query.Cursor.ID)
	}

	var rows []models.Order
	if err := q.Order("created_at ASC, id ASC").Limit(pagination.LimitWithBuffer(query.Limit)).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		return rows, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}
