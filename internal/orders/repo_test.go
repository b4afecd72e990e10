package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shipfee-backend/pkg/db/dbtest"
	"github.com/angelmondragon/shipfee-backend/pkg/db/models"
	"github.com/angelmondragon/shipfee-backend/pkg/types"
)

func newOrder(fee string) *models.Order {
	vendorID := uuid.New()
	shipping := decimal.RequireFromString(fee)
	subtotal := decimal.NewFromInt(10)
	breakdown := types.VendorFeeBreakdown{types.VendorKeyFor(vendorID): {Fee: shipping, Zone: "Accra"}}
	return &models.Order{
		CartItems:         types.CartItems{{ProductID: uuid.New(), VendorID: &vendorID, Quantity: 1, UnitPrice: subtotal}},
		AddressInfo:       types.ShippingAddress{City: "Accra", Region: "Greater Accra"},
		Subtotal:          subtotal,
		ShippingFee:       shipping,
		AdminShippingFees: breakdown,
		TotalAmount:       subtotal.Add(shipping),
	}
}

func TestCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))
	order := newOrder("40")
	require.NoError(t, repo.Create(ctx, order))
	assert.Equal(t, 1, order.Version)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(40).Equal(found.ShippingFee))
	assert.Len(t, found.CartItems, 1)
	assert.Equal(t, "Greater Accra", found.AddressInfo.Region)
	assert.True(t, decimal.NewFromInt(40).Equal(found.AdminShippingFees.Total()))
}

func TestUpdateShippingFeesCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))
	order := newOrder("40")
	require.NoError(t, repo.Create(ctx, order))

	update := ShippingFeeUpdate{
		OrderID:           order.ID,
		ExpectedVersion:   1,
		ShippingFee:       decimal.NewFromInt(55),
		AdminShippingFees: types.VendorFeeBreakdown{},
		Metadata:          types.OrderMetadata{Source: "test"},
		TotalAmount:       decimal.NewFromInt(65),
	}
	n, err := repo.UpdateShippingFees(ctx, update)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.UpdateShippingFees(ctx, update)
	require.NoError(t, err)
	assert.Zero(t, n, "stale version must not apply")

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.Version)
	assert.True(t, decimal.NewFromInt(55).Equal(found.ShippingFee))
	assert.True(t, decimal.NewFromInt(65).Equal(found.TotalAmount))
	assert.Equal(t, "test", found.Metadata.Source)
}

func TestListForReconciliationPages(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.Open(t)
	repo := NewRepository(conn)

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		order := newOrder("10")
		order.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, order))
		ids = append(ids, order.ID)
	}
	old := newOrder("10")
	old.CreatedAt = base.Add(-48 * time.Hour)
	require.NoError(t, repo.Create(ctx, old))

	var seen []uuid.UUID
	query := ReconcileQuery{Since: base.Add(-time.Minute), Limit: 2}
	for pages := 0; pages < 10; pages++ {
		rows, next, err := repo.ListForReconciliation(ctx, query)
		require.NoError(t, err)
		for _, row := range rows {
			seen = append(seen, row.ID)
		}
		if next == nil {
			break
		}
		query.Cursor = next
	}
	assert.Equal(t, ids, seen)
}
