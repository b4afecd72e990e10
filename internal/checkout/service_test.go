package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/shipfee-backend/internal/orders"
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

type stubCalc struct {
	quote *types.ShippingQuote
	err   error
}

func (s stubCalc) Calculate(context.Context, []types.CartItem, *types.ShippingAddress) (*types.ShippingQuote, error) {
	return s.quote, s.err
}

type failingOutbox struct{}

func (failingOutbox) Emit(context.Context, *gorm.DB, outbox.DomainEvent) error {
	return errors.New("outbox unavailable")
}

func quoteFor(vendorID uuid.UUID, fee string, degraded bool) *types.ShippingQuote {
	amount := decimal.RequireFromString(fee)
	return &types.ShippingQuote{
		TotalShippingFee:  amount,
		AdminShippingFees: types.VendorFeeBreakdown{types.VendorKeyFor(vendorID): {Fee: amount, Zone: "Accra"}},
		EstimatedDelivery: types.DeliveryEstimate{MinDays: 1, MaxDays: 2},
		Details:           types.QuoteDetails{IsError: degraded, VendorCount: 1},
	}
}

func newService(t *testing.T, conn *gorm.DB, calc calculator, publisher outboxPublisher) Service {
	t.Helper()
	svc, err := NewService(db.Wrap(conn), orders.NewRepository(conn), calc, publisher, logger.Nop())
	require.NoError(t, err)
	return svc
}

func input(vendorID uuid.UUID) PlaceOrderInput {
	return PlaceOrderInput{
		CartItems: []types.CartItem{
			{ProductID: uuid.New(), VendorID: &vendorID, Quantity: 2, UnitPrice: decimal.RequireFromString("12.50")},
		},
		ShippingAddress: types.ShippingAddress{City: "Accra", Region: "Greater Accra"},
	}
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(nil, nil, nil, nil, nil)
	require.Error(t, err)
}

func TestPlaceOrderPersistsQuoteAndEmits(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.Open(t)
	vendorID, buyerID := uuid.New(), uuid.New()
	svc := newService(t, conn, stubCalc{quote: quoteFor(vendorID, "40", false)}, outbox.NewService(outbox.NewRepository(conn), nil))

	dto, err := svc.PlaceOrder(ctx, &buyerID, input(vendorID))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(25).Equal(dto.Subtotal))
	assert.True(t, decimal.NewFromInt(40).Equal(dto.ShippingFee))
	assert.True(t, decimal.NewFromInt(65).Equal(dto.TotalAmount))
	require.NotNil(t, dto.EstimatedDelivery)
	assert.Equal(t, 2, dto.EstimatedDelivery.MaxDays)

	stored, err := orders.NewRepository(conn).FindByID(ctx, dto.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Metadata.ShippingDetails)
	assert.Equal(t, orderSource, stored.Metadata.Source)
	assert.True(t, decimal.NewFromInt(40).Equal(stored.Metadata.ShippingDetails.TotalShippingFee))
	assert.True(t, stored.ShippingFee.Equal(stored.AdminShippingFees.Total()))

	var events []models.OutboxEvent
	require.NoError(t, conn.Where("event_type = ?", enums.EventOrderPlaced).Find(&events).Error)
	require.Len(t, events, 1)
	var envelope outbox.PayloadEnvelope
	require.NoError(t, json.Unmarshal(events[0].Payload, &envelope))
	require.NotNil(t, envelope.Actor)
	assert.Equal(t, buyerID, envelope.Actor.UserID)
	var payload payloads.OrderPlacedEvent
	require.NoError(t, json.Unmarshal(envelope.Data, &payload))
	assert.Equal(t, []uuid.UUID{vendorID}, payload.VendorIDs)
}

func TestPlaceOrderRefusesDegradedQuote(t *testing.T) {
	conn := dbtest.Open(t)
	vendorID := uuid.New()
	svc := newService(t, conn, stubCalc{quote: quoteFor(vendorID, "0", true)}, outbox.NewService(outbox.NewRepository(conn), nil))

	_, err := svc.PlaceOrder(context.Background(), nil, input(vendorID))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))

	var count int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPlaceOrderPropagatesValidation(t *testing.T) {
	conn := dbtest.Open(t)
	calcErr := pkgerrors.New(pkgerrors.CodeValidation, "invalid shipping calculation input")
	svc := newService(t, conn, stubCalc{err: calcErr}, outbox.NewService(outbox.NewRepository(conn), nil))

	_, err := svc.PlaceOrder(context.Background(), nil, PlaceOrderInput{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestPlaceOrderRollsBackWhenOutboxFails(t *testing.T) {
	conn := dbtest.Open(t)
	vendorID := uuid.New()
	svc := newService(t, conn, stubCalc{quote: quoteFor(vendorID, "40", false)}, failingOutbox{})

	_, err := svc.PlaceOrder(context.Background(), nil, input(vendorID))
	require.Error(t, err)

	var count int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}
