package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/shipfee-backend/internal/orders"
	"github.com/angelmondragon/shipfee-backend/pkg/db/models"
	"github.com/angelmondragon/shipfee-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shipfee-backend/pkg/errors"
	"github.com/angelmondragon/shipfee-backend/pkg/logger"
	"github.com/angelmondragon/shipfee-backend/pkg/outbox"
	"github.com/angelmondragon/shipfee-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/shipfee-backend/pkg/types"
)

const orderSource = "checkout"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type calculator interface {
	Calculate(ctx context.Context, items []types.CartItem, addr *types.ShippingAddress) (*types.ShippingQuote, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service turns carts into orders with their shipping quote persisted.
type Service interface {
	PlaceOrder(ctx context.Context, buyerID *uuid.UUID, input PlaceOrderInput) (*OrderDTO, error)
}

type service struct {
	tx     txRunner
	orders orders.Repository
	calc   calculator
	outbox outboxPublisher
	logg   *logger.Logger
}

// NewService builds the checkout service.
func NewService(tx txRunner, ordersRepo orders.Repository, calc calculator, publisher outboxPublisher, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if calc == nil {
		return nil, fmt.Errorf("shipping calculator required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{tx: tx, orders: ordersRepo, calc: calc, outbox: publisher, logg: logg}, nil
}

// PlaceOrder quotes the cart and stores the order. A degraded quote is
// refused so that no order is priced from partial data.
func (s *service) PlaceOrder(ctx context.Context, buyerID *uuid.UUID, input PlaceOrderInput) (*OrderDTO, error) {
	address := input.ShippingAddress
	quote, err := s.calc.Calculate(ctx, input.CartItems, &address)
	if err != nil {
		return nil, err
	}
	if quote.Details.IsError {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shipping could not be fully calculated; try again shortly")
	}

	items := types.CartItems(input.CartItems)
	subtotal := items.Subtotal()
	order := &models.Order{
		BuyerID:           buyerID,
		CartItems:         items,
		AddressInfo:       address,
		Subtotal:          subtotal,
		ShippingFee:       quote.TotalShippingFee,
		AdminShippingFees: quote.AdminShippingFees,
		TotalAmount:       subtotal.Add(quote.TotalShippingFee),
		Metadata: types.OrderMetadata{
			Source:          orderSource,
			ShippingDetails: types.ShippingDetailsFromQuote(quote),
		},
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorFor(buyerID),
			Data: payloads.OrderPlacedEvent{
				OrderID:     order.ID,
				BuyerID:     buyerID,
				VendorIDs:   vendorIDs(quote.AdminShippingFees),
				Subtotal:    order.Subtotal,
				ShippingFee: order.ShippingFee,
				TotalAmount: order.TotalAmount,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(s.logg.WithOrderID(ctx, order.ID.String()), map[string]any{
		"shipping_fee": order.ShippingFee.String(),
		"vendor_count": len(quote.AdminShippingFees),
	}), "order placed")
	return FromModel(order), nil
}

func actorFor(buyerID *uuid.UUID) *outbox.ActorRef {
	if buyerID == nil {
		return nil
	}
	return &outbox.ActorRef{UserID: *buyerID, Role: enums.RoleCustomer.String()}
}

func vendorIDs(breakdown types.VendorFeeBreakdown) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(breakdown))
	for _, key := range breakdown.Keys() {
		if id, ok := key.VendorID(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
