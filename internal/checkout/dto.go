package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shipfee-backend/pkg/db/models"
	"github.com/angelmondragon/shipfee-backend/pkg/types"
)

// PlaceOrderInput is a cart ready to become an order.
type PlaceOrderInput struct {
	CartItems       []types.CartItem      `json:"cart_items" validate:"required,min=1,dive"`
	ShippingAddress types.ShippingAddress `json:"shipping_address"`
}

// OrderDTO is the API view of a placed order.
type OrderDTO struct {
	ID                uuid.UUID                `json:"id"`
	BuyerID           *uuid.UUID               `json:"buyer_id,omitempty"`
	Subtotal          decimal.Decimal          `json:"subtotal"`
	ShippingFee       decimal.Decimal          `json:"shipping_fee"`
	TotalAmount       decimal.Decimal          `json:"total_amount"`
	AdminShippingFees types.VendorFeeBreakdown `json:"admin_shipping_fees"`
	EstimatedDelivery *types.DeliveryEstimate  `json:"estimated_delivery,omitempty"`
	Version           int                      `json:"version"`
	CreatedAt         time.Time                `json:"created_at"`
}

func FromModel(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:                order.ID,
		BuyerID:           order.BuyerID,
		Subtotal:          order.Subtotal,
		ShippingFee:       order.ShippingFee,
		TotalAmount:       order.TotalAmount,
		AdminShippingFees: order.AdminShippingFees,
		Version:           order.Version,
		CreatedAt:         order.CreatedAt,
	}
	if details := order.Metadata.ShippingDetails; details != nil {
		estimate := details.EstimatedDelivery
		dto.EstimatedDelivery = &estimate
	}
	return dto
}
