package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/shipfee-backend/api/responses"
	"github.com/angelmondragon/shipfee-backend/api/validators"
	"github.com/angelmondragon/shipfee-backend/pkg/logger"
	"github.com/angelmondragon/shipfee-backend/pkg/types"
)

type shippingCalculator interface {
	Calculate(ctx context.Context, items []types.CartItem, addr *types.ShippingAddress) (*types.ShippingQuote, error)
}

type calculateRequest struct {
	CartItems       []types.CartItem       `json:"cart_items" validate:"required,min=1,dive"`
	ShippingAddress *types.ShippingAddress `json:"shipping_address" validate:"required"`
}

// CalculateShipping quotes a cart without persisting anything. Degraded
// quotes are still returned with details.is_error set.
func CalculateShipping(calc shippingCalculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if calc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("shipping calculator"))
			return
		}

		var payload calculateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := calc.Calculate(r.Context(), payload.CartItems, payload.ShippingAddress)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}
