package controllers

import (
	"net/http"

	"github.com/angelmondragon/shipfee-backend/api/middleware"
	"github.com/angelmondragon/shipfee-backend/api/responses"
	"github.com/angelmondragon/shipfee-backend/api/validators"
	checkoutsvc "github.com/angelmondragon/shipfee-backend/internal/checkout"
	"github.com/angelmondragon/shipfee-backend/pkg/logger"
)

// Checkout turns the submitted cart into an order carrying its shipping quote.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("checkout service"))
			return
		}

		var payload checkoutsvc.PlaceOrderInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceOrder(r.Context(), middleware.ParsedUserID(r.Context()), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
