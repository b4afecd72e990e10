package controllers

import (
	"net/http"

	"github.com/angelmondragon/shipfee-backend/api/responses"
	"github.com/angelmondragon/shipfee-backend/api/validators"
	"github.com/angelmondragon/shipfee-backend/internal/vendors"
	"github.com/angelmondragon/shipfee-backend/pkg/logger"
)

func VendorShippingPreferences(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("vendor service"))
			return
		}
		vendorID, err := vendorIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		prefs, err := svc.GetPreferences(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, prefs)
	}
}

// VendorUpdateShippingPreferences replaces the vendor's fallback settings.
// A base region change re-stamps the vendor's zones in the same call.
func VendorUpdateShippingPreferences(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("vendor service"))
			return
		}
		vendorID, err := vendorIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input vendors.UpdatePreferencesInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		prefs, err := svc.UpdatePreferences(r.Context(), vendorID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, prefs)
	}
}
