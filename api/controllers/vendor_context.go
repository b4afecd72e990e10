package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/shipfee-backend/api/middleware"
	pkgerrors "github.com/angelmondragon/shipfee-backend/pkg/errors"
)

func vendorIDFromContext(r *http.Request) (uuid.UUID, error) {
	raw := middleware.VendorIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor context required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "invalid vendor context")
	}
	return id, nil
}

func unavailable(name string) error {
	return pkgerrors.Newf(pkgerrors.CodeInternal, "%s unavailable", name)
}
