package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgAuth "github.com/angelmondragon/shipfee-backend/pkg/auth"
	"github.com/angelmondragon/shipfee-backend/pkg/config"
	"github.com/angelmondragon/shipfee-backend/pkg/enums"
)

var testJWT = config.JWTConfig{Secret: "test-secret", Issuer: "shipfee-test", ExpirationMinutes: 5}

func bearer(t *testing.T, payload pkgAuth.AccessTokenPayload) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testJWT, time.Now(), payload)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthSeedsVendorContext(t *testing.T) {
	userID, vendorID := uuid.New(), uuid.New()
	var gotUser, gotVendor string
	var gotRole enums.Role
	handler := Auth(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotVendor = VendorIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", bearer(t, pkgAuth.AccessTokenPayload{UserID: userID, VendorID: &vendorID, Role: enums.RoleVendor}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, userID.String(), gotUser)
	assert.Equal(t, vendorID.String(), gotVendor)
	assert.Equal(t, enums.RoleVendor, gotRole)
}

func TestAuthRejectsMissingAndInvalidTokens(t *testing.T) {
	handler := Auth(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	for _, header := range []string{"", "Bearer ", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(nil, enums.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(WithRole(req.Context(), enums.RoleVendor)))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(WithRole(req.Context(), enums.RoleAdmin)))
	assert.Equal(t, http.StatusOK, rec.Code)
}
