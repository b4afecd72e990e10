package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shipfee-backend/api/middleware"
	checkoutsvc "github.com/angelmondragon/shipfee-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/shipfee-backend/pkg/errors"
)

type stubCheckoutService struct {
	order    *checkoutsvc.OrderDTO
	err      error
	gotBuyer *uuid.UUID
	gotInput checkoutsvc.PlaceOrderInput
}

func (s *stubCheckoutService) PlaceOrder(ctx context.Context, buyerID *uuid.UUID, input checkoutsvc.PlaceOrderInput) (*checkoutsvc.OrderDTO, error) {
	s.gotBuyer, s.gotInput = buyerID, input
	return s.order, s.err
}

func checkoutBody() string {
	return `{"cart_items":[{"product_id":"` + uuid.NewString() + `","vendor_id":"` + uuid.NewString() + `","quantity":2,"unit_price":"12.50"}],"shipping_address":{"city":"Accra","region":"Greater Accra"}}`
}

func TestCheckoutSuccess(t *testing.T) {
	t.Parallel()

	buyerID := uuid.New()
	svc := &stubCheckoutService{order: &checkoutsvc.OrderDTO{ID: uuid.New(), ShippingFee: decimal.NewFromInt(40), TotalAmount: decimal.NewFromInt(65), Version: 1}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody()))
	req = req.WithContext(middleware.WithUserID(req.Context(), buyerID.String()))
	rec := httptest.NewRecorder()
	Checkout(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotBuyer == nil || *svc.gotBuyer != buyerID {
		t.Fatalf("buyer id not forwarded")
	}
	if len(svc.gotInput.CartItems) != 1 || svc.gotInput.ShippingAddress.City != "Accra" {
		t.Fatalf("unexpected input %+v", svc.gotInput)
	}
	var order checkoutsvc.OrderDTO
	decodeData(t, rec, &order)
	if !order.TotalAmount.Equal(decimal.NewFromInt(65)) {
		t.Fatalf("unexpected total %s", order.TotalAmount)
	}
}

func TestCheckoutDegradedQuoteIsRetryable(t *testing.T) {
	t.Parallel()

	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeDependency, "shipping could not be priced reliably; retry")}
	rec := httptest.NewRecorder()
	Checkout(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody())))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}

func TestCheckoutRejectsMissingItems(t *testing.T) {
	t.Parallel()

	svc := &stubCheckoutService{}
	rec := httptest.NewRecorder()
	Checkout(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"shipping_address":{"city":"Accra"}}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
