package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domain "github.com/hanko-field/pricing/internal/domain"
	"github.com/hanko-field/pricing/internal/services"
)

type fakePricingService struct {
	orderQuote   services.OrderQuote
	orderErr     error
	productQuote services.ProductQuote
	productErr   error
	feeQuote     services.FeeQuote
	feeErr       error

	lastOrderReq services.OrderQuoteRequest
	lastFeeReq   services.ProviderFeeRequest
}

func (f *fakePricingService) QuoteOrder(_ context.Context, req services.OrderQuoteRequest) (services.OrderQuote, error) {
	f.lastOrderReq = req
	return f.orderQuote, f.orderErr
}

func (f *fakePricingService) QuoteProduct(_ context.Context, req services.ProductQuoteRequest) (services.ProductQuote, error) {
	return f.productQuote, f.productErr
}

func (f *fakePricingService) QuoteDeliveryFee(_ context.Context, req services.ProviderFeeRequest) (services.FeeQuote, error) {
	f.lastFeeReq = req
	return f.feeQuote, f.feeErr
}

func (f *fakePricingService) QuotePaymentFee(_ context.Context, req services.ProviderFeeRequest) (services.FeeQuote, error) {
	f.lastFeeReq = req
	return f.feeQuote, f.feeErr
}

func newQuoteTestRouter(t *testing.T, svc services.PricingService) http.Handler {
	t.Helper()
	quotes, err := NewQuoteHandlers(svc)
	if err != nil {
		t.Fatalf("NewQuoteHandlers error: %v", err)
	}
	return NewRouter(WithQuoteRoutes(quotes.Routes))
}

func TestQuoteOrderEndpoint(t *testing.T) {
	svc := &fakePricingService{
		orderQuote: services.OrderQuote{
			Currency: "CHF",
			Valid:    true,
			Gross:    domain.Money{Amount: 10529, Currency: "CHF"},
			Net:      domain.Money{Amount: 9776, Currency: "CHF"},
			TaxSum:   domain.Money{Amount: 753, Currency: "CHF"},
			Rows: []domain.CalculationRow{
				{Category: domain.RowCategoryItem, Amount: 10000, IsTaxable: true},
			},
			Discounts: []domain.DiscountPrice{
				{DiscountID: "ten-percent", Amount: -1000, Currency: "CHF"},
			},
		},
	}
	router := newQuoteTestRouter(t, svc)

	body := `{
		"order": {"id": "order-1", "currency": "CHF"},
		"items": [{"id": "line-1", "quantity": 2, "unitPrice": 5000, "isTaxable": true, "taxRate": 0.077}],
		"discountCodes": ["SUMMER10"]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes/order", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var payload orderQuotePayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Gross.Amount != 10529 || !payload.Valid {
		t.Fatalf("payload = %+v", payload)
	}
	if len(payload.Rows) != 1 || payload.Rows[0].Category != string(domain.RowCategoryItem) {
		t.Fatalf("rows = %+v", payload.Rows)
	}

	if len(svc.lastOrderReq.Items) != 1 || svc.lastOrderReq.Items[0].UnitPrice != 5000 {
		t.Fatalf("service request = %+v", svc.lastOrderReq)
	}
	if len(svc.lastOrderReq.DiscountCodes) != 1 || svc.lastOrderReq.DiscountCodes[0] != "SUMMER10" {
		t.Fatalf("discount codes = %v", svc.lastOrderReq.DiscountCodes)
	}
}

func TestQuoteOrderEndpointRejectsBadJSON(t *testing.T) {
	router := newQuoteTestRouter(t, &fakePricingService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes/order", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestQuoteOrderEndpointMapsInvalidInput(t *testing.T) {
	svc := &fakePricingService{orderErr: services.ErrPricingInvalidInput}
	router := newQuoteTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes/order", strings.NewReader(`{"order":{}}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestQuoteProductEndpoint(t *testing.T) {
	svc := &fakePricingService{
		productQuote: services.ProductQuote{
			Currency:  "CHF",
			Valid:     true,
			Quantity:  3,
			Total:     domain.Money{Amount: 9000, Currency: "CHF"},
			UnitGross: domain.Money{Amount: 3000, Currency: "CHF"},
			UnitNet:   domain.Money{Amount: 3000, Currency: "CHF"},
		},
	}
	router := newQuoteTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes/product", strings.NewReader(`{"productId":"prod-1","currency":"CHF","quantity":3}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var payload productQuotePayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.UnitGross.Amount != 3000 || payload.Quantity != 3 {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestQuoteDeliveryFeeEndpoint(t *testing.T) {
	svc := &fakePricingService{
		feeQuote: services.FeeQuote{
			Currency: "CHF",
			Total:    domain.Money{Amount: 900, Currency: "CHF"},
		},
	}
	router := newQuoteTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes/delivery/courier?currency=CHF&orderValue=20000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if svc.lastFeeReq.ProviderID != "courier" || svc.lastFeeReq.OrderValue != 20000 {
		t.Fatalf("service request = %+v", svc.lastFeeReq)
	}
}

func TestQuoteDeliveryFeeEndpointRejectsBadOrderValue(t *testing.T) {
	router := newQuoteTestRouter(t, &fakePricingService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes/delivery/courier?orderValue=abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
