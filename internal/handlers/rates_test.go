package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domain "github.com/hanko-field/pricing/internal/domain"
	"github.com/hanko-field/pricing/internal/rates"
)

type fakeRateService struct {
	quote      *rates.Quote
	quoteErr   error
	rangeRes   *rates.Range
	rangeErr   error
	converted  *domain.Money
	convertErr error
	updateErr  error

	lastUpdates []rates.Update
}

func (f *fakeRateService) GetRate(_ context.Context, base, quote string, _ *time.Time) (*rates.Quote, error) {
	return f.quote, f.quoteErr
}

func (f *fakeRateService) GetRateRange(_ context.Context, base, quote string, _, _ time.Time) (*rates.Range, error) {
	return f.rangeRes, f.rangeErr
}

func (f *fakeRateService) UpdateRates(_ context.Context, updates []rates.Update) error {
	f.lastUpdates = updates
	return f.updateErr
}

func (f *fakeRateService) Convert(_ context.Context, amount int64, base, quote string, _ *time.Time) (*domain.Money, error) {
	return f.converted, f.convertErr
}

func newRateTestRouter(t *testing.T, svc rates.Service) http.Handler {
	t.Helper()
	handlers, err := NewRateHandlers(svc)
	if err != nil {
		t.Fatalf("NewRateHandlers error: %v", err)
	}
	return NewRouter(
		WithRateRoutes(handlers.Routes),
		WithAdminRoutes(handlers.AdminRoutes),
	)
}

func TestGetRateEndpoint(t *testing.T) {
	svc := &fakeRateService{
		quote: &rates.Quote{
			Base:  "CHF",
			Quote: "EUR",
			Rate:  1.05,
			Record: domain.RateRecord{
				Timestamp: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
				ExpiresAt: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
			},
		},
	}
	router := newRateTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rates/?base=CHF&quote=EUR", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var payload ratePayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Rate != 1.05 || payload.Base != "CHF" || payload.Quote != "EUR" {
		t.Fatalf("payload = %+v", payload)
	}
	if payload.Timestamp != "2026-02-01T00:00:00Z" {
		t.Fatalf("timestamp = %s", payload.Timestamp)
	}
}

func TestGetRateEndpointMissingPair(t *testing.T) {
	router := newRateTestRouter(t, &fakeRateService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rates/?base=CHF", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetRateEndpointNotFound(t *testing.T) {
	router := newRateTestRouter(t, &fakeRateService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rates/?base=CHF&quote=NOK", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetRateRangeEndpoint(t *testing.T) {
	svc := &fakeRateService{
		rangeRes: &rates.Range{Base: "CHF", Quote: "EUR", Min: 1.04, Max: 1.1, Samples: 3},
	}
	router := newRateTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rates/range?base=CHF&quote=EUR&from=2026-01-01T00:00:00Z&to=2026-02-01T00:00:00Z", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var payload rateRangePayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Min != 1.04 || payload.Max != 1.1 || payload.Samples != 3 {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestGetRateRangeEndpointRejectsBadWindow(t *testing.T) {
	router := newRateTestRouter(t, &fakeRateService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rates/range?base=CHF&quote=EUR&from=yesterday&to=2026-02-01T00:00:00Z", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestConvertEndpoint(t *testing.T) {
	svc := &fakeRateService{
		converted: &domain.Money{Amount: 25083, Currency: "CHF"},
	}
	router := newRateTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rates/convert?base=CLP&quote=CHF&amount=240000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var payload moneyPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Amount != 25083 || payload.Currency != "CHF" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestConvertEndpointRejectsBadAmount(t *testing.T) {
	router := newRateTestRouter(t, &fakeRateService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rates/convert?base=CLP&quote=CHF&amount=lots", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateRatesEndpoint(t *testing.T) {
	svc := &fakeRateService{}
	router := newRateTestRouter(t, svc)

	body := `{"rates": [
		{"base": "CHF", "quote": "EUR", "rate": 1.05, "timestamp": "2026-02-01T00:00:00Z"},
		{"base": "CHF", "quote": "USD", "rate": 1.12}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/rates", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if len(svc.lastUpdates) != 2 {
		t.Fatalf("updates = %+v", svc.lastUpdates)
	}
	if svc.lastUpdates[0].Timestamp.IsZero() {
		t.Fatalf("expected parsed timestamp on first update")
	}
	if !svc.lastUpdates[1].Timestamp.IsZero() {
		t.Fatalf("expected zero timestamp on second update, got %v", svc.lastUpdates[1].Timestamp)
	}
}

func TestUpdateRatesEndpointMapsValidationError(t *testing.T) {
	svc := &fakeRateService{updateErr: rates.ErrRateInvalidInput}
	router := newRateTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/rates", strings.NewReader(`{"rates":[]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
