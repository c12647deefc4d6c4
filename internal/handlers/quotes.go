package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	domain "github.com/hanko-field/pricing/internal/domain"
	"github.com/hanko-field/pricing/internal/platform/httpx"
	"github.com/hanko-field/pricing/internal/repositories"
	"github.com/hanko-field/pricing/internal/services"
)

// QuoteHandlers serves the pricing quote endpoints.
type QuoteHandlers struct {
	pricing services.PricingService
}

// NewQuoteHandlers constructs the quote handlers.
func NewQuoteHandlers(pricing services.PricingService) (*QuoteHandlers, error) {
	if pricing == nil {
		return nil, errors.New("quote handlers: pricing service is required")
	}
	return &QuoteHandlers{pricing: pricing}, nil
}

// Routes registers the quote endpoints on the given router group.
func (h *QuoteHandlers) Routes(r chi.Router) {
	r.Post("/order", h.quoteOrder)
	r.Post("/product", h.quoteProduct)
	r.Get("/delivery/{providerID}", h.quoteDeliveryFee)
	r.Get("/payment/{providerID}", h.quotePaymentFee)
}

type moneyPayload struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type rowPayload struct {
	Category   string         `json:"category"`
	Amount     int64          `json:"amount"`
	DiscountID string         `json:"discountId,omitempty"`
	Rate       float64        `json:"rate,omitempty"`
	IsTaxable  bool           `json:"isTaxable"`
	Meta       map[string]any `json:"meta,omitempty"`
}

type discountPricePayload struct {
	DiscountID string `json:"discountId"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
}

type orderQuoteRequest struct {
	Order           orderPayload                               `json:"order"`
	Items           []itemPayload                              `json:"items"`
	User            userPayload                                `json:"user"`
	Delivery        *selectionPayload[deliveryProviderPayload] `json:"delivery,omitempty"`
	Payment         *selectionPayload[paymentProviderPayload]  `json:"payment,omitempty"`
	DiscountCodes   []string                                   `json:"discountCodes,omitempty"`
	DiscountIDs     []string                                   `json:"discountIds,omitempty"`
	Currency        string                                     `json:"currency,omitempty"`
	DisplayCurrency string                                     `json:"displayCurrency,omitempty"`
}

type orderPayload struct {
	ID       string         `json:"id"`
	UserID   string         `json:"userId,omitempty"`
	Currency string         `json:"currency"`
	Country  string         `json:"country,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
}

type itemPayload struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId,omitempty"`
	SKU       string  `json:"sku,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice int64   `json:"unitPrice"`
	IsTaxable bool    `json:"isTaxable"`
	TaxRate   float64 `json:"taxRate,omitempty"`
}

type userPayload struct {
	ID      string   `json:"id,omitempty"`
	Country string   `json:"country,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

type selectionPayload[P any] struct {
	ID       string `json:"id,omitempty"`
	Provider P      `json:"provider"`
}

type deliveryProviderPayload struct {
	ID        string  `json:"id"`
	Adapter   string  `json:"adapter,omitempty"`
	FlatFee   int64   `json:"flatFee,omitempty"`
	FeeRate   float64 `json:"feeRate,omitempty"`
	IsTaxable bool    `json:"isTaxable,omitempty"`
}

type paymentProviderPayload struct {
	ID        string  `json:"id"`
	Adapter   string  `json:"adapter,omitempty"`
	FlatFee   int64   `json:"flatFee,omitempty"`
	FeeRate   float64 `json:"feeRate,omitempty"`
	IsTaxable bool    `json:"isTaxable,omitempty"`
}

type orderQuotePayload struct {
	Currency     string                 `json:"currency"`
	Valid        bool                   `json:"valid"`
	Gross        moneyPayload           `json:"gross"`
	Net          moneyPayload           `json:"net"`
	TaxSum       moneyPayload           `json:"taxSum"`
	Rows         []rowPayload           `json:"rows"`
	Discounts    []discountPricePayload `json:"discounts,omitempty"`
	Summary      map[string]string      `json:"summary,omitempty"`
	DisplayTotal *moneyPayload          `json:"displayTotal,omitempty"`
}

func (h *QuoteHandlers) quoteOrder(w http.ResponseWriter, r *http.Request) {
	var req orderQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_body", "request body is not valid JSON", http.StatusBadRequest))
		return
	}

	svcReq := services.OrderQuoteRequest{
		Order: domain.Order{
			ID:       req.Order.ID,
			UserID:   req.Order.UserID,
			Currency: req.Order.Currency,
			Country:  req.Order.Country,
			Meta:     req.Order.Meta,
		},
		User:            domain.User{ID: req.User.ID, Country: req.User.Country, Tags: req.User.Tags},
		DiscountCodes:   req.DiscountCodes,
		DiscountIDs:     req.DiscountIDs,
		Currency:        req.Currency,
		DisplayCurrency: req.DisplayCurrency,
	}
	for _, item := range req.Items {
		svcReq.Items = append(svcReq.Items, domain.OrderItem{
			ID:        item.ID,
			ProductID: item.ProductID,
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			IsTaxable: item.IsTaxable,
			TaxRate:   item.TaxRate,
		})
	}
	if req.Delivery != nil {
		svcReq.Delivery = domain.OrderDelivery{
			ID: req.Delivery.ID,
			Provider: domain.DeliveryProvider{
				ID:        req.Delivery.Provider.ID,
				Adapter:   req.Delivery.Provider.Adapter,
				FlatFee:   req.Delivery.Provider.FlatFee,
				FeeRate:   req.Delivery.Provider.FeeRate,
				IsTaxable: req.Delivery.Provider.IsTaxable,
			},
		}
	}
	if req.Payment != nil {
		svcReq.Payment = domain.OrderPayment{
			ID: req.Payment.ID,
			Provider: domain.PaymentProvider{
				ID:        req.Payment.Provider.ID,
				Adapter:   req.Payment.Provider.Adapter,
				FlatFee:   req.Payment.Provider.FlatFee,
				FeeRate:   req.Payment.Provider.FeeRate,
				IsTaxable: req.Payment.Provider.IsTaxable,
			},
		}
	}

	quote, err := h.pricing.QuoteOrder(r.Context(), svcReq)
	if err != nil {
		writeQuoteError(r.Context(), w, err)
		return
	}

	payload := orderQuotePayload{
		Currency:     quote.Currency,
		Valid:        quote.Valid,
		Gross:        moneyPayload(quote.Gross),
		Net:          moneyPayload(quote.Net),
		TaxSum:       moneyPayload(quote.TaxSum),
		Rows:         buildRowPayloads(quote.Rows),
		Discounts:    buildDiscountPricePayloads(quote.Discounts),
		Summary:      quote.Summary,
		DisplayTotal: buildOptionalMoney(quote.DisplayTotal),
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

type productQuoteRequest struct {
	ProductID     string   `json:"productId"`
	Currency      string   `json:"currency"`
	Country       string   `json:"country,omitempty"`
	Quantity      int      `json:"quantity,omitempty"`
	DiscountCodes []string `json:"discountCodes,omitempty"`
	DiscountIDs   []string `json:"discountIds,omitempty"`
}

type productQuotePayload struct {
	Currency  string                 `json:"currency"`
	Valid     bool                   `json:"valid"`
	Quantity  int                    `json:"quantity"`
	Total     moneyPayload           `json:"total"`
	UnitGross moneyPayload           `json:"unitGross"`
	UnitNet   moneyPayload           `json:"unitNet"`
	Rows      []rowPayload           `json:"rows"`
	Discounts []discountPricePayload `json:"discounts,omitempty"`
}

func (h *QuoteHandlers) quoteProduct(w http.ResponseWriter, r *http.Request) {
	var req productQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_body", "request body is not valid JSON", http.StatusBadRequest))
		return
	}

	quote, err := h.pricing.QuoteProduct(r.Context(), services.ProductQuoteRequest{
		ProductID:     req.ProductID,
		Currency:      req.Currency,
		Country:       req.Country,
		Quantity:      req.Quantity,
		DiscountCodes: req.DiscountCodes,
		DiscountIDs:   req.DiscountIDs,
	})
	if err != nil {
		writeQuoteError(r.Context(), w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, productQuotePayload{
		Currency:  quote.Currency,
		Valid:     quote.Valid,
		Quantity:  quote.Quantity,
		Total:     moneyPayload(quote.Total),
		UnitGross: moneyPayload(quote.UnitGross),
		UnitNet:   moneyPayload(quote.UnitNet),
		Rows:      buildRowPayloads(quote.Rows),
		Discounts: buildDiscountPricePayloads(quote.Discounts),
	})
}

type feeQuotePayload struct {
	Currency string       `json:"currency"`
	Total    moneyPayload `json:"total"`
	Rows     []rowPayload `json:"rows"`
}

func (h *QuoteHandlers) quoteDeliveryFee(w http.ResponseWriter, r *http.Request) {
	h.quoteProviderFee(w, r, h.pricing.QuoteDeliveryFee)
}

func (h *QuoteHandlers) quotePaymentFee(w http.ResponseWriter, r *http.Request) {
	h.quoteProviderFee(w, r, h.pricing.QuotePaymentFee)
}

func (h *QuoteHandlers) quoteProviderFee(w http.ResponseWriter, r *http.Request, quoteFn func(context.Context, services.ProviderFeeRequest) (services.FeeQuote, error)) {
	providerID := chi.URLParam(r, "providerID")
	currency := r.URL.Query().Get("currency")

	var orderValue int64
	if raw := r.URL.Query().Get("orderValue"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			httpx.WriteError(r.Context(), w, httpx.NewError("invalid_order_value", "orderValue must be a non-negative integer", http.StatusBadRequest))
			return
		}
		orderValue = parsed
	}

	quote, err := quoteFn(r.Context(), services.ProviderFeeRequest{
		ProviderID: providerID,
		Currency:   currency,
		OrderValue: orderValue,
	})
	if err != nil {
		writeQuoteError(r.Context(), w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, feeQuotePayload{
		Currency: quote.Currency,
		Total:    moneyPayload(quote.Total),
		Rows:     buildRowPayloads(quote.Rows),
	})
}

func writeQuoteError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrPricingInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case isNotFound(err):
		httpx.WriteError(ctx, w, httpx.NewError("not_found", err.Error(), http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("pricing_failed", "pricing could not be completed", http.StatusInternalServerError))
	}
}

func isNotFound(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

func buildRowPayloads(rows []domain.CalculationRow) []rowPayload {
	out := make([]rowPayload, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowPayload{
			Category:   string(row.Category),
			Amount:     row.Amount,
			DiscountID: row.DiscountID,
			Rate:       row.Rate,
			IsTaxable:  row.IsTaxable,
			Meta:       row.Meta,
		})
	}
	return out
}

func buildDiscountPricePayloads(prices []domain.DiscountPrice) []discountPricePayload {
	out := make([]discountPricePayload, 0, len(prices))
	for _, price := range prices {
		out = append(out, discountPricePayload{
			DiscountID: price.DiscountID,
			Amount:     price.Amount,
			Currency:   price.Currency,
		})
	}
	return out
}

func buildOptionalMoney(m *domain.Money) *moneyPayload {
	if m == nil {
		return nil
	}
	payload := moneyPayload(*m)
	return &payload
}
