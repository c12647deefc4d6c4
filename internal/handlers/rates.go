package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hanko-field/pricing/internal/platform/httpx"
	"github.com/hanko-field/pricing/internal/rates"
)

// RateHandlers serves the conversion rate endpoints. Reads are mounted under
// /rates; the batch update sits in the admin group.
type RateHandlers struct {
	rates rates.Service
}

// NewRateHandlers constructs the rate handlers.
func NewRateHandlers(rateService rates.Service) (*RateHandlers, error) {
	if rateService == nil {
		return nil, errors.New("rate handlers: rate service is required")
	}
	return &RateHandlers{rates: rateService}, nil
}

// Routes registers the read endpoints on the given router group.
func (h *RateHandlers) Routes(r chi.Router) {
	r.Get("/", h.getRate)
	r.Get("/range", h.getRateRange)
	r.Get("/convert", h.convert)
}

// AdminRoutes registers the mutating endpoints on the given router group.
func (h *RateHandlers) AdminRoutes(r chi.Router) {
	r.Post("/rates", h.updateRates)
}

type ratePayload struct {
	Base      string  `json:"base"`
	Quote     string  `json:"quote"`
	Rate      float64 `json:"rate"`
	Timestamp string  `json:"timestamp,omitempty"`
	ExpiresAt string  `json:"expiresAt,omitempty"`
}

func (h *RateHandlers) getRate(w http.ResponseWriter, r *http.Request) {
	base, quote, ok := requirePair(w, r)
	if !ok {
		return
	}

	at, ok := parseOptionalTime(w, r, "at")
	if !ok {
		return
	}

	result, err := h.rates.GetRate(r.Context(), base, quote, at)
	if err != nil {
		writeRateError(w, r, err)
		return
	}
	if result == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("rate_not_found", "no rate stored for the requested pair", http.StatusNotFound))
		return
	}

	payload := ratePayload{
		Base:  result.Base,
		Quote: result.Quote,
		Rate:  result.Rate,
	}
	if !result.Record.Timestamp.IsZero() {
		payload.Timestamp = result.Record.Timestamp.Format(time.RFC3339)
		payload.ExpiresAt = result.Record.ExpiresAt.Format(time.RFC3339)
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

type rateRangePayload struct {
	Base    string  `json:"base"`
	Quote   string  `json:"quote"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Samples int     `json:"samples"`
}

func (h *RateHandlers) getRateRange(w http.ResponseWriter, r *http.Request) {
	base, quote, ok := requirePair(w, r)
	if !ok {
		return
	}

	from, err := parseRequiredTime(r, "from")
	if err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_range", "from must be an RFC3339 timestamp", http.StatusBadRequest))
		return
	}
	to, err := parseRequiredTime(r, "to")
	if err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_range", "to must be an RFC3339 timestamp", http.StatusBadRequest))
		return
	}

	result, err := h.rates.GetRateRange(r.Context(), base, quote, from, to)
	if err != nil {
		writeRateError(w, r, err)
		return
	}
	if result == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("rate_not_found", "no rates stored inside the requested window", http.StatusNotFound))
		return
	}

	writeJSONResponse(w, http.StatusOK, rateRangePayload{
		Base:    result.Base,
		Quote:   result.Quote,
		Min:     result.Min,
		Max:     result.Max,
		Samples: result.Samples,
	})
}

func (h *RateHandlers) convert(w http.ResponseWriter, r *http.Request) {
	base, quote, ok := requirePair(w, r)
	if !ok {
		return
	}

	amount, err := strconv.ParseInt(r.URL.Query().Get("amount"), 10, 64)
	if err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_amount", "amount must be a minor-unit integer", http.StatusBadRequest))
		return
	}

	at, ok := parseOptionalTime(w, r, "at")
	if !ok {
		return
	}

	converted, err := h.rates.Convert(r.Context(), amount, base, quote, at)
	if err != nil {
		writeRateError(w, r, err)
		return
	}
	if converted == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("rate_not_found", "no rate stored for the requested pair", http.StatusNotFound))
		return
	}

	writeJSONResponse(w, http.StatusOK, moneyPayload{Amount: converted.Amount, Currency: converted.Currency})
}

type rateUpdateRequest struct {
	Rates []rateUpdatePayload `json:"rates"`
}

type rateUpdatePayload struct {
	Base      string  `json:"base"`
	Quote     string  `json:"quote"`
	Rate      float64 `json:"rate"`
	Timestamp string  `json:"timestamp,omitempty"`
	ExpiresAt string  `json:"expiresAt,omitempty"`
}

func (h *RateHandlers) updateRates(w http.ResponseWriter, r *http.Request) {
	var req rateUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_body", "request body is not valid JSON", http.StatusBadRequest))
		return
	}

	updates := make([]rates.Update, 0, len(req.Rates))
	for _, entry := range req.Rates {
		update := rates.Update{
			BaseCurrency:  entry.Base,
			QuoteCurrency: entry.Quote,
			Rate:          entry.Rate,
		}
		if entry.Timestamp != "" {
			ts, err := time.Parse(time.RFC3339, entry.Timestamp)
			if err != nil {
				httpx.WriteError(r.Context(), w, httpx.NewError("invalid_timestamp", "timestamp must be RFC3339", http.StatusBadRequest))
				return
			}
			update.Timestamp = ts
		}
		if entry.ExpiresAt != "" {
			ts, err := time.Parse(time.RFC3339, entry.ExpiresAt)
			if err != nil {
				httpx.WriteError(r.Context(), w, httpx.NewError("invalid_timestamp", "expiresAt must be RFC3339", http.StatusBadRequest))
				return
			}
			update.ExpiresAt = ts
		}
		updates = append(updates, update)
	}

	if err := h.rates.UpdateRates(r.Context(), updates); err != nil {
		writeRateError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"updated": len(updates)})
}

func writeRateError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, rates.ErrRateInvalidInput) {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	httpx.WriteError(r.Context(), w, httpx.NewError("rates_failed", "rate lookup could not be completed", http.StatusInternalServerError))
}

func requirePair(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	base := r.URL.Query().Get("base")
	quote := r.URL.Query().Get("quote")
	if base == "" || quote == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_pair", "base and quote query parameters are required", http.StatusBadRequest))
		return "", "", false
	}
	return base, quote, true
}

func parseOptionalTime(w http.ResponseWriter, r *http.Request, key string) (*time.Time, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, true
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_timestamp", key+" must be an RFC3339 timestamp", http.StatusBadRequest))
		return nil, false
	}
	return &ts, true
}

func parseRequiredTime(r *http.Request, key string) (time.Time, error) {
	return time.Parse(time.RFC3339, r.URL.Query().Get(key))
}
