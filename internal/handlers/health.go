package handlers

import (
	"net/http"
	"time"

	domain "github.com/hanko-field/pricing/internal/domain"
	"github.com/hanko-field/pricing/internal/services"
)

// HealthHandlers serves the liveness and readiness endpoints.
type HealthHandlers struct {
	system services.SystemService
}

// NewHealthHandlers constructs health handlers. A nil system service keeps
// /healthz alive and reports /readyz as ready unconditionally.
func NewHealthHandlers(system services.SystemService) *HealthHandlers {
	return &HealthHandlers{system: system}
}

// Healthz reports process liveness and build metadata.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if h.system != nil {
		build := h.system.Build()
		payload["version"] = build.Version
		payload["uptime"] = time.Since(build.StartedAt).String()
	}
	writeJSONResponse(w, http.StatusOK, payload)
}

// Readyz reports dependency readiness; a failing dependency turns the
// endpoint into a 503 so the instance is taken out of rotation.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.system == nil {
		writeJSONResponse(w, http.StatusOK, map[string]any{"status": "ok"})
		return
	}

	report, err := h.system.Health(r.Context())
	if err != nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, map[string]any{
			"status": string(domain.HealthStatusError),
			"error":  err.Error(),
		})
		return
	}

	status := http.StatusOK
	if report.Status == domain.HealthStatusError {
		status = http.StatusServiceUnavailable
	}

	checks := make(map[string]any, len(report.Checks))
	for name, check := range report.Checks {
		checks[name] = map[string]any{
			"status":  string(check.Status),
			"detail":  check.Detail,
			"latency": check.Latency.String(),
		}
	}
	writeJSONResponse(w, status, map[string]any{
		"status": string(report.Status),
		"checks": checks,
	})
}
