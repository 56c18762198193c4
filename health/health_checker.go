// Package health provides health checking functionality for the verification API.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/medverify/medverify-api/interfaces"
)

// HealthChecker reports service health based on catalog freshness
type HealthChecker struct {
	store interfaces.CatalogStore
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(store interfaces.CatalogStore) *HealthChecker {
	return &HealthChecker{store: store}
}

// HealthCheck returns the health status, data fields, and the HTTP status code
// the /health endpoint should answer with. An empty catalog is unhealthy; data
// that outlived two refresh cycles is degraded.
func (h *HealthChecker) HealthCheck() (status string, data map[string]any, httpStatus int) {
	medicines := h.store.GetMedicines()
	lastUpdate := h.store.GetLastUpdated()
	isUpdating := h.store.IsUpdating()

	dataAge := time.Since(lastUpdate)

	switch {
	case len(medicines) == 0:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case dataAge > 48*time.Hour:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case dataAge > 24*time.Hour:
		status = "degraded"
		httpStatus = http.StatusOK

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"last_update":    lastUpdate.Format(time.RFC3339),
		"data_age_hours": math.Round(dataAge.Hours()*10) / 10,
		"medicines":      len(medicines),
		"is_updating":    isUpdating,
		"next_update":    CalculateNextUpdate().Format(time.RFC3339),
	}

	return status, data, httpStatus
}

// CalculateNextUpdate returns the next scheduled catalog refresh time.
// Refreshes run daily at 03:00 local time.
func CalculateNextUpdate() time.Time {
	now := time.Now()

	threeAM := time.Date(now.Year(), now.Month(), now.Day(), 3, 0, 0, 0, now.Location())
	if now.Before(threeAM) {
		return threeAM
	}

	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 3, 0, 0, 0, tomorrow.Location())
}
