package health

import (
	"net/http"
	"testing"
	"time"

	"github.com/medverify/medverify-api/catalog"
)

func populatedStore(t *testing.T) *catalog.Container {
	t.Helper()
	store := catalog.NewContainer()
	deduped, medicinesMap, barcodeMap := catalog.BuildIndexes([]catalog.MedicineRecord{
		{ID: "M1", Name: "Panadol"},
	})
	store.UpdateData(deduped, medicinesMap, barcodeMap)
	return store
}

func TestHealthCheckHealthy(t *testing.T) {
	checker := NewHealthChecker(populatedStore(t))

	status, data, httpStatus := checker.HealthCheck()
	if status != "healthy" {
		t.Errorf("Expected healthy, got %s", status)
	}
	if httpStatus != http.StatusOK {
		t.Errorf("Expected 200, got %d", httpStatus)
	}
	if data["medicines"].(int) != 1 {
		t.Errorf("Expected 1 medicine in health data, got %v", data["medicines"])
	}
}

func TestHealthCheckEmptyCatalog(t *testing.T) {
	checker := NewHealthChecker(catalog.NewContainer())

	status, _, httpStatus := checker.HealthCheck()
	if status != "unhealthy" {
		t.Errorf("Expected unhealthy for empty catalog, got %s", status)
	}
	if httpStatus != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", httpStatus)
	}
}

func TestCalculateNextUpdate(t *testing.T) {
	next := CalculateNextUpdate()
	now := time.Now()

	if !next.After(now) {
		t.Error("Expected next update in the future")
	}
	if next.Hour() != 3 || next.Minute() != 0 {
		t.Errorf("Expected next update at 03:00, got %02d:%02d", next.Hour(), next.Minute())
	}
	if next.Sub(now) > 24*time.Hour {
		t.Errorf("Expected next update within 24 hours, got %v", next.Sub(now))
	}
}
