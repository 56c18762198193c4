package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareCountsByRoutePattern(t *testing.T) {
	router := chi.NewRouter()
	router.Use(Metrics)
	router.Get("/medicine/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	before := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues("GET", "/medicine/{name}", "200"))

	for _, path := range []string{"/medicine/panadol", "/medicine/brufen"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
	}

	// Both requests land on the one route-pattern series, not one per path
	after := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues("GET", "/medicine/{name}", "200"))
	if after-before != 2 {
		t.Errorf("Expected 2 requests counted on the route pattern, got %f", after-before)
	}
}

func TestMetricsMiddlewareRecordsStatus(t *testing.T) {
	router := chi.NewRouter()
	router.Use(Metrics)
	router.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues("GET", "/missing", "404"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	after := testutil.ToFloat64(HTTPRequestTotals.WithLabelValues("GET", "/missing", "404"))
	if after-before != 1 {
		t.Errorf("Expected the 404 response counted once, got %f", after-before)
	}
}

func TestMetricsMiddlewareInFlightReturnsToBaseline(t *testing.T) {
	router := chi.NewRouter()
	router.Use(Metrics)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if testutil.ToFloat64(HTTPRequestInFlight) < 1 {
			t.Error("Expected in-flight gauge raised while handling")
		}
		w.WriteHeader(http.StatusOK)
	})

	baseline := testutil.ToFloat64(HTTPRequestInFlight)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if got := testutil.ToFloat64(HTTPRequestInFlight); got != baseline {
		t.Errorf("Expected in-flight gauge back at %f after the request, got %f", baseline, got)
	}
}
