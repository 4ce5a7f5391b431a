package kit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsMiddleware(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware("food-review-api", RoutePattern))
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {})
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, path := range []string{"/items/1", "/items/2", "/health"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.Requests.WithLabelValues("food-review-api", http.MethodGet, "/items/{id}", "404"),
	))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Requests), "probes are not counted")
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlight.WithLabelValues("food-review-api")))
}

func TestRoutePattern_FallsBackToPath(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/unrouted", nil)
	assert.Equal(t, "/unrouted", RoutePattern(req))
}
