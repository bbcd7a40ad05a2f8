package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordsByRouteTemplate(t *testing.T) {
	app := fiber.New()
	app.Use(Metrics())
	app.Get("/api/v1/debtors/:id", func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	labels := prometheus.Labels{"method": fiber.MethodGet, "route": "/api/v1/debtors/:id", "status": "204"}
	before := testutil.ToFloat64(httpRequestsTotal.With(labels))

	for _, id := range []string{"1", "2"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/debtors/"+id, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(httpRequestsTotal.With(labels)))
	assert.Zero(t, testutil.ToFloat64(httpInFlight))
}

func TestMetrics_Names(t *testing.T) {
	assert.Equal(t, 1, testutil.CollectAndCount(httpInFlight, "http_inflight_requests"))

	httpRequestsTotal.With(prometheus.Labels{"method": "GET", "route": "/health", "status": "200"}).Inc()
	assert.Positive(t, testutil.CollectAndCount(httpRequestsTotal, "http_requests_total"))

	httpRequestDuration.With(prometheus.Labels{"method": "GET", "route": "/health", "status": "200"}).Observe(0.01)
	assert.Positive(t, testutil.CollectAndCount(httpRequestDuration, "http_request_duration_seconds"))
}
