package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveSubmission(OutcomeCreated)
		m.ObserveDecision(OutcomeApproved)
	})
}

func TestObserveCounters(t *testing.T) {
	m := New()

	m.ObserveSubmission(OutcomeCreated)
	m.ObserveSubmission(OutcomeCreated)
	m.ObserveSubmission(OutcomeBudgetExceeded)
	m.ObserveDecision(OutcomeAlreadyDecided)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.submissions.WithLabelValues(OutcomeCreated)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.submissions.WithLabelValues(OutcomeBudgetExceeded)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.decisions.WithLabelValues(OutcomeAlreadyDecided)))
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/v1/requisitions/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/requisitions/42", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `budgetreq_http_request_duration_seconds_count{method="GET",route="/api/v1/requisitions/:id",status="200"} 1`))
	assert.False(t, strings.Contains(body, "/api/v1/requisitions/42"))
}
