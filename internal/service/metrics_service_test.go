package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsServiceObserveAllocation(t *testing.T) {
	m := NewMetricsService()
	m.ObserveAllocation("success", 2, 10, 1, 40*time.Millisecond)
	m.ObserveAllocation("empty", 0, 0, 0, time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.allocationRuns.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.allocationRuns.WithLabelValues("empty")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.batchesCreated))
	assert.Equal(t, float64(10), testutil.ToFloat64(m.studentsAssigned))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.unsupervisedBatches))
}

func TestMetricsServiceHandlerExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.ObserveManualAssignment("capacity_exceeded")
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/admin/batches/create", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.Contains(t, body, `faculty_manual_assignments_total{outcome="capacity_exceeded"} 1`)
	assert.Contains(t, body, "http_requests_total")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveAllocation("success", 1, 5, 0, time.Millisecond)
		m.ObserveManualAssignment("assigned")
		m.RecordCacheOperation(true, time.Millisecond)
	})
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
