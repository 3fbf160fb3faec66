package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	allocationRuns        *prometheus.CounterVec
	allocationDuration    prometheus.Observer
	batchesCreated        prometheus.Counter
	studentsAssigned      prometheus.Counter
	unsupervisedBatches   prometheus.Counter
	manualAssignmentTotal *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	allocationRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "batch_allocation_runs_total",
		Help: "Batch allocation runs by outcome",
	}, []string{"outcome"})

	allocationDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "batch_allocation_duration_seconds",
		Help:    "Duration of batch allocation runs",
		Buckets: prometheus.DefBuckets,
	})

	batchesCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "batches_created_total",
		Help: "Batches created by the allocator",
	})

	studentsAssigned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "students_assigned_total",
		Help: "Students placed into batches by the allocator",
	})

	unsupervisedBatches := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "batches_unsupervised_total",
		Help: "Batches created without an eligible faculty supervisor",
	})

	manualAssignmentTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "faculty_manual_assignments_total",
		Help: "Manual faculty assignment attempts by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHits, cacheMisses,
		allocationRuns, allocationDuration, batchesCreated, studentsAssigned, unsupervisedBatches, manualAssignmentTotal, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:              registry,
		handler:               handler,
		requestDuration:       requestDuration,
		requestTotal:          requestTotal,
		cacheLatency:          cacheLatency,
		cacheWrite:            cacheWrite,
		cacheHits:             cacheHits,
		cacheMisses:           cacheMisses,
		allocationRuns:        allocationRuns,
		allocationDuration:    allocationDuration,
		batchesCreated:        batchesCreated,
		studentsAssigned:      studentsAssigned,
		unsupervisedBatches:   unsupervisedBatches,
		manualAssignmentTotal: manualAssignmentTotal,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveAllocation records the outcome of one batch allocation run.
func (m *MetricsService) ObserveAllocation(outcome string, batches, students, unsupervised int, duration time.Duration) {
	if m == nil {
		return
	}
	m.allocationRuns.WithLabelValues(outcome).Inc()
	m.allocationDuration.Observe(duration.Seconds())
	m.batchesCreated.Add(float64(batches))
	m.studentsAssigned.Add(float64(students))
	m.unsupervisedBatches.Add(float64(unsupervised))
}

// ObserveManualAssignment counts manual faculty assignment attempts.
func (m *MetricsService) ObserveManualAssignment(outcome string) {
	if m == nil {
		return
	}
	m.manualAssignmentTotal.WithLabelValues(outcome).Inc()
}
