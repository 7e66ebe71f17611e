package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/escola-api/internal/models"
)

// Billing events counted by MetricsService.
const (
	BillingEventEnrollmentCreated    = "enrollment_created"
	BillingEventEnrollmentCancelled  = "enrollment_cancelled"
	BillingEventInstallmentCreated   = "installment_created"
	BillingEventPaymentRecorded      = "payment_recorded"
	BillingEventInstallmentCancelled = "installment_cancelled"
	BillingEventAmountEdited         = "amount_edited"
	BillingEventInstallmentOverdue   = "installment_overdue"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for the health endpoint.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	cacheEvictions  *prometheus.CounterVec
	cacheHitRatio   prometheus.Gauge
	dbQueryDuration *prometheus.HistogramVec
	billingEvents   *prometheus.CounterVec
	exportDuration  *prometheus.HistogramVec

	eventsMu    sync.Mutex
	eventCounts map[string]uint64

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	dbQueryCount         uint64
	dbQueryDurationTotal uint64
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

	cacheLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations by cache and operation",
		Buckets: prometheus.DefBuckets,
	}, []string{"cache", "operation"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by cache and result",
	}, []string{"cache", "result"})

	cacheEvictions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_invalidations_total",
		Help: "Cache invalidations by cache",
	}, []string{"cache"})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	billingEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "billing_events_total",
		Help: "Billing lifecycle events by type",
	}, []string{"event"})

	exportDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_export_duration_seconds",
		Help:    "Duration of ledger export jobs",
		Buckets: prometheus.DefBuckets,
	}, []string{"format", "outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheLookups, cacheEvictions, cacheHitRatio, dbQueryDuration, billingEvents, exportDuration, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheLookups:    cacheLookups,
		cacheEvictions:  cacheEvictions,
		cacheHitRatio:   cacheHitRatio,
		dbQueryDuration: dbQueryDuration,
		billingEvents:   billingEvents,
		exportDuration:  exportDuration,
		eventCounts:     make(map[string]uint64),
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

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a lookup against cache and updates the hit ratio.
func (m *MetricsService) RecordCacheOperation(cache string, hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.WithLabelValues(cache, "get").Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues(cache, "hit").Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheLookups.WithLabelValues(cache, "miss").Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration of a write to cache.
func (m *MetricsService) ObserveCacheWrite(cache string, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.WithLabelValues(cache, "set").Observe(duration.Seconds())
}

// RecordCacheInvalidation counts a cleared cache.
func (m *MetricsService) RecordCacheInvalidation(cache string) {
	if m == nil {
		return
	}
	m.cacheEvictions.WithLabelValues(cache).Inc()
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.dbQueryCount, 1)
	atomic.AddUint64(&m.dbQueryDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordBillingEvent increments the billing event counter.
func (m *MetricsService) RecordBillingEvent(event string) {
	m.AddBillingEvents(event, 1)
}

// AddBillingEvents adds n occurrences of event.
func (m *MetricsService) AddBillingEvents(event string, n uint64) {
	if m == nil || n == 0 {
		return
	}
	m.billingEvents.WithLabelValues(event).Add(float64(n))
	m.eventsMu.Lock()
	m.eventCounts[event] += n
	m.eventsMu.Unlock()
}

// ObserveExport records how long a ledger export job took.
func (m *MetricsService) ObserveExport(format string, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.exportDuration.WithLabelValues(format, outcome).Observe(duration.Seconds())
}

// Snapshot returns aggregated metrics for the health endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	dbCount := atomic.LoadUint64(&m.dbQueryCount)
	dbDuration := atomic.LoadUint64(&m.dbQueryDurationTotal)

	var cacheRatio float64
	totalLookups := hits + misses
	if totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgDBMs float64
	if dbCount > 0 {
		avgDBMs = float64(dbDuration) / float64(dbCount) / float64(time.Millisecond)
	}

	m.eventsMu.Lock()
	events := make(map[string]uint64, len(m.eventCounts))
	for k, v := range m.eventCounts {
		events[k] = v
	}
	m.eventsMu.Unlock()

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		DBQueryCount:             dbCount,
		AverageDBQueryDurationMs: avgDBMs,
		BillingEvents:            events,
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
