package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API
// and the hybrid-storage layer.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec
	online          prometheus.Gauge
	pendingChanges  prometheus.Gauge
	syncTotal       *prometheus.CounterVec
	syncReplayed    prometheus.Counter
	syncFailed      prometheus.Counter
}

// NewMetricsService registers the core Prometheus collectors.
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

	storeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_operation_duration_seconds",
		Help:    "Duration of store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	online := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "remote_store_online",
		Help: "Whether the remote store is currently reachable (1) or not (0)",
	})

	pendingChanges := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pending_changes",
		Help: "Queued offline changes awaiting replay",
	})

	syncTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_passes_total",
		Help: "Reconciliation passes by outcome",
	}, []string{"outcome"})

	syncReplayed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sync_changes_replayed_total",
		Help: "Queued changes successfully replayed against the remote store",
	})

	syncFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sync_changes_failed_total",
		Help: "Queued changes whose replay failed and stayed queued",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, storeDuration, online, pendingChanges, syncTotal, syncReplayed, syncFailed, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		storeDuration:   storeDuration,
		online:          online,
		pendingChanges:  pendingChanges,
		syncTotal:       syncTotal,
		syncReplayed:    syncReplayed,
		syncFailed:      syncFailed,
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

// ObserveHTTPRequest records one finished request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveStoreOperation records one store call.
func (m *MetricsService) ObserveStoreOperation(operation, table string, duration time.Duration) {
	if m == nil {
		return
	}
	m.storeDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// SetOnline publishes the connectivity indicator.
func (m *MetricsService) SetOnline(online bool) {
	if m == nil {
		return
	}
	if online {
		m.online.Set(1)
	} else {
		m.online.Set(0)
	}
}

// SetPendingChanges publishes the queue depth.
func (m *MetricsService) SetPendingChanges(n int) {
	if m == nil {
		return
	}
	m.pendingChanges.Set(float64(n))
}

// ObserveSyncPass records one reconciliation pass.
func (m *MetricsService) ObserveSyncPass(replayed, failed int) {
	if m == nil {
		return
	}
	outcome := "clean"
	if failed > 0 {
		outcome = "partial"
	}
	m.syncTotal.WithLabelValues(outcome).Inc()
	m.syncReplayed.Add(float64(replayed))
	m.syncFailed.Add(float64(failed))
}
