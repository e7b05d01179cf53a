package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// assignment engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	autoAssignments *prometheus.CounterVec
	engineDuration  prometheus.Observer
	engineFailures  prometheus.Counter
	notifyFailures  prometheus.Counter
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

	autoAssignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "duty_auto_assignments_total",
		Help: "Assignments created by the automatic coverage engine",
	}, []string{"category", "tier"})

	engineDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "duty_assignment_run_seconds",
		Help:    "Duration of automatic assignment runs",
		Buckets: prometheus.DefBuckets,
	})

	engineFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "duty_assignment_failures_total",
		Help: "Automatic assignment runs that ended in error",
	})

	notifyFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_failures_total",
		Help: "Notification deliveries that exhausted their retries",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, autoAssignments, engineDuration, engineFailures, notifyFailures, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		autoAssignments: autoAssignments,
		engineDuration:  engineDuration,
		engineFailures:  engineFailures,
		notifyFailures:  notifyFailures,
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

// ObserveHTTPRequest records per-route request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordAutoAssignment counts one assignment created by the engine.
func (m *MetricsService) RecordAutoAssignment(dutyID, staffID, category string, tier int) {
	if m == nil {
		return
	}
	m.autoAssignments.WithLabelValues(category, fmt.Sprintf("%d", tier)).Inc()
}

// ObserveEngineRun records the duration of one automatic assignment run.
func (m *MetricsService) ObserveEngineRun(duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.engineDuration.Observe(duration.Seconds())
	if err != nil {
		m.engineFailures.Inc()
	}
}

// RecordNotificationFailure counts a delivery that exhausted its retries.
func (m *MetricsService) RecordNotificationFailure() {
	if m == nil {
		return
	}
	m.notifyFailures.Inc()
}
