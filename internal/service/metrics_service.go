package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	holidaySyncTotal  *prometheus.CounterVec
	absenceRejections *prometheus.CounterVec
	cacheTotal        *prometheus.CounterVec
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

	holidaySyncTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "holiday_sync_total",
		Help: "Holiday sync attempts by outcome",
	}, []string{"status"})

	absenceRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "absence_rejections_total",
		Help: "Absence requests rejected by the policy engine, by rule",
	}, []string{"rule"})

	cacheTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "board_cache_total",
		Help: "Week board cache lookups by outcome",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, holidaySyncTotal, absenceRejections, cacheTotal, goroutines)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		holidaySyncTotal:  holidaySyncTotal,
		absenceRejections: absenceRejections,
		cacheTotal:        cacheTotal,
	}
}

// Handler serves the /metrics scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveRequest records one served HTTP request.
func (s *MetricsService) ObserveRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// RecordHolidaySync counts one sync attempt ("ok" or "error").
func (s *MetricsService) RecordHolidaySync(status string) {
	s.holidaySyncTotal.WithLabelValues(status).Inc()
}

// RecordAbsenceRejection counts one policy rejection by rule tag.
func (s *MetricsService) RecordAbsenceRejection(rule string) {
	s.absenceRejections.WithLabelValues(rule).Inc()
}

// RecordCacheLookup counts one board cache lookup ("hit" or "miss").
func (s *MetricsService) RecordCacheLookup(result string) {
	s.cacheTotal.WithLabelValues(result).Inc()
}
