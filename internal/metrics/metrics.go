package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ScanWorkOrdersGenerated counts work orders created by the preventive scan.
	ScanWorkOrdersGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cmms_scan_workorders_generated_total",
			Help: "Total number of work orders generated by the preventive scan",
		},
	)

	// ScanErrors counts per-schedule failures during scan runs.
	ScanErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cmms_scan_errors_total",
			Help: "Total number of schedules that failed during scan runs",
		},
	)

	// LaborSessionsActive is the number of labor sessions currently running.
	LaborSessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cmms_labor_sessions_active",
			Help: "Number of labor sessions currently running",
		},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal,
			ScanWorkOrdersGenerated, ScanErrors, LaborSessionsActive)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /v1/workorders/123 -> /v1/workorders/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncScanWorkOrdersGenerated increments the generated work order counter.
func IncScanWorkOrdersGenerated() {
	ScanWorkOrdersGenerated.Inc()
}

// IncScanErrors increments the per-schedule scan failure counter.
func IncScanErrors() {
	ScanErrors.Inc()
}

// IncLaborSessionsActive increments the active labor session gauge (call on start).
func IncLaborSessionsActive() {
	LaborSessionsActive.Inc()
}

// DecLaborSessionsActive decrements the active labor session gauge (call on close).
func DecLaborSessionsActive() {
	LaborSessionsActive.Dec()
}
