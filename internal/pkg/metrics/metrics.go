package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "stajlink",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stajlink",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stajlink",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	otpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stajlink",
			Subsystem: "otp",
			Name:      "requests_total",
			Help:      "Total number of company OTP requests.",
		},
		[]string{"outcome"},
	)

	importRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stajlink",
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "Total number of processed bulk import rows.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(httpInFlight, httpRequests, httpDuration, otpRequests, importRows)
}

// Handler returns the /metrics endpoint handler for the application registry.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware observes request counts, durations and in-flight gauge.
// The route template is used as the path label to keep cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInFlight.Inc()

		c.Next()

		httpInFlight.Dec()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// ObserveOTPRequest records an OTP request outcome (issued, rate_limited, failed).
func ObserveOTPRequest(outcome string) {
	otpRequests.WithLabelValues(outcome).Inc()
}

// ObserveImportRow records a bulk import row outcome (ok, failed).
func ObserveImportRow(outcome string) {
	importRows.WithLabelValues(outcome).Inc()
}
