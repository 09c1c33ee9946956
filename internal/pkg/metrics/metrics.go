package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bboxmap",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bboxmap",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bboxmap",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Form metrics
	ValidationOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bboxmap",
		Subsystem: "form",
		Name:      "validation_outcomes_total",
		Help:      "Submissions by validation outcome",
	}, []string{"result"})

	SubmissionsIgnored = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bboxmap",
		Subsystem: "form",
		Name:      "submissions_ignored_total",
		Help:      "Valid submissions ignored because a fetch was already in flight",
	})

	ConversionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bboxmap",
		Subsystem: "form",
		Name:      "conversion_failures_total",
		Help:      "Map payloads that produced no usable geometry",
	})

	RenderedFeatures = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bboxmap",
		Subsystem: "form",
		Name:      "rendered_features",
		Help:      "Number of features per rendered map",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})

	// OSM API metrics
	OSMFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bboxmap",
		Subsystem: "osm",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of OSM map export requests",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	OSMFetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bboxmap",
		Subsystem: "osm",
		Name:      "fetch_errors_total",
		Help:      "Total failed OSM map export requests",
	}, []string{"reason"})

	// Session store metrics
	SessionStoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bboxmap",
		Subsystem: "session",
		Name:      "store_errors_total",
		Help:      "Total session store failures",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
