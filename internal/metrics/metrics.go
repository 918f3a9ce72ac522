package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodsync_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodsync_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foodsync_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)

	RateLimitRejects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodsync_rate_limit_rejects_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"route"},
	)

	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodsync_llm_requests_total",
			Help: "Calls made to the LLM provider",
		},
		[]string{"operation", "outcome"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodsync_llm_request_duration_seconds",
			Help:    "LLM call latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"operation"},
	)

	AnalysisCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodsync_analysis_cache_total",
			Help: "Nutrition analysis cache lookups",
		},
		[]string{"result"},
	)

	ReceiptJobsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodsync_receipt_jobs_completed_total",
			Help: "Receipt scans processed successfully",
		},
	)

	ReceiptJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodsync_receipt_jobs_failed_total",
			Help: "Receipt scans that ended in failure",
		},
		[]string{"stage"},
	)

	ReceiptJobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "foodsync_receipt_job_duration_seconds",
			Help:    "Duration of receipt scan processing in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 120},
		},
	)
)

// Middleware records request count, latency and in-flight requests. Routes are
// labelled by their pattern so ids do not blow up cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		HTTPRequestsInFlight.Inc()
		defer HTTPRequestsInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveLLM records the outcome of one LLM call.
func ObserveLLM(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	LLMRequestsTotal.WithLabelValues(operation, outcome).Inc()
	LLMRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
