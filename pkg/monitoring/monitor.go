package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"method", "endpoint"},
	)

	QuizzesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quizify_quizzes_created_total",
			Help: "Quizzes created by teachers",
		},
	)

	AttemptsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizify_attempts_submitted_total",
			Help: "Attempts persisted, by what triggered the submission",
		},
		[]string{"trigger"},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "quizify_active_sessions",
			Help: "Quiz-taking sessions currently held in memory",
		},
	)

	GeneratedQuestions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quizify_generated_questions_total",
			Help: "Questions produced by the document question generator",
		},
	)

	StoreLoadFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizify_store_load_failures_total",
			Help: "Stored collections discarded because they could not be decoded",
		},
		[]string{"key"},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			QuizzesCreated,
			AttemptsSubmitted,
			ActiveSessions,
			GeneratedQuestions,
			StoreLoadFailures,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
