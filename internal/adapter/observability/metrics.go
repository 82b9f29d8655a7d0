package observability

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider and operation",
		},
		[]string{"provider", "operation"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"provider", "operation"},
	)

	TurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_turns_total",
			Help: "Total number of conversation turns by resulting status",
		},
		[]string{"status"},
	)
	IntentExtractionFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "intent_extraction_failures_total",
			Help: "Total number of turns degraded by extraction or parse failures",
		},
	)
	RerankFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rerank_fallback_total",
			Help: "Total number of reranks that fell back to similarity order",
		},
		[]string{"reason"},
	)
	SearchCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_candidates_returned",
			Help:    "Distribution of deduplicated candidate counts per search",
			Buckets: []float64{0, 1, 5, 10, 20, 30},
		},
	)
)

// InitMetrics registers all Prometheus collectors once per process.
func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(AIRequestsTotal)
	prometheus.MustRegister(AIRequestDuration)
	prometheus.MustRegister(TurnsTotal)
	prometheus.MustRegister(IntentExtractionFailures)
	prometheus.MustRegister(RerankFallbackTotal)
	prometheus.MustRegister(SearchCandidates)
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}

// ObserveTurn records the outcome of one conversation turn.
func ObserveTurn(status string) {
	TurnsTotal.WithLabelValues(status).Inc()
}

// ObserveRerankFallback records a rerank that degraded to similarity order.
func ObserveRerankFallback(reason string) {
	RerankFallbackTotal.WithLabelValues(reason).Inc()
}
