// Package metrics provides Prometheus instrumentation for the listing service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "knownorigin"

var (
	// FragmentsNormalized counts fragments turned into assets, by shape.
	FragmentsNormalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fragments_normalized_total",
		Help:      "Fragments normalized into assets",
	}, []string{"type"})

	// OrdersDerived counts sale orders derived from editions.
	OrdersDerived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_derived_total",
		Help:      "Sale orders derived from edition fragments",
	})

	// AggregationDuration tracks pipeline call latency by operation and outcome.
	AggregationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "aggregation_duration_seconds",
		Help:      "Aggregation pipeline duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "outcome"})

	// SubgraphRequests counts outbound subgraph queries by outcome.
	SubgraphRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "subgraph",
		Name:      "requests_total",
		Help:      "Subgraph GraphQL requests",
	}, []string{"outcome"})

	// QuoteRefreshes counts quote worker refreshes by outcome.
	QuoteRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "quotes",
		Name:      "refreshes_total",
		Help:      "External quote refreshes",
	}, []string{"outcome"})

	// TransfersSubmitted counts submitted transfer transactions by outcome.
	TransfersSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transfers_submitted_total",
		Help:      "Transfer transactions submitted",
	}, []string{"outcome"})

	// HTTPRequestsTotal counts HTTP requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "route"})
)

// Outcome labels a result for the *_total counters.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveSince records the duration of an aggregation operation started at start.
func ObserveSince(operation string, start time.Time, err error) {
	AggregationDuration.WithLabelValues(operation, Outcome(err)).Observe(time.Since(start).Seconds())
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request metrics. The route label uses the matched ServeMux pattern
// so path parameters do not blow up cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
