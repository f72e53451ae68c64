// internal/app/system/metrics/metrics.go
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	resourcestore "github.com/dalemusser/edulibrary/internal/app/store/resources"
	"github.com/dalemusser/edulibrary/internal/app/system/inputval"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// loginsTotal counts login attempts by result (success, invalid, already_signed_in).
	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edulibrary_logins_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	// mutationsTotal counts store mutations by operation and outcome.
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edulibrary_resource_mutations_total",
		Help: "Resource store mutations by operation and outcome",
	}, []string{"operation", "outcome"})

	librariesOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "edulibrary_libraries_open",
		Help: "Per-session resource libraries currently held in memory",
	})

	librariesEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edulibrary_libraries_evicted_total",
		Help: "Idle libraries dropped by the eviction worker",
	})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "edulibrary_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern, method and status",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
	}, []string{"route", "method", "status"})
)

// Login outcomes.
const (
	LoginSuccess         = "success"
	LoginInvalid         = "invalid"
	LoginAlreadySignedIn = "already_signed_in"
)

// Mutation operations.
const (
	OpDownload = "download"
	OpEdit     = "edit"
	OpDelete   = "delete"
	OpReview   = "review"
)

// Mutation outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// ObserveLogin records one login attempt.
func ObserveLogin(result string) {
	loginsTotal.WithLabelValues(result).Inc()
}

// ObserveMutation records one store mutation.
func ObserveMutation(op, outcome string) {
	mutationsTotal.WithLabelValues(op, outcome).Inc()
}

// ObserveResult records a mutation, classifying err by the store and input
// sentinels.
func ObserveResult(op string, err error) {
	ObserveMutation(op, Outcome(err))
}

// Outcome maps a mutation error onto an outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, resourcestore.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, resourcestore.ErrValidation), errors.Is(err, inputval.ErrInvalid):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

// MutationsCounter exposes one mutation series for tests and diagnostics.
func MutationsCounter(op, outcome string) prometheus.Counter {
	return mutationsTotal.WithLabelValues(op, outcome)
}

// SetLibrariesOpen publishes the registry size.
func SetLibrariesOpen(n int) {
	librariesOpen.Set(float64(n))
}

// AddLibrariesEvicted counts libraries dropped for being idle.
func AddLibrariesEvicted(n int) {
	librariesEvicted.Add(float64(n))
}

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request latency labelled by chi route pattern, so
// /library/1/download and /library/2/download share a series.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		requestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
