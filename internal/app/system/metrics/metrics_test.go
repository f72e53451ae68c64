package metrics_test

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	resourcestore "github.com/dalemusser/edulibrary/internal/app/store/resources"
	"github.com/dalemusser/edulibrary/internal/app/system/inputval"
	"github.com/dalemusser/edulibrary/internal/app/system/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHandler_ExposesCounters(t *testing.T) {
	metrics.ObserveLogin(metrics.LoginSuccess)
	metrics.ObserveMutation(metrics.OpDownload, metrics.OutcomeOK)
	metrics.SetLibrariesOpen(3)
	metrics.AddLibrariesEvicted(1)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{
		"edulibrary_logins_total",
		"edulibrary_resource_mutations_total",
		"edulibrary_libraries_open 3",
		"edulibrary_libraries_evicted_total",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("expected %q in exposition", name)
		}
	}
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Post("/library/{id}/download", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusSeeOther)
	})

	for _, path := range []string{"/library/1/download", "/library/2/download"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest("POST", path, nil))
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("%s: status %d", path, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	if !strings.Contains(body, `route="/library/{id}/download"`) {
		t.Error("expected latency series labelled with the route pattern")
	}
	if strings.Contains(body, `route="/library/1/download"`) {
		t.Error("raw paths must not become label values")
	}
}

func TestObserveMutation_Counts(t *testing.T) {
	before := testutil.ToFloat64(metrics.MutationsCounter(metrics.OpDelete, metrics.OutcomeNotFound))
	metrics.ObserveMutation(metrics.OpDelete, metrics.OutcomeNotFound)
	metrics.ObserveMutation(metrics.OpDelete, metrics.OutcomeNotFound)
	after := testutil.ToFloat64(metrics.MutationsCounter(metrics.OpDelete, metrics.OutcomeNotFound))

	if after-before != 2 {
		t.Errorf("counter delta: got %v, want 2", after-before)
	}
}

func TestOutcome(t *testing.T) {
	_, reviewErr := inputval.ParseReview("", "c", "3")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, metrics.OutcomeOK},
		{"not found", resourcestore.ErrNotFound, metrics.OutcomeNotFound},
		{"wrapped not found", fmt.Errorf("delete: %w", resourcestore.ErrNotFound), metrics.OutcomeNotFound},
		{"store validation", &resourcestore.ValidationError{Field: "rating", Message: "x"}, metrics.OutcomeInvalid},
		{"input validation", reviewErr, metrics.OutcomeInvalid},
		{"other", errors.New("boom"), metrics.OutcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := metrics.Outcome(tt.err); got != tt.want {
				t.Errorf("Outcome(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
