package errors_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/edulibrary/internal/app/features/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorLogger_HTMX_PlainText(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	el := uierrors.NewErrorLogger(zap.New(core))

	tests := []struct {
		name      string
		call      func(w http.ResponseWriter, r *http.Request)
		wantCode  int
		wantLevel string
	}{
		{
			"server error",
			func(w http.ResponseWriter, r *http.Request) {
				el.LogServerError(w, r, "boom", errors.New("disk"), "A server error occurred.", "/library")
			},
			http.StatusInternalServerError, "error",
		},
		{
			"bad request",
			func(w http.ResponseWriter, r *http.Request) {
				el.LogBadRequest(w, r, "parse form", errors.New("bad"), "Invalid form data.", "/library")
			},
			http.StatusBadRequest, "warn",
		},
		{
			"not found",
			func(w http.ResponseWriter, r *http.Request) {
				el.LogNotFound(w, r, "missing resource", errors.New("nope"), "Resource not found.", "/library")
			},
			http.StatusNotFound, "info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs.TakeAll()
			req := httptest.NewRequest("POST", "/library/9/edit", nil)
			req.Header.Set("HX-Request", "true")
			rec := httptest.NewRecorder()

			tt.call(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantCode)
			}
			if strings.Contains(rec.Body.String(), "<html") {
				t.Error("HTMX response should not render the full layout")
			}
			entries := logs.TakeAll()
			if len(entries) != 1 {
				t.Fatalf("expected 1 log entry, got %d", len(entries))
			}
			if got := entries[0].Level.String(); got != tt.wantLevel {
				t.Errorf("level: got %s, want %s", got, tt.wantLevel)
			}
			if entries[0].ContextMap()["path"] != "/library/9/edit" {
				t.Errorf("path field: %v", entries[0].ContextMap())
			}
		})
	}
}

func TestErrorLogger_NilLoggerDoesNotPanic(t *testing.T) {
	var el *uierrors.ErrorLogger

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	el.LogBadRequest(rec, req, "msg", nil, "Invalid.", "/")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d", rec.Code)
	}
}
