package home_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/edulibrary/internal/app/features/home"
	"github.com/dalemusser/edulibrary/internal/app/system/auth"
	"go.uber.org/zap"
)

func TestServeRoot(t *testing.T) {
	tests := []struct {
		name string
		user *auth.SessionUser
		want string
	}{
		{"anonymous", nil, "/login"},
		{"user", &auth.SessionUser{Username: "user", Role: "user", LibraryKey: "k"}, "/library"},
		{"admin", &auth.SessionUser{Username: "admin", Role: "admin", LibraryKey: "k"}, "/library"},
	}

	h := home.NewHandler(zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.user != nil {
				req = auth.WithTestUser(req, tt.user)
			}
			rec := httptest.NewRecorder()

			h.ServeRoot(rec, req)

			if rec.Code != http.StatusSeeOther {
				t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
			}
			if loc := rec.Header().Get("Location"); loc != tt.want {
				t.Errorf("Location: got %q, want %q", loc, tt.want)
			}
		})
	}
}
