package login_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/edulibrary/internal/app/features/errors"
	"github.com/dalemusser/edulibrary/internal/app/features/login"
	"github.com/dalemusser/edulibrary/internal/app/system/auth"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) *login.Handler {
	t.Helper()
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)

	// Create a session manager for testing (dev mode, weak key allowed)
	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	// Nil audit logger is a no-op.
	return login.NewHandler(sessionMgr, auth.DefaultCredentials(), errLog, nil, logger)
}

func postLogin(h *login.Handler, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()

	// Failure paths render a template, which panics without an initialized engine.
	func() {
		defer func() { recover() }()
		h.HandleLoginPost(rec, req)
	}()
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			return c
		}
	}
	return nil
}

func TestHandleLoginPost_Success(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{"admin", "admin", "admin123"},
		{"user", "user", "user123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)
			rec := postLogin(h, url.Values{"username": {tt.username}, "password": {tt.password}})

			if rec.Code != http.StatusSeeOther {
				t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
			}
			if loc := rec.Header().Get("Location"); loc != "/library" {
				t.Errorf("Location: got %q, want %q", loc, "/library")
			}
			if sessionCookie(rec) == nil {
				t.Error("expected session cookie to be set")
			}
		})
	}
}

func TestHandleLoginPost_WithReturnURL(t *testing.T) {
	h := newTestHandler(t)

	rec := postLogin(h, url.Values{
		"username": {"user"},
		"password": {"user123"},
		"return":   {"/forbidden"},
	})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/forbidden" {
		t.Errorf("Location: got %q", loc)
	}
}

func TestHandleLoginPost_RejectsOffsiteReturn(t *testing.T) {
	h := newTestHandler(t)

	rec := postLogin(h, url.Values{
		"username": {"user"},
		"password": {"user123"},
		"return":   {"https://evil.example.com/"},
	})

	if loc := rec.Header().Get("Location"); strings.Contains(loc, "evil") {
		t.Errorf("open redirect: Location %q", loc)
	}
}

func TestHandleLoginPost_InvalidCredentials(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "admin", "wrong"},
		{"unknown user", "guest", "guest"},
		{"case mismatch", "ADMIN", "admin123"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)
			rec := postLogin(h, url.Values{"username": {tt.username}, "password": {tt.password}})

			if rec.Code == http.StatusSeeOther {
				t.Error("failed login should not redirect")
			}
			if sessionCookie(rec) != nil {
				t.Error("failed login should not set a session cookie")
			}
		})
	}
}

func TestHandleLoginPost_AlreadySignedIn(t *testing.T) {
	h := newTestHandler(t)

	first := postLogin(h, url.Values{"username": {"user"}, "password": {"user123"}})
	c := sessionCookie(first)
	if c == nil {
		t.Fatal("expected a session cookie from the first login")
	}

	// Trying to escalate without logging out is refused.
	rec := postLogin(h, url.Values{"username": {"admin"}, "password": {"admin123"}}, c)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/library" {
		t.Errorf("Location: got %q", loc)
	}
	if sessionCookie(rec) != nil {
		t.Error("refused login should not rewrite the session cookie")
	}
}

func TestHandleLoginPost_HTMX(t *testing.T) {
	h := newTestHandler(t)

	form := url.Values{"username": {"admin"}, "password": {"admin123"}}
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	h.HandleLoginPost(rec, req)

	if hx := rec.Header().Get("HX-Redirect"); hx != "/library" {
		t.Errorf("HX-Redirect: got %q", hx)
	}
}

func TestServeLogin_SignedInRedirects(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/login", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{Username: "user", Role: "user", LibraryKey: "k"})
	rec := httptest.NewRecorder()

	h.ServeLogin(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/library" {
		t.Errorf("Location: got %q", loc)
	}
}
