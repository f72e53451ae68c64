package library_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/edulibrary/internal/app/features/errors"
	"github.com/dalemusser/edulibrary/internal/app/features/library"
	"github.com/dalemusser/edulibrary/internal/app/seed"
	"github.com/dalemusser/edulibrary/internal/app/store/libraries"
	resourcestore "github.com/dalemusser/edulibrary/internal/app/store/resources"
	"github.com/dalemusser/edulibrary/internal/app/system/auth"
	"github.com/dalemusser/edulibrary/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type fixture struct {
	router http.Handler
	libs   *libraries.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()

	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	catalog, err := seed.Default()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	libs, err := libraries.New(catalog, logger)
	if err != nil {
		t.Fatalf("libraries.New: %v", err)
	}

	h := library.NewHandler(libs, uierrors.NewErrorLogger(logger), nil, logger)
	r := chi.NewRouter()
	r.Mount("/library", library.Routes(h, sm))
	return &fixture{router: r, libs: libs}
}

var (
	adminUser = &auth.SessionUser{Username: "admin", Role: models.RoleAdmin, LibraryKey: "admin-key"}
	plainUser = &auth.SessionUser{Username: "user", Role: models.RoleUser, LibraryKey: "user-key"}
)

// do sends a request through the router. Paths that render a full page
// panic without a booted template engine; that is recovered and the
// recorder is returned as-is.
func (f *fixture) do(method, target string, form url.Values, u *auth.SessionUser, htmx bool) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "text/html")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	if u != nil {
		req = auth.WithTestUser(req, u)
	}
	rec := httptest.NewRecorder()
	func() {
		defer func() { recover() }()
		f.router.ServeHTTP(rec, req)
	}()
	return rec
}

func (f *fixture) resource(t *testing.T, key string, id int) (models.Resource, bool) {
	t.Helper()
	var (
		res models.Resource
		err error
	)
	f.libs.Open(key).View(func(s *resourcestore.Store) {
		res, err = s.Get(id)
	})
	return res, err == nil
}

func (f *fixture) draft(key string) (models.EditDraft, bool) {
	var (
		d  models.EditDraft
		ok bool
	)
	f.libs.Open(key).View(func(s *resourcestore.Store) {
		d, ok = s.ActiveDraft()
	})
	return d, ok
}

func TestServeList_RequiresSignIn(t *testing.T) {
	f := newFixture(t)

	rec := f.do("GET", "/library", nil, nil, false)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/login") {
		t.Errorf("Location: got %q", loc)
	}
}

func TestHandleDownload(t *testing.T) {
	f := newFixture(t)
	before, _ := f.resource(t, plainUser.LibraryKey, 1)

	rec := f.do("POST", "/library/1/download", url.Values{"list_q": {"database"}}, plainUser, false)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/library?q=database#resource-1" {
		t.Errorf("Location: got %q", loc)
	}
	after, _ := f.resource(t, plainUser.LibraryKey, 1)
	if after.Downloads != before.Downloads+1 {
		t.Errorf("downloads: got %d, want %d", after.Downloads, before.Downloads+1)
	}
}

func TestHandleDownload_UnknownAndBadID(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		path string
		want int
	}{
		{"/library/999/download", http.StatusNotFound},
		{"/library/abc/download", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := f.do("POST", tt.path, url.Values{}, plainUser, true)
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandleReview(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		wantAdd bool
	}{
		{"valid", url.Values{"user": {"Dana"}, "comment": {"Clear and useful"}, "rating": {"4"}}, true},
		{"blank name", url.Values{"user": {"  "}, "comment": {"ok"}, "rating": {"4"}}, false},
		{"blank comment", url.Values{"user": {"Dana"}, "comment": {""}, "rating": {"4"}}, false},
		{"rating too high", url.Values{"user": {"Dana"}, "comment": {"ok"}, "rating": {"6"}}, false},
		{"rating fractional", url.Values{"user": {"Dana"}, "comment": {"ok"}, "rating": {"4.5"}}, false},
		{"rating missing", url.Values{"user": {"Dana"}, "comment": {"ok"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			before, _ := f.resource(t, plainUser.LibraryKey, 2)

			rec := f.do("POST", "/library/2/reviews", tt.form, plainUser, false)

			after, _ := f.resource(t, plainUser.LibraryKey, 2)
			added := len(after.Reviews) == len(before.Reviews)+1
			if added != tt.wantAdd {
				t.Fatalf("review added = %v, want %v", added, tt.wantAdd)
			}
			if tt.wantAdd {
				if rec.Code != http.StatusSeeOther {
					t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
				}
				got := after.Reviews[len(after.Reviews)-1]
				if got.User != "Dana" || got.Rating != 4 {
					t.Errorf("review: got %+v", got)
				}
			} else if rec.Code == http.StatusSeeOther {
				t.Error("rejected review should re-render, not redirect")
			}
		})
	}
}

func TestHandleReview_UnknownResource(t *testing.T) {
	f := newFixture(t)

	form := url.Values{"user": {"Dana"}, "comment": {"ok"}, "rating": {"3"}}
	rec := f.do("POST", "/library/42/reviews", form, plainUser, true)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestAdminRoutes_ForbiddenForUser(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		method string
		path   string
	}{
		{"GET", "/library/1/edit"},
		{"POST", "/library/1/edit"},
		{"POST", "/library/edit/cancel"},
		{"POST", "/library/1/delete"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := f.do(tt.method, tt.path, url.Values{}, plainUser, false)
			if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/forbidden" {
				t.Errorf("got %d -> %q, want 303 -> /forbidden", rec.Code, rec.Header().Get("Location"))
			}
		})
	}

	if _, ok := f.resource(t, plainUser.LibraryKey, 1); !ok {
		t.Error("resource should survive a forbidden delete")
	}
}

func TestEditFlow(t *testing.T) {
	f := newFixture(t)
	key := adminUser.LibraryKey
	orig, _ := f.resource(t, key, 1)

	// Begin
	rec := f.do("GET", "/library/1/edit", nil, adminUser, false)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("begin edit: expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/library#resource-1" {
		t.Errorf("begin edit Location: got %q", loc)
	}
	d, ok := f.draft(key)
	if !ok || d.ResourceID != 1 || d.Title != orig.Title {
		t.Fatalf("draft: got %+v ok=%v", d, ok)
	}

	// Save
	form := url.Values{
		"title":       {"Databases, Revised"},
		"description": {"Updated notes<script>alert(1)</script>"},
		"category":    {"Computer Science"},
	}
	rec = f.do("POST", "/library/1/edit", form, adminUser, false)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("save edit: expected 303, got %d", rec.Code)
	}

	got, _ := f.resource(t, key, 1)
	if got.Title != "Databases, Revised" || got.Category != "Computer Science" {
		t.Errorf("saved resource: %+v", got)
	}
	if got.Description != "Updated notes<script>alert(1)</script>" {
		t.Errorf("description should be stored as typed, got %q", got.Description)
	}
	if got.ID != orig.ID || got.UploadedBy != orig.UploadedBy || got.Downloads != orig.Downloads || len(got.Reviews) != len(orig.Reviews) {
		t.Errorf("non-editable fields changed: got %+v, orig %+v", got, orig)
	}
	if _, ok := f.draft(key); ok {
		t.Error("draft should be cleared after save")
	}

	// Other sessions are untouched.
	other, _ := f.resource(t, plainUser.LibraryKey, 1)
	if other.Title != orig.Title {
		t.Errorf("edit leaked into another session: %q", other.Title)
	}
}

func TestHandleEdit_DescriptionStoredAsTyped(t *testing.T) {
	f := newFixture(t)
	key := adminUser.LibraryKey
	const text = "Tips & tricks for Newton's laws"

	form := url.Values{
		"title":       {"Calculus Formulas"},
		"description": {text},
		"category":    {"Mathematics"},
	}
	rec := f.do("POST", "/library/3/edit", form, adminUser, false)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("save edit: expected 303, got %d", rec.Code)
	}

	got, _ := f.resource(t, key, 3)
	if got.Description != text {
		t.Errorf("description: got %q, want %q", got.Description, text)
	}
}

func TestHandleEdit_TooLongRejected(t *testing.T) {
	f := newFixture(t)
	key := adminUser.LibraryKey
	orig, _ := f.resource(t, key, 1)

	form := url.Values{"title": {strings.Repeat("x", 201)}, "description": {""}, "category": {"x"}}
	rec := f.do("POST", "/library/1/edit", form, adminUser, false)

	if rec.Code == http.StatusSeeOther {
		t.Error("oversized title should re-render, not redirect")
	}
	if got, _ := f.resource(t, key, 1); got.Title != orig.Title {
		t.Errorf("title changed to %q", got.Title)
	}
}

func TestHandleCancelEdit(t *testing.T) {
	f := newFixture(t)
	key := adminUser.LibraryKey

	f.do("GET", "/library/2/edit", nil, adminUser, false)
	if _, ok := f.draft(key); !ok {
		t.Fatal("expected a draft")
	}

	rec := f.do("POST", "/library/edit/cancel", url.Values{"list_category": {"Mathematics"}}, adminUser, false)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/library?category=Mathematics" {
		t.Errorf("Location: got %q", loc)
	}
	if _, ok := f.draft(key); ok {
		t.Error("draft should be cleared")
	}
}

func TestHandleDelete(t *testing.T) {
	f := newFixture(t)
	key := adminUser.LibraryKey

	rec := f.do("POST", "/library/3/delete", url.Values{}, adminUser, false)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if _, ok := f.resource(t, key, 3); ok {
		t.Error("resource 3 should be gone")
	}

	// Deleting again is a not-found.
	rec = f.do("POST", "/library/3/delete", url.Values{}, adminUser, true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: got %d, want 404", rec.Code)
	}
}
