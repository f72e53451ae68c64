// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/edulibrary/internal/domain/models"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session keys                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	loggedInKey   = "logged_in"
	isAdminKey    = "is_admin"
	usernameKey   = "username"
	libraryKeyKey = "library_key"
)

// SessionUser is what we inject into r.Context() for a logged-in session.
type SessionUser struct {
	Username string
	Role     string

	// LibraryKey identifies this session's resource library in the
	// libraries registry. It is minted at login.
	LibraryKey string
}

// IsAdmin reports whether the user holds the admin role.
func (u *SessionUser) IsAdmin() bool {
	return u != nil && strings.EqualFold(u.Role, models.RoleAdmin)
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user and a "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithTestUser returns r with u injected as the current user.
// Intended for handler tests that bypass the cookie round trip.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session manager                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the signed cookie store that persists each browser's
// Session flags between requests.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewSessionManager builds a cookie-backed session manager.
//
// In production (secure=true) the key must be at least 32 bytes and cookies
// are Secure with SameSite=Lax. In local dev over http://localhost use
// secure=false; a short key is then only warned about.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, errors.New("session key is empty; provide 32+ random chars")
	}
	if len(sessionKey) < 32 {
		if secure {
			return nil, fmt.Errorf("session key is too short for production (%d chars, need 32+)", len(sessionKey))
		}
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "edulibrary-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// Store exposes the underlying cookie store (logout copies its options onto
// the deletion cookie).
func (sm *SessionManager) Store() *sessions.CookieStore { return sm.store }

// Name returns the session cookie name.
func (sm *SessionManager) Name() string { return sm.name }

// GetSession returns the gorilla session for r. On a decode failure it still
// returns a usable fresh session alongside the error.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.name)
}

// StateFrom reads the authentication flags out of a gorilla session.
func StateFrom(s *sessions.Session) Session {
	st := Session{
		LoggedIn: getBool(s, loggedInKey),
		IsAdmin:  getBool(s, isAdminKey),
		Username: getString(s, usernameKey),
	}
	if !st.LoggedIn {
		return Session{}
	}
	return st
}

// ApplyState writes st back into the gorilla session. A logged-in state
// mints a library key if the session has none; logging out removes it.
// The caller saves the session.
func ApplyState(s *sessions.Session, st Session) {
	if !st.LoggedIn {
		delete(s.Values, loggedInKey)
		delete(s.Values, isAdminKey)
		delete(s.Values, usernameKey)
		delete(s.Values, libraryKeyKey)
		return
	}
	s.Values[loggedInKey] = true
	s.Values[isAdminKey] = st.IsAdmin
	s.Values[usernameKey] = st.Username
	if getString(s, libraryKeyKey) == "" {
		s.Values[libraryKeyKey] = uuid.NewString()
	}
}

// LibraryKey returns the library key stored in the session, if any.
func LibraryKey(s *sessions.Session) string {
	return getString(s, libraryKeyKey)
}

// LoadSessionUser injects the user into context if the session is logged in.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.GetSession(r)
		if err != nil {
			sm.log.Debug("session decode failed; treating as logged out", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		st := StateFrom(sess)
		key := LibraryKey(sess)
		if st.LoggedIn && key != "" {
			r = withUser(r, &SessionUser{
				Username:   st.Username,
				Role:       st.Role(),
				LibraryKey: key,
			})
		}
		next.ServeHTTP(w, r)
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Route guards                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized with a JSON error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		denyUnauthenticated(w, r)
	})
}

// RequireRole ensures the user in context holds one of the allowed roles.
// Signed-out callers get the RequireSignedIn treatment; signed-in callers
// with the wrong role go to /forbidden (HTML) or get 403 (API).
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				denyUnauthenticated(w, r)
				return
			}

			if _, has := set[strings.ToLower(u.Role)]; !has {
				sm.log.Debug("role check failed",
					zap.String("username", u.Username),
					zap.String("role", u.Role),
					zap.String("path", r.URL.Path))

				if r.Header.Get("HX-Request") == "true" {
					w.Header().Set("HX-Redirect", "/forbidden")
					w.WriteHeader(http.StatusForbidden)
					return
				}
				if wantsHTML(r) {
					http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
					return
				}
				writeJSONError(w, http.StatusForbidden, "forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// helpers

func denyUnauthenticated(w http.ResponseWriter, r *http.Request) {
	ret := url.QueryEscape(currentURI(r))

	// HTMX: full-page client redirect (no partial swap)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login?return="+ret)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
		return
	}
	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}

// writeJSONError answers API callers with the same {"error": "..."} body
// the JSON handlers use.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func getBool(s *sessions.Session, key string) bool {
	v, _ := s.Values[key].(bool)
	return v
}

func wantsHTML(r *http.Request) bool {
	// Very light heuristic: treat it as HTML if it's HTMX or Accepts text/html.
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func currentURI(r *http.Request) string {
	u := *r.URL
	return u.RequestURI()
}
