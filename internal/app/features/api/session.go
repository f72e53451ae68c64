// internal/app/features/api/session.go
package api

import (
	"errors"
	"net/http"

	"github.com/dalemusser/edulibrary/internal/app/system/auth"
	"github.com/dalemusser/edulibrary/internal/app/system/metrics"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// GetSession reports the caller's authentication state. The CSRF token for
// subsequent unsafe requests is returned in the X-CSRF-Token header.
// GET /api/session
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-CSRF-Token", csrf.Token(r))

	u, ok := auth.CurrentUser(r)
	if !ok {
		writeJSON(w, http.StatusOK, sessionResponse{State: auth.StateLoggedOut.String()})
		return
	}
	st := auth.Session{LoggedIn: true, IsAdmin: u.IsAdmin(), Username: u.Username}
	writeJSON(w, http.StatusOK, toSessionResponse(st))
}

// Login runs one login attempt.
// POST /api/session
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	st, err := h.SessionMgr.Login(w, r, h.Creds, req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrAlreadySignedIn):
		metrics.ObserveLogin(metrics.LoginAlreadySignedIn)
		writeError(w, http.StatusConflict, "already signed in; log out first")
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		metrics.ObserveLogin(metrics.LoginInvalid)
		h.AuditLog.LoginFailed(r.Context(), r, req.Username, "invalid_credentials")
		writeError(w, http.StatusUnauthorized, "Invalid username or password.")
		return
	case err != nil:
		h.Log.Error("api login: save session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "unable to create session")
		return
	}

	metrics.ObserveLogin(metrics.LoginSuccess)
	h.AuditLog.LoginSuccess(r.Context(), r, st.Username, st.Role())
	writeJSON(w, http.StatusOK, toSessionResponse(st))
}

// Logout ends the session from any state.
// DELETE /api/session
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	prev, key, err := h.SessionMgr.Logout(w, r)
	if err != nil {
		h.Log.Error("api logout: save session", zap.Error(err))
	}
	if key != "" {
		h.Libraries.Drop(key)
		metrics.SetLibrariesOpen(h.Libraries.Len())
	}
	if prev.LoggedIn {
		h.AuditLog.Logout(r.Context(), r, prev.Username)
	}
	writeJSON(w, http.StatusOK, sessionResponse{State: auth.StateLoggedOut.String()})
}

func toSessionResponse(st auth.Session) sessionResponse {
	return sessionResponse{
		LoggedIn: st.LoggedIn,
		IsAdmin:  st.IsAdmin,
		Username: st.Username,
		State:    st.State().String(),
	}
}
