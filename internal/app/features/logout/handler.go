// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/edulibrary/internal/app/store/libraries"
	"github.com/dalemusser/edulibrary/internal/app/system/auditlog"
	"github.com/dalemusser/edulibrary/internal/app/system/auth"
	"github.com/dalemusser/edulibrary/internal/app/system/metrics"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Libraries  *libraries.Registry
	AuditLog   *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, libs *libraries.Registry, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Libraries:  libs,
		AuditLog:   audit,
	}
}

// ServeLogout handles GET|POST /logout.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	prev, key, err := h.SessionMgr.Logout(w, r)
	if err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}

	// The session's library goes with it; the next login starts from the seed.
	if key != "" && h.Libraries != nil {
		h.Libraries.Drop(key)
		metrics.SetLibrariesOpen(h.Libraries.Len())
	}

	if prev.LoggedIn {
		h.AuditLog.Logout(r.Context(), r, prev.Username)
	}

	// HTMX handling: use HX-Redirect to force a client-side navigation to "/".
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
