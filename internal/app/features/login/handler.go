// internal/app/features/login/handler.go
package login

import (
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/edulibrary/internal/app/features/errors"
	"github.com/dalemusser/edulibrary/internal/app/system/auditlog"
	"github.com/dalemusser/edulibrary/internal/app/system/auth"
	"github.com/dalemusser/edulibrary/internal/app/system/metrics"
	"github.com/dalemusser/edulibrary/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

// InvalidCredentialsMessage is shown for any failed login.
const InvalidCredentialsMessage = "Invalid username or password."

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Creds      []auth.Credential
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
}

func NewHandler(
	sessionMgr *auth.SessionManager,
	creds []auth.Credential,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Creds:      creds,
		ErrLog:     errLog,
		AuditLog:   audit,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error     string
	Username  string // What the user typed; the password is never echoed.
	ReturnURL string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	ret := query.Get(r, "return")

	// A signed-in session has nothing to do here.
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, urlutil.SafeReturn(ret, "", "/library"), http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Login", "/"),
		ReturnURL: ret,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	// Credentials are compared exactly as typed.
	username := r.FormValue("username")
	password := r.FormValue("password")
	ret := strings.TrimSpace(r.FormValue("return"))

	st, err := h.SessionMgr.Login(w, r, h.Creds, username, password)
	switch {
	case errors.Is(err, auth.ErrAlreadySignedIn):
		metrics.ObserveLogin(metrics.LoginAlreadySignedIn)
		h.Log.Info("login attempted while signed in",
			zap.String("session_user", st.Username),
			zap.String("attempted", username))
		http.Redirect(w, r, "/library", http.StatusSeeOther)
		return

	case errors.Is(err, auth.ErrInvalidCredentials):
		metrics.ObserveLogin(metrics.LoginInvalid)
		h.AuditLog.LoginFailed(r.Context(), r, username, "invalid_credentials")
		h.renderFormWithError(w, r, InvalidCredentialsMessage, username)
		return

	case err != nil:
		h.Log.Error("save session failed", zap.Error(err), zap.String("username", username))
		h.renderFormWithError(w, r, "Unable to create session. Please try again.", username)
		return
	}

	metrics.ObserveLogin(metrics.LoginSuccess)
	h.AuditLog.LoginSuccess(r.Context(), r, st.Username, st.Role())

	dest := urlutil.SafeReturn(ret, "", "/library")
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, username string) {
	// From POST, "return" will be in the form; from GET, we might rely on the query.
	ret := strings.TrimSpace(r.FormValue("return"))
	if ret == "" {
		ret = query.Get(r, "return")
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Login", "/"),
		Error:     msg,
		Username:  username,
		ReturnURL: ret,
	})
}
