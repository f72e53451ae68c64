// internal/app/features/theme/handler.go
package theme

import (
	"net/http"
	"time"

	"github.com/dalemusser/edulibrary/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-chi/chi/v5"
)

// Handler flips the light/dark theme preference. The preference lives in a
// plain cookie and has no effect on library state.
type Handler struct {
	Secure bool
}

func NewHandler(secure bool) *Handler {
	return &Handler{Secure: secure}
}

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Toggle)
	return r
}

// Toggle handles POST /theme.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	next := viewdata.ThemeDark
	if viewdata.ThemeFrom(r) == viewdata.ThemeDark {
		next = viewdata.ThemeLight
	}

	http.SetCookie(w, &http.Cookie{
		Name:     viewdata.ThemeCookie,
		Value:    next,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		Secure:   h.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	dest := urlutil.SafeReturn(r.FormValue("return"), "", "/library")
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}
