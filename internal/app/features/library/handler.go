// internal/app/features/library/handler.go
package library

import (
	"net/http"
	"net/url"
	"strconv"

	uierrors "github.com/dalemusser/edulibrary/internal/app/features/errors"
	"github.com/dalemusser/edulibrary/internal/app/store/libraries"
	resourcestore "github.com/dalemusser/edulibrary/internal/app/store/resources"
	"github.com/dalemusser/edulibrary/internal/app/system/auditlog"
	"github.com/dalemusser/edulibrary/internal/app/system/authz"
	"github.com/dalemusser/edulibrary/internal/app/system/metrics"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the resource library pages. Every signed-in session works
// on its own library from the registry.
type Handler struct {
	Libraries *libraries.Registry
	ErrLog    *uierrors.ErrorLogger
	AuditLog  *auditlog.Logger
	Log       *zap.Logger
}

func NewHandler(libs *libraries.Registry, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Libraries: libs,
		ErrLog:    errLog,
		AuditLog:  audit,
		Log:       logger,
	}
}

// library returns the session's library, creating it from the seed on first
// use.
func (h *Handler) library(r *http.Request) *libraries.Library {
	lib := h.Libraries.Open(authz.LibraryKey(r))
	metrics.SetLibrariesOpen(h.Libraries.Len())
	return lib
}

// mutate runs fn against the session's library and records the outcome.
func (h *Handler) mutate(r *http.Request, op string, fn func(*resourcestore.Store) error) error {
	err := h.library(r).Do(fn)
	metrics.ObserveResult(op, err)
	return err
}

func resourceID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

// listURL rebuilds the list location for a search, so actions posted from a
// filtered list land back on the same filter.
func listURL(q, category string) string {
	v := url.Values{}
	if q != "" {
		v.Set("q", q)
	}
	if category != "" && category != resourcestore.CategoryAll {
		v.Set("category", category)
	}
	if len(v) == 0 {
		return "/library"
	}
	return "/library?" + v.Encode()
}

// filterFromForm reads the list filter carried in the hidden list_q and
// list_category form fields.
func filterFromForm(r *http.Request) (q, category string) {
	q = r.FormValue("list_q")
	category = r.FormValue("list_category")
	if category == "" {
		category = resourcestore.CategoryAll
	}
	return q, category
}

func backToList(w http.ResponseWriter, r *http.Request, anchor string) {
	q, category := filterFromForm(r)
	dest := listURL(q, category)
	if anchor != "" {
		dest += "#" + anchor
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}
