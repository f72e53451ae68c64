// internal/app/features/api/handler.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dalemusser/edulibrary/internal/app/store/audit"
	"github.com/dalemusser/edulibrary/internal/app/store/libraries"
	resourcestore "github.com/dalemusser/edulibrary/internal/app/store/resources"
	"github.com/dalemusser/edulibrary/internal/app/system/auditlog"
	"github.com/dalemusser/edulibrary/internal/app/system/auth"
	"github.com/dalemusser/edulibrary/internal/app/system/authz"
	"github.com/dalemusser/edulibrary/internal/app/system/htmlsanitize"
	"github.com/dalemusser/edulibrary/internal/app/system/inputval"
	"github.com/dalemusser/edulibrary/internal/app/system/metrics"
	"github.com/dalemusser/edulibrary/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxBody caps JSON request bodies.
const maxBody = 64 << 10

// Handler serves the JSON API. It works on the same per-session libraries
// as the HTML pages.
type Handler struct {
	SessionMgr *auth.SessionManager
	Creds      []auth.Credential
	Libraries  *libraries.Registry
	Audit      *audit.Store
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(
	sessionMgr *auth.SessionManager,
	creds []auth.Credential,
	libs *libraries.Registry,
	auditStore *audit.Store,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		SessionMgr: sessionMgr,
		Creds:      creds,
		Libraries:  libs,
		Audit:      auditStore,
		AuditLog:   audit,
		Log:        logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Wire types                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

type errorResponse struct {
	Error string `json:"error"`
}

type sessionResponse struct {
	LoggedIn bool   `json:"logged_in"`
	IsAdmin  bool   `json:"is_admin"`
	Username string `json:"username,omitempty"`
	State    string `json:"state"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type resourceResponse struct {
	models.Resource
	AverageRating float64 `json:"average_rating"`

	// DescriptionHTML is the description as the library page renders it.
	// Description itself is returned exactly as stored.
	DescriptionHTML string `json:"description_html"`
}

type resourcesResponse struct {
	Resources []resourceResponse `json:"resources"`
	Count     int                `json:"count"`
	Total     int                `json:"total"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

type downloadResponse struct {
	ID        int `json:"id"`
	Downloads int `json:"downloads"`
}

// reviewRequest keeps the rating as a json.Number so "4.5" reaches the
// strict integer check instead of failing generic decoding.
type reviewRequest struct {
	User    string      `json:"user"`
	Comment string      `json:"comment"`
	Rating  json.Number `json:"rating"`
}

// updateRequest fields are optional; an absent field keeps its value.
type updateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

type auditResponse struct {
	Events []audit.Event `json:"events"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeStoreError maps store and input errors to API status codes.
func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	var (
		inErr    *inputval.Error
		storeErr *resourcestore.ValidationError
	)
	switch {
	case errors.As(err, &inErr):
		writeError(w, http.StatusUnprocessableEntity, inErr.Message)
	case errors.As(err, &storeErr):
		writeError(w, http.StatusUnprocessableEntity, storeErr.Message)
	case errors.Is(err, resourcestore.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	default:
		h.Log.Error("api: unexpected store error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) library(r *http.Request) *libraries.Library {
	lib := h.Libraries.Open(authz.LibraryKey(r))
	metrics.SetLibrariesOpen(h.Libraries.Len())
	return lib
}

func resourceID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid resource id")
		return 0, false
	}
	return id, true
}

func toResponse(res models.Resource) resourceResponse {
	if res.Reviews == nil {
		res.Reviews = []models.Review{}
	}
	return resourceResponse{
		Resource:        res,
		AverageRating:   res.AverageRating(),
		DescriptionHTML: string(htmlsanitize.PrepareForDisplay(res.Description)),
	}
}
