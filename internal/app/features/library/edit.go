// internal/app/features/library/edit.go
package library

import (
	"errors"
	"net/http"

	resourcestore "github.com/dalemusser/edulibrary/internal/app/store/resources"
	"github.com/dalemusser/edulibrary/internal/app/system/authz"
	"github.com/dalemusser/edulibrary/internal/app/system/inputval"
	"github.com/dalemusser/edulibrary/internal/app/system/metrics"
	"github.com/dalemusser/edulibrary/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// ServeEdit opens the inline edit form for a resource. Starting an edit
// replaces any edit already in progress.
// GET /library/{id}/edit
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	id, err := resourceID(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad resource id", err, "Invalid resource.", "/library")
		return
	}

	err = h.library(r).Do(func(s *resourcestore.Store) error {
		_, err := s.BeginEdit(id)
		return err
	})
	switch {
	case errors.Is(err, resourcestore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, "edit of unknown resource", err, "Resource not found.", "/library")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "begin edit failed", err, "A server error occurred.", "/library")
		return
	}

	dest := listURL(query.Get(r, "q"), query.Get(r, "category")) + "#" + anchorFor(id)
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// HandleEdit saves the edit form onto the resource and closes the draft.
// POST /library/{id}/edit
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := resourceID(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad resource id", err, "Invalid resource.", "/library")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/library")
		return
	}

	typed := models.EditDraft{
		ResourceID:  id,
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
	}

	in, err := inputval.ParseEdit(typed.Title, typed.Description, typed.Category)
	if err != nil {
		metrics.ObserveResult(metrics.OpEdit, err)
		msg := "Please check the form and try again."
		var inErr *inputval.Error
		if errors.As(err, &inErr) {
			msg = inErr.Message
		}
		q, category := filterFromForm(r)
		h.renderList(w, r, q, category, &formState{Edit: &typed, EditError: msg})
		return
	}

	draft := models.EditDraft{
		ResourceID:  id,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
	}
	err = h.mutate(r, metrics.OpEdit, func(s *resourcestore.Store) error {
		return s.SaveEdit(draft)
	})
	switch {
	case errors.Is(err, resourcestore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, "save of unknown resource", err, "Resource not found.", "/library")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "save edit failed", err, "A server error occurred.", "/library")
		return
	}

	_, actor, _ := authz.UserCtx(r)
	h.AuditLog.ResourceUpdated(r.Context(), r, actor, id, draft.Title)
	h.Log.Info("resource updated", zap.Int("resource_id", id), zap.String("actor", actor))
	backToList(w, r, anchorFor(id))
}

// HandleCancelEdit discards the edit in progress.
// POST /library/edit/cancel
func (h *Handler) HandleCancelEdit(w http.ResponseWriter, r *http.Request) {
	h.library(r).View(func(s *resourcestore.Store) {
		s.CancelEdit()
	})
	backToList(w, r, "")
}
