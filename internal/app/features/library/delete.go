// internal/app/features/library/delete.go
package library

import (
	"errors"
	"net/http"

	resourcestore "github.com/dalemusser/edulibrary/internal/app/store/resources"
	"github.com/dalemusser/edulibrary/internal/app/system/authz"
	"github.com/dalemusser/edulibrary/internal/app/system/metrics"
	"go.uber.org/zap"
)

// HandleDelete removes a resource and its reviews. The confirm dialog is
// shown by the browser before the request is sent.
// POST /library/{id}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := resourceID(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad resource id", err, "Invalid resource.", "/library")
		return
	}

	err = h.mutate(r, metrics.OpDelete, func(s *resourcestore.Store) error {
		return s.Delete(id)
	})
	switch {
	case errors.Is(err, resourcestore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, "delete of unknown resource", err, "Resource not found.", "/library")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "delete failed", err, "A server error occurred.", "/library")
		return
	}

	_, actor, _ := authz.UserCtx(r)
	h.AuditLog.ResourceDeleted(r.Context(), r, actor, id)
	h.Log.Info("resource deleted", zap.Int("resource_id", id), zap.String("actor", actor))
	backToList(w, r, "")
}
