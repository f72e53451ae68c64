// internal/app/features/library/download.go
package library

import (
	"errors"
	"net/http"

	resourcestore "github.com/dalemusser/edulibrary/internal/app/store/resources"
	"github.com/dalemusser/edulibrary/internal/app/system/metrics"
	"go.uber.org/zap"
)

// HandleDownload counts one download of a resource.
// POST /library/{id}/download
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	id, err := resourceID(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad resource id", err, "Invalid resource.", "/library")
		return
	}

	err = h.mutate(r, metrics.OpDownload, func(s *resourcestore.Store) error {
		return s.IncrementDownload(id)
	})
	switch {
	case errors.Is(err, resourcestore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, "download of unknown resource", err, "Resource not found.", "/library")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "increment download failed", err, "A server error occurred.", "/library")
		return
	}

	h.Log.Debug("resource downloaded", zap.Int("resource_id", id))
	backToList(w, r, anchorFor(id))
}
