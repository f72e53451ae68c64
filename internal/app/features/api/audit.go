// internal/app/features/api/audit.go
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/dalemusser/edulibrary/internal/app/store/audit"
	"github.com/dalemusser/edulibrary/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// RecentAudit lists the newest audit events, newest first.
// GET /api/audit?limit=
func (h *Handler) RecentAudit(w http.ResponseWriter, r *http.Request) {
	var limit int64
	if s := query.Get(r, "limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.Audit.GetRecent(ctx, limit)
	switch {
	case errors.Is(err, audit.ErrDisabled):
		writeError(w, http.StatusServiceUnavailable, "audit storage is not configured")
		return
	case err != nil:
		h.Log.Error("api: load audit events", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	writeJSON(w, http.StatusOK, auditResponse{Events: events})
}
