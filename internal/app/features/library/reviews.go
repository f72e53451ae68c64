// internal/app/features/library/reviews.go
package library

import (
	"errors"
	"net/http"

	resourcestore "github.com/dalemusser/edulibrary/internal/app/store/resources"
	"github.com/dalemusser/edulibrary/internal/app/system/authz"
	"github.com/dalemusser/edulibrary/internal/app/system/inputval"
	"github.com/dalemusser/edulibrary/internal/app/system/metrics"
)

// HandleReview adds a review to a resource. Invalid input re-renders the
// list with the message on the card and the typed values kept.
// POST /library/{id}/reviews
func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	id, err := resourceID(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad resource id", err, "Invalid resource.", "/library")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/library")
		return
	}

	typed := reviewForm{
		User:    r.FormValue("user"),
		Comment: r.FormValue("comment"),
		Rating:  r.FormValue("rating"),
	}

	in, err := inputval.ParseReview(typed.User, typed.Comment, typed.Rating)
	if err == nil {
		err = h.mutate(r, metrics.OpReview, func(s *resourcestore.Store) error {
			return s.AddReview(id, in.User, in.Comment, in.Rating)
		})
	} else {
		metrics.ObserveResult(metrics.OpReview, err)
	}

	var (
		inErr    *inputval.Error
		storeErr *resourcestore.ValidationError
	)
	switch {
	case errors.As(err, &inErr):
		h.rejectReview(w, r, id, typed, inErr.Message)
		return
	case errors.As(err, &storeErr):
		h.rejectReview(w, r, id, typed, storeErr.Message)
		return
	case errors.Is(err, resourcestore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, "review of unknown resource", err, "Resource not found.", "/library")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "add review failed", err, "A server error occurred.", "/library")
		return
	}

	_, actor, _ := authz.UserCtx(r)
	h.AuditLog.ReviewAdded(r.Context(), r, actor, id, in.Rating)
	backToList(w, r, anchorFor(id))
}

func (h *Handler) rejectReview(w http.ResponseWriter, r *http.Request, id int, typed reviewForm, msg string) {
	q, category := filterFromForm(r)
	h.renderList(w, r, q, category, &formState{
		ReviewFor:   id,
		Review:      typed,
		ReviewError: msg,
	})
}
