// internal/app/features/library/routes.go
package library

import (
	"github.com/dalemusser/edulibrary/internal/app/system/auth"
	"github.com/dalemusser/edulibrary/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the library pages under whatever base path the caller
// chooses (typically "/library" from bootstrap).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// LIST (live search + HTMX card swap)
		pr.Get("/", h.ServeList)

		pr.Post("/{id}/download", h.HandleDownload)
		pr.Post("/{id}/reviews", h.HandleReview)
	})

	r.Group(func(pr chi.Router) {
		// Editing and deleting are admin-only.
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(models.RoleAdmin))

		// EDIT
		pr.Get("/{id}/edit", h.ServeEdit)
		pr.Post("/{id}/edit", h.HandleEdit)
		pr.Post("/edit/cancel", h.HandleCancelEdit)

		// DELETE
		pr.Post("/{id}/delete", h.HandleDelete)
	})

	return r
}
