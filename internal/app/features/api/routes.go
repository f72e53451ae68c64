// internal/app/features/api/routes.go
package api

import (
	"github.com/dalemusser/edulibrary/internal/app/system/auth"
	"github.com/dalemusser/edulibrary/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the JSON API (typically at "/api").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Session state is reachable from any state.
	r.Get("/session", h.GetSession)
	r.Post("/session", h.Login)
	r.Delete("/session", h.Logout)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/resources", h.ListResources)
		pr.Get("/categories", h.ListCategories)
		pr.Post("/resources/{id}/download", h.Download)
		pr.Post("/resources/{id}/reviews", h.AddReview)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(models.RoleAdmin))

		pr.Put("/resources/{id}", h.UpdateResource)
		pr.Delete("/resources/{id}", h.DeleteResource)
		pr.Get("/audit", h.RecentAudit)
	})

	return r
}
