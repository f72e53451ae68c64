// internal/app/features/api/resources.go
package api

import (
	"net/http"

	resourcestore "github.com/dalemusser/edulibrary/internal/app/store/resources"
	"github.com/dalemusser/edulibrary/internal/app/system/authz"
	"github.com/dalemusser/edulibrary/internal/app/system/inputval"
	"github.com/dalemusser/edulibrary/internal/app/system/metrics"
	"github.com/dalemusser/edulibrary/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

// ListResources searches the caller's library.
// GET /api/resources?q=&category=
func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	q := query.Get(r, "q")
	category := query.Get(r, "category")
	if category == "" {
		category = resourcestore.CategoryAll
	}

	var (
		items []models.Resource
		total int
	)
	h.library(r).View(func(s *resourcestore.Store) {
		items = s.Search(q, category)
		total = s.Len()
	})

	out := resourcesResponse{
		Resources: make([]resourceResponse, 0, len(items)),
		Count:     len(items),
		Total:     total,
	}
	for _, res := range items {
		out.Resources = append(out.Resources, toResponse(res))
	}
	writeJSON(w, http.StatusOK, out)
}

// ListCategories returns "All" followed by the distinct categories.
// GET /api/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	var cats []string
	h.library(r).View(func(s *resourcestore.Store) {
		cats = s.Categories()
	})
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: cats})
}

// Download counts one download.
// POST /api/resources/{id}/download
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r)
	if !ok {
		return
	}

	var res models.Resource
	err := h.library(r).Do(func(s *resourcestore.Store) error {
		if err := s.IncrementDownload(id); err != nil {
			return err
		}
		var err error
		res, err = s.Get(id)
		return err
	})
	metrics.ObserveResult(metrics.OpDownload, err)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, downloadResponse{ID: res.ID, Downloads: res.Downloads})
}

// AddReview appends a review and returns the updated resource.
// POST /api/resources/{id}/reviews
func (h *Handler) AddReview(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r)
	if !ok {
		return
	}
	var req reviewRequest
	if !decode(w, r, &req) {
		return
	}

	in, err := inputval.ParseReview(req.User, req.Comment, req.Rating.String())
	if err != nil {
		metrics.ObserveResult(metrics.OpReview, err)
		h.writeStoreError(w, err)
		return
	}

	var res models.Resource
	err = h.library(r).Do(func(s *resourcestore.Store) error {
		if err := s.AddReview(id, in.User, in.Comment, in.Rating); err != nil {
			return err
		}
		var err error
		res, err = s.Get(id)
		return err
	})
	metrics.ObserveResult(metrics.OpReview, err)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	_, actor, _ := authz.UserCtx(r)
	h.AuditLog.ReviewAdded(r.Context(), r, actor, id, in.Rating)
	writeJSON(w, http.StatusCreated, toResponse(res))
}

// UpdateResource edits a resource's title, description and category in one
// step: it begins an edit, applies the given fields and saves.
// PUT /api/resources/{id}
func (h *Handler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if !decode(w, r, &req) {
		return
	}

	var res models.Resource
	err := h.library(r).Do(func(s *resourcestore.Store) error {
		d, err := s.BeginEdit(id)
		if err != nil {
			return err
		}
		if req.Title != nil {
			d.Title = *req.Title
		}
		if req.Description != nil {
			d.Description = *req.Description
		}
		if req.Category != nil {
			d.Category = *req.Category
		}

		in, err := inputval.ParseEdit(d.Title, d.Description, d.Category)
		if err != nil {
			s.CancelEdit()
			return err
		}
		d.Title, d.Description, d.Category = in.Title, in.Description, in.Category

		if err := s.SaveEdit(d); err != nil {
			return err
		}
		res, err = s.Get(id)
		return err
	})
	metrics.ObserveResult(metrics.OpEdit, err)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	_, actor, _ := authz.UserCtx(r)
	h.AuditLog.ResourceUpdated(r.Context(), r, actor, id, res.Title)
	writeJSON(w, http.StatusOK, toResponse(res))
}

// DeleteResource removes a resource and its reviews.
// DELETE /api/resources/{id}
func (h *Handler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r)
	if !ok {
		return
	}

	err := h.library(r).Do(func(s *resourcestore.Store) error {
		return s.Delete(id)
	})
	metrics.ObserveResult(metrics.OpDelete, err)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	_, actor, _ := authz.UserCtx(r)
	h.AuditLog.ResourceDeleted(r.Context(), r, actor, id)
	w.WriteHeader(http.StatusNoContent)
}
