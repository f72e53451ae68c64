// internal/app/features/library/list.go
package library

import (
	"net/http"

	resourcestore "github.com/dalemusser/edulibrary/internal/app/store/resources"
	"github.com/dalemusser/edulibrary/internal/app/system/viewdata"
	"github.com/dalemusser/edulibrary/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
)

// ServeList displays the library with live search and a category filter.
// GET /library?q=&category=
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := query.Get(r, "q")
	category := query.Get(r, "category")
	if category == "" {
		category = resourcestore.CategoryAll
	}
	h.renderList(w, r, q, category, nil)
}

// renderList draws the list page for a filter. fs, when non-nil, puts a
// rejected form and its message back on the matching card.
func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, q, category string, fs *formState) {
	var (
		items   []models.Resource
		cats    []string
		draft   models.EditDraft
		editing bool
		total   int
	)
	h.library(r).View(func(s *resourcestore.Store) {
		items = s.Search(q, category)
		cats = s.Categories()
		draft, editing = s.ActiveDraft()
		total = s.Len()
	})

	base := viewdata.NewBaseVM(r, "Library", "/library")

	cards := make([]resourceCard, 0, len(items))
	for _, res := range items {
		c := newCard(res, base, q, category)
		if base.IsAdmin && editing && draft.ResourceID == res.ID {
			c.Editing = true
			c.Draft = draft
		}
		if fs != nil {
			if fs.ReviewFor == res.ID && fs.ReviewError != "" {
				c.ReviewForm = fs.Review
				c.ReviewError = fs.ReviewError
			}
			if fs.Edit != nil && fs.Edit.ResourceID == res.ID {
				c.Editing = true
				c.Draft = *fs.Edit
				c.EditError = fs.EditError
			}
		}
		cards = append(cards, c)
	}

	data := listData{
		BaseVM:     base,
		Query:      q,
		Category:   category,
		Categories: cats,
		Cards:      cards,
		Total:      total,
	}

	// Live search swaps just the card list.
	if r.Header.Get("HX-Request") != "" && r.Header.Get("HX-Target") == "resource-list" {
		templates.RenderSnippet(w, "library_cards", data)
		return
	}
	templates.Render(w, r, "library_list", data)
}
