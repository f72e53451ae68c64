// internal/app/features/library/types.go
package library

import (
	"fmt"
	"html/template"

	"github.com/dalemusser/edulibrary/internal/app/system/htmlsanitize"
	"github.com/dalemusser/edulibrary/internal/app/system/viewdata"
	"github.com/dalemusser/edulibrary/internal/domain/models"
)

// reviewForm echoes what the user typed into a review form.
type reviewForm struct {
	User    string
	Comment string
	Rating  string
}

// resourceCard is one resource as shown on the list page.
type resourceCard struct {
	models.Resource
	DescriptionHTML template.HTML
	AverageRating   string // "" when there are no reviews

	// Inline edit state (admin only).
	Editing   bool
	Draft     models.EditDraft
	EditError string

	// Review form state.
	ReviewForm  reviewForm
	ReviewError string

	// Page context repeated per card so the card template stands alone.
	IsAdmin      bool
	CSRFToken    string
	ListQuery    string
	ListCategory string
	Ratings      []int
}

// Anchor is the fragment id of the card on the list page.
func (c resourceCard) Anchor() string {
	return anchorFor(c.ID)
}

type listData struct {
	viewdata.BaseVM
	Query      string
	Category   string
	Categories []string
	Cards      []resourceCard
	Total      int
}

// formState carries a rejected form back into the re-rendered list.
type formState struct {
	ReviewFor   int
	Review      reviewForm
	ReviewError string

	EditError string
	Edit      *models.EditDraft
}

func anchorFor(id int) string {
	return fmt.Sprintf("resource-%d", id)
}

var ratings = []int{5, 4, 3, 2, 1}

func newCard(res models.Resource, base viewdata.BaseVM, q, category string) resourceCard {
	c := resourceCard{
		Resource:        res,
		DescriptionHTML: htmlsanitize.PrepareForDisplay(res.Description),
		ReviewForm:      reviewForm{User: base.UserName},
		IsAdmin:         base.IsAdmin,
		CSRFToken:       base.CSRFToken,
		ListQuery:       q,
		ListCategory:    category,
		Ratings:         ratings,
	}
	if len(res.Reviews) > 0 {
		c.AverageRating = fmt.Sprintf("%.1f", res.AverageRating())
	}
	return c
}
