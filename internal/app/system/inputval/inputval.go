// internal/app/system/inputval/inputval.go
package inputval

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared; validator.Validate caches struct metadata and is safe
// for concurrent use.
var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// ErrInvalid is matched by every *Error via errors.Is.
var ErrInvalid = errors.New("invalid input")

// Error reports the first field that failed. Message is user-facing.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Field + ": " + e.Message }

// Is lets errors.Is(err, ErrInvalid) match.
func (e *Error) Is(target error) bool { return target == ErrInvalid }

/*─────────────────────────────────────────────────────────────────────────────*
| Review                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// ReviewInput is a review submission that passed validation.
type ReviewInput struct {
	User    string `validate:"nonblank"`
	Comment string `validate:"nonblank"`
	Rating  int    `validate:"gte=1,lte=5"`
}

var reviewMessages = map[string]string{
	"User":    "Please fill in your name.",
	"Comment": "Please fill in your comment.",
	"Rating":  "Rating must be between 1 and 5.",
}

// ParseReview turns raw form values into a ReviewInput. The rating must be
// a plain integer: "4.5", "3x" and "" are rejected rather than coerced.
// User and comment are kept as typed.
func ParseReview(user, comment, rating string) (ReviewInput, error) {
	in := ReviewInput{User: user, Comment: comment}

	n, err := strconv.Atoi(strings.TrimSpace(rating))
	if err != nil {
		// Report blank text fields ahead of the rating, matching form order.
		if verr := check(&in, reviewMessages, "Rating"); verr != nil {
			return ReviewInput{}, verr
		}
		return ReviewInput{}, &Error{Field: "rating", Message: reviewMessages["Rating"]}
	}
	in.Rating = n

	if verr := check(&in, reviewMessages); verr != nil {
		return ReviewInput{}, verr
	}
	return in, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Edit                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// EditInput carries the three editable resource fields. Content is free
// form; the bounds only cap payload size.
type EditInput struct {
	Title       string `validate:"max=200"`
	Description string `validate:"max=5000"`
	Category    string `validate:"max=100"`
}

var editMessages = map[string]string{
	"Title":       "Title is too long (200 characters max).",
	"Description": "Description is too long (5000 characters max).",
	"Category":    "Category is too long (100 characters max).",
}

// ParseEdit builds an EditInput from raw values.
func ParseEdit(title, description, category string) (EditInput, error) {
	in := EditInput{Title: title, Description: description, Category: category}
	if verr := check(&in, editMessages); verr != nil {
		return EditInput{}, verr
	}
	return in, nil
}

// check validates s and maps the first failing field to its message.
// Fields named in skip are ignored.
func check(s any, messages map[string]string, skip ...string) *Error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Field: "form", Message: "Invalid input."}
	}
	for _, fe := range verrs {
		if slices.Contains(skip, fe.Field()) {
			continue
		}
		return &Error{Field: strings.ToLower(fe.Field()), Message: messages[fe.Field()]}
	}
	return nil
}
