// internal/app/store/resources/resourcestore.go
package resourcestore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/edulibrary/internal/domain/models"
)

// CategoryAll is the filter sentinel that disables the category constraint.
const CategoryAll = "All"

// Rating bounds for reviews.
const (
	MinRating = 1
	MaxRating = 5
)

var (
	// ErrNotFound is returned when an operation targets an unknown resource id.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation is matched by every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")
)

// ValidationError describes rejected review input. Message is safe to show
// to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Store owns one in-memory resource collection and at most one active edit
// draft. It is not safe for concurrent use; callers serialize access (see
// the libraries registry).
//
// Every lookup by id is a linear scan. The catalog is small, so this stays
// O(n) on purpose rather than keeping an index in sync.
//
// The store does not check authorization. Gating edit and delete to admins
// is the caller's job.
type Store struct {
	items []models.Resource
	draft *models.EditDraft
}

// New builds a store from seed records. The seed is copied; later changes
// to the caller's slice do not leak into the store.
func New(seed []models.Resource) (*Store, error) {
	items := make([]models.Resource, 0, len(seed))
	seen := make(map[int]struct{}, len(seed))
	for _, r := range seed {
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("seed: duplicate resource id %d", r.ID)
		}
		seen[r.ID] = struct{}{}
		if r.Downloads < 0 {
			return nil, fmt.Errorf("seed: resource %d has negative downloads", r.ID)
		}
		for i, rv := range r.Reviews {
			if err := validateReview(rv.User, rv.Comment, rv.Rating); err != nil {
				return nil, fmt.Errorf("seed: resource %d review %d: %w", r.ID, i, err)
			}
		}
		items = append(items, r.Clone())
	}
	return &Store{items: items}, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Queries                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// All returns every resource in store order.
func (s *Store) All() []models.Resource {
	return s.Search("", CategoryAll)
}

// Len returns the number of resources.
func (s *Store) Len() int {
	return len(s.items)
}

// Get returns a copy of the resource with the given id.
func (s *Store) Get(id int) (models.Resource, error) {
	i := s.indexOf(id)
	if i < 0 {
		return models.Resource{}, ErrNotFound
	}
	return s.items[i].Clone(), nil
}

// Search returns resources whose title contains query (case-insensitive)
// and whose category equals category, unless category is CategoryAll.
// An empty query matches every title. Results keep store order.
func (s *Store) Search(query, category string) []models.Resource {
	q := strings.ToLower(query)
	out := make([]models.Resource, 0, len(s.items))
	for _, r := range s.items {
		if !strings.Contains(strings.ToLower(r.Title), q) {
			continue
		}
		if category != CategoryAll && r.Category != category {
			continue
		}
		out = append(out, r.Clone())
	}
	return out
}

// Categories returns CategoryAll followed by the distinct categories in the
// order they first appear.
func (s *Store) Categories() []string {
	out := []string{CategoryAll}
	seen := map[string]struct{}{CategoryAll: {}}
	for _, r := range s.items {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	return out
}

/*─────────────────────────────────────────────────────────────────────────────*
| Mutations                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// IncrementDownload bumps the download counter of one resource by one.
func (s *Store) IncrementDownload(id int) error {
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.items[i].Downloads++
	return nil
}

// BeginEdit captures the editable fields of a resource into the active
// draft, replacing any draft already in progress.
func (s *Store) BeginEdit(id int) (models.EditDraft, error) {
	i := s.indexOf(id)
	if i < 0 {
		return models.EditDraft{}, ErrNotFound
	}
	r := s.items[i]
	d := models.EditDraft{
		ResourceID:  r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
	}
	s.draft = &d
	return d, nil
}

// ActiveDraft returns the edit in progress, if any.
func (s *Store) ActiveDraft() (models.EditDraft, bool) {
	if s.draft == nil {
		return models.EditDraft{}, false
	}
	return *s.draft, true
}

// SaveEdit writes the draft's title, description and category onto its
// target resource and clears the active draft. Position, id, provenance,
// downloads and reviews are left as they were.
func (s *Store) SaveEdit(d models.EditDraft) error {
	s.draft = nil
	i := s.indexOf(d.ResourceID)
	if i < 0 {
		return ErrNotFound
	}
	s.items[i].Title = d.Title
	s.items[i].Description = d.Description
	s.items[i].Category = d.Category
	return nil
}

// CancelEdit discards the active draft.
func (s *Store) CancelEdit() {
	s.draft = nil
}

// Delete removes a resource and all of its reviews.
func (s *Store) Delete(id int) error {
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	if s.draft != nil && s.draft.ResourceID == id {
		s.draft = nil
	}
	return nil
}

// AddReview appends a review to a resource. Input is validated before the
// lookup, so bad input yields a *ValidationError even for unknown ids.
func (s *Store) AddReview(id int, user, comment string, rating int) error {
	if err := validateReview(user, comment, rating); err != nil {
		return err
	}
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.items[i].Reviews = append(s.items[i].Reviews, models.Review{
		User:    user,
		Comment: comment,
		Rating:  rating,
	})
	return nil
}

// helpers

func (s *Store) indexOf(id int) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func validateReview(user, comment string, rating int) error {
	if strings.TrimSpace(user) == "" {
		return &ValidationError{Field: "user", Message: "Please fill in your name."}
	}
	if strings.TrimSpace(comment) == "" {
		return &ValidationError{Field: "comment", Message: "Please fill in your comment."}
	}
	if rating < MinRating || rating > MaxRating {
		return &ValidationError{Field: "rating", Message: fmt.Sprintf("Rating must be between %d and %d.", MinRating, MaxRating)}
	}
	return nil
}
