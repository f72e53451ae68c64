package models

// Resource is a catalogued document in the library.
//
// ID, UploadedBy and UploadDate are fixed when the resource is created.
// Downloads only grows, and Reviews is append-only.
type Resource struct {
	ID          int    `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Category    string `yaml:"category" json:"category"`

	UploadedBy string `yaml:"uploaded_by" json:"uploaded_by"`
	UploadDate string `yaml:"upload_date" json:"upload_date"` // YYYY-MM-DD, kept as text

	Downloads int      `yaml:"downloads" json:"downloads"`
	Reviews   []Review `yaml:"reviews" json:"reviews"`
}

// Review is a rated comment attached to exactly one Resource.
type Review struct {
	User    string `yaml:"user" json:"user"`
	Comment string `yaml:"comment" json:"comment"`
	Rating  int    `yaml:"rating" json:"rating"` // 1..5
}

// EditDraft holds an in-progress edit of a resource's text fields.
type EditDraft struct {
	ResourceID  int    `json:"resource_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Clone returns a copy of r that shares no slices with r.
func (r Resource) Clone() Resource {
	out := r
	if r.Reviews != nil {
		out.Reviews = make([]Review, len(r.Reviews))
		copy(out.Reviews, r.Reviews)
	}
	return out
}

// AverageRating returns the mean rating, or 0 when there are no reviews.
func (r Resource) AverageRating() float64 {
	if len(r.Reviews) == 0 {
		return 0
	}
	sum := 0
	for _, rv := range r.Reviews {
		sum += rv.Rating
	}
	return float64(sum) / float64(len(r.Reviews))
}
