package domain

// Ailment is a directory entry a review may be scoped to. Reviews store only
// the canonical id; slug and free-text references are resolved at the boundary.
type Ailment struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Slug string  `json:"slug"`
	Icon *string `json:"icon,omitempty"`
}
