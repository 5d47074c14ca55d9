package domain

import (
	"time"
)

// AnonymousReviewer is the display name used for reviews whose author has no
// profile name. Reviewer-name filtering matches against it too.
const AnonymousReviewer = "anonymous"

// Review is one user's experience report for exactly one remedy.
type Review struct {
	ID       string `json:"id"`
	RemedyID string `json:"remedy_id"`

	// UserID is nullable only for legacy rows; new rows always have an owner.
	UserID *string `json:"user_id,omitempty"`

	// AilmentID scopes the review to an ailment; a nil value means the
	// review is general.
	AilmentID *string `json:"ailment_id,omitempty"`

	StarCount              int      `json:"star_count"`
	Potency                *string  `json:"potency,omitempty"`
	Potency2               *string  `json:"potency_2,omitempty"`
	Dosage                 *string  `json:"dosage,omitempty"`
	DurationUsed           *string  `json:"duration_used,omitempty"`
	Effectiveness          *int     `json:"effectiveness,omitempty"`
	Notes                  *string  `json:"notes,omitempty"`
	ExperiencedSideEffects bool     `json:"experienced_side_effects"`
	SecondaryRemedyIDs     []string `json:"secondary_remedy_ids,omitempty"`

	// ReviewerName is read from the profiles table at list time; it is not a
	// column of the reviews table.
	ReviewerName *string `json:"reviewer_name,omitempty"`

	// AilmentName is resolved per list request from the ailments table; it is
	// not a column of the reviews table.
	AilmentName string `json:"ailment_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns the reviewer's profile name, or AnonymousReviewer when
// the review has no profile name attached.
func (r *Review) DisplayName() string {
	if r.ReviewerName == nil || *r.ReviewerName == "" {
		return AnonymousReviewer
	}
	return *r.ReviewerName
}

// ReviewStats contains aggregate rating statistics for a remedy. It is always
// computed over the complete review set for the remedy, never over a filtered
// subset, so the totals stay stable while the list beside them is filtered.
type ReviewStats struct {
	AverageRating      float64     `json:"average_rating"`
	TotalReviews       int         `json:"total_reviews"`
	RatingDistribution map[int]int `json:"rating_distribution"`
}

// EmptyStats returns the defined terminal state for a remedy with no reviews.
func EmptyStats() *ReviewStats {
	return &ReviewStats{
		AverageRating:      0.0,
		TotalReviews:       0,
		RatingDistribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
}
