package repository

import (
	"context"

	"github.com/remedyhub/review-service/internal/domain"
)

// ReviewPatch holds the mutable fields of a review. Nil fields are left
// unchanged. Ownership, ids, and created_at are never patchable.
type ReviewPatch struct {
	StarCount              *int
	Potency                *string
	Potency2               *string
	Dosage                 *string
	DurationUsed           *string
	Effectiveness          *int
	Notes                  *string
	ExperiencedSideEffects *bool
}

// ReviewRepository defines review persistence operations.
type ReviewRepository interface {
	// Create inserts a new review.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by id, without any ownership filter. Used to
	// tell "not found" apart from "not yours" on zero-row writes.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// Update applies the patch to the review, scoped to rows owned by
	// requesterID. Returns the number of rows affected; zero rows means the
	// review does not exist or belongs to someone else, which the caller
	// disambiguates via GetByID.
	Update(ctx context.Context, id string, patch ReviewPatch, requesterID string) (int64, error)

	// Delete removes the review, scoped to rows owned by requesterID.
	// Zero-row semantics match Update.
	Delete(ctx context.Context, id string, requesterID string) (int64, error)

	// ListByRemedy returns up to limit candidate reviews for the remedy,
	// optionally scoped to an ailment. The fetch is unsorted; ordering and
	// residual filtering are the list composer's job.
	ListByRemedy(ctx context.Context, remedyID string, ailmentID *string, limit int) ([]domain.Review, error)

	// CountStars returns the star_count histogram over ALL reviews for the
	// remedy, uncapped and unfiltered.
	CountStars(ctx context.Context, remedyID string) (map[int]int, error)
}

// LikeRepository defines persistence for the (review_id, user_id) like pairs.
type LikeRepository interface {
	// Insert adds a like. Returns false without error when the pair already
	// exists (unique violation): a losing concurrent toggle is an idempotent
	// no-op, not an error.
	Insert(ctx context.Context, reviewID, userID string) (bool, error)

	// Delete removes a like. Returns false when no row was deleted.
	Delete(ctx context.Context, reviewID, userID string) (bool, error)

	// Exists reports whether the pair exists.
	Exists(ctx context.Context, reviewID, userID string) (bool, error)

	// Count returns the committed like total for the review.
	Count(ctx context.Context, reviewID string) (int, error)
}

// CommentRepository defines persistence for review comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.ReviewComment) error

	GetByID(ctx context.Context, id string) (*domain.ReviewComment, error)

	// Update changes a comment's content, scoped to rows owned by
	// requesterID. Zero-row semantics match ReviewRepository.Update.
	Update(ctx context.Context, id, content, requesterID string) (int64, error)

	Delete(ctx context.Context, id, requesterID string) (int64, error)

	ListByReview(ctx context.Context, reviewID string) ([]domain.ReviewComment, error)

	CountByReview(ctx context.Context, reviewID string) (int, error)
}

// AilmentRepository defines read access to the ailment directory.
type AilmentRepository interface {
	// GetByID retrieves an ailment by its canonical id.
	GetByID(ctx context.Context, id string) (*domain.Ailment, error)

	// GetBySlug retrieves an ailment by its slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Ailment, error)

	// GetByExactName retrieves an ailment by case-sensitive name match.
	GetByExactName(ctx context.Context, name string) (*domain.Ailment, error)

	// SearchByName returns the first ailment whose name contains the query
	// case-insensitively, ordered by name.
	SearchByName(ctx context.Context, query string) (*domain.Ailment, error)

	// List returns the full directory ordered by name.
	List(ctx context.Context) ([]domain.Ailment, error)
}
