package postgres

import (
	"context"
	"fmt"

	"github.com/remedyhub/review-service/pkg/database"
)

// LikeRepository implements like-pair persistence using PostgreSQL. The
// (review_id, user_id) primary key is the authority on toggle races: the
// losing concurrent insert hits the unique constraint and is reported as
// "already liked", never as an error.
type LikeRepository struct {
	pool database.DBTX
}

// NewLikeRepository creates a new PostgreSQL-backed like repository.
func NewLikeRepository(pool database.DBTX) *LikeRepository {
	return &LikeRepository{pool: pool}
}

// Insert adds a like pair. Returns false without error when the pair already
// exists.
func (r *LikeRepository) Insert(ctx context.Context, reviewID, userID string) (bool, error) {
	_, err := r.pool.Exec(ctx,
		"INSERT INTO review_likes (review_id, user_id, created_at) VALUES ($1, $2, NOW())",
		reviewID, userID,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert like: %w", err)
	}

	return true, nil
}

// Delete removes a like pair. Returns false when no row was deleted, which a
// concurrent toggle may legitimately cause.
func (r *LikeRepository) Delete(ctx context.Context, reviewID, userID string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM review_likes WHERE review_id = $1 AND user_id = $2",
		reviewID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Exists reports whether the pair exists.
func (r *LikeRepository) Exists(ctx context.Context, reviewID, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM review_likes WHERE review_id = $1 AND user_id = $2)",
		reviewID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check like exists: %w", err)
	}

	return exists, nil
}

// Count returns the committed like total for the review.
func (r *LikeRepository) Count(ctx context.Context, reviewID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM review_likes WHERE review_id = $1",
		reviewID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}

	return count, nil
}
