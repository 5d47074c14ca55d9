package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/remedyhub/review-service/internal/domain"
	"github.com/remedyhub/review-service/pkg/database"
	apperrors "github.com/remedyhub/review-service/pkg/errors"
)

// CommentRepository implements review comment persistence using PostgreSQL.
type CommentRepository struct {
	pool database.DBTX
}

// NewCommentRepository creates a new PostgreSQL-backed comment repository.
func NewCommentRepository(pool database.DBTX) *CommentRepository {
	return &CommentRepository{pool: pool}
}

const commentColumns = `id, review_id, user_id, parent_comment_id, content, created_at, updated_at`

// Create inserts a new comment.
func (r *CommentRepository) Create(ctx context.Context, comment *domain.ReviewComment) error {
	query := `
		INSERT INTO review_comments (` + commentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		comment.ID,
		comment.ReviewID,
		comment.UserID,
		comment.ParentCommentID,
		comment.Content,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}

	return nil
}

// GetByID retrieves a comment by id without any ownership filter.
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*domain.ReviewComment, error) {
	query := `SELECT ` + commentColumns + ` FROM review_comments WHERE id = $1`

	var c domain.ReviewComment
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.ReviewID,
		&c.UserID,
		&c.ParentCommentID,
		&c.Content,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("comment", id)
		}
		return nil, fmt.Errorf("get comment by id: %w", err)
	}

	return &c, nil
}

// Update changes a comment's content, scoped to rows owned by requesterID.
func (r *CommentRepository) Update(ctx context.Context, id, content, requesterID string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		"UPDATE review_comments SET content = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3",
		content, id, requesterID,
	)
	if err != nil {
		return 0, fmt.Errorf("update comment: %w", err)
	}

	return tag.RowsAffected(), nil
}

// Delete removes a comment, scoped to rows owned by requesterID. Replies to
// the comment are removed by the foreign key cascade.
func (r *CommentRepository) Delete(ctx context.Context, id, requesterID string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM review_comments WHERE id = $1 AND user_id = $2",
		id, requesterID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete comment: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ListByReview returns all comments for a review, oldest first so threads read
// top-down.
func (r *CommentRepository) ListByReview(ctx context.Context, reviewID string) ([]domain.ReviewComment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM review_comments
		WHERE review_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, reviewID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []domain.ReviewComment
	for rows.Next() {
		var c domain.ReviewComment
		if err := rows.Scan(
			&c.ID,
			&c.ReviewID,
			&c.UserID,
			&c.ParentCommentID,
			&c.Content,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan comment row: %w", err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comment rows: %w", err)
	}

	if comments == nil {
		comments = []domain.ReviewComment{}
	}

	return comments, nil
}

// CountByReview returns the committed comment total for the review.
func (r *CommentRepository) CountByReview(ctx context.Context, reviewID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM review_comments WHERE review_id = $1",
		reviewID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}

	return count, nil
}
