package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/remedyhub/review-service/internal/domain"
	"github.com/remedyhub/review-service/internal/repository"
	"github.com/remedyhub/review-service/pkg/database"
	apperrors "github.com/remedyhub/review-service/pkg/errors"
)

// ReviewRepository implements review persistence operations using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

const reviewColumns = `r.id, r.remedy_id, r.user_id, r.ailment_id, r.star_count,
	       r.potency, r.potency_2, r.dosage, r.duration_used, r.effectiveness,
	       r.notes, r.experienced_side_effects, r.secondary_remedy_ids,
	       r.created_at, r.updated_at`

// Create inserts a new review into the database.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, remedy_id, user_id, ailment_id, star_count,
			potency, potency_2, dosage, duration_used, effectiveness,
			notes, experienced_side_effects, secondary_remedy_ids,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.RemedyID,
		review.UserID,
		review.AilmentID,
		review.StarCount,
		review.Potency,
		review.Potency2,
		review.Dosage,
		review.DurationUsed,
		review.Effectiveness,
		review.Notes,
		review.ExperiencedSideEffects,
		review.SecondaryRemedyIDs,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by id without any ownership filter.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews r
		WHERE r.id = $1`

	var rv domain.Review
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rv.ID,
		&rv.RemedyID,
		&rv.UserID,
		&rv.AilmentID,
		&rv.StarCount,
		&rv.Potency,
		&rv.Potency2,
		&rv.Dosage,
		&rv.DurationUsed,
		&rv.Effectiveness,
		&rv.Notes,
		&rv.ExperiencedSideEffects,
		&rv.SecondaryRemedyIDs,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, fmt.Errorf("get review by id: %w", err)
	}

	return &rv, nil
}

// Update applies the patch to the review, scoped to rows owned by requesterID.
// A zero rows-affected result is returned as-is; the caller disambiguates
// "not found" from "not yours" via GetByID.
func (r *ReviewRepository) Update(ctx context.Context, id string, patch repository.ReviewPatch, requesterID string) (int64, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{}
	idx := 1

	add := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if patch.StarCount != nil {
		add("star_count", *patch.StarCount)
	}
	if patch.Potency != nil {
		add("potency", *patch.Potency)
	}
	if patch.Potency2 != nil {
		add("potency_2", *patch.Potency2)
	}
	if patch.Dosage != nil {
		add("dosage", *patch.Dosage)
	}
	if patch.DurationUsed != nil {
		add("duration_used", *patch.DurationUsed)
	}
	if patch.Effectiveness != nil {
		add("effectiveness", *patch.Effectiveness)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}
	if patch.ExperiencedSideEffects != nil {
		add("experienced_side_effects", *patch.ExperiencedSideEffects)
	}

	query := fmt.Sprintf(
		"UPDATE reviews SET %s WHERE id = $%d AND user_id = $%d",
		strings.Join(sets, ", "), idx, idx+1,
	)
	args = append(args, id, requesterID)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update review: %w", err)
	}

	return tag.RowsAffected(), nil
}

// Delete removes the review, scoped to rows owned by requesterID.
func (r *ReviewRepository) Delete(ctx context.Context, id string, requesterID string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM reviews WHERE id = $1 AND user_id = $2",
		id, requesterID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete review: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ListByRemedy returns up to limit candidate reviews for a remedy, optionally
// scoped to an ailment, with the reviewer display name joined in. The fetch is
// unsorted; ordering and residual filtering belong to the list composer.
func (r *ReviewRepository) ListByRemedy(ctx context.Context, remedyID string, ailmentID *string, limit int) ([]domain.Review, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT ` + reviewColumns + `, p.display_name
		FROM reviews r
		LEFT JOIN user_profiles p ON p.id = r.user_id
		WHERE r.remedy_id = $1`

	args := []any{remedyID}
	if ailmentID != nil {
		query += " AND r.ailment_id = $2 LIMIT $3"
		args = append(args, *ailmentID, limit)
	} else {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.RemedyID,
			&rv.UserID,
			&rv.AilmentID,
			&rv.StarCount,
			&rv.Potency,
			&rv.Potency2,
			&rv.Dosage,
			&rv.DurationUsed,
			&rv.Effectiveness,
			&rv.Notes,
			&rv.ExperiencedSideEffects,
			&rv.SecondaryRemedyIDs,
			&rv.CreatedAt,
			&rv.UpdatedAt,
			&rv.ReviewerName,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, nil
}

// CountStars returns the star_count histogram over all reviews for the remedy.
// The scan is never capped by a page size and never filtered.
func (r *ReviewRepository) CountStars(ctx context.Context, remedyID string) (map[int]int, error) {
	query := `
		SELECT star_count, COUNT(*)
		FROM reviews
		WHERE remedy_id = $1
		GROUP BY star_count`

	rows, err := r.pool.Query(ctx, query, remedyID)
	if err != nil {
		return nil, fmt.Errorf("count stars: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var stars, count int
		if err := rows.Scan(&stars, &count); err != nil {
			return nil, fmt.Errorf("scan star count row: %w", err)
		}
		counts[stars] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate star count rows: %w", err)
	}

	return counts, nil
}
