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

// AilmentRepository implements read access to the ailment directory using
// PostgreSQL.
type AilmentRepository struct {
	pool database.DBTX
}

// NewAilmentRepository creates a new PostgreSQL-backed ailment repository.
func NewAilmentRepository(pool database.DBTX) *AilmentRepository {
	return &AilmentRepository{pool: pool}
}

const ailmentColumns = `id, name, slug, icon`

func (r *AilmentRepository) getOne(ctx context.Context, query string, arg any) (*domain.Ailment, error) {
	var a domain.Ailment
	err := r.pool.QueryRow(ctx, query, arg).Scan(&a.ID, &a.Name, &a.Slug, &a.Icon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("ailment", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("get ailment: %w", err)
	}
	return &a, nil
}

// GetByID retrieves an ailment by its canonical id.
func (r *AilmentRepository) GetByID(ctx context.Context, id string) (*domain.Ailment, error) {
	return r.getOne(ctx, `SELECT `+ailmentColumns+` FROM ailments WHERE id = $1`, id)
}

// GetBySlug retrieves an ailment by its slug.
func (r *AilmentRepository) GetBySlug(ctx context.Context, slug string) (*domain.Ailment, error) {
	return r.getOne(ctx, `SELECT `+ailmentColumns+` FROM ailments WHERE slug = $1`, slug)
}

// GetByExactName retrieves an ailment by case-sensitive name match.
func (r *AilmentRepository) GetByExactName(ctx context.Context, name string) (*domain.Ailment, error) {
	return r.getOne(ctx, `SELECT `+ailmentColumns+` FROM ailments WHERE name = $1`, name)
}

// SearchByName returns the first ailment whose name contains the query
// case-insensitively, ordered by name.
func (r *AilmentRepository) SearchByName(ctx context.Context, query string) (*domain.Ailment, error) {
	return r.getOne(ctx, `
		SELECT `+ailmentColumns+`
		FROM ailments
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT 1`, query)
}

// List returns the full ailment directory ordered by name.
func (r *AilmentRepository) List(ctx context.Context) ([]domain.Ailment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+ailmentColumns+` FROM ailments ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list ailments: %w", err)
	}
	defer rows.Close()

	var ailments []domain.Ailment
	for rows.Next() {
		var a domain.Ailment
		if err := rows.Scan(&a.ID, &a.Name, &a.Slug, &a.Icon); err != nil {
			return nil, fmt.Errorf("scan ailment row: %w", err)
		}
		ailments = append(ailments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ailment rows: %w", err)
	}

	if ailments == nil {
		ailments = []domain.Ailment{}
	}

	return ailments, nil
}
