package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/remedyhub/review-service/internal/repository"
	apperrors "github.com/remedyhub/review-service/pkg/errors"
	"github.com/remedyhub/review-service/pkg/slug"
)

// AilmentResolver turns a loosely-typed ailment reference (canonical id, slug,
// or free-text name) into a canonical ailment id.
type AilmentResolver struct {
	repo   repository.AilmentRepository
	logger *slog.Logger
}

// NewAilmentResolver creates a new ailment resolver.
func NewAilmentResolver(repo repository.AilmentRepository, logger *slog.Logger) *AilmentResolver {
	return &AilmentResolver{repo: repo, logger: logger}
}

// Resolve resolves reference to a canonical ailment id. A miss is not an
// error: callers proceed as if no ailment constraint was supplied.
//
// Resolution order: a reference that already parses as a UUID is returned
// unchanged without a lookup; otherwise the slug form of the reference, the
// exact case-sensitive name, and finally a case-insensitive substring match
// (first result by name) are tried.
//
// names is a request-scoped cache. A successful non-id resolution records the
// (id → display name) pair in it so the list composer can render the ailment
// name even when the review rows do not embed it.
func (r *AilmentResolver) Resolve(ctx context.Context, reference string, names map[string]string) (string, bool, error) {
	if reference == "" {
		return "", false, nil
	}

	if _, err := uuid.Parse(reference); err == nil {
		return reference, true, nil
	}

	lookups := []func() (string, string, error){
		func() (string, string, error) {
			a, err := r.repo.GetBySlug(ctx, slug.Generate(reference))
			if err != nil {
				return "", "", err
			}
			return a.ID, a.Name, nil
		},
		func() (string, string, error) {
			a, err := r.repo.GetByExactName(ctx, reference)
			if err != nil {
				return "", "", err
			}
			return a.ID, a.Name, nil
		},
		func() (string, string, error) {
			a, err := r.repo.SearchByName(ctx, reference)
			if err != nil {
				return "", "", err
			}
			return a.ID, a.Name, nil
		},
	}

	for _, lookup := range lookups {
		id, name, err := lookup()
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return "", false, err
		}
		if names != nil {
			names[id] = name
		}
		return id, true, nil
	}

	r.logger.DebugContext(ctx, "ailment reference did not resolve",
		slog.String("reference", reference),
	)

	return "", false, nil
}
