package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/remedyhub/review-service/internal/domain"
	"github.com/remedyhub/review-service/internal/repository"
	apperrors "github.com/remedyhub/review-service/pkg/errors"
)

const (
	defaultPageSize = 10

	// fetchMultiplier sizes the candidate fetch relative to one page. Residual
	// filtering happens after the fetch, so the fetch is deliberately generous.
	fetchMultiplier = 10
)

// ReviewPage is one page of a filtered, sorted review list together with the
// remedy's unfiltered aggregate statistics.
type ReviewPage struct {
	Reviews       []domain.Review     `json:"reviews"`
	Page          int                 `json:"page"`
	PerPage       int                 `json:"per_page"`
	TotalMatching int                 `json:"total_matching"`
	TotalPages    int                 `json:"total_pages"`
	Stats         *domain.ReviewStats `json:"stats"`
}

// ListService composes the review list pipeline: resolve the ailment scope,
// fetch candidates, apply residual filters, sort, and paginate. Statistics are
// attached from an independent unfiltered computation.
type ListService struct {
	reviews  repository.ReviewRepository
	ailments repository.AilmentRepository
	resolver *AilmentResolver
	stats    *StatsService
	logger   *slog.Logger
	now      func() time.Time
}

// NewListService creates a new list service.
func NewListService(
	reviews repository.ReviewRepository,
	ailments repository.AilmentRepository,
	resolver *AilmentResolver,
	stats *StatsService,
	logger *slog.Logger,
) *ListService {
	return &ListService{
		reviews:  reviews,
		ailments: ailments,
		resolver: resolver,
		stats:    stats,
		logger:   logger,
		now:      time.Now,
	}
}

// ListReviews returns the requested page of reviews for a remedy, filtered by
// spec and ordered by sortKey. Filters combine with AND; a filter set no
// review satisfies yields an empty page with TotalMatching zero, while the
// attached stats still cover the full review set.
func (s *ListService) ListReviews(ctx context.Context, remedyID string, spec domain.FilterSpec, sortKey domain.SortKey, page, perPage int) (*ReviewPage, error) {
	if !sortKey.Valid() {
		sortKey = domain.SortNewest
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPageSize
	}

	// Request-scoped ailment name cache, shared between resolution and name
	// attachment so one request never looks the same ailment up twice.
	names := make(map[string]string)

	ailmentID, residualText, err := s.resolveScope(ctx, &spec, names)
	if err != nil {
		return nil, err
	}

	fetchLimit := perPage * fetchMultiplier
	candidates, err := s.reviews.ListByRemedy(ctx, remedyID, ailmentID, fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch review candidates: %w", err)
	}

	// Fallback broadening: a resolved scope with zero rows re-issues the fetch
	// once without the scope. The broadened result still passes through every
	// residual filter below.
	if ailmentID != nil && len(candidates) == 0 {
		s.logger.DebugContext(ctx, "ailment scope matched no reviews, broadening",
			slog.String("remedy_id", remedyID),
			slog.String("ailment_id", *ailmentID),
		)
		candidates, err = s.reviews.ListByRemedy(ctx, remedyID, nil, fetchLimit)
		if err != nil {
			return nil, fmt.Errorf("fetch broadened review candidates: %w", err)
		}
	}

	matched := candidates
	if !spec.IsZero() {
		matched = s.applyFilters(candidates, &spec, residualText)
	}

	if err := s.attachAilmentNames(ctx, matched, names); err != nil {
		return nil, err
	}

	sortReviews(matched, sortKey)

	stats, err := s.stats.ComputeStats(ctx, remedyID)
	if err != nil {
		return nil, err
	}

	total := len(matched)
	totalPages := (total + perPage - 1) / perPage
	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start, end = total, total
	} else if end > total {
		end = total
	}

	items := matched[start:end]
	if items == nil {
		items = []domain.Review{}
	}

	return &ReviewPage{
		Reviews:       items,
		Page:          page,
		PerPage:       perPage,
		TotalMatching: total,
		TotalPages:    totalPages,
		Stats:         stats,
	}, nil
}

// resolveScope turns the filter's ailment reference and free-text query into an
// optional ailment id plus the residual text predicate. A free-text query that
// resolves to an ailment becomes the scope and stops acting as a text match;
// an explicit ailment reference wins over the free-text resolution.
func (s *ListService) resolveScope(ctx context.Context, spec *domain.FilterSpec, names map[string]string) (*string, string, error) {
	residualText := strings.TrimSpace(spec.FreeTextQuery)

	if spec.AilmentReference != "" {
		id, ok, err := s.resolver.Resolve(ctx, spec.AilmentReference, names)
		if err != nil {
			return nil, "", err
		}
		if ok {
			return &id, residualText, nil
		}
		// An unresolvable reference degrades to no constraint.
		return nil, residualText, nil
	}

	if residualText != "" {
		id, ok, err := s.resolver.Resolve(ctx, residualText, names)
		if err != nil {
			return nil, "", err
		}
		if ok {
			return &id, "", nil
		}
	}

	return nil, residualText, nil
}

// applyFilters runs the residual predicates over the candidates, in a fixed
// order, all combined with AND.
func (s *ListService) applyFilters(candidates []domain.Review, spec *domain.FilterSpec, residualText string) []domain.Review {
	matched := make([]domain.Review, 0, len(candidates))
	now := s.now()

	for i := range candidates {
		r := &candidates[i]
		if !matchRatings(r, spec.Ratings) {
			continue
		}
		if !matchPotencies(r, spec.Potencies) {
			continue
		}
		if !matchForms(r, spec.Forms) {
			continue
		}
		if !matchDateRange(r, spec.DateRange, now) {
			continue
		}
		if !matchReviewerName(r, spec.ReviewerNameQuery) {
			continue
		}
		if !matchFreeText(r, residualText) {
			continue
		}
		matched = append(matched, *r)
	}

	return matched
}

func matchRatings(r *domain.Review, ratings []int) bool {
	if len(ratings) == 0 {
		return true
	}
	for _, want := range ratings {
		if r.StarCount == want {
			return true
		}
	}
	return false
}

// matchPotencies accepts a review whose potency or dosage label is in the
// set. Submissions are inconsistent about which of the two fields carries the
// potency tag, so both are checked.
func matchPotencies(r *domain.Review, potencies []string) bool {
	if len(potencies) == 0 {
		return true
	}
	for _, want := range potencies {
		if r.Potency != nil && *r.Potency == want {
			return true
		}
		if r.Dosage != nil && *r.Dosage == want {
			return true
		}
	}
	return false
}

// matchForms accepts a review whose dosage label is in the set. Form and
// dosage schedule share the dosage column.
func matchForms(r *domain.Review, forms []string) bool {
	if len(forms) == 0 {
		return true
	}
	if r.Dosage == nil {
		return false
	}
	for _, want := range forms {
		if *r.Dosage == want {
			return true
		}
	}
	return false
}

// matchDateRange measures the window in whole elapsed days, so "today" means
// less than one full day old regardless of calendar boundaries.
func matchDateRange(r *domain.Review, dateRange domain.DateRange, now time.Time) bool {
	windowDays, ok := dateRange.CutoffDays()
	if !ok {
		return true
	}
	elapsedDays := int(now.Sub(r.CreatedAt).Hours() / 24)
	return elapsedDays < windowDays
}

func matchReviewerName(r *domain.Review, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.DisplayName()), strings.ToLower(query))
}

// matchFreeText accepts a review whose notes or reviewer display name contain
// the query, case-insensitively.
func matchFreeText(r *domain.Review, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if r.Notes != nil && strings.Contains(strings.ToLower(*r.Notes), q) {
		return true
	}
	return strings.Contains(strings.ToLower(r.DisplayName()), q)
}

// attachAilmentNames fills in AilmentName for every review that carries an
// ailment id, going through the request-scoped cache so each distinct id is
// looked up at most once. A dangling ailment id leaves the name empty.
func (s *ListService) attachAilmentNames(ctx context.Context, reviews []domain.Review, names map[string]string) error {
	for i := range reviews {
		if reviews[i].AilmentID == nil {
			continue
		}
		id := *reviews[i].AilmentID
		name, ok := names[id]
		if !ok {
			ailment, err := s.ailments.GetByID(ctx, id)
			switch {
			case err == nil:
				name = ailment.Name
			case errors.Is(err, apperrors.ErrNotFound):
				name = ""
			default:
				return fmt.Errorf("resolve ailment name: %w", err)
			}
			names[id] = name
		}
		reviews[i].AilmentName = name
	}
	return nil
}

// sortReviews orders reviews by the sort key. The sort is stable, so reviews
// tied on the key keep their relative order; rating sorts break ties by
// recency.
func sortReviews(reviews []domain.Review, key domain.SortKey) {
	sort.SliceStable(reviews, func(i, j int) bool {
		a, b := &reviews[i], &reviews[j]
		switch key {
		case domain.SortOldest:
			return a.CreatedAt.Before(b.CreatedAt)
		case domain.SortHighestRated:
			if a.StarCount != b.StarCount {
				return a.StarCount > b.StarCount
			}
			return a.CreatedAt.After(b.CreatedAt)
		case domain.SortLowestRated:
			if a.StarCount != b.StarCount {
				return a.StarCount < b.StarCount
			}
			return a.CreatedAt.After(b.CreatedAt)
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
}
