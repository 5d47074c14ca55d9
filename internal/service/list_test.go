package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/remedyhub/review-service/internal/domain"
	apperrors "github.com/remedyhub/review-service/pkg/errors"
)

const listRemedyID = "7e3c2a40-55d2-4f43-9f50-9a1b2c3d4001"

func newTestListService(reviews *mockReviewRepository, ailments *mockAilmentRepository) *ListService {
	logger := newTestLogger()
	resolver := NewAilmentResolver(ailments, logger)
	stats := newTestStatsService(reviews)
	return NewListService(reviews, ailments, resolver, stats, logger)
}

func listReview(id string, stars int, age time.Duration) domain.Review {
	created := time.Now().UTC().Add(-age)
	return domain.Review{
		ID:        id,
		RemedyID:  listRemedyID,
		StarCount: stars,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestListReviews_NoFiltersSortedNewest(t *testing.T) {
	reviews := new(mockReviewRepository)
	ailments := new(mockAilmentRepository)
	svc := newTestListService(reviews, ailments)
	ctx := context.Background()

	candidates := []domain.Review{
		listReview("r-old", 3, 48*time.Hour),
		listReview("r-new", 5, time.Hour),
		listReview("r-mid", 4, 24*time.Hour),
	}

	reviews.On("ListByRemedy", ctx, listRemedyID, (*string)(nil), 100).Return(candidates, nil)
	reviews.On("CountStars", ctx, listRemedyID).Return(map[int]int{5: 1, 4: 1, 3: 1}, nil)

	page, err := svc.ListReviews(ctx, listRemedyID, domain.FilterSpec{}, domain.SortNewest, 1, 10)

	require.NoError(t, err)
	require.Len(t, page.Reviews, 3)
	assert.Equal(t, "r-new", page.Reviews[0].ID)
	assert.Equal(t, "r-mid", page.Reviews[1].ID)
	assert.Equal(t, "r-old", page.Reviews[2].ID)
	assert.Equal(t, 3, page.TotalMatching)
	reviews.AssertExpectations(t)
}

func TestListReviews_RatingFilterCombinesWithAnd(t *testing.T) {
	reviews := new(mockReviewRepository)
	ailments := new(mockAilmentRepository)
	svc := newTestListService(reviews, ailments)
	ctx := context.Background()

	fiveStar := listReview("r-5", 5, time.Hour)
	fiveStar.Potency = strPtr("30C")
	fiveStarWrongPotency := listReview("r-5b", 5, 2*time.Hour)
	fiveStarWrongPotency.Potency = strPtr("200C")
	threeStar := listReview("r-3", 3, 3*time.Hour)
	threeStar.Potency = strPtr("30C")

	reviews.On("ListByRemedy", ctx, listRemedyID, (*string)(nil), 100).
		Return([]domain.Review{fiveStar, fiveStarWrongPotency, threeStar}, nil)
	reviews.On("CountStars", ctx, listRemedyID).Return(map[int]int{5: 2, 3: 1}, nil)

	spec := domain.FilterSpec{Ratings: []int{5}, Potencies: []string{"30C"}}
	page, err := svc.ListReviews(ctx, listRemedyID, spec, domain.SortNewest, 1, 10)

	require.NoError(t, err)
	require.Len(t, page.Reviews, 1)
	assert.Equal(t, "r-5", page.Reviews[0].ID)
	// Stats ignore the filters entirely.
	assert.Equal(t, 3, page.Stats.TotalReviews)
	reviews.AssertExpectations(t)
}

func TestListReviews_PotencyFilterMatchesDosageLabelToo(t *testing.T) {
	reviews := new(mockReviewRepository)
	ailments := new(mockAilmentRepository)
	svc := newTestListService(reviews, ailments)
	ctx := context.Background()

	tagInDosage := listReview("r-1", 4, time.Hour)
	tagInDosage.Dosage = strPtr("6X")
	noTag := listReview("r-2", 4, 2*time.Hour)

	reviews.On("ListByRemedy", ctx, listRemedyID, (*string)(nil), 100).
		Return([]domain.Review{tagInDosage, noTag}, nil)
	reviews.On("CountStars", ctx, listRemedyID).Return(map[int]int{4: 2}, nil)

	spec := domain.FilterSpec{Potencies: []string{"6X"}}
	page, err := svc.ListReviews(ctx, listRemedyID, spec, domain.SortNewest, 1, 10)

	require.NoError(t, err)
	require.Len(t, page.Reviews, 1)
	assert.Equal(t, "r-1", page.Reviews[0].ID)
	reviews.AssertExpectations(t)
}

func TestListReviews_DateRangeMeasuresWholeDays(t *testing.T) {
	reviews := new(mockReviewRepository)
	ailments := new(mockAilmentRepository)
	svc := newTestListService(reviews, ailments)
	ctx := context.Background()

	inside := listReview("r-in", 4, 6*24*time.Hour)
	outside := listReview("r-out", 4, 8*24*time.Hour)

	reviews.On("ListByRemedy", ctx, listRemedyID, (*string)(nil), 100).
		Return([]domain.Review{inside, outside}, nil)
	reviews.On("CountStars", ctx, listRemedyID).Return(map[int]int{4: 2}, nil)

	spec := domain.FilterSpec{DateRange: domain.DateRangeWeek}
	page, err := svc.ListReviews(ctx, listRemedyID, spec, domain.SortNewest, 1, 10)

	require.NoError(t, err)
	require.Len(t, page.Reviews, 1)
	assert.Equal(t, "r-in", page.Reviews[0].ID)
	reviews.AssertExpectations(t)
}

func TestListReviews_AilmentScopeBroadensOnEmptyResult(t *testing.T) {
	reviews := new(mockReviewRepository)
	ailments := new(mockAilmentRepository)
	svc := newTestListService(reviews, ailments)
	ctx := context.Background()

	ailmentID := "11112222-3333-4444-5555-666677770001"
	scoped := &ailmentID

	reviews.On("ListByRemedy", ctx, listRemedyID, scoped, 100).Return([]domain.Review{}, nil)
	reviews.On("ListByRemedy", ctx, listRemedyID, (*string)(nil), 100).
		Return([]domain.Review{listReview("r-any", 4, time.Hour)}, nil)
	reviews.On("CountStars", ctx, listRemedyID).Return(map[int]int{4: 1}, nil)

	spec := domain.FilterSpec{AilmentReference: ailmentID}
	page, err := svc.ListReviews(ctx, listRemedyID, spec, domain.SortNewest, 1, 10)

	require.NoError(t, err)
	require.Len(t, page.Reviews, 1)
	assert.Equal(t, "r-any", page.Reviews[0].ID)
	reviews.AssertExpectations(t)
}

func TestListReviews_UnresolvableAilmentDegradesToNoConstraint(t *testing.T) {
	reviews := new(mockReviewRepository)
	ailments := new(mockAilmentRepository)
	svc := newTestListService(reviews, ailments)
	ctx := context.Background()

	miss := apperrors.NotFound("ailment", "x")
	ailments.On("GetBySlug", ctx, mock.Anything).Return(nil, miss)
	ailments.On("GetByExactName", ctx, mock.Anything).Return(nil, miss)
	ailments.On("SearchByName", ctx, mock.Anything).Return(nil, miss)

	reviews.On("ListByRemedy", ctx, listRemedyID, (*string)(nil), 100).
		Return([]domain.Review{listReview("r-1", 4, time.Hour)}, nil)
	reviews.On("CountStars", ctx, listRemedyID).Return(map[int]int{4: 1}, nil)

	spec := domain.FilterSpec{AilmentReference: "no such ailment"}
	page, err := svc.ListReviews(ctx, listRemedyID, spec, domain.SortNewest, 1, 10)

	require.NoError(t, err)
	require.Len(t, page.Reviews, 1)
	reviews.AssertExpectations(t)
}

func TestListReviews_FreeTextResolvingToAilmentBecomesScope(t *testing.T) {
	reviews := new(mockReviewRepository)
	ailments := new(mockAilmentRepository)
	svc := newTestListService(reviews, ailments)
	ctx := context.Background()

	ailments.On("GetBySlug", ctx, "migraine").
		Return(&domain.Ailment{ID: "a-1", Name: "Migraine", Slug: "migraine"}, nil)

	// The review's notes never mention "migraine"; it must survive because
	// the query acts as an ailment scope, not a text match.
	scoped := listReview("r-scoped", 5, time.Hour)
	scoped.AilmentID = strPtr("a-1")
	scoped.Notes = strPtr("took it for two weeks")

	reviews.On("ListByRemedy", ctx, listRemedyID, mock.MatchedBy(func(p *string) bool {
		return p != nil && *p == "a-1"
	}), 100).Return([]domain.Review{scoped}, nil)
	reviews.On("CountStars", ctx, listRemedyID).Return(map[int]int{5: 1}, nil)

	spec := domain.FilterSpec{FreeTextQuery: "migraine"}
	page, err := svc.ListReviews(ctx, listRemedyID, spec, domain.SortNewest, 1, 10)

	require.NoError(t, err)
	require.Len(t, page.Reviews, 1)
	assert.Equal(t, "r-scoped", page.Reviews[0].ID)
	assert.Equal(t, "Migraine", page.Reviews[0].AilmentName)
	reviews.AssertExpectations(t)
	ailments.AssertExpectations(t)
}

func TestListReviews_UnresolvedFreeTextFiltersNotesAndName(t *testing.T) {
	reviews := new(mockReviewRepository)
	ailments := new(mockAilmentRepository)
	svc := newTestListService(reviews, ailments)
	ctx := context.Background()

	miss := apperrors.NotFound("ailment", "x")
	ailments.On("GetBySlug", ctx, mock.Anything).Return(nil, miss)
	ailments.On("GetByExactName", ctx, mock.Anything).Return(nil, miss)
	ailments.On("SearchByName", ctx, mock.Anything).Return(nil, miss)

	match := listReview("r-match", 4, time.Hour)
	match.Notes = strPtr("Wonderful for SLEEP problems")
	nameMatch := listReview("r-name", 4, 2*time.Hour)
	nameMatch.ReviewerName = strPtr("sleepyhead")
	noMatch := listReview("r-none", 4, 3*time.Hour)
	noMatch.Notes = strPtr("no effect at all")

	reviews.On("ListByRemedy", ctx, listRemedyID, (*string)(nil), 100).
		Return([]domain.Review{match, nameMatch, noMatch}, nil)
	reviews.On("CountStars", ctx, listRemedyID).Return(map[int]int{4: 3}, nil)

	spec := domain.FilterSpec{FreeTextQuery: "sleep"}
	page, err := svc.ListReviews(ctx, listRemedyID, spec, domain.SortNewest, 1, 10)

	require.NoError(t, err)
	require.Len(t, page.Reviews, 2)
	assert.Equal(t, "r-match", page.Reviews[0].ID)
	assert.Equal(t, "r-name", page.Reviews[1].ID)
	reviews.AssertExpectations(t)
}

func TestListReviews_ReviewerNameFilterMatchesAnonymous(t *testing.T) {
	reviews := new(mockReviewRepository)
	ailments := new(mockAilmentRepository)
	svc := newTestListService(reviews, ailments)
	ctx := context.Background()

	unnamed := listReview("r-anon", 4, time.Hour)
	named := listReview("r-named", 4, 2*time.Hour)
	named.ReviewerName = strPtr("Alice")

	reviews.On("ListByRemedy", ctx, listRemedyID, (*string)(nil), 100).
		Return([]domain.Review{unnamed, named}, nil)
	reviews.On("CountStars", ctx, listRemedyID).Return(map[int]int{4: 2}, nil)

	spec := domain.FilterSpec{ReviewerNameQuery: "anon"}
	page, err := svc.ListReviews(ctx, listRemedyID, spec, domain.SortNewest, 1, 10)

	require.NoError(t, err)
	require.Len(t, page.Reviews, 1)
	assert.Equal(t, "r-anon", page.Reviews[0].ID)
	reviews.AssertExpectations(t)
}

func TestListReviews_OutOfRangePageIsEmptyWithCorrectTotals(t *testing.T) {
	reviews := new(mockReviewRepository)
	ailments := new(mockAilmentRepository)
	svc := newTestListService(reviews, ailments)
	ctx := context.Background()

	reviews.On("ListByRemedy", ctx, listRemedyID, (*string)(nil), 20).
		Return([]domain.Review{
			listReview("r-1", 4, time.Hour),
			listReview("r-2", 4, 2*time.Hour),
			listReview("r-3", 4, 3*time.Hour),
		}, nil)
	reviews.On("CountStars", ctx, listRemedyID).Return(map[int]int{4: 3}, nil)

	page, err := svc.ListReviews(ctx, listRemedyID, domain.FilterSpec{}, domain.SortNewest, 5, 2)

	require.NoError(t, err)
	assert.Empty(t, page.Reviews)
	assert.Equal(t, 3, page.TotalMatching)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 5, page.Page)
	reviews.AssertExpectations(t)
}

func TestListReviews_RatingSortBreaksTiesByRecency(t *testing.T) {
	reviews := new(mockReviewRepository)
	ailments := new(mockAilmentRepository)
	svc := newTestListService(reviews, ailments)
	ctx := context.Background()

	oldFive := listReview("r-old5", 5, 48*time.Hour)
	newFive := listReview("r-new5", 5, time.Hour)
	three := listReview("r-3", 3, time.Hour)

	reviews.On("ListByRemedy", ctx, listRemedyID, (*string)(nil), 100).
		Return([]domain.Review{oldFive, newFive, three}, nil)
	reviews.On("CountStars", ctx, listRemedyID).Return(map[int]int{5: 2, 3: 1}, nil)

	page, err := svc.ListReviews(ctx, listRemedyID, domain.FilterSpec{}, domain.SortHighestRated, 1, 10)

	require.NoError(t, err)
	require.Len(t, page.Reviews, 3)
	assert.Equal(t, "r-new5", page.Reviews[0].ID)
	assert.Equal(t, "r-old5", page.Reviews[1].ID)
	assert.Equal(t, "r-3", page.Reviews[2].ID)
	reviews.AssertExpectations(t)
}

func TestListReviews_AilmentNamesAttachedFromDirectory(t *testing.T) {
	reviews := new(mockReviewRepository)
	ailments := new(mockAilmentRepository)
	svc := newTestListService(reviews, ailments)
	ctx := context.Background()

	first := listReview("r-1", 4, time.Hour)
	first.AilmentID = strPtr("a-1")
	second := listReview("r-2", 4, 2*time.Hour)
	second.AilmentID = strPtr("a-1")

	reviews.On("ListByRemedy", ctx, listRemedyID, (*string)(nil), 100).
		Return([]domain.Review{first, second}, nil)
	reviews.On("CountStars", ctx, listRemedyID).Return(map[int]int{4: 2}, nil)

	// Two reviews share the ailment; the directory is consulted once.
	ailments.On("GetByID", ctx, "a-1").
		Return(&domain.Ailment{ID: "a-1", Name: "Insomnia", Slug: "insomnia"}, nil).Once()

	page, err := svc.ListReviews(ctx, listRemedyID, domain.FilterSpec{}, domain.SortNewest, 1, 10)

	require.NoError(t, err)
	require.Len(t, page.Reviews, 2)
	assert.Equal(t, "Insomnia", page.Reviews[0].AilmentName)
	assert.Equal(t, "Insomnia", page.Reviews[1].AilmentName)
	ailments.AssertExpectations(t)
}
