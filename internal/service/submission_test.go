package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/remedyhub/review-service/internal/domain"
	apperrors "github.com/remedyhub/review-service/pkg/errors"
)

const (
	primaryRemedy     = "7e3c2a40-55d2-4f43-9f50-9a1b2c3d4001"
	secondaryRemedy   = "7e3c2a40-55d2-4f43-9f50-9a1b2c3d4002"
	tertiaryRemedy    = "7e3c2a40-55d2-4f43-9f50-9a1b2c3d4003"
	submissionAilment = "7e3c2a40-55d2-4f43-9f50-9a1b2c3d4010"
)

func newTestSubmissionService(repo *mockReviewRepository) *SubmissionService {
	return NewSubmissionService(repo, newTestStatsService(repo), newTestEventProducer(), newTestLogger())
}

func validSubmission() *SubmissionInput {
	return &SubmissionInput{
		PrimaryRemedyID: primaryRemedy,
		UserID:          "user-1",
		AilmentID:       strPtr(submissionAilment),
		StarCount:       4,
		Dosage:          strPtr("pellets, twice daily"),
		DurationUsed:    strPtr("3 weeks"),
		Effectiveness:   intPtr(4),
		Notes:           strPtr("worked well"),
	}
}

func TestSubmit_SingleRemedyCreatesOneRow(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestSubmissionService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil).Once()

	result, err := svc.Submit(ctx, validSubmission())

	require.NoError(t, err)
	require.NotNil(t, result.Primary)
	assert.Equal(t, primaryRemedy, result.Primary.RemedyID)
	assert.Empty(t, result.Secondary)
	assert.Empty(t, result.FailedRemedyIDs)
	repo.AssertExpectations(t)
}

func TestSubmit_CombinationCreatesOneRowPerRemedy(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestSubmissionService(repo)
	ctx := context.Background()

	var created []*domain.Review
	repo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).
		Run(func(args mock.Arguments) {
			created = append(created, args.Get(1).(*domain.Review))
		}).
		Return(nil).Times(3)

	input := validSubmission()
	input.SecondaryRemedyIDs = []string{secondaryRemedy, tertiaryRemedy}
	input.PerRemedyPotency = map[string]*string{secondaryRemedy: strPtr("200C")}

	result, err := svc.Submit(ctx, input)

	require.NoError(t, err)
	require.Len(t, created, 3)
	assert.Len(t, result.Secondary, 2)

	// Primary row is written first and is the only row recording the
	// combination.
	assert.Equal(t, primaryRemedy, created[0].RemedyID)
	assert.Equal(t, []string{secondaryRemedy, tertiaryRemedy}, created[0].SecondaryRemedyIDs)

	// Secondary rows stand alone, applying their per-remedy overrides.
	assert.Equal(t, secondaryRemedy, created[1].RemedyID)
	assert.Empty(t, created[1].SecondaryRemedyIDs)
	require.NotNil(t, created[1].Potency)
	assert.Equal(t, "200C", *created[1].Potency)

	assert.Equal(t, tertiaryRemedy, created[2].RemedyID)
	assert.Empty(t, created[2].SecondaryRemedyIDs)
	assert.Nil(t, created[2].Potency)
	repo.AssertExpectations(t)
}

func TestSubmit_PrimaryFailureAbortsEverything(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestSubmissionService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).
		Return(errors.New("insert failed")).Once()

	input := validSubmission()
	input.SecondaryRemedyIDs = []string{secondaryRemedy}

	result, err := svc.Submit(ctx, input)

	require.Error(t, err)
	assert.Nil(t, result)
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestSubmit_SecondaryFailureIsPartialNotRollback(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestSubmissionService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(r *domain.Review) bool {
		return r.RemedyID == primaryRemedy
	})).Return(nil)
	repo.On("Create", ctx, mock.MatchedBy(func(r *domain.Review) bool {
		return r.RemedyID == secondaryRemedy
	})).Return(errors.New("insert failed"))
	repo.On("Create", ctx, mock.MatchedBy(func(r *domain.Review) bool {
		return r.RemedyID == tertiaryRemedy
	})).Return(nil)

	input := validSubmission()
	input.SecondaryRemedyIDs = []string{secondaryRemedy, tertiaryRemedy}

	result, err := svc.Submit(ctx, input)

	require.Error(t, err)
	var partial *PartialFailure
	require.True(t, errors.As(err, &partial))
	assert.Equal(t, []string{secondaryRemedy}, partial.FailedRemedyIDs)
	assert.Len(t, partial.CreatedReviewIDs, 2)

	require.NotNil(t, result)
	assert.Equal(t, []string{secondaryRemedy}, result.FailedRemedyIDs)
	assert.Len(t, result.Secondary, 1)
	assert.Equal(t, tertiaryRemedy, result.Secondary[0].RemedyID)
	repo.AssertExpectations(t)
}

func TestSubmit_MissingSharedFieldsRejected(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestSubmissionService(repo)
	ctx := context.Background()

	mutations := map[string]func(in *SubmissionInput){
		"ailment":       func(in *SubmissionInput) { in.AilmentID = nil },
		"dosage":        func(in *SubmissionInput) { in.Dosage = nil },
		"duration":      func(in *SubmissionInput) { in.DurationUsed = nil },
		"effectiveness": func(in *SubmissionInput) { in.Effectiveness = nil },
		"blank dosage":  func(in *SubmissionInput) { in.Dosage = strPtr("   ") },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			input := validSubmission()
			mutate(input)

			_, err := svc.Submit(ctx, input)

			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		})
	}

	repo.AssertNotCalled(t, "Create")
}

func TestSubmit_ValidationRunsOnceBeforeAnyWrite(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestSubmissionService(repo)
	ctx := context.Background()

	input := validSubmission()
	input.StarCount = 0

	_, err := svc.Submit(ctx, input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	input = validSubmission()
	input.SecondaryRemedyIDs = []string{primaryRemedy}

	_, err = svc.Submit(ctx, input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	repo.AssertNotCalled(t, "Create")
}
