package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/remedyhub/review-service/internal/domain"
	apperrors "github.com/remedyhub/review-service/pkg/errors"
)

func newTestInteractionService(
	reviews *mockReviewRepository,
	likes *mockLikeRepository,
	comments *mockCommentRepository,
) *InteractionService {
	return NewInteractionService(reviews, likes, comments, newTestEventProducer(), newTestLogger())
}

func TestToggleLike_AddsWhenAbsent(t *testing.T) {
	reviews := new(mockReviewRepository)
	likes := new(mockLikeRepository)
	comments := new(mockCommentRepository)
	svc := newTestInteractionService(reviews, likes, comments)
	ctx := context.Background()

	reviews.On("GetByID", ctx, "rev-1").Return(ownedReview("owner"), nil)
	likes.On("Exists", ctx, "rev-1", "user-1").Return(false, nil)
	likes.On("Insert", ctx, "rev-1", "user-1").Return(true, nil)
	likes.On("Count", ctx, "rev-1").Return(1, nil)

	result, err := svc.ToggleLike(ctx, "rev-1", "user-1")

	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.Equal(t, 1, result.TotalLikes)
	likes.AssertExpectations(t)
}

func TestToggleLike_RemovesWhenPresent(t *testing.T) {
	reviews := new(mockReviewRepository)
	likes := new(mockLikeRepository)
	comments := new(mockCommentRepository)
	svc := newTestInteractionService(reviews, likes, comments)
	ctx := context.Background()

	reviews.On("GetByID", ctx, "rev-1").Return(ownedReview("owner"), nil)
	likes.On("Exists", ctx, "rev-1", "user-1").Return(true, nil)
	likes.On("Delete", ctx, "rev-1", "user-1").Return(true, nil)
	likes.On("Count", ctx, "rev-1").Return(0, nil)

	result, err := svc.ToggleLike(ctx, "rev-1", "user-1")

	require.NoError(t, err)
	assert.False(t, result.Liked)
	assert.Equal(t, 0, result.TotalLikes)
	likes.AssertExpectations(t)
}

func TestToggleLike_LosingInsertRaceStillReportsLiked(t *testing.T) {
	reviews := new(mockReviewRepository)
	likes := new(mockLikeRepository)
	comments := new(mockCommentRepository)
	svc := newTestInteractionService(reviews, likes, comments)
	ctx := context.Background()

	// Another request committed the same pair between Exists and Insert. The
	// insert reports a duplicate, but exactly one like exists, so the user
	// ends up in the liked state either way.
	reviews.On("GetByID", ctx, "rev-1").Return(ownedReview("owner"), nil)
	likes.On("Exists", ctx, "rev-1", "user-1").Return(false, nil)
	likes.On("Insert", ctx, "rev-1", "user-1").Return(false, nil)
	likes.On("Count", ctx, "rev-1").Return(1, nil)

	result, err := svc.ToggleLike(ctx, "rev-1", "user-1")

	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.Equal(t, 1, result.TotalLikes)
	likes.AssertExpectations(t)
}

func TestToggleLike_MissingReviewIsNotFound(t *testing.T) {
	reviews := new(mockReviewRepository)
	likes := new(mockLikeRepository)
	comments := new(mockCommentRepository)
	svc := newTestInteractionService(reviews, likes, comments)
	ctx := context.Background()

	reviews.On("GetByID", ctx, "rev-x").Return(nil, apperrors.NotFound("review", "rev-x"))

	_, err := svc.ToggleLike(ctx, "rev-x", "user-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	likes.AssertNotCalled(t, "Insert")
}

func TestGetCounts_IncludesViewerLikeState(t *testing.T) {
	reviews := new(mockReviewRepository)
	likes := new(mockLikeRepository)
	comments := new(mockCommentRepository)
	svc := newTestInteractionService(reviews, likes, comments)
	ctx := context.Background()

	reviews.On("GetByID", ctx, "rev-1").Return(ownedReview("owner"), nil)
	likes.On("Count", ctx, "rev-1").Return(4, nil)
	comments.On("CountByReview", ctx, "rev-1").Return(2, nil)
	likes.On("Exists", ctx, "rev-1", "viewer-1").Return(true, nil)

	counts, err := svc.GetCounts(ctx, "rev-1", "viewer-1")

	require.NoError(t, err)
	assert.Equal(t, 4, counts.Likes)
	assert.Equal(t, 2, counts.Comments)
	assert.True(t, counts.UserHasLiked)
	likes.AssertExpectations(t)
}

func TestGetCounts_AnonymousViewerSkipsLikeLookup(t *testing.T) {
	reviews := new(mockReviewRepository)
	likes := new(mockLikeRepository)
	comments := new(mockCommentRepository)
	svc := newTestInteractionService(reviews, likes, comments)
	ctx := context.Background()

	reviews.On("GetByID", ctx, "rev-1").Return(ownedReview("owner"), nil)
	likes.On("Count", ctx, "rev-1").Return(4, nil)
	comments.On("CountByReview", ctx, "rev-1").Return(0, nil)

	counts, err := svc.GetCounts(ctx, "rev-1", "")

	require.NoError(t, err)
	assert.False(t, counts.UserHasLiked)
	likes.AssertNotCalled(t, "Exists")
}

func TestAddComment_Success(t *testing.T) {
	reviews := new(mockReviewRepository)
	likes := new(mockLikeRepository)
	comments := new(mockCommentRepository)
	svc := newTestInteractionService(reviews, likes, comments)
	ctx := context.Background()

	reviews.On("GetByID", ctx, "rev-1").Return(ownedReview("owner"), nil)
	comments.On("Create", ctx, mock.AnythingOfType("*domain.ReviewComment")).Return(nil)

	comment, err := svc.AddComment(ctx, "rev-1", "user-1", "  same here  ", nil)

	require.NoError(t, err)
	assert.NotEmpty(t, comment.ID)
	assert.Equal(t, "same here", comment.Content)
	assert.False(t, comment.IsReply())
	comments.AssertExpectations(t)
}

func TestAddComment_ReplyToCommentOnOtherReviewRejected(t *testing.T) {
	reviews := new(mockReviewRepository)
	likes := new(mockLikeRepository)
	comments := new(mockCommentRepository)
	svc := newTestInteractionService(reviews, likes, comments)
	ctx := context.Background()

	reviews.On("GetByID", ctx, "rev-1").Return(ownedReview("owner"), nil)
	comments.On("GetByID", ctx, "parent-1").Return(&domain.ReviewComment{
		ID:       "parent-1",
		ReviewID: "rev-other",
		UserID:   "someone",
	}, nil)

	_, err := svc.AddComment(ctx, "rev-1", "user-1", "reply", strPtr("parent-1"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	comments.AssertNotCalled(t, "Create")
}

func TestAddComment_ReplyToReplyRejected(t *testing.T) {
	reviews := new(mockReviewRepository)
	likes := new(mockLikeRepository)
	comments := new(mockCommentRepository)
	svc := newTestInteractionService(reviews, likes, comments)
	ctx := context.Background()

	reviews.On("GetByID", ctx, "rev-1").Return(ownedReview("owner"), nil)
	comments.On("GetByID", ctx, "reply-1").Return(&domain.ReviewComment{
		ID:              "reply-1",
		ReviewID:        "rev-1",
		UserID:          "someone",
		ParentCommentID: strPtr("top-1"),
	}, nil)

	_, err := svc.AddComment(ctx, "rev-1", "user-1", "nested", strPtr("reply-1"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	comments.AssertNotCalled(t, "Create")
}

func TestUpdateComment_ZeroRowsIsOwnershipError(t *testing.T) {
	reviews := new(mockReviewRepository)
	likes := new(mockLikeRepository)
	comments := new(mockCommentRepository)
	svc := newTestInteractionService(reviews, likes, comments)
	ctx := context.Background()

	existing := &domain.ReviewComment{
		ID:        "c-1",
		ReviewID:  "rev-1",
		UserID:    "someone-else",
		Content:   "original",
		CreatedAt: time.Now().UTC(),
	}

	comments.On("GetByID", ctx, "c-1").Return(existing, nil)
	comments.On("Update", ctx, "c-1", "edited", "user-1").Return(int64(0), nil)

	_, err := svc.UpdateComment(ctx, "c-1", "edited", "user-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
	comments.AssertExpectations(t)
}

func TestDeleteComment_Success(t *testing.T) {
	reviews := new(mockReviewRepository)
	likes := new(mockLikeRepository)
	comments := new(mockCommentRepository)
	svc := newTestInteractionService(reviews, likes, comments)
	ctx := context.Background()

	comments.On("GetByID", ctx, "c-1").Return(&domain.ReviewComment{
		ID: "c-1", ReviewID: "rev-1", UserID: "user-1",
	}, nil)
	comments.On("Delete", ctx, "c-1", "user-1").Return(int64(1), nil)

	err := svc.DeleteComment(ctx, "c-1", "user-1")

	require.NoError(t, err)
	comments.AssertExpectations(t)
}
