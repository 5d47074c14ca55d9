package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/remedyhub/review-service/internal/domain"
	"github.com/remedyhub/review-service/internal/event"
	"github.com/remedyhub/review-service/internal/repository"
	apperrors "github.com/remedyhub/review-service/pkg/errors"
)

// LikeResult is the outcome of a like toggle: the user's state after the
// toggle and the committed like total.
type LikeResult struct {
	Liked      bool `json:"liked"`
	TotalLikes int  `json:"total_likes"`
}

// InteractionCounts aggregates a review's social counters for one viewer.
type InteractionCounts struct {
	Likes        int  `json:"likes"`
	Comments     int  `json:"comments"`
	UserHasLiked bool `json:"user_has_liked"`
}

// InteractionService implements likes and comments on reviews.
type InteractionService struct {
	reviews  repository.ReviewRepository
	likes    repository.LikeRepository
	comments repository.CommentRepository
	events   *event.Producer
	logger   *slog.Logger
}

// NewInteractionService creates a new interaction service.
func NewInteractionService(
	reviews repository.ReviewRepository,
	likes repository.LikeRepository,
	comments repository.CommentRepository,
	events *event.Producer,
	logger *slog.Logger,
) *InteractionService {
	return &InteractionService{
		reviews:  reviews,
		likes:    likes,
		comments: comments,
		events:   events,
		logger:   logger,
	}
}

// ToggleLike flips the user's like on the review and returns the resulting
// state. The toggle is idempotent under races: two concurrent likes both
// report liked=true, with exactly one row committed.
func (s *InteractionService) ToggleLike(ctx context.Context, reviewID, userID string) (*LikeResult, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	if _, err := s.reviews.GetByID(ctx, reviewID); err != nil {
		return nil, err
	}

	liked, err := s.likes.Exists(ctx, reviewID, userID)
	if err != nil {
		return nil, fmt.Errorf("check like state: %w", err)
	}

	var nowLiked bool
	if liked {
		// A zero-row delete means a concurrent toggle already removed the
		// like; the end state is the same either way.
		if _, err := s.likes.Delete(ctx, reviewID, userID); err != nil {
			return nil, fmt.Errorf("remove like: %w", err)
		}
		nowLiked = false
	} else {
		// Insert reports false on a duplicate pair, which means a concurrent
		// toggle won the race; the like exists, so the outcome stands.
		if _, err := s.likes.Insert(ctx, reviewID, userID); err != nil {
			return nil, fmt.Errorf("add like: %w", err)
		}
		nowLiked = true
	}

	total, err := s.likes.Count(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}

	if err := s.events.PublishReviewLiked(ctx, reviewID, userID, nowLiked, total); err != nil {
		s.logger.WarnContext(ctx, "failed to publish review.liked event",
			slog.String("review_id", reviewID),
			slog.String("error", err.Error()),
		)
	}

	return &LikeResult{Liked: nowLiked, TotalLikes: total}, nil
}

// GetCounts returns the review's like and comment totals plus whether userID
// has liked it. An empty userID reports UserHasLiked false.
func (s *InteractionService) GetCounts(ctx context.Context, reviewID, userID string) (*InteractionCounts, error) {
	if _, err := s.reviews.GetByID(ctx, reviewID); err != nil {
		return nil, err
	}

	likes, err := s.likes.Count(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}

	comments, err := s.comments.CountByReview(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}

	counts := &InteractionCounts{Likes: likes, Comments: comments}

	if userID != "" {
		hasLiked, err := s.likes.Exists(ctx, reviewID, userID)
		if err != nil {
			return nil, fmt.Errorf("check like state: %w", err)
		}
		counts.UserHasLiked = hasLiked
	}

	return counts, nil
}

// AddComment creates a comment on the review, optionally as a reply to a
// top-level comment on the same review.
func (s *InteractionService) AddComment(ctx context.Context, reviewID, userID, content string, parentCommentID *string) (*domain.ReviewComment, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.InvalidInput("content is required")
	}

	if _, err := s.reviews.GetByID(ctx, reviewID); err != nil {
		return nil, err
	}

	if parentCommentID != nil {
		parent, err := s.comments.GetByID(ctx, *parentCommentID)
		if err != nil {
			return nil, err
		}
		if parent.ReviewID != reviewID {
			return nil, apperrors.InvalidInput("parent comment belongs to a different review")
		}
		if parent.IsReply() {
			return nil, apperrors.InvalidInput("cannot reply to a reply")
		}
	}

	now := time.Now().UTC()
	comment := &domain.ReviewComment{
		ID:              uuid.NewString(),
		ReviewID:        reviewID,
		UserID:          userID,
		ParentCommentID: parentCommentID,
		Content:         content,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.logger.InfoContext(ctx, "comment created",
		slog.String("comment_id", comment.ID),
		slog.String("review_id", reviewID),
	)

	return comment, nil
}

// UpdateComment changes a comment's content on behalf of requesterID. Only
// the comment's author may edit it.
func (s *InteractionService) UpdateComment(ctx context.Context, id, content, requesterID string) (*domain.ReviewComment, error) {
	if requesterID == "" {
		return nil, apperrors.InvalidInput("requester id is required")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.InvalidInput("content is required")
	}

	if _, err := s.comments.GetByID(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.comments.Update(ctx, id, content, requesterID)
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	if rows == 0 {
		return nil, apperrors.Ownership("comment", id)
	}

	return s.comments.GetByID(ctx, id)
}

// DeleteComment removes a comment on behalf of requesterID. Replies to the
// comment are removed with it.
func (s *InteractionService) DeleteComment(ctx context.Context, id, requesterID string) error {
	if requesterID == "" {
		return apperrors.InvalidInput("requester id is required")
	}

	if _, err := s.comments.GetByID(ctx, id); err != nil {
		return err
	}

	rows, err := s.comments.Delete(ctx, id, requesterID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if rows == 0 {
		return apperrors.Ownership("comment", id)
	}

	return nil
}

// ListComments returns all comments on the review in creation order, replies
// interleaved after their parents by timestamp.
func (s *InteractionService) ListComments(ctx context.Context, reviewID string) ([]domain.ReviewComment, error) {
	if _, err := s.reviews.GetByID(ctx, reviewID); err != nil {
		return nil, err
	}
	return s.comments.ListByReview(ctx, reviewID)
}
