package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/remedyhub/review-service/internal/domain"
	"github.com/remedyhub/review-service/internal/event"
	"github.com/remedyhub/review-service/internal/repository"
	apperrors "github.com/remedyhub/review-service/pkg/errors"
)

// UpdateReviewInput holds the patchable fields of a review. Nil fields are
// left unchanged.
type UpdateReviewInput struct {
	StarCount              *int
	Potency                *string
	Potency2               *string
	Dosage                 *string
	DurationUsed           *string
	Effectiveness          *int
	Notes                  *string
	ExperiencedSideEffects *bool
}

func (in *UpdateReviewInput) validate() error {
	if in.StarCount != nil && (*in.StarCount < 1 || *in.StarCount > 5) {
		return apperrors.InvalidInput("star_count must be between 1 and 5")
	}
	if in.Effectiveness != nil && (*in.Effectiveness < 0 || *in.Effectiveness > 5) {
		return apperrors.InvalidInput("effectiveness must be between 0 and 5")
	}
	return nil
}

func (in *UpdateReviewInput) patch() repository.ReviewPatch {
	return repository.ReviewPatch{
		StarCount:              in.StarCount,
		Potency:                in.Potency,
		Potency2:               in.Potency2,
		Dosage:                 in.Dosage,
		DurationUsed:           in.DurationUsed,
		Effectiveness:          in.Effectiveness,
		Notes:                  in.Notes,
		ExperiencedSideEffects: in.ExperiencedSideEffects,
	}
}

// ReviewService implements owner-scoped review mutations. A review is mutable
// and deletable only by its owning user; a zero-row write is classified as
// "not found" or "not yours" by a preceding existence read.
type ReviewService struct {
	repo   repository.ReviewRepository
	stats  *StatsService
	events *event.Producer
	logger *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(repo repository.ReviewRepository, stats *StatsService, events *event.Producer, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:   repo,
		stats:  stats,
		events: events,
		logger: logger,
	}
}

// GetReview returns a review by id.
func (s *ReviewService) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateReview applies the patch to the review on behalf of requesterID.
// Only the review's owner may update it.
func (s *ReviewService) UpdateReview(ctx context.Context, id string, input *UpdateReviewInput, requesterID string) (*domain.Review, error) {
	if requesterID == "" {
		return nil, apperrors.InvalidInput("requester id is required")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	// Existence read before the ownership-scoped write, so a zero-row result
	// can be told apart from a missing row.
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.repo.Update(ctx, id, input.patch(), requesterID)
	if err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	if rows == 0 {
		return nil, apperrors.Ownership("review", id)
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload updated review: %w", err)
	}

	s.stats.Invalidate(ctx, updated.RemedyID)

	s.logger.InfoContext(ctx, "review updated",
		slog.String("review_id", id),
		slog.String("user_id", requesterID),
	)

	return updated, nil
}

// DeleteReview removes the review on behalf of requesterID. Only the
// review's owner may delete it.
func (s *ReviewService) DeleteReview(ctx context.Context, id string, requesterID string) error {
	if requesterID == "" {
		return apperrors.InvalidInput("requester id is required")
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	rows, err := s.repo.Delete(ctx, id, requesterID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if rows == 0 {
		return apperrors.Ownership("review", id)
	}

	s.stats.Invalidate(ctx, existing.RemedyID)

	if err := s.events.PublishReviewDeleted(ctx, id, existing.RemedyID); err != nil {
		s.logger.WarnContext(ctx, "failed to publish review.deleted event",
			slog.String("review_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("review_id", id),
		slog.String("user_id", requesterID),
	)

	return nil
}
