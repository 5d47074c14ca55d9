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

// SubmissionInput describes one review submission. A submission covers a
// primary remedy and zero or more secondary remedies taken in combination;
// each remedy gets its own review row carrying the shared experience fields.
type SubmissionInput struct {
	PrimaryRemedyID    string
	SecondaryRemedyIDs []string

	UserID    string
	AilmentID *string

	StarCount              int
	Potency                *string
	Potency2               *string
	Dosage                 *string
	DurationUsed           *string
	Effectiveness          *int
	Notes                  *string
	ExperiencedSideEffects bool

	// PerRemedyPotency and PerRemedyNotes override the shared potency and
	// notes for individual remedies in the combination, keyed by remedy id.
	PerRemedyPotency map[string]*string
	PerRemedyNotes   map[string]*string
}

// validate checks the shared fields once, before any write is issued. A
// submission must carry an ailment, dosage, duration, and effectiveness even
// though stored rows keep those columns nullable for legacy data.
func (in *SubmissionInput) validate() error {
	if strings.TrimSpace(in.PrimaryRemedyID) == "" {
		return apperrors.InvalidInput("primary remedy id is required")
	}
	if in.UserID == "" {
		return apperrors.InvalidInput("user id is required")
	}
	if in.AilmentID == nil || strings.TrimSpace(*in.AilmentID) == "" {
		return apperrors.InvalidInput("ailment_id is required")
	}
	if in.StarCount < 1 || in.StarCount > 5 {
		return apperrors.InvalidInput("star_count must be between 1 and 5")
	}
	if in.Dosage == nil || strings.TrimSpace(*in.Dosage) == "" {
		return apperrors.InvalidInput("dosage is required")
	}
	if in.DurationUsed == nil || strings.TrimSpace(*in.DurationUsed) == "" {
		return apperrors.InvalidInput("duration_used is required")
	}
	if in.Effectiveness == nil {
		return apperrors.InvalidInput("effectiveness is required")
	}
	if *in.Effectiveness < 0 || *in.Effectiveness > 5 {
		return apperrors.InvalidInput("effectiveness must be between 0 and 5")
	}
	seen := map[string]struct{}{in.PrimaryRemedyID: {}}
	for _, id := range in.SecondaryRemedyIDs {
		if strings.TrimSpace(id) == "" {
			return apperrors.InvalidInput("secondary remedy ids must not be empty")
		}
		if _, dup := seen[id]; dup {
			return apperrors.InvalidInput("duplicate remedy id in submission")
		}
		seen[id] = struct{}{}
	}
	return nil
}

// SubmissionResult reports what a submission created. FailedRemedyIDs is
// non-empty only when some secondary writes failed after the primary
// succeeded.
type SubmissionResult struct {
	Primary         *domain.Review  `json:"primary"`
	Secondary       []domain.Review `json:"secondary,omitempty"`
	FailedRemedyIDs []string        `json:"failed_remedy_ids,omitempty"`
}

// PartialFailure is returned when the primary review committed but one or
// more secondary reviews did not. The committed rows stay committed; callers
// report which remedies need resubmission.
type PartialFailure struct {
	CreatedReviewIDs []string
	FailedRemedyIDs  []string
	Err              error
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("submission partially failed: %d created, %d failed: %v",
		len(e.CreatedReviewIDs), len(e.FailedRemedyIDs), e.Err)
}

func (e *PartialFailure) Unwrap() error {
	return e.Err
}

// SubmissionService creates review rows from combination submissions.
type SubmissionService struct {
	repo   repository.ReviewRepository
	stats  *StatsService
	events *event.Producer
	logger *slog.Logger
}

// NewSubmissionService creates a new submission service.
func NewSubmissionService(repo repository.ReviewRepository, stats *StatsService, events *event.Producer, logger *slog.Logger) *SubmissionService {
	return &SubmissionService{
		repo:   repo,
		stats:  stats,
		events: events,
		logger: logger,
	}
}

// Submit validates the input once, then writes one review per remedy: the
// primary first, then each secondary. A primary failure aborts the whole
// submission. Secondary failures do not roll back earlier rows; the remaining
// secondaries are still attempted and the failures are reported as a
// PartialFailure.
func (s *SubmissionService) Submit(ctx context.Context, input *SubmissionInput) (*SubmissionResult, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	primary := s.buildReview(input, input.PrimaryRemedyID, input.SecondaryRemedyIDs)
	if err := s.repo.Create(ctx, primary); err != nil {
		return nil, fmt.Errorf("create primary review: %w", err)
	}
	s.afterCreate(ctx, primary)

	result := &SubmissionResult{Primary: primary}

	var (
		failed  []string
		lastErr error
	)
	// Only the primary row records the combination; secondary rows stand
	// alone.
	for _, remedyID := range input.SecondaryRemedyIDs {
		secondary := s.buildReview(input, remedyID, nil)
		if err := s.repo.Create(ctx, secondary); err != nil {
			s.logger.ErrorContext(ctx, "secondary review write failed",
				slog.String("remedy_id", remedyID),
				slog.String("error", err.Error()),
			)
			failed = append(failed, remedyID)
			lastErr = err
			continue
		}
		s.afterCreate(ctx, secondary)
		result.Secondary = append(result.Secondary, *secondary)
	}

	if len(failed) > 0 {
		created := make([]string, 0, 1+len(result.Secondary))
		created = append(created, primary.ID)
		for _, r := range result.Secondary {
			created = append(created, r.ID)
		}
		result.FailedRemedyIDs = failed
		return result, &PartialFailure{
			CreatedReviewIDs: created,
			FailedRemedyIDs:  failed,
			Err:              lastErr,
		}
	}

	return result, nil
}

// buildReview assembles the review row for one remedy of the submission,
// applying per-remedy overrides over the shared fields.
func (s *SubmissionService) buildReview(input *SubmissionInput, remedyID string, linkedRemedyIDs []string) *domain.Review {
	potency := input.Potency
	if override, ok := input.PerRemedyPotency[remedyID]; ok {
		potency = override
	}
	notes := input.Notes
	if override, ok := input.PerRemedyNotes[remedyID]; ok {
		notes = override
	}

	now := time.Now().UTC()
	userID := input.UserID
	return &domain.Review{
		ID:                     uuid.NewString(),
		RemedyID:               remedyID,
		UserID:                 &userID,
		AilmentID:              input.AilmentID,
		StarCount:              input.StarCount,
		Potency:                potency,
		Potency2:               input.Potency2,
		Dosage:                 input.Dosage,
		DurationUsed:           input.DurationUsed,
		Effectiveness:          input.Effectiveness,
		Notes:                  notes,
		ExperiencedSideEffects: input.ExperiencedSideEffects,
		SecondaryRemedyIDs:     linkedRemedyIDs,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
}

func (s *SubmissionService) afterCreate(ctx context.Context, review *domain.Review) {
	s.stats.Invalidate(ctx, review.RemedyID)

	if err := s.events.PublishReviewCreated(ctx, review); err != nil {
		s.logger.WarnContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}
}
