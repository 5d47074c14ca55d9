package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/remedyhub/review-service/internal/domain"
	pkgkafka "github.com/remedyhub/review-service/pkg/kafka"
)

// Kafka topic constants for review domain events.
const (
	TopicReviewCreated = "remedyhub.review.created"
	TopicReviewDeleted = "remedyhub.review.deleted"
	TopicReviewLiked   = "remedyhub.review.liked"
)

// Aggregate type constant.
const AggregateTypeReview = "review"

// Source identifier for events originating from this service.
const SourceReviewService = "review-service"

// ReviewCreatedData is the payload for a review.created event.
type ReviewCreatedData struct {
	ID                 string   `json:"id"`
	RemedyID           string   `json:"remedy_id"`
	UserID             *string  `json:"user_id,omitempty"`
	AilmentID          *string  `json:"ailment_id,omitempty"`
	StarCount          int      `json:"star_count"`
	SecondaryRemedyIDs []string `json:"secondary_remedy_ids,omitempty"`
}

// ReviewDeletedData is the payload for a review.deleted event.
type ReviewDeletedData struct {
	ID       string `json:"id"`
	RemedyID string `json:"remedy_id"`
}

// ReviewLikedData is the payload for a review.liked event. Liked is false
// when the toggle removed the like.
type ReviewLikedData struct {
	ReviewID   string `json:"review_id"`
	UserID     string `json:"user_id"`
	Liked      bool   `json:"liked"`
	TotalLikes int    `json:"total_likes"`
}

// Producer publishes review domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the review service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	data := ReviewCreatedData{
		ID:                 review.ID,
		RemedyID:           review.RemedyID,
		UserID:             review.UserID,
		AilmentID:          review.AilmentID,
		StarCount:          review.StarCount,
		SecondaryRemedyIDs: review.SecondaryRemedyIDs,
	}

	event, err := pkgkafka.NewEvent(TopicReviewCreated, review.ID, AggregateTypeReview, SourceReviewService, data)
	if err != nil {
		return fmt.Errorf("create review.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewCreated, event); err != nil {
		return fmt.Errorf("publish review.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.created event",
		slog.String("review_id", review.ID),
		slog.String("remedy_id", review.RemedyID),
	)

	return nil
}

// PublishReviewDeleted publishes a review.deleted event.
func (p *Producer) PublishReviewDeleted(ctx context.Context, id, remedyID string) error {
	data := ReviewDeletedData{ID: id, RemedyID: remedyID}

	event, err := pkgkafka.NewEvent(TopicReviewDeleted, id, AggregateTypeReview, SourceReviewService, data)
	if err != nil {
		return fmt.Errorf("create review.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewDeleted, event); err != nil {
		return fmt.Errorf("publish review.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.deleted event",
		slog.String("review_id", id),
	)

	return nil
}

// PublishReviewLiked publishes a review.liked event for both directions of
// the toggle.
func (p *Producer) PublishReviewLiked(ctx context.Context, reviewID, userID string, liked bool, totalLikes int) error {
	data := ReviewLikedData{
		ReviewID:   reviewID,
		UserID:     userID,
		Liked:      liked,
		TotalLikes: totalLikes,
	}

	event, err := pkgkafka.NewEvent(TopicReviewLiked, reviewID, AggregateTypeReview, SourceReviewService, data)
	if err != nil {
		return fmt.Errorf("create review.liked event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewLiked, event); err != nil {
		return fmt.Errorf("publish review.liked event: %w", err)
	}

	return nil
}
