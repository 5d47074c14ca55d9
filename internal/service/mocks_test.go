package service

import (
	"context"
	"log/slog"
	"os"

	"github.com/stretchr/testify/mock"

	"github.com/remedyhub/review-service/internal/domain"
	"github.com/remedyhub/review-service/internal/event"
	"github.com/remedyhub/review-service/internal/repository"
	pkgkafka "github.com/remedyhub/review-service/pkg/kafka"
)

// --- Mock Review Repository ---

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) Update(ctx context.Context, id string, patch repository.ReviewPatch, requesterID string) (int64, error) {
	args := m.Called(ctx, id, patch, requesterID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReviewRepository) Delete(ctx context.Context, id string, requesterID string) (int64, error) {
	args := m.Called(ctx, id, requesterID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReviewRepository) ListByRemedy(ctx context.Context, remedyID string, ailmentID *string, limit int) ([]domain.Review, error) {
	args := m.Called(ctx, remedyID, ailmentID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) CountStars(ctx context.Context, remedyID string) (map[int]int, error) {
	args := m.Called(ctx, remedyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]int), args.Error(1)
}

// --- Mock Like Repository ---

type mockLikeRepository struct {
	mock.Mock
}

func (m *mockLikeRepository) Insert(ctx context.Context, reviewID, userID string) (bool, error) {
	args := m.Called(ctx, reviewID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockLikeRepository) Delete(ctx context.Context, reviewID, userID string) (bool, error) {
	args := m.Called(ctx, reviewID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockLikeRepository) Exists(ctx context.Context, reviewID, userID string) (bool, error) {
	args := m.Called(ctx, reviewID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockLikeRepository) Count(ctx context.Context, reviewID string) (int, error) {
	args := m.Called(ctx, reviewID)
	return args.Int(0), args.Error(1)
}

// --- Mock Comment Repository ---

type mockCommentRepository struct {
	mock.Mock
}

func (m *mockCommentRepository) Create(ctx context.Context, comment *domain.ReviewComment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *mockCommentRepository) GetByID(ctx context.Context, id string) (*domain.ReviewComment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewComment), args.Error(1)
}

func (m *mockCommentRepository) Update(ctx context.Context, id, content, requesterID string) (int64, error) {
	args := m.Called(ctx, id, content, requesterID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCommentRepository) Delete(ctx context.Context, id, requesterID string) (int64, error) {
	args := m.Called(ctx, id, requesterID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCommentRepository) ListByReview(ctx context.Context, reviewID string) ([]domain.ReviewComment, error) {
	args := m.Called(ctx, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReviewComment), args.Error(1)
}

func (m *mockCommentRepository) CountByReview(ctx context.Context, reviewID string) (int, error) {
	args := m.Called(ctx, reviewID)
	return args.Int(0), args.Error(1)
}

// --- Mock Ailment Repository ---

type mockAilmentRepository struct {
	mock.Mock
}

func (m *mockAilmentRepository) GetByID(ctx context.Context, id string) (*domain.Ailment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ailment), args.Error(1)
}

func (m *mockAilmentRepository) GetBySlug(ctx context.Context, slug string) (*domain.Ailment, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ailment), args.Error(1)
}

func (m *mockAilmentRepository) GetByExactName(ctx context.Context, name string) (*domain.Ailment, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ailment), args.Error(1)
}

func (m *mockAilmentRepository) SearchByName(ctx context.Context, query string) (*domain.Ailment, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ailment), args.Error(1)
}

func (m *mockAilmentRepository) List(ctx context.Context) ([]domain.Ailment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ailment), args.Error(1)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestEventProducer() *event.Producer {
	logger := newTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

func newTestStatsService(repo repository.ReviewRepository) *StatsService {
	return NewStatsService(repo, nil, newTestLogger())
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
