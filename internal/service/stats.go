package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/remedyhub/review-service/internal/domain"
	"github.com/remedyhub/review-service/internal/repository"
)

const statsCacheTTL = 30 * time.Second

// StatsService computes aggregate rating statistics for a remedy. Statistics
// are always computed over the complete review set, never over a filtered
// subset, and never share state with the list composer.
type StatsService struct {
	repo   repository.ReviewRepository
	cache  *redis.Client
	logger *slog.Logger
}

// NewStatsService creates a new stats service. cache may be nil, in which
// case every call computes from the database.
func NewStatsService(repo repository.ReviewRepository, cache *redis.Client, logger *slog.Logger) *StatsService {
	return &StatsService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func statsCacheKey(remedyID string) string {
	return "review:stats:" + remedyID
}

// ComputeStats returns the average rating, review total, and 1-5 star
// histogram for the remedy. A remedy with zero reviews yields average 0.0 and
// an all-zero distribution; that is a defined terminal state, not a failure.
func (s *StatsService) ComputeStats(ctx context.Context, remedyID string) (*domain.ReviewStats, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, statsCacheKey(remedyID)).Bytes(); err == nil {
			var stats domain.ReviewStats
			if err := json.Unmarshal(cached, &stats); err == nil {
				return &stats, nil
			}
		}
	}

	counts, err := s.repo.CountStars(ctx, remedyID)
	if err != nil {
		return nil, fmt.Errorf("compute stats: %w", err)
	}

	stats := domain.EmptyStats()
	sum := 0
	for stars := 1; stars <= 5; stars++ {
		n := counts[stars]
		stats.RatingDistribution[stars] = n
		stats.TotalReviews += n
		sum += stars * n
	}

	if stats.TotalReviews > 0 {
		avg := float64(sum) / float64(stats.TotalReviews)
		stats.AverageRating = math.Round(avg*10) / 10
	}

	if s.cache != nil {
		if data, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey(remedyID), data, statsCacheTTL).Err(); err != nil {
				s.logger.WarnContext(ctx, "failed to cache review stats",
					slog.String("remedy_id", remedyID),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	return stats, nil
}

// Invalidate drops the cached stats for a remedy. Every write path calls this
// so a read issued by the same engine after a write sees fresh numbers; reads
// racing a write from another request may see a momentarily stale snapshot,
// which is acceptable.
func (s *StatsService) Invalidate(ctx context.Context, remedyID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, statsCacheKey(remedyID)).Err(); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate review stats cache",
			slog.String("remedy_id", remedyID),
			slog.String("error", err.Error()),
		)
	}
}
