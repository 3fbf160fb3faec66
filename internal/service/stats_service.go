package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/batchplan-api/internal/models"
	appErrors "github.com/noah-isme/batchplan-api/pkg/errors"
)

const (
	statsCacheKey     = "stats:admin"
	statsCachePattern = "stats:*"
)

type statsRepository interface {
	AdminStats(ctx context.Context) (*models.AdminStats, error)
}

// StatsService serves the admin overview counters, cached when Redis is available.
type StatsService struct {
	repo   statsRepository
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewStatsService constructs the service.
func NewStatsService(repo statsRepository, cache *CacheService, ttl time.Duration, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{repo: repo, cache: cache, ttl: ttl, logger: logger, now: time.Now}
}

// Get returns current stats and whether they came from cache.
func (s *StatsService) Get(ctx context.Context) (*models.AdminStats, bool, error) {
	var cached models.AdminStats
	if hit, err := s.cache.Get(ctx, statsCacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	stats, err := s.repo.AdminStats(ctx)
	if err != nil {
		return nil, false, appErrors.Repository(err, "failed to compute stats")
	}
	stats.GeneratedAt = s.now().UTC()

	if err := s.cache.Set(ctx, statsCacheKey, stats, s.ttl); err != nil {
		s.logger.Debug("stats not cached", zap.Error(err))
	}
	return stats, false, nil
}
