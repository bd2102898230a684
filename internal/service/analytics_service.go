package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/c50bossio/6fb-workbook-api/internal/dto"
	"github.com/c50bossio/6fb-workbook-api/internal/progress"
	"github.com/c50bossio/6fb-workbook-api/internal/repository"
)

// AnalyticsService aggregates learning behaviour over the activity log.
type AnalyticsService interface {
	ForPeriod(ctx context.Context, userID string, period progress.Period) (dto.AnalyticsResponse, error)
	Invalidate(ctx context.Context, userID string)
}

type analyticsService struct {
	modules  repository.ModuleProgressRepository
	lessons  repository.LessonProgressRepository
	activity repository.ActivityRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewAnalyticsService constructs the analytics service.
func NewAnalyticsService(
	modules repository.ModuleProgressRepository,
	lessons repository.LessonProgressRepository,
	activity repository.ActivityRepository,
	cache *redis.Client,
	ttl time.Duration,
	logger zerolog.Logger,
) AnalyticsService {
	return &analyticsService{
		modules:  modules,
		lessons:  lessons,
		activity: activity,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "analytics_service").Logger(),
		tracer:   otel.Tracer("github.com/c50bossio/6fb-workbook-api/internal/service/analytics"),
		now:      time.Now,
	}
}

func (s *analyticsService) ForPeriod(ctx context.Context, userID string, period progress.Period) (dto.AnalyticsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.for_period", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	cacheKey := fmt.Sprintf("analytics:%s:%s:%s", userID,
		period.Start.UTC().Format("2006-01-02"), period.End.UTC().Format("2006-01-02"))

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.AnalyticsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Str("user_id", userID).Msg("analytics cache hit")
				span.SetAttributes(attribute.Bool("cache.hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read analytics cache")
		}
	}

	moduleProgress, err := s.modules.ListByUser(ctx, userID)
	if err != nil {
		return dto.AnalyticsResponse{}, err
	}
	lessonProgress, err := s.lessons.ListByUser(ctx, userID)
	if err != nil {
		return dto.AnalyticsResponse{}, err
	}
	activities, err := s.activity.ListByUser(ctx, userID, repository.ActivityFilter{})
	if err != nil {
		return dto.AnalyticsResponse{}, err
	}

	response := dto.AnalyticsResponse{
		Analytics: progress.BuildAnalytics(moduleProgress, lessonProgress, activities, period),
		Streak:    progress.LearningStreak(activities, s.now().UTC()),
	}

	if s.cache != nil {
		if payload, marshalErr := json.Marshal(response); marshalErr == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store analytics cache")
			}
		}
	}

	return response, nil
}

// Invalidate drops all cached analytics windows for a user. Called after
// writes that change the underlying aggregates.
func (s *analyticsService) Invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("analytics:%s:*", userID)
	iter := s.cache.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := s.cache.Del(ctx, iter.Val()).Err(); err != nil {
			s.logger.Warn().Err(err).Str("key", iter.Val()).Msg("failed to invalidate analytics cache")
		}
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn().Err(err).Msg("analytics cache scan failed")
	}
}
