package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/c50bossio/6fb-workbook-api/internal/dto"
	"github.com/c50bossio/6fb-workbook-api/internal/models"
	"github.com/c50bossio/6fb-workbook-api/internal/repository"
)

// ActivityService records and lists entries in the append-only activity log.
type ActivityService interface {
	Record(ctx context.Context, userID string, req dto.RecordActivityRequest) (dto.ActivityResponse, error)
	List(ctx context.Context, userID string, query dto.ActivityListQuery) ([]dto.ActivityResponse, error)
}

type activityService struct {
	repo      repository.ActivityRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewActivityService constructs the activity log service.
func NewActivityService(repo repository.ActivityRepository, validate *validator.Validate, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "activity_service").Logger(),
		now:       time.Now,
	}
}

func (s *activityService) Record(ctx context.Context, userID string, req dto.RecordActivityRequest) (dto.ActivityResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ActivityResponse{}, err
	}

	kind := models.ActivityType(req.Type)
	if !kind.Valid() {
		return dto.ActivityResponse{}, fmt.Errorf("unknown activity type %q", req.Type)
	}

	occurredAt := s.now().UTC()
	if req.OccurredAt != nil {
		parsed, err := time.Parse(time.RFC3339, *req.OccurredAt)
		if err != nil {
			return dto.ActivityResponse{}, err
		}
		occurredAt = parsed.UTC()
	}

	record := &models.ActivityRecord{
		ID:              uuid.NewString(),
		UserID:          userID,
		Type:            kind,
		ModuleID:        req.ModuleID,
		LessonID:        req.LessonID,
		SessionID:       req.SessionID,
		DurationMinutes: req.DurationMinutes,
		OccurredAt:      occurredAt,
	}
	if req.Details != nil {
		record.Details = datatypes.JSONMap(req.Details)
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return dto.ActivityResponse{}, err
	}
	return dto.NewActivityResponse(record), nil
}

func (s *activityService) List(ctx context.Context, userID string, query dto.ActivityListQuery) ([]dto.ActivityResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}

	filter := repository.ActivityFilter{Limit: query.Limit}
	if query.Since != "" {
		since, err := time.Parse("2006-01-02", query.Since)
		if err != nil {
			return nil, err
		}
		filter.Since = &since
	}
	if query.Until != "" {
		until, err := time.Parse("2006-01-02", query.Until)
		if err != nil {
			return nil, err
		}
		// Inclusive end date.
		end := until.Add(24*time.Hour - time.Nanosecond)
		filter.Until = &end
	}
	if query.Type != "" {
		filter.Types = []models.ActivityType{models.ActivityType(query.Type)}
	}

	records, err := s.repo.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ActivityResponse, 0, len(records))
	for i := range records {
		out = append(out, dto.NewActivityResponse(&records[i]))
	}
	return out, nil
}
