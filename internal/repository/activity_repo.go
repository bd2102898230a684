package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/c50bossio/6fb-workbook-api/internal/models"
)

// ActivityFilter narrows activity log queries.
type ActivityFilter struct {
	Since *time.Time
	Until *time.Time
	Types []models.ActivityType
	Limit int
}

// ActivityRepository stores the append-only learning activity log.
type ActivityRepository interface {
	Create(ctx context.Context, record *models.ActivityRecord) error
	ListByUser(ctx context.Context, userID string, filter ActivityFilter) ([]models.ActivityRecord, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository constructs the activity repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, record *models.ActivityRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *activityRepository) ListByUser(ctx context.Context, userID string, filter ActivityFilter) ([]models.ActivityRecord, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)

	if filter.Since != nil {
		query = query.Where("occurred_at >= ?", *filter.Since)
	}
	if filter.Until != nil {
		query = query.Where("occurred_at <= ?", *filter.Until)
	}
	if len(filter.Types) > 0 {
		query = query.Where("type IN ?", filter.Types)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var records []models.ActivityRecord
	err := query.Order("occurred_at DESC").Find(&records).Error
	return records, err
}
