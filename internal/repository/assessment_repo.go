package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/c50bossio/6fb-workbook-api/internal/models"
)

// AssessmentRepository stores graded assessment attempts.
type AssessmentRepository interface {
	Create(ctx context.Context, attempt *models.AssessmentProgress) error
	CountAttempts(ctx context.Context, userID, assessmentID string) (int, error)
	ListAttempts(ctx context.Context, userID, assessmentID string) ([]models.AssessmentProgress, error)
}

type assessmentRepository struct {
	db *gorm.DB
}

// NewAssessmentRepository constructs the assessment repository.
func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) Create(ctx context.Context, attempt *models.AssessmentProgress) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *assessmentRepository) CountAttempts(ctx context.Context, userID, assessmentID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AssessmentProgress{}).
		Where("user_id = ? AND assessment_id = ?", userID, assessmentID).
		Count(&count).Error
	return int(count), err
}

func (r *assessmentRepository) ListAttempts(ctx context.Context, userID, assessmentID string) ([]models.AssessmentProgress, error) {
	var attempts []models.AssessmentProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND assessment_id = ?", userID, assessmentID).
		Order("attempt_number ASC").
		Find(&attempts).Error
	return attempts, err
}
