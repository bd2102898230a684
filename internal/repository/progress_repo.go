package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/c50bossio/6fb-workbook-api/internal/models"
)

// ModuleProgressRepository persists per-user module progress records.
type ModuleProgressRepository interface {
	GetByUserAndModule(ctx context.Context, userID, moduleID string) (*models.ModuleProgress, error)
	ListByUser(ctx context.Context, userID string) ([]models.ModuleProgress, error)
	Create(ctx context.Context, record *models.ModuleProgress) error
	UpdateWithVersion(ctx context.Context, record *models.ModuleProgress) error
}

// LessonProgressRepository persists per-user lesson progress records.
type LessonProgressRepository interface {
	GetByUserAndLesson(ctx context.Context, userID, lessonID string) (*models.LessonProgress, error)
	ListByUserAndModule(ctx context.Context, userID, moduleID string) ([]models.LessonProgress, error)
	ListByUser(ctx context.Context, userID string) ([]models.LessonProgress, error)
	Create(ctx context.Context, record *models.LessonProgress) error
	UpdateWithVersion(ctx context.Context, record *models.LessonProgress) error
}

type moduleProgressRepository struct {
	db *gorm.DB
}

// NewModuleProgressRepository constructs the module progress repository.
func NewModuleProgressRepository(db *gorm.DB) ModuleProgressRepository {
	return &moduleProgressRepository{db: db}
}

func (r *moduleProgressRepository) GetByUserAndModule(ctx context.Context, userID, moduleID string) (*models.ModuleProgress, error) {
	var record models.ModuleProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *moduleProgressRepository) ListByUser(ctx context.Context, userID string) ([]models.ModuleProgress, error) {
	var records []models.ModuleProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}

func (r *moduleProgressRepository) Create(ctx context.Context, record *models.ModuleProgress) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *moduleProgressRepository) UpdateWithVersion(ctx context.Context, record *models.ModuleProgress) error {
	return casUpdate(r.db.WithContext(ctx), &models.ModuleProgress{}, record.ID, &record.Version, record)
}

type lessonProgressRepository struct {
	db *gorm.DB
}

// NewLessonProgressRepository constructs the lesson progress repository.
func NewLessonProgressRepository(db *gorm.DB) LessonProgressRepository {
	return &lessonProgressRepository{db: db}
}

func (r *lessonProgressRepository) GetByUserAndLesson(ctx context.Context, userID, lessonID string) (*models.LessonProgress, error) {
	var record models.LessonProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *lessonProgressRepository) ListByUserAndModule(ctx context.Context, userID, moduleID string) ([]models.LessonProgress, error) {
	var records []models.LessonProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}

func (r *lessonProgressRepository) ListByUser(ctx context.Context, userID string) ([]models.LessonProgress, error) {
	var records []models.LessonProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}

func (r *lessonProgressRepository) Create(ctx context.Context, record *models.LessonProgress) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *lessonProgressRepository) UpdateWithVersion(ctx context.Context, record *models.LessonProgress) error {
	return casUpdate(r.db.WithContext(ctx), &models.LessonProgress{}, record.ID, &record.Version, record)
}

// casUpdate writes the full record guarded by its version column. The stored
// version must still match the snapshot's; on success the version is bumped
// both in the row and in the in-memory record.
func casUpdate(db *gorm.DB, model any, id string, version *int, record any) error {
	current := *version
	*version = current + 1

	result := db.Model(model).
		Where("id = ? AND version = ?", id, current).
		Select("*").
		Omit("id", "created_at").
		Updates(record)
	if result.Error != nil {
		*version = current
		return result.Error
	}
	if result.RowsAffected == 0 {
		*version = current
		return ErrVersionConflict
	}
	return nil
}
