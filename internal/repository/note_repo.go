package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/c50bossio/6fb-workbook-api/internal/models"
)

// NoteFilter narrows note listings.
type NoteFilter struct {
	ModuleID string
	LessonID string
	Tag      string
	Limit    int
	Offset   int
}

// NoteRepository persists workbook notes.
type NoteRepository interface {
	Create(ctx context.Context, note *models.WorkbookNote) error
	GetByID(ctx context.Context, id string) (*models.WorkbookNote, error)
	ListByUser(ctx context.Context, userID string, filter NoteFilter) ([]models.WorkbookNote, int64, error)
	Update(ctx context.Context, note *models.WorkbookNote) error
	Delete(ctx context.Context, id string) error
}

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository constructs the note repository.
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *models.WorkbookNote) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *noteRepository) GetByID(ctx context.Context, id string) (*models.WorkbookNote, error) {
	var note models.WorkbookNote
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &note, nil
}

func (r *noteRepository) ListByUser(ctx context.Context, userID string, filter NoteFilter) ([]models.WorkbookNote, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.WorkbookNote{}).Where("user_id = ?", userID)
	if filter.ModuleID != "" {
		query = query.Where("module_id = ?", filter.ModuleID)
	}
	if filter.LessonID != "" {
		query = query.Where("lesson_id = ?", filter.LessonID)
	}
	if filter.Tag != "" {
		query = query.Where("tags_raw LIKE ?", "%"+filter.Tag+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var notes []models.WorkbookNote
	err := query.Order("updated_at DESC").Find(&notes).Error
	return notes, total, err
}

func (r *noteRepository) Update(ctx context.Context, note *models.WorkbookNote) error {
	return r.db.WithContext(ctx).
		Model(note).
		Select("*").Omit("id", "created_at").
		Updates(note).Error
}

func (r *noteRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.WorkbookNote{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
