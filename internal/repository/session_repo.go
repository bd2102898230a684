package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/c50bossio/6fb-workbook-api/internal/models"
)

// SessionRepository persists live sessions. Participant count changes go
// through guarded increments so the capacity invariant holds even when two
// joins race.
type SessionRepository interface {
	Create(ctx context.Context, session *models.LiveSession) error
	GetByID(ctx context.Context, id string) (*models.LiveSession, error)
	ListByHost(ctx context.Context, hostID string) ([]models.LiveSession, error)
	UpdateWithVersion(ctx context.Context, session *models.LiveSession) error
	IncrementParticipants(ctx context.Context, id string, maximum int) error
	DecrementParticipants(ctx context.Context, id string) error
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository constructs the live session repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.LiveSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*models.LiveSession, error) {
	var session models.LiveSession
	err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) ListByHost(ctx context.Context, hostID string) ([]models.LiveSession, error) {
	var sessions []models.LiveSession
	err := r.db.WithContext(ctx).
		Where("host_id = ?", hostID).
		Order("scheduled_start ASC").
		Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepository) UpdateWithVersion(ctx context.Context, session *models.LiveSession) error {
	return casUpdate(r.db.WithContext(ctx), &models.LiveSession{}, session.ID, &session.Version, session)
}

func (r *sessionRepository) IncrementParticipants(ctx context.Context, id string, maximum int) error {
	result := r.db.WithContext(ctx).Model(&models.LiveSession{}).
		Where("id = ? AND current_participant_count < ?", id, maximum).
		UpdateColumn("current_participant_count", gorm.Expr("current_participant_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSessionFull
	}
	return nil
}

func (r *sessionRepository) DecrementParticipants(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.LiveSession{}).
		Where("id = ? AND current_participant_count > 0", id).
		UpdateColumn("current_participant_count", gorm.Expr("current_participant_count - 1")).Error
}
