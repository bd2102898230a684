package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/c50bossio/6fb-workbook-api/internal/models"
)

// ParticipantRepository persists session participants.
type ParticipantRepository interface {
	Create(ctx context.Context, participant *models.SessionParticipant) error
	GetBySessionAndUser(ctx context.Context, sessionID, userID string) (*models.SessionParticipant, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.SessionParticipant, error)
	UpdateWithVersion(ctx context.Context, participant *models.SessionParticipant) error
}

type participantRepository struct {
	db *gorm.DB
}

// NewParticipantRepository constructs the participant repository.
func NewParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) Create(ctx context.Context, participant *models.SessionParticipant) error {
	return r.db.WithContext(ctx).Create(participant).Error
}

func (r *participantRepository) GetBySessionAndUser(ctx context.Context, sessionID, userID string) (*models.SessionParticipant, error) {
	var participant models.SessionParticipant
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &participant, nil
}

func (r *participantRepository) ListBySession(ctx context.Context, sessionID string) ([]models.SessionParticipant, error) {
	var participants []models.SessionParticipant
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("joined_at ASC").
		Find(&participants).Error
	return participants, err
}

func (r *participantRepository) UpdateWithVersion(ctx context.Context, participant *models.SessionParticipant) error {
	return casUpdate(r.db.WithContext(ctx), &models.SessionParticipant{}, participant.ID, &participant.Version, participant)
}
