package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/c50bossio/6fb-workbook-api/internal/models"
)

// InvitationRepository persists session invitations.
type InvitationRepository interface {
	Create(ctx context.Context, invitation *models.SessionInvitation) error
	GetBySessionAndUser(ctx context.Context, sessionID, userID string) (*models.SessionInvitation, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.SessionInvitation, error)
	UpdateStatus(ctx context.Context, id string, status models.InvitationStatus, respondedAt time.Time) error
}

type invitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository constructs the invitation repository.
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

func (r *invitationRepository) Create(ctx context.Context, invitation *models.SessionInvitation) error {
	return r.db.WithContext(ctx).Create(invitation).Error
}

func (r *invitationRepository) GetBySessionAndUser(ctx context.Context, sessionID, userID string) (*models.SessionInvitation, error) {
	var invitation models.SessionInvitation
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		First(&invitation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &invitation, nil
}

func (r *invitationRepository) ListBySession(ctx context.Context, sessionID string) ([]models.SessionInvitation, error) {
	var invitations []models.SessionInvitation
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&invitations).Error
	return invitations, err
}

func (r *invitationRepository) UpdateStatus(ctx context.Context, id string, status models.InvitationStatus, respondedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.SessionInvitation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       status,
			"responded_at": respondedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
