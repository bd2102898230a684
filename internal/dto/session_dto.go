package dto

import (
	"time"

	"github.com/c50bossio/6fb-workbook-api/internal/models"
)

// ScheduleSessionRequest creates a new live session.
type ScheduleSessionRequest struct {
	Title          string                 `json:"title" validate:"required,min=3,max=255"`
	Description    string                 `json:"description" validate:"omitempty,max=5000"`
	ScheduledStart string                 `json:"scheduled_start" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	ScheduledEnd   string                 `json:"scheduled_end" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	IsPublic       bool                   `json:"is_public"`
	Capacity       models.SessionCapacity `json:"capacity"`
	Settings       models.SessionSettings `json:"settings"`
}

// JoinSessionRequest asks for a seat in a session.
type JoinSessionRequest struct {
	DisplayName string `json:"display_name" validate:"omitempty,max=255"`
}

// ChangeRoleRequest reassigns a participant's role.
type ChangeRoleRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required,oneof=host co_host presenter moderator participant observer"`
}

// LockSessionRequest locks the session door for a bounded interval.
type LockSessionRequest struct {
	Minutes int `json:"minutes" validate:"required,gte=1,lte=480"`
}

// RecordEngagementRequest increments one engagement counter for a participant.
type RecordEngagementRequest struct {
	Kind   string `json:"kind" validate:"required,oneof=message reaction poll_answer hand_raise speaking_minute"`
	Amount int    `json:"amount" validate:"omitempty,gte=1,lte=1000"`
}

// InviteRequest invites a user to a session.
type InviteRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// SessionResponse is the API shape of a live session.
type SessionResponse struct {
	ID                      string                 `json:"id"`
	HostID                  string                 `json:"host_id"`
	Title                   string                 `json:"title"`
	Description             string                 `json:"description"`
	Status                  string                 `json:"status"`
	ScheduledStart          time.Time              `json:"scheduled_start"`
	ScheduledEnd            time.Time              `json:"scheduled_end"`
	ActualStart             *time.Time             `json:"actual_start"`
	ActualEnd               *time.Time             `json:"actual_end"`
	LockedUntil             *time.Time             `json:"locked_until"`
	IsPublic                bool                   `json:"is_public"`
	CurrentParticipantCount int                    `json:"current_participant_count"`
	Capacity                models.SessionCapacity `json:"capacity"`
	Settings                models.SessionSettings `json:"settings"`
	CreatedAt               time.Time              `json:"created_at"`
}

// ParticipantResponse is the API shape of one session seat.
type ParticipantResponse struct {
	ID              string                        `json:"id"`
	SessionID       string                        `json:"session_id"`
	UserID          string                        `json:"user_id"`
	DisplayName     string                        `json:"display_name"`
	Role            string                        `json:"role"`
	Permissions     models.ParticipantPermissions `json:"permissions"`
	Connection      string                        `json:"connection"`
	Engagement      models.EngagementStats        `json:"engagement"`
	EngagementScore int                           `json:"engagement_score"`
	JoinedAt        time.Time                     `json:"joined_at"`
	LeftAt          *time.Time                    `json:"left_at"`
}

// NewSessionResponse maps the stored session into its API shape.
func NewSessionResponse(s *models.LiveSession) SessionResponse {
	return SessionResponse{
		ID:                      s.ID,
		HostID:                  s.HostID,
		Title:                   s.Title,
		Description:             s.Description,
		Status:                  string(s.Status),
		ScheduledStart:          s.ScheduledStart,
		ScheduledEnd:            s.ScheduledEnd,
		ActualStart:             s.ActualStart,
		ActualEnd:               s.ActualEnd,
		LockedUntil:             s.LockedUntil,
		IsPublic:                s.IsPublic,
		CurrentParticipantCount: s.CurrentParticipantCount,
		Capacity:                s.Capacity,
		Settings:                s.Settings,
		CreatedAt:               s.CreatedAt,
	}
}

// NewParticipantResponse maps the stored participant into its API shape.
func NewParticipantResponse(p *models.SessionParticipant, score int) ParticipantResponse {
	return ParticipantResponse{
		ID:              p.ID,
		SessionID:       p.SessionID,
		UserID:          p.UserID,
		DisplayName:     p.DisplayName,
		Role:            string(p.Role),
		Permissions:     p.Permissions,
		Connection:      string(p.Connection),
		Engagement:      p.Engagement,
		EngagementScore: score,
		JoinedAt:        p.JoinedAt,
		LeftAt:          p.LeftAt,
	}
}
