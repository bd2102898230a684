package dto

import (
	"time"

	"github.com/c50bossio/6fb-workbook-api/internal/models"
)

// RecordActivityRequest appends one entry to the activity log.
type RecordActivityRequest struct {
	Type            string         `json:"type" validate:"required"`
	ModuleID        *string        `json:"module_id" validate:"omitempty,uuid4"`
	LessonID        *string        `json:"lesson_id" validate:"omitempty,uuid4"`
	SessionID       string         `json:"session_id" validate:"omitempty,uuid4"`
	DurationMinutes *int           `json:"duration_minutes" validate:"omitempty,gte=0"`
	Details         map[string]any `json:"details"`
	OccurredAt      *string        `json:"occurred_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// ActivityListQuery narrows an activity listing.
type ActivityListQuery struct {
	Since string `query:"since" validate:"omitempty,datetime=2006-01-02"`
	Until string `query:"until" validate:"omitempty,datetime=2006-01-02"`
	Type  string `query:"type"`
	Limit int    `query:"limit" validate:"omitempty,gte=1,lte=500"`
}

// ActivityResponse is the API shape of one activity log entry.
type ActivityResponse struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	Type            string         `json:"type"`
	ModuleID        *string        `json:"module_id"`
	LessonID        *string        `json:"lesson_id"`
	SessionID       string         `json:"session_id,omitempty"`
	DurationMinutes *int           `json:"duration_minutes"`
	Details         map[string]any `json:"details,omitempty"`
	OccurredAt      time.Time      `json:"occurred_at"`
}

// NewActivityResponse maps the stored entry into its API shape.
func NewActivityResponse(a *models.ActivityRecord) ActivityResponse {
	return ActivityResponse{
		ID:              a.ID,
		UserID:          a.UserID,
		Type:            string(a.Type),
		ModuleID:        a.ModuleID,
		LessonID:        a.LessonID,
		SessionID:       a.SessionID,
		DurationMinutes: a.DurationMinutes,
		Details:         a.Details,
		OccurredAt:      a.OccurredAt,
	}
}
