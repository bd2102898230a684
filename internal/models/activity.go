package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityType classifies entries in the append-only activity log.
type ActivityType string

const (
	ActivityLessonStart       ActivityType = "lesson_start"
	ActivityLessonComplete    ActivityType = "lesson_complete"
	ActivityModuleStart       ActivityType = "module_start"
	ActivityModuleComplete    ActivityType = "module_complete"
	ActivityAssessmentAttempt ActivityType = "assessment_attempt"
	ActivityNoteCreate        ActivityType = "note_create"
	ActivityAudioRecord       ActivityType = "audio_record"
	ActivitySessionJoin       ActivityType = "session_join"
	ActivitySessionLeave      ActivityType = "session_leave"
)

// Valid reports whether the value is a known activity type.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityLessonStart, ActivityLessonComplete, ActivityModuleStart, ActivityModuleComplete,
		ActivityAssessmentAttempt, ActivityNoteCreate, ActivityAudioRecord,
		ActivitySessionJoin, ActivitySessionLeave:
		return true
	}
	return false
}

// IsCompletion reports whether the activity counts towards learning streaks.
func (t ActivityType) IsCompletion() bool {
	return t == ActivityLessonComplete || t == ActivityModuleComplete
}

// ActivityRecord is an append-only log entry describing a learning event.
// Records are never mutated after creation; streaks and analytics are
// derived from them.
type ActivityRecord struct {
	ID              string            `gorm:"size:36;primaryKey" json:"id"`
	UserID          string            `gorm:"size:36;not null;index" json:"user_id"`
	Type            ActivityType      `gorm:"size:32;not null;index" json:"type"`
	ModuleID        *string           `gorm:"size:36" json:"module_id"`
	LessonID        *string           `gorm:"size:36" json:"lesson_id"`
	SessionID       string            `gorm:"size:36;index" json:"session_id"`
	DurationMinutes *int              `json:"duration_minutes"`
	Details         datatypes.JSONMap `gorm:"type:json" json:"details"`
	OccurredAt      time.Time         `gorm:"not null;index" json:"occurred_at"`
	CreatedAt       time.Time         `json:"created_at"`
}
