package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProgressStatus enumerates the lifecycle states of a progress record.
type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
	ProgressLocked     ProgressStatus = "locked"
	ProgressFailed     ProgressStatus = "failed"
	ProgressExpired    ProgressStatus = "expired"
)

// Valid reports whether the value is one of the known progress states.
func (s ProgressStatus) Valid() bool {
	switch s {
	case ProgressNotStarted, ProgressInProgress, ProgressCompleted, ProgressLocked, ProgressFailed, ProgressExpired:
		return true
	}
	return false
}

// CompletionCriteria is the fixed four-flag checklist gating lesson completion.
// Each flag is only meaningful when the matching requirement is enabled for
// the lesson in the content catalog.
type CompletionCriteria struct {
	ViewedAllContent      bool `json:"viewed_all_content"`
	PassedAssessment      bool `json:"passed_assessment"`
	MetMinimumTime        bool `json:"met_minimum_time"`
	CompletedInteractions bool `json:"completed_interactions"`
}

// ModuleProgress tracks a user's standing within a workbook module.
type ModuleProgress struct {
	ID                string            `gorm:"size:36;primaryKey" json:"id"`
	UserID            string            `gorm:"size:36;not null;uniqueIndex:idx_user_module" json:"user_id"`
	ModuleID          string            `gorm:"size:36;not null;uniqueIndex:idx_user_module" json:"module_id"`
	Status            ProgressStatus    `gorm:"size:32;not null" json:"status"`
	StartedAt         *time.Time        `json:"started_at"`
	CompletedAt       *time.Time        `json:"completed_at"`
	LastAccessedAt    *time.Time        `json:"last_accessed_at"`
	UnlockedAt        *time.Time        `json:"unlocked_at"`
	ExpiresAt         *time.Time        `json:"expires_at"`
	TimeSpentMinutes  int               `gorm:"not null;default:0" json:"time_spent_minutes"`
	CompletionRate    float64           `gorm:"not null;default:0" json:"completion_rate"`
	LessonsCompleted  int               `gorm:"not null;default:0" json:"lessons_completed"`
	TotalLessons      int               `gorm:"not null;default:0" json:"total_lessons"`
	AssessmentsPassed int               `gorm:"not null;default:0" json:"assessments_passed"`
	TotalAssessments  int               `gorm:"not null;default:0" json:"total_assessments"`
	AccessCount       int               `gorm:"not null;default:0" json:"access_count"`
	Version           int               `gorm:"not null;default:1" json:"version"`
	Metadata          datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	TagsRaw           string            `gorm:"column:tags;type:text" json:"-"`
	Tags              []string          `gorm:"-" json:"tags"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// BeforeSave normalises tag data before persisting.
func (m *ModuleProgress) BeforeSave(tx *gorm.DB) error {
	m.TagsRaw = encodeTags(m.Tags)
	return nil
}

// AfterFind hydrates the tag list after retrieval.
func (m *ModuleProgress) AfterFind(tx *gorm.DB) error {
	m.Tags = decodeTags(m.TagsRaw)
	return nil
}

// LessonProgress tracks a user's standing within a single lesson.
type LessonProgress struct {
	ID               string             `gorm:"size:36;primaryKey" json:"id"`
	UserID           string             `gorm:"size:36;not null;uniqueIndex:idx_user_lesson" json:"user_id"`
	LessonID         string             `gorm:"size:36;not null;uniqueIndex:idx_user_lesson" json:"lesson_id"`
	ModuleID         string             `gorm:"size:36;not null;index" json:"module_id"`
	Status           ProgressStatus     `gorm:"size:32;not null" json:"status"`
	StartedAt        *time.Time         `json:"started_at"`
	CompletedAt      *time.Time         `json:"completed_at"`
	LastAccessedAt   *time.Time         `json:"last_accessed_at"`
	UnlockedAt       *time.Time         `json:"unlocked_at"`
	ExpiresAt        *time.Time         `json:"expires_at"`
	TimeSpentMinutes int                `gorm:"not null;default:0" json:"time_spent_minutes"`
	CompletionRate   float64            `gorm:"not null;default:0" json:"completion_rate"`
	Progress         float64            `gorm:"not null;default:0" json:"progress"`
	AssessmentScore  *float64           `json:"assessment_score"`
	Attempts         int                `gorm:"not null;default:0" json:"attempts"`
	AccessCount      int                `gorm:"not null;default:0" json:"access_count"`
	Version          int                `gorm:"not null;default:1" json:"version"`
	Criteria         CompletionCriteria `gorm:"embedded;embeddedPrefix:criteria_" json:"criteria"`
	Metadata         datatypes.JSONMap  `gorm:"type:json" json:"metadata"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// IsComplete reports whether the record has reached its terminal happy state.
func (l LessonProgress) IsComplete() bool {
	return l.Status == ProgressCompleted
}
