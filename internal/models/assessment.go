package models

import (
	"time"

	"gorm.io/datatypes"
)

// QuestionResponse captures a single answered question inside an attempt.
type QuestionResponse struct {
	QuestionID       string `json:"question_id"`
	Answer           string `json:"answer"`
	Correct          bool   `json:"correct"`
	TimeSpentSeconds int    `json:"time_spent_seconds"`
}

// AssessmentProgress records one graded attempt of an assessment.
// Attempts are append-only: a retake creates a new row with the next
// attempt number rather than mutating the previous one.
type AssessmentProgress struct {
	ID            string         `gorm:"size:36;primaryKey" json:"id"`
	UserID        string         `gorm:"size:36;not null;index:idx_user_assessment" json:"user_id"`
	AssessmentID  string         `gorm:"size:36;not null;index:idx_user_assessment" json:"assessment_id"`
	LessonID      string         `gorm:"size:36;not null;index" json:"lesson_id"`
	AttemptNumber int            `gorm:"not null" json:"attempt_number"`
	Score         float64        `gorm:"not null" json:"score"`
	PassingScore  float64        `gorm:"not null" json:"passing_score"`
	Passed        bool           `gorm:"not null" json:"passed"`
	StartedAt     time.Time      `json:"started_at"`
	CompletedAt   *time.Time     `json:"completed_at"`
	Responses     datatypes.JSON `gorm:"type:json" json:"responses"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
