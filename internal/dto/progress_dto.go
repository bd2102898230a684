package dto

import (
	"time"

	"github.com/c50bossio/6fb-workbook-api/internal/models"
)

// ReportLessonProgressRequest carries an incremental progress update for a lesson.
type ReportLessonProgressRequest struct {
	Progress              *float64 `json:"progress" validate:"omitempty,gte=0,lte=100"`
	TimeSpentMinutes      *int     `json:"time_spent_minutes" validate:"omitempty,gte=0"`
	ViewedAllContent      *bool    `json:"viewed_all_content"`
	CompletedInteractions *bool    `json:"completed_interactions"`
}

// TransitionRequest asks the progress engine to move a lesson to a new state.
type TransitionRequest struct {
	Status string `json:"status" validate:"required,oneof=not_started in_progress completed locked failed expired"`
}

// SubmitAssessmentRequest records one graded attempt against a lesson assessment.
type SubmitAssessmentRequest struct {
	AssessmentID string                  `json:"assessment_id" validate:"required"`
	Responses    []QuestionResponseInput `json:"responses" validate:"required,min=1,dive"`
	Score        float64                 `json:"score" validate:"gte=0,lte=100"`
	TimeSpentSec int                     `json:"time_spent_seconds" validate:"omitempty,gte=0"`
}

// QuestionResponseInput is a single answered question within an attempt.
type QuestionResponseInput struct {
	QuestionID string `json:"question_id" validate:"required"`
	Answer     string `json:"answer"`
	Correct    bool   `json:"correct"`
}

// LessonProgressResponse is the API shape of a lesson progress record.
type LessonProgressResponse struct {
	ID               string                    `json:"id"`
	UserID           string                    `json:"user_id"`
	ModuleID         string                    `json:"module_id"`
	LessonID         string                    `json:"lesson_id"`
	Status           string                    `json:"status"`
	Progress         float64                   `json:"progress"`
	CompletionRate   float64                   `json:"completion_rate"`
	TimeSpentMinutes int                       `json:"time_spent_minutes"`
	AssessmentScore  *float64                  `json:"assessment_score"`
	Attempts         int                       `json:"attempts"`
	Criteria         models.CompletionCriteria `json:"criteria"`
	StartedAt        *time.Time                `json:"started_at"`
	CompletedAt      *time.Time                `json:"completed_at"`
	LastAccessedAt   *time.Time                `json:"last_accessed_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

// ModuleProgressResponse is the API shape of a module rollup.
type ModuleProgressResponse struct {
	ID                string     `json:"id"`
	UserID            string     `json:"user_id"`
	ModuleID          string     `json:"module_id"`
	Status            string     `json:"status"`
	CompletionRate    float64    `json:"completion_rate"`
	LessonsCompleted  int        `json:"lessons_completed"`
	TotalLessons      int        `json:"total_lessons"`
	AssessmentsPassed int        `json:"assessments_passed"`
	TotalAssessments  int        `json:"total_assessments"`
	TimeSpentMinutes  int        `json:"time_spent_minutes"`
	Tags              []string   `json:"tags"`
	StartedAt         *time.Time `json:"started_at"`
	CompletedAt       *time.Time `json:"completed_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// AssessmentAttemptResponse reports the outcome of a submitted attempt.
type AssessmentAttemptResponse struct {
	AttemptNumber int     `json:"attempt_number"`
	Score         float64 `json:"score"`
	PassingScore  float64 `json:"passing_score"`
	Passed        bool    `json:"passed"`
	LessonStatus  string  `json:"lesson_status"`
}

// NewLessonProgressResponse maps the stored record into its API shape.
func NewLessonProgressResponse(p *models.LessonProgress) LessonProgressResponse {
	return LessonProgressResponse{
		ID:               p.ID,
		UserID:           p.UserID,
		ModuleID:         p.ModuleID,
		LessonID:         p.LessonID,
		Status:           string(p.Status),
		Progress:         p.Progress,
		CompletionRate:   p.CompletionRate,
		TimeSpentMinutes: p.TimeSpentMinutes,
		AssessmentScore:  p.AssessmentScore,
		Attempts:         p.Attempts,
		Criteria:         p.Criteria,
		StartedAt:        p.StartedAt,
		CompletedAt:      p.CompletedAt,
		LastAccessedAt:   p.LastAccessedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// NewModuleProgressResponse maps the stored rollup into its API shape.
func NewModuleProgressResponse(m *models.ModuleProgress) ModuleProgressResponse {
	return ModuleProgressResponse{
		ID:                m.ID,
		UserID:            m.UserID,
		ModuleID:          m.ModuleID,
		Status:            string(m.Status),
		CompletionRate:    m.CompletionRate,
		LessonsCompleted:  m.LessonsCompleted,
		TotalLessons:      m.TotalLessons,
		AssessmentsPassed: m.AssessmentsPassed,
		TotalAssessments:  m.TotalAssessments,
		TimeSpentMinutes:  m.TimeSpentMinutes,
		Tags:              m.Tags,
		StartedAt:         m.StartedAt,
		CompletedAt:       m.CompletedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
