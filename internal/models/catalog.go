package models

// LessonRequirements configures which completion criteria a lesson enforces.
// The flags are independently togglable per lesson by the content team.
type LessonRequirements struct {
	RequireContentView bool    `json:"require_content_view"`
	RequireAssessment  bool    `json:"require_assessment"`
	RequireMinimumTime bool    `json:"require_minimum_time"`
	RequireInteraction bool    `json:"require_interaction"`
	MinimumTimeMinutes int     `json:"minimum_time_minutes"`
	PassingScore       float64 `json:"passing_score"`
	MaxAttempts        *int    `json:"max_attempts"`
}

// LessonDefinition is the catalog's description of a lesson. The catalog is
// owned by the content service; this service only reads it.
type LessonDefinition struct {
	ID                string             `json:"id"`
	ModuleID          string             `json:"module_id"`
	Title             string             `json:"title"`
	Requirements      LessonRequirements `json:"requirements"`
	TotalInteractions int                `json:"total_interactions"`
	PrerequisiteIDs   []string           `json:"prerequisite_ids"`
}

// ModuleDefinition is the catalog's description of a workbook module.
type ModuleDefinition struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	LessonIDs        []string `json:"lesson_ids"`
	TotalAssessments int      `json:"total_assessments"`
}
