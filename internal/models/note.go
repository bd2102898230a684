package models

import (
	"time"

	"gorm.io/gorm"
)

// TranscriptStatus tracks the transcription state of an audio note.
type TranscriptStatus string

const (
	TranscriptNone      TranscriptStatus = "none"
	TranscriptPending   TranscriptStatus = "pending"
	TranscriptCompleted TranscriptStatus = "completed"
	TranscriptFailed    TranscriptStatus = "failed"
)

// WorkbookNote is a learner's note, optionally backed by an audio recording
// and its transcript.
type WorkbookNote struct {
	ID               string           `gorm:"size:36;primaryKey" json:"id"`
	UserID           string           `gorm:"size:36;not null;index" json:"user_id"`
	ModuleID         *string          `gorm:"size:36;index" json:"module_id"`
	LessonID         *string          `gorm:"size:36;index" json:"lesson_id"`
	Title            string           `gorm:"size:255;not null" json:"title"`
	Content          string           `gorm:"type:text" json:"content"`
	AudioURL         string           `gorm:"size:512" json:"audio_url"`
	Transcript       string           `gorm:"type:text" json:"transcript"`
	TranscriptStatus TranscriptStatus `gorm:"size:32;not null;default:none" json:"transcript_status"`
	Pinned           bool             `gorm:"not null;default:false" json:"pinned"`
	TagsRaw          string           `gorm:"column:tags;type:text" json:"-"`
	Tags             []string         `gorm:"-" json:"tags"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// BeforeSave normalises tag data before persisting.
func (n *WorkbookNote) BeforeSave(tx *gorm.DB) error {
	n.TagsRaw = encodeTags(n.Tags)
	return nil
}

// AfterFind hydrates the tag list after retrieval.
func (n *WorkbookNote) AfterFind(tx *gorm.DB) error {
	n.Tags = decodeTags(n.TagsRaw)
	return nil
}
