package dto

import (
	"time"

	"github.com/c50bossio/6fb-workbook-api/internal/models"
)

// CreateNoteRequest creates a workbook note. Content is sanitised before
// storage, so limited HTML is accepted here.
type CreateNoteRequest struct {
	ModuleID *string  `json:"module_id" validate:"omitempty,uuid4"`
	LessonID *string  `json:"lesson_id" validate:"omitempty,uuid4"`
	Title    string   `json:"title" validate:"required,min=1,max=255"`
	Content  string   `json:"content" validate:"omitempty,max=50000"`
	Tags     []string `json:"tags" validate:"omitempty,max=20,dive,min=1,max=64"`
	Pinned   bool     `json:"pinned"`
}

// UpdateNoteRequest patches an existing note. Nil fields are left untouched.
type UpdateNoteRequest struct {
	Title   *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Content *string  `json:"content" validate:"omitempty,max=50000"`
	Tags    []string `json:"tags" validate:"omitempty,max=20,dive,min=1,max=64"`
	Pinned  *bool    `json:"pinned"`
}

// NoteListQuery narrows a note listing.
type NoteListQuery struct {
	ModuleID string `query:"module_id"`
	LessonID string `query:"lesson_id"`
	Tag      string `query:"tag"`
	Page     int    `query:"page" validate:"omitempty,gte=1"`
	PageSize int    `query:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// NoteResponse is the API shape of a workbook note.
type NoteResponse struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	ModuleID         *string   `json:"module_id"`
	LessonID         *string   `json:"lesson_id"`
	Title            string    `json:"title"`
	Content          string    `json:"content"`
	AudioURL         string    `json:"audio_url"`
	Transcript       string    `json:"transcript"`
	TranscriptStatus string    `json:"transcript_status"`
	Pinned           bool      `json:"pinned"`
	Tags             []string  `json:"tags"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NoteListResponse pairs a page of notes with pagination metadata.
type NoteListResponse struct {
	Notes      []NoteResponse `json:"notes"`
	Pagination PaginationMeta `json:"pagination"`
}

// NewNoteResponse maps the stored note into its API shape.
func NewNoteResponse(n *models.WorkbookNote) NoteResponse {
	return NoteResponse{
		ID:               n.ID,
		UserID:           n.UserID,
		ModuleID:         n.ModuleID,
		LessonID:         n.LessonID,
		Title:            n.Title,
		Content:          n.Content,
		AudioURL:         n.AudioURL,
		Transcript:       n.Transcript,
		TranscriptStatus: string(n.TranscriptStatus),
		Pinned:           n.Pinned,
		Tags:             n.Tags,
		CreatedAt:        n.CreatedAt,
		UpdatedAt:        n.UpdatedAt,
	}
}
