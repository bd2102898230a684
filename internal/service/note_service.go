package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/c50bossio/6fb-workbook-api/internal/dto"
	"github.com/c50bossio/6fb-workbook-api/internal/models"
	"github.com/c50bossio/6fb-workbook-api/internal/repository"
)

var (
	// ErrNotNoteOwner rejects access to someone else's note.
	ErrNotNoteOwner = errors.New("note belongs to another user")
	// ErrAudioTooLarge indicates the recording exceeded the configured limit.
	ErrAudioTooLarge = errors.New("audio file exceeds maximum allowed size")
	// ErrAudioTypeNotAllowed indicates the MIME type is not an accepted audio format.
	ErrAudioTypeNotAllowed = errors.New("audio file type not allowed")
)

var allowedAudioTypes = map[string]struct{}{
	"audio/mpeg": {},
	"audio/mp4":  {},
	"audio/wav":  {},
	"audio/webm": {},
	"audio/ogg":  {},
	"video/webm": {}, // browser MediaRecorder labels audio-only captures this way
}

// FileStorage abstracts upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// Transcriber turns a stored audio recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, name string, audio io.Reader) (string, error)
}

// NoteService manages workbook notes and their audio attachments.
type NoteService interface {
	Create(ctx context.Context, userID string, req dto.CreateNoteRequest) (dto.NoteResponse, error)
	Get(ctx context.Context, userID, noteID string) (dto.NoteResponse, error)
	List(ctx context.Context, userID string, query dto.NoteListQuery) (dto.NoteListResponse, error)
	Update(ctx context.Context, userID, noteID string, req dto.UpdateNoteRequest) (dto.NoteResponse, error)
	Delete(ctx context.Context, userID, noteID string) error
	AttachAudio(ctx context.Context, userID, noteID string, file *multipart.FileHeader) (dto.NoteResponse, error)
}

type noteService struct {
	notes       repository.NoteRepository
	activity    repository.ActivityRepository
	storage     FileStorage
	transcriber Transcriber
	sanitizer   *bluemonday.Policy
	validator   *validator.Validate
	logger      zerolog.Logger
	maxAudio    int64
	now         func() time.Time
}

// NewNoteService constructs the note service. storage and transcriber may
// be nil when audio features are not configured.
func NewNoteService(
	notes repository.NoteRepository,
	activity repository.ActivityRepository,
	storage FileStorage,
	transcriber Transcriber,
	maxAudioMB int,
	validate *validator.Validate,
	logger zerolog.Logger,
) NoteService {
	if maxAudioMB <= 0 {
		maxAudioMB = 25
	}
	return &noteService{
		notes:       notes,
		activity:    activity,
		storage:     storage,
		transcriber: transcriber,
		sanitizer:   bluemonday.UGCPolicy(),
		validator:   validate,
		logger:      logger.With().Str("component", "note_service").Logger(),
		maxAudio:    int64(maxAudioMB) * 1024 * 1024,
		now:         time.Now,
	}
}

func (s *noteService) Create(ctx context.Context, userID string, req dto.CreateNoteRequest) (dto.NoteResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.NoteResponse{}, err
	}

	note := &models.WorkbookNote{
		ID:               uuid.NewString(),
		UserID:           userID,
		ModuleID:         req.ModuleID,
		LessonID:         req.LessonID,
		Title:            strings.TrimSpace(req.Title),
		Content:          s.sanitizer.Sanitize(req.Content),
		TranscriptStatus: models.TranscriptNone,
		Pinned:           req.Pinned,
		Tags:             req.Tags,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return dto.NoteResponse{}, err
	}

	s.recordNoteActivity(ctx, userID, models.ActivityNoteCreate, note)
	return dto.NewNoteResponse(note), nil
}

func (s *noteService) Get(ctx context.Context, userID, noteID string) (dto.NoteResponse, error) {
	note, err := s.ownedNote(ctx, userID, noteID)
	if err != nil {
		return dto.NoteResponse{}, err
	}
	return dto.NewNoteResponse(note), nil
}

func (s *noteService) List(ctx context.Context, userID string, query dto.NoteListQuery) (dto.NoteListResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return dto.NoteListResponse{}, err
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	notes, total, err := s.notes.ListByUser(ctx, userID, repository.NoteFilter{
		ModuleID: query.ModuleID,
		LessonID: query.LessonID,
		Tag:      query.Tag,
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	})
	if err != nil {
		return dto.NoteListResponse{}, err
	}

	out := make([]dto.NoteResponse, 0, len(notes))
	for i := range notes {
		out = append(out, dto.NewNoteResponse(&notes[i]))
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return dto.NoteListResponse{
		Notes: out,
		Pagination: dto.PaginationMeta{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

func (s *noteService) Update(ctx context.Context, userID, noteID string, req dto.UpdateNoteRequest) (dto.NoteResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.NoteResponse{}, err
	}

	note, err := s.ownedNote(ctx, userID, noteID)
	if err != nil {
		return dto.NoteResponse{}, err
	}

	if req.Title != nil {
		note.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		note.Content = s.sanitizer.Sanitize(*req.Content)
	}
	if req.Tags != nil {
		note.Tags = req.Tags
	}
	if req.Pinned != nil {
		note.Pinned = *req.Pinned
	}

	if err := s.notes.Update(ctx, note); err != nil {
		return dto.NoteResponse{}, err
	}
	return dto.NewNoteResponse(note), nil
}

func (s *noteService) Delete(ctx context.Context, userID, noteID string) error {
	note, err := s.ownedNote(ctx, userID, noteID)
	if err != nil {
		return err
	}
	return s.notes.Delete(ctx, note.ID)
}

// AttachAudio validates the recording, stores it, and kicks off
// transcription in the background.
func (s *noteService) AttachAudio(ctx context.Context, userID, noteID string, file *multipart.FileHeader) (dto.NoteResponse, error) {
	note, err := s.ownedNote(ctx, userID, noteID)
	if err != nil {
		return dto.NoteResponse{}, err
	}
	if file == nil {
		return dto.NoteResponse{}, errors.New("audio file is required")
	}
	if file.Size > s.maxAudio {
		return dto.NoteResponse{}, ErrAudioTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		return dto.NoteResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxAudio+1)); err != nil {
		return dto.NoteResponse{}, err
	}
	if int64(buf.Len()) > s.maxAudio {
		return dto.NoteResponse{}, ErrAudioTooLarge
	}

	detected := mimetype.Detect(buf.Bytes())
	if _, ok := allowedAudioTypes[detected.String()]; !ok {
		s.logger.Warn().Str("mime", detected.String()).Msg("rejected audio upload")
		return dto.NoteResponse{}, ErrAudioTypeNotAllowed
	}

	name := fmt.Sprintf("notes/%s/%s%s", userID, note.ID, detected.Extension())
	url, err := s.storage.Upload(ctx, name, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return dto.NoteResponse{}, err
	}

	note.AudioURL = url
	note.TranscriptStatus = models.TranscriptPending
	if err := s.notes.Update(ctx, note); err != nil {
		return dto.NoteResponse{}, err
	}

	s.recordNoteActivity(ctx, userID, models.ActivityAudioRecord, note)

	if s.transcriber != nil {
		go s.transcribe(note.ID, file.Filename, buf.Bytes())
	}

	return dto.NewNoteResponse(note), nil
}

// transcribe runs outside the request; its outcome lands on the note's
// transcript fields.
func (s *noteService) transcribe(noteID, filename string, audio []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	text, err := s.transcriber.Transcribe(ctx, filename, bytes.NewReader(audio))

	note, gerr := s.notes.GetByID(ctx, noteID)
	if gerr != nil {
		s.logger.Error().Err(gerr).Str("note_id", noteID).Msg("load note after transcription")
		return
	}

	if err != nil {
		s.logger.Error().Err(err).Str("note_id", noteID).Msg("transcription failed")
		note.TranscriptStatus = models.TranscriptFailed
	} else {
		note.Transcript = text
		note.TranscriptStatus = models.TranscriptCompleted
	}

	if uerr := s.notes.Update(ctx, note); uerr != nil {
		s.logger.Error().Err(uerr).Str("note_id", noteID).Msg("store transcript")
	}
}

func (s *noteService) ownedNote(ctx context.Context, userID, noteID string) (*models.WorkbookNote, error) {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note.UserID != userID {
		return nil, ErrNotNoteOwner
	}
	return note, nil
}

func (s *noteService) recordNoteActivity(ctx context.Context, userID string, kind models.ActivityType, note *models.WorkbookNote) {
	record := &models.ActivityRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		Type:       kind,
		ModuleID:   note.ModuleID,
		LessonID:   note.LessonID,
		OccurredAt: s.now().UTC(),
	}
	if err := s.activity.Create(ctx, record); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("type", string(kind)).Msg("record activity")
	}
}
