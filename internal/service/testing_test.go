package service

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/c50bossio/6fb-workbook-api/internal/models"
	"github.com/c50bossio/6fb-workbook-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// In-memory repository fakes shared by the service tests.

type memLessonRepo struct {
	mu      sync.Mutex
	records map[string]*models.LessonProgress // keyed by userID+"/"+lessonID
}

func newMemLessonRepo() *memLessonRepo {
	return &memLessonRepo{records: make(map[string]*models.LessonProgress)}
}

func (r *memLessonRepo) key(userID, lessonID string) string { return userID + "/" + lessonID }

func (r *memLessonRepo) GetByUserAndLesson(_ context.Context, userID, lessonID string) (*models.LessonProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[r.key(userID, lessonID)]; ok {
		clone := *rec
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memLessonRepo) ListByUserAndModule(_ context.Context, userID, moduleID string) ([]models.LessonProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.LessonProgress
	for _, rec := range r.records {
		if rec.UserID == userID && rec.ModuleID == moduleID {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LessonID < out[j].LessonID })
	return out, nil
}

func (r *memLessonRepo) ListByUser(_ context.Context, userID string) ([]models.LessonProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.LessonProgress
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *memLessonRepo) Create(_ context.Context, record *models.LessonProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record.Version == 0 {
		record.Version = 1
	}
	clone := *record
	r.records[r.key(record.UserID, record.LessonID)] = &clone
	return nil
}

func (r *memLessonRepo) UpdateWithVersion(_ context.Context, record *models.LessonProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.records[r.key(record.UserID, record.LessonID)]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != record.Version {
		return repository.ErrVersionConflict
	}
	record.Version++
	clone := *record
	r.records[r.key(record.UserID, record.LessonID)] = &clone
	return nil
}

type memModuleRepo struct {
	mu      sync.Mutex
	records map[string]*models.ModuleProgress // keyed by userID+"/"+moduleID
}

func newMemModuleRepo() *memModuleRepo {
	return &memModuleRepo{records: make(map[string]*models.ModuleProgress)}
}

func (r *memModuleRepo) key(userID, moduleID string) string { return userID + "/" + moduleID }

func (r *memModuleRepo) GetByUserAndModule(_ context.Context, userID, moduleID string) (*models.ModuleProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[r.key(userID, moduleID)]; ok {
		clone := *rec
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memModuleRepo) ListByUser(_ context.Context, userID string) ([]models.ModuleProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ModuleProgress
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *memModuleRepo) Create(_ context.Context, record *models.ModuleProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record.Version == 0 {
		record.Version = 1
	}
	clone := *record
	r.records[r.key(record.UserID, record.ModuleID)] = &clone
	return nil
}

func (r *memModuleRepo) UpdateWithVersion(_ context.Context, record *models.ModuleProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.records[r.key(record.UserID, record.ModuleID)]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != record.Version {
		return repository.ErrVersionConflict
	}
	record.Version++
	clone := *record
	r.records[r.key(record.UserID, record.ModuleID)] = &clone
	return nil
}

type memAttemptRepo struct {
	mu       sync.Mutex
	attempts []models.AssessmentProgress
}

func (r *memAttemptRepo) Create(_ context.Context, attempt *models.AssessmentProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, *attempt)
	return nil
}

func (r *memAttemptRepo) CountAttempts(_ context.Context, userID, assessmentID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, a := range r.attempts {
		if a.UserID == userID && a.AssessmentID == assessmentID {
			count++
		}
	}
	return count, nil
}

func (r *memAttemptRepo) ListAttempts(_ context.Context, userID, assessmentID string) ([]models.AssessmentProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.AssessmentProgress
	for _, a := range r.attempts {
		if a.UserID == userID && a.AssessmentID == assessmentID {
			out = append(out, a)
		}
	}
	return out, nil
}

type memActivityRepo struct {
	mu      sync.Mutex
	records []models.ActivityRecord
}

func (r *memActivityRepo) Create(_ context.Context, record *models.ActivityRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *record)
	return nil
}

func (r *memActivityRepo) ListByUser(_ context.Context, userID string, filter repository.ActivityFilter) ([]models.ActivityRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ActivityRecord
	for _, rec := range r.records {
		if rec.UserID != userID {
			continue
		}
		if filter.Since != nil && rec.OccurredAt.Before(*filter.Since) {
			continue
		}
		if filter.Until != nil && rec.OccurredAt.After(*filter.Until) {
			continue
		}
		if len(filter.Types) > 0 {
			match := false
			for _, t := range filter.Types {
				if rec.Type == t {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memActivityRepo) typesRecorded() []models.ActivityType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ActivityType, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.Type)
	}
	return out
}

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.LiveSession
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*models.LiveSession)}
}

func (r *memSessionRepo) Create(_ context.Context, session *models.LiveSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.Version == 0 {
		session.Version = 1
	}
	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

func (r *memSessionRepo) GetByID(_ context.Context, id string) (*models.LiveSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		clone := *s
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memSessionRepo) ListByHost(_ context.Context, hostID string) ([]models.LiveSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.LiveSession
	for _, s := range r.sessions {
		if s.HostID == hostID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memSessionRepo) UpdateWithVersion(_ context.Context, session *models.LiveSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sessions[session.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != session.Version {
		return repository.ErrVersionConflict
	}
	session.Version++
	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

func (r *memSessionRepo) IncrementParticipants(_ context.Context, id string, maximum int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	if s.CurrentParticipantCount >= maximum {
		return repository.ErrSessionFull
	}
	s.CurrentParticipantCount++
	return nil
}

func (r *memSessionRepo) DecrementParticipants(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	if s.CurrentParticipantCount > 0 {
		s.CurrentParticipantCount--
	}
	return nil
}

type memParticipantRepo struct {
	mu           sync.Mutex
	participants map[string]*models.SessionParticipant // keyed by sessionID+"/"+userID
}

func newMemParticipantRepo() *memParticipantRepo {
	return &memParticipantRepo{participants: make(map[string]*models.SessionParticipant)}
}

func (r *memParticipantRepo) key(sessionID, userID string) string { return sessionID + "/" + userID }

func (r *memParticipantRepo) Create(_ context.Context, p *models.SessionParticipant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.Version == 0 {
		p.Version = 1
	}
	clone := *p
	r.participants[r.key(p.SessionID, p.UserID)] = &clone
	return nil
}

func (r *memParticipantRepo) GetBySessionAndUser(_ context.Context, sessionID, userID string) (*models.SessionParticipant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.participants[r.key(sessionID, userID)]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memParticipantRepo) ListBySession(_ context.Context, sessionID string) ([]models.SessionParticipant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SessionParticipant
	for _, p := range r.participants {
		if p.SessionID == sessionID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (r *memParticipantRepo) UpdateWithVersion(_ context.Context, p *models.SessionParticipant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.participants[r.key(p.SessionID, p.UserID)]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != p.Version {
		return repository.ErrVersionConflict
	}
	p.Version++
	clone := *p
	r.participants[r.key(p.SessionID, p.UserID)] = &clone
	return nil
}

type memInvitationRepo struct {
	mu          sync.Mutex
	invitations map[string]*models.SessionInvitation // keyed by sessionID+"/"+userID
}

func newMemInvitationRepo() *memInvitationRepo {
	return &memInvitationRepo{invitations: make(map[string]*models.SessionInvitation)}
}

func (r *memInvitationRepo) Create(_ context.Context, inv *models.SessionInvitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *inv
	r.invitations[inv.SessionID+"/"+inv.UserID] = &clone
	return nil
}

func (r *memInvitationRepo) GetBySessionAndUser(_ context.Context, sessionID, userID string) (*models.SessionInvitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv, ok := r.invitations[sessionID+"/"+userID]; ok {
		clone := *inv
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memInvitationRepo) ListBySession(_ context.Context, sessionID string) ([]models.SessionInvitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SessionInvitation
	for _, inv := range r.invitations {
		if inv.SessionID == sessionID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *memInvitationRepo) UpdateStatus(_ context.Context, id string, status models.InvitationStatus, respondedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invitations {
		if inv.ID == id {
			inv.Status = status
			inv.RespondedAt = &respondedAt
			return nil
		}
	}
	return repository.ErrNotFound
}

type memNoteRepo struct {
	mu    sync.Mutex
	notes map[string]*models.WorkbookNote
}

func newMemNoteRepo() *memNoteRepo {
	return &memNoteRepo{notes: make(map[string]*models.WorkbookNote)}
}

func (r *memNoteRepo) Create(_ context.Context, note *models.WorkbookNote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *note
	r.notes[note.ID] = &clone
	return nil
}

func (r *memNoteRepo) GetByID(_ context.Context, id string) (*models.WorkbookNote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.notes[id]; ok {
		clone := *n
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memNoteRepo) ListByUser(_ context.Context, userID string, filter repository.NoteFilter) ([]models.WorkbookNote, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []models.WorkbookNote
	for _, n := range r.notes {
		if n.UserID != userID {
			continue
		}
		if filter.ModuleID != "" && (n.ModuleID == nil || *n.ModuleID != filter.ModuleID) {
			continue
		}
		if filter.LessonID != "" && (n.LessonID == nil || *n.LessonID != filter.LessonID) {
			continue
		}
		if filter.Tag != "" {
			found := false
			for _, tag := range n.Tags {
				if tag == filter.Tag {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		matched = append(matched, *n)
	}
	total := int64(len(matched))
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, total, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *memNoteRepo) Update(_ context.Context, note *models.WorkbookNote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notes[note.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *note
	r.notes[note.ID] = &clone
	return nil
}

func (r *memNoteRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.notes, id)
	return nil
}

// stubCatalog serves fixed lesson and module definitions.
type stubCatalog struct {
	lessons map[string]models.LessonDefinition
	modules map[string]models.ModuleDefinition
}

func (c *stubCatalog) Lesson(_ context.Context, lessonID string) (models.LessonDefinition, error) {
	if def, ok := c.lessons[lessonID]; ok {
		return def, nil
	}
	return models.LessonDefinition{}, repository.ErrNotFound
}

func (c *stubCatalog) Module(_ context.Context, moduleID string) (models.ModuleDefinition, error) {
	if def, ok := c.modules[moduleID]; ok {
		return def, nil
	}
	return models.ModuleDefinition{}, repository.ErrNotFound
}

// capturingPublisher records published events for assertions.
type capturingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *capturingPublisher) Publish(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturingPublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Subject)
	}
	return out
}
