package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/c50bossio/6fb-workbook-api/internal/dto"
	"github.com/c50bossio/6fb-workbook-api/internal/models"
	"github.com/c50bossio/6fb-workbook-api/internal/observability"
	"github.com/c50bossio/6fb-workbook-api/internal/progress"
	"github.com/c50bossio/6fb-workbook-api/internal/repository"
)

// LessonCatalog reads lesson and module definitions from the content
// catalog. The catalog is owned by the content service; progress only
// consumes it.
type LessonCatalog interface {
	Lesson(ctx context.Context, lessonID string) (models.LessonDefinition, error)
	Module(ctx context.Context, moduleID string) (models.ModuleDefinition, error)
}

// ProgressService drives lesson and module progress through the engine.
type ProgressService interface {
	GetLessonProgress(ctx context.Context, userID, lessonID string) (dto.LessonProgressResponse, error)
	ReportLessonProgress(ctx context.Context, userID, lessonID string, req dto.ReportLessonProgressRequest) (dto.LessonProgressResponse, error)
	RequestTransition(ctx context.Context, userID, lessonID string, req dto.TransitionRequest) (dto.LessonProgressResponse, error)
	SubmitAssessment(ctx context.Context, userID, lessonID string, req dto.SubmitAssessmentRequest) (dto.AssessmentAttemptResponse, error)
	GetModuleProgress(ctx context.Context, userID, moduleID string) (dto.ModuleProgressResponse, error)
	ListModuleProgress(ctx context.Context, userID string) ([]dto.ModuleProgressResponse, error)
}

type progressService struct {
	lessons   repository.LessonProgressRepository
	modules   repository.ModuleProgressRepository
	attempts  repository.AssessmentRepository
	activity  repository.ActivityRepository
	catalog   LessonCatalog
	publisher Publisher
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewProgressService constructs the progress service.
func NewProgressService(
	lessons repository.LessonProgressRepository,
	modules repository.ModuleProgressRepository,
	attempts repository.AssessmentRepository,
	activity repository.ActivityRepository,
	catalog LessonCatalog,
	publisher Publisher,
	validate *validator.Validate,
	logger zerolog.Logger,
) ProgressService {
	return &progressService{
		lessons:   lessons,
		modules:   modules,
		attempts:  attempts,
		activity:  activity,
		catalog:   catalog,
		publisher: publisher,
		validator: validate,
		logger:    logger.With().Str("component", "progress_service").Logger(),
		now:       time.Now,
	}
}

// GetLessonProgress returns the lesson record, creating a not_started one
// on first access.
func (s *progressService) GetLessonProgress(ctx context.Context, userID, lessonID string) (dto.LessonProgressResponse, error) {
	record, err := s.loadOrCreateLesson(ctx, userID, lessonID)
	if err != nil {
		return dto.LessonProgressResponse{}, err
	}
	return dto.NewLessonProgressResponse(record), nil
}

func (s *progressService) loadOrCreateLesson(ctx context.Context, userID, lessonID string) (*models.LessonProgress, error) {
	record, err := s.lessons.GetByUserAndLesson(ctx, userID, lessonID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	def, err := s.catalog.Lesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	record = &models.LessonProgress{
		ID:       uuid.NewString(),
		UserID:   userID,
		LessonID: lessonID,
		ModuleID: def.ModuleID,
		Status:   models.ProgressNotStarted,
	}
	if err := s.lessons.Create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Debug().Str("user_id", userID).Str("lesson_id", lessonID).Msg("lesson progress created on first access")
	return record, nil
}

// ReportLessonProgress merges an incremental update, recomputes the
// weighted completion rate and criteria flags, and persists under the
// version check.
func (s *progressService) ReportLessonProgress(ctx context.Context, userID, lessonID string, req dto.ReportLessonProgressRequest) (dto.LessonProgressResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LessonProgressResponse{}, err
	}

	record, err := s.loadOrCreateLesson(ctx, userID, lessonID)
	if err != nil {
		return dto.LessonProgressResponse{}, err
	}

	def, err := s.catalog.Lesson(ctx, lessonID)
	if err != nil {
		return dto.LessonProgressResponse{}, err
	}

	now := s.now().UTC()
	if req.Progress != nil {
		record.Progress = *req.Progress
	}
	if req.TimeSpentMinutes != nil {
		record.TimeSpentMinutes += *req.TimeSpentMinutes
	}
	if req.ViewedAllContent != nil {
		record.Criteria.ViewedAllContent = *req.ViewedAllContent
	}
	if req.CompletedInteractions != nil {
		record.Criteria.CompletedInteractions = *req.CompletedInteractions
	}
	if def.Requirements.RequireMinimumTime && record.TimeSpentMinutes >= def.Requirements.MinimumTimeMinutes {
		record.Criteria.MetMinimumTime = true
	}

	record.CompletionRate = s.lessonCompletionRate(record, def)
	record.LastAccessedAt = &now
	record.AccessCount++

	// First meaningful report moves a fresh record into in_progress.
	if record.Status == models.ProgressNotStarted {
		res, terr := progress.ApplyTransition(record.Status, models.ProgressInProgress, progress.TransitionInput{Now: now})
		if terr != nil {
			return dto.LessonProgressResponse{}, terr
		}
		s.mergeTransition(record, res)
		s.recordActivity(ctx, userID, models.ActivityLessonStart, record.ModuleID, record.LessonID, nil)
	}

	if err := s.lessons.UpdateWithVersion(ctx, record); err != nil {
		return dto.LessonProgressResponse{}, err
	}
	return dto.NewLessonProgressResponse(record), nil
}

// RequestTransition runs one state machine edge and persists the delta.
func (s *progressService) RequestTransition(ctx context.Context, userID, lessonID string, req dto.TransitionRequest) (dto.LessonProgressResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LessonProgressResponse{}, err
	}

	record, err := s.loadOrCreateLesson(ctx, userID, lessonID)
	if err != nil {
		return dto.LessonProgressResponse{}, err
	}
	def, err := s.catalog.Lesson(ctx, lessonID)
	if err != nil {
		return dto.LessonProgressResponse{}, err
	}

	target := models.ProgressStatus(req.Status)
	in, err := s.buildTransitionInput(ctx, userID, record, def)
	if err != nil {
		return dto.LessonProgressResponse{}, err
	}

	res, err := progress.ApplyTransition(record.Status, target, in)
	if err != nil {
		observability.Transitions().WithLabelValues(string(target), "rejected").Inc()
		return dto.LessonProgressResponse{}, err
	}
	observability.Transitions().WithLabelValues(string(target), "applied").Inc()

	previous := record.Status
	s.mergeTransition(record, res)
	if err := s.lessons.UpdateWithVersion(ctx, record); err != nil {
		return dto.LessonProgressResponse{}, err
	}

	s.afterLessonTransition(ctx, userID, record, def, previous)
	return dto.NewLessonProgressResponse(record), nil
}

// SubmitAssessment records a graded attempt and applies its consequences
// to the lesson record.
func (s *progressService) SubmitAssessment(ctx context.Context, userID, lessonID string, req dto.SubmitAssessmentRequest) (dto.AssessmentAttemptResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AssessmentAttemptResponse{}, err
	}

	record, err := s.loadOrCreateLesson(ctx, userID, lessonID)
	if err != nil {
		return dto.AssessmentAttemptResponse{}, err
	}
	def, err := s.catalog.Lesson(ctx, lessonID)
	if err != nil {
		return dto.AssessmentAttemptResponse{}, err
	}

	prior, err := s.attempts.CountAttempts(ctx, userID, req.AssessmentID)
	if err != nil {
		return dto.AssessmentAttemptResponse{}, err
	}

	// A retake of a failed lesson goes back through in_progress; the edge
	// guard enforces the attempt cap.
	if record.Status == models.ProgressFailed {
		in, berr := s.buildTransitionInput(ctx, userID, record, def)
		if berr != nil {
			return dto.AssessmentAttemptResponse{}, berr
		}
		res, terr := progress.ApplyTransition(record.Status, models.ProgressInProgress, in)
		if terr != nil {
			return dto.AssessmentAttemptResponse{}, terr
		}
		s.mergeTransition(record, res)
	}

	outcome, err := progress.EvaluateAttempt(req.Score, def.Requirements.PassingScore, prior+1, def.Requirements.MaxAttempts)
	if err != nil {
		return dto.AssessmentAttemptResponse{}, err
	}

	now := s.now().UTC()
	responses := make([]models.QuestionResponse, 0, len(req.Responses))
	for _, r := range req.Responses {
		responses = append(responses, models.QuestionResponse{
			QuestionID:       r.QuestionID,
			Answer:           r.Answer,
			Correct:          r.Correct,
			TimeSpentSeconds: req.TimeSpentSec / max(1, len(req.Responses)),
		})
	}
	encoded, err := json.Marshal(responses)
	if err != nil {
		return dto.AssessmentAttemptResponse{}, err
	}

	attempt := &models.AssessmentProgress{
		ID:            uuid.NewString(),
		UserID:        userID,
		AssessmentID:  req.AssessmentID,
		LessonID:      lessonID,
		AttemptNumber: prior + 1,
		Score:         outcome.Score,
		PassingScore:  outcome.PassingScore,
		Passed:        outcome.Passed,
		StartedAt:     now,
		CompletedAt:   &now,
		Responses:     datatypes.JSON(encoded),
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		return dto.AssessmentAttemptResponse{}, err
	}

	record.AssessmentScore = &outcome.Score
	record.Attempts = attempt.AttemptNumber
	if outcome.Passed {
		record.Criteria.PassedAssessment = true
	}
	record.CompletionRate = s.lessonCompletionRate(record, def)
	record.LastAccessedAt = &now

	// A failing score on an in-flight lesson moves it to failed; a retake
	// later brings it back through in_progress.
	if !outcome.Passed && record.Status == models.ProgressInProgress {
		in, berr := s.buildTransitionInput(ctx, userID, record, def)
		if berr == nil {
			if res, terr := progress.ApplyTransition(record.Status, models.ProgressFailed, in); terr == nil {
				s.mergeTransition(record, res)
			}
		}
	}

	if err := s.lessons.UpdateWithVersion(ctx, record); err != nil {
		return dto.AssessmentAttemptResponse{}, err
	}

	s.recordActivity(ctx, userID, models.ActivityAssessmentAttempt, record.ModuleID, record.LessonID, map[string]any{
		"assessment_id": req.AssessmentID,
		"attempt":       attempt.AttemptNumber,
		"score":         outcome.Score,
		"passed":        outcome.Passed,
	})

	return dto.AssessmentAttemptResponse{
		AttemptNumber: attempt.AttemptNumber,
		Score:         outcome.Score,
		PassingScore:  outcome.PassingScore,
		Passed:        outcome.Passed,
		LessonStatus:  string(record.Status),
	}, nil
}

func (s *progressService) GetModuleProgress(ctx context.Context, userID, moduleID string) (dto.ModuleProgressResponse, error) {
	record, err := s.modules.GetByUserAndModule(ctx, userID, moduleID)
	if err != nil {
		return dto.ModuleProgressResponse{}, err
	}
	return dto.NewModuleProgressResponse(record), nil
}

func (s *progressService) ListModuleProgress(ctx context.Context, userID string) ([]dto.ModuleProgressResponse, error) {
	records, err := s.modules.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ModuleProgressResponse, 0, len(records))
	for i := range records {
		out = append(out, dto.NewModuleProgressResponse(&records[i]))
	}
	return out, nil
}

// buildTransitionInput assembles the guard snapshot: prerequisite standing
// from the catalog, the criteria check, and the assessment facts.
func (s *progressService) buildTransitionInput(ctx context.Context, userID string, record *models.LessonProgress, def models.LessonDefinition) (progress.TransitionInput, error) {
	prereqsMet := true
	for _, prereqID := range def.PrerequisiteIDs {
		prereq, err := s.lessons.GetByUserAndLesson(ctx, userID, prereqID)
		if errors.Is(err, repository.ErrNotFound) {
			prereqsMet = false
			break
		}
		if err != nil {
			return progress.TransitionInput{}, err
		}
		if !prereq.IsComplete() {
			prereqsMet = false
			break
		}
	}

	passing := def.Requirements.PassingScore
	if passing == 0 {
		passing = progress.DefaultPassingScore
	}

	return progress.TransitionInput{
		Now:              s.now().UTC(),
		PrerequisitesMet: prereqsMet,
		CompletionRate:   record.CompletionRate,
		Criteria:         progress.CheckCompletionCriteria(*record, def.Requirements),
		AssessmentScore:  record.AssessmentScore,
		PassingScore:     passing,
		Attempts:         record.Attempts,
		MaxAttempts:      def.Requirements.MaxAttempts,
	}, nil
}

func (s *progressService) mergeTransition(record *models.LessonProgress, res progress.TransitionResult) {
	record.Status = res.Status
	if res.StartedAt != nil {
		record.StartedAt = res.StartedAt
	}
	if res.CompletedAt != nil {
		record.CompletedAt = res.CompletedAt
	}
	if res.LastAccessedAt != nil {
		record.LastAccessedAt = res.LastAccessedAt
	}
	if res.UnlockedAt != nil {
		record.UnlockedAt = res.UnlockedAt
	}
	record.UpdatedAt = res.UpdatedAt
}

func (s *progressService) lessonCompletionRate(record *models.LessonProgress, def models.LessonDefinition) float64 {
	interactions := 0
	if record.Criteria.CompletedInteractions {
		interactions = def.TotalInteractions
	}
	return progress.CompletionPercent(progress.PercentageInput{
		AssessmentScore:       record.AssessmentScore,
		InteractionsCompleted: interactions,
		TotalInteractions:     def.TotalInteractions,
		RawProgress:           &record.Progress,
	}, progress.DefaultWeights)
}

// afterLessonTransition handles the fallout of a successful transition:
// activity log entries, module rollup and event publication.
func (s *progressService) afterLessonTransition(ctx context.Context, userID string, record *models.LessonProgress, def models.LessonDefinition, previous models.ProgressStatus) {
	s.publisher.Publish(Event{
		Subject:    SubjectStatusChanged,
		UserID:     userID,
		OccurredAt: s.now().UTC(),
		Data: map[string]any{
			"lesson_id": record.LessonID,
			"module_id": record.ModuleID,
			"from":      string(previous),
			"to":        string(record.Status),
		},
	})

	if record.Status != models.ProgressCompleted || previous == models.ProgressCompleted {
		return
	}

	s.recordActivity(ctx, userID, models.ActivityLessonComplete, record.ModuleID, record.LessonID, nil)
	s.publisher.Publish(Event{
		Subject:    SubjectLessonCompleted,
		UserID:     userID,
		OccurredAt: s.now().UTC(),
		Data:       map[string]any{"lesson_id": record.LessonID, "module_id": record.ModuleID},
	})

	if err := s.rollupModule(ctx, userID, record.ModuleID); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("module_id", record.ModuleID).Msg("module rollup failed")
	}
}

// rollupModule recomputes the module record from its lesson records.
func (s *progressService) rollupModule(ctx context.Context, userID, moduleID string) error {
	def, err := s.catalog.Module(ctx, moduleID)
	if err != nil {
		return err
	}

	lessons, err := s.lessons.ListByUserAndModule(ctx, userID, moduleID)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	module, err := s.modules.GetByUserAndModule(ctx, userID, moduleID)
	if errors.Is(err, repository.ErrNotFound) {
		module = &models.ModuleProgress{
			ID:        uuid.NewString(),
			UserID:    userID,
			ModuleID:  moduleID,
			Status:    models.ProgressInProgress,
			StartedAt: &now,
		}
		if cerr := s.modules.Create(ctx, module); cerr != nil {
			return cerr
		}
		s.recordActivity(ctx, userID, models.ActivityModuleStart, moduleID, "", nil)
	} else if err != nil {
		return err
	}

	completed := 0
	timeSpent := 0
	assessmentsPassed := 0
	for _, lp := range lessons {
		if lp.IsComplete() {
			completed++
		}
		timeSpent += lp.TimeSpentMinutes
		if lp.Criteria.PassedAssessment {
			assessmentsPassed++
		}
	}

	module.LessonsCompleted = completed
	module.TotalLessons = len(def.LessonIDs)
	module.AssessmentsPassed = assessmentsPassed
	module.TotalAssessments = def.TotalAssessments
	module.TimeSpentMinutes = timeSpent
	module.LastAccessedAt = &now
	module.CompletionRate = progress.CompletionPercent(progress.PercentageInput{
		LessonsCompleted: completed,
		TotalLessons:     len(def.LessonIDs),
	}, progress.DefaultWeights)

	if module.Status != models.ProgressCompleted &&
		completed == len(def.LessonIDs) && len(def.LessonIDs) > 0 {
		module.Status = models.ProgressCompleted
		module.CompletedAt = &now
		s.recordActivity(ctx, userID, models.ActivityModuleComplete, moduleID, "", nil)
		s.publisher.Publish(Event{
			Subject:    SubjectModuleCompleted,
			UserID:     userID,
			OccurredAt: now,
			Data:       map[string]any{"module_id": moduleID},
		})
	}

	return s.modules.UpdateWithVersion(ctx, module)
}

func (s *progressService) recordActivity(ctx context.Context, userID string, kind models.ActivityType, moduleID, lessonID string, details map[string]any) {
	record := &models.ActivityRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		Type:       kind,
		OccurredAt: s.now().UTC(),
	}
	if moduleID != "" {
		record.ModuleID = &moduleID
	}
	if lessonID != "" {
		record.LessonID = &lessonID
	}
	if details != nil {
		record.Details = datatypes.JSONMap(details)
	}
	if err := s.activity.Create(ctx, record); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("type", string(kind)).Msg("record activity")
	}
}
