package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/c50bossio/6fb-workbook-api/internal/dto"
	"github.com/c50bossio/6fb-workbook-api/internal/models"
	"github.com/c50bossio/6fb-workbook-api/internal/progress"
)

func newProgressFixture() (*progressService, *memLessonRepo, *memModuleRepo, *memActivityRepo, *capturingPublisher, *stubCatalog) {
	lessons := newMemLessonRepo()
	modules := newMemModuleRepo()
	attempts := &memAttemptRepo{}
	activity := &memActivityRepo{}
	publisher := &capturingPublisher{}
	catalog := &stubCatalog{
		lessons: map[string]models.LessonDefinition{
			"lesson-1": {
				ID:       "lesson-1",
				ModuleID: "module-1",
				Requirements: models.LessonRequirements{
					RequireContentView: true,
					PassingScore:       70,
				},
			},
			"lesson-2": {
				ID:              "lesson-2",
				ModuleID:        "module-1",
				PrerequisiteIDs: []string{"lesson-1"},
			},
		},
		modules: map[string]models.ModuleDefinition{
			"module-1": {ID: "module-1", LessonIDs: []string{"lesson-1", "lesson-2"}, TotalAssessments: 1},
		},
	}

	svc := NewProgressService(lessons, modules, attempts, activity, catalog, publisher, validator.New(), testLogger()).(*progressService)
	return svc, lessons, modules, activity, publisher, catalog
}

func TestGetLessonProgressCreatesNotStartedOnFirstAccess(t *testing.T) {
	svc, lessons, _, _, _, _ := newProgressFixture()

	resp, err := svc.GetLessonProgress(context.Background(), "user-1", "lesson-1")
	require.NoError(t, err)
	require.Equal(t, string(models.ProgressNotStarted), resp.Status)
	require.Equal(t, "module-1", resp.ModuleID)

	stored, err := lessons.GetByUserAndLesson(context.Background(), "user-1", "lesson-1")
	require.NoError(t, err)
	require.Equal(t, resp.ID, stored.ID)

	// A second access returns the same record.
	again, err := svc.GetLessonProgress(context.Background(), "user-1", "lesson-1")
	require.NoError(t, err)
	require.Equal(t, resp.ID, again.ID)
}

func TestReportLessonProgressStartsLessonAndRecordsActivity(t *testing.T) {
	svc, _, _, activity, _, _ := newProgressFixture()

	raw := 40.0
	resp, err := svc.ReportLessonProgress(context.Background(), "user-1", "lesson-1", dto.ReportLessonProgressRequest{
		Progress: &raw,
	})
	require.NoError(t, err)
	require.Equal(t, string(models.ProgressInProgress), resp.Status)
	require.NotNil(t, resp.StartedAt)
	require.Contains(t, activity.typesRecorded(), models.ActivityLessonStart)
}

func TestRequestTransitionRejectsIncompleteCompletion(t *testing.T) {
	svc, _, _, _, _, _ := newProgressFixture()

	raw := 50.0
	_, err := svc.ReportLessonProgress(context.Background(), "user-1", "lesson-1", dto.ReportLessonProgressRequest{Progress: &raw})
	require.NoError(t, err)

	_, err = svc.RequestTransition(context.Background(), "user-1", "lesson-1", dto.TransitionRequest{Status: "completed"})
	var terr *progress.TransitionError
	require.ErrorAs(t, err, &terr)
	require.NotEmpty(t, terr.Reasons)
}

func TestRequestTransitionCompletionRollsUpModule(t *testing.T) {
	svc, _, modules, activity, publisher, _ := newProgressFixture()

	raw := 100.0
	viewed := true
	_, err := svc.ReportLessonProgress(context.Background(), "user-1", "lesson-1", dto.ReportLessonProgressRequest{
		Progress:         &raw,
		ViewedAllContent: &viewed,
	})
	require.NoError(t, err)

	resp, err := svc.RequestTransition(context.Background(), "user-1", "lesson-1", dto.TransitionRequest{Status: "completed"})
	require.NoError(t, err)
	require.Equal(t, string(models.ProgressCompleted), resp.Status)
	require.NotNil(t, resp.CompletedAt)

	module, err := modules.GetByUserAndModule(context.Background(), "user-1", "module-1")
	require.NoError(t, err)
	require.Equal(t, 1, module.LessonsCompleted)
	require.Equal(t, 2, module.TotalLessons)
	require.Equal(t, models.ProgressInProgress, module.Status, "one of two lessons done")

	require.Contains(t, activity.typesRecorded(), models.ActivityLessonComplete)
	require.Contains(t, publisher.subjects(), SubjectLessonCompleted)
	require.Contains(t, publisher.subjects(), SubjectStatusChanged)
}

func TestRequestTransitionPrerequisiteLockAndUnlock(t *testing.T) {
	svc, _, _, _, _, _ := newProgressFixture()

	// lesson-2 requires lesson-1, which has not been touched yet.
	resp, err := svc.RequestTransition(context.Background(), "user-1", "lesson-2", dto.TransitionRequest{Status: "locked"})
	require.NoError(t, err)
	require.Equal(t, string(models.ProgressLocked), resp.Status)

	// Unlocking is refused while the prerequisite is incomplete.
	_, err = svc.RequestTransition(context.Background(), "user-1", "lesson-2", dto.TransitionRequest{Status: "not_started"})
	var terr *progress.TransitionError
	require.ErrorAs(t, err, &terr)

	// Complete lesson-1, then the unlock goes through and stamps unlockedAt.
	raw := 100.0
	viewed := true
	_, err = svc.ReportLessonProgress(context.Background(), "user-1", "lesson-1", dto.ReportLessonProgressRequest{Progress: &raw, ViewedAllContent: &viewed})
	require.NoError(t, err)
	_, err = svc.RequestTransition(context.Background(), "user-1", "lesson-1", dto.TransitionRequest{Status: "completed"})
	require.NoError(t, err)

	resp, err = svc.RequestTransition(context.Background(), "user-1", "lesson-2", dto.TransitionRequest{Status: "not_started"})
	require.NoError(t, err)
	require.Equal(t, string(models.ProgressNotStarted), resp.Status)
}

func TestSubmitAssessmentPassMarksCriteria(t *testing.T) {
	svc, lessons, _, activity, _, _ := newProgressFixture()

	raw := 10.0
	_, err := svc.ReportLessonProgress(context.Background(), "user-1", "lesson-1", dto.ReportLessonProgressRequest{Progress: &raw})
	require.NoError(t, err)

	resp, err := svc.SubmitAssessment(context.Background(), "user-1", "lesson-1", dto.SubmitAssessmentRequest{
		AssessmentID: "assessment-1",
		Responses:    []dto.QuestionResponseInput{{QuestionID: "q1", Answer: "a", Correct: true}},
		Score:        85,
	})
	require.NoError(t, err)
	require.True(t, resp.Passed)
	require.Equal(t, 1, resp.AttemptNumber)

	stored, err := lessons.GetByUserAndLesson(context.Background(), "user-1", "lesson-1")
	require.NoError(t, err)
	require.True(t, stored.Criteria.PassedAssessment)
	require.NotNil(t, stored.AssessmentScore)
	require.Equal(t, 85.0, *stored.AssessmentScore)
	require.Contains(t, activity.typesRecorded(), models.ActivityAssessmentAttempt)
}

func TestSubmitAssessmentFailMovesLessonToFailed(t *testing.T) {
	svc, lessons, _, _, _, _ := newProgressFixture()

	raw := 10.0
	_, err := svc.ReportLessonProgress(context.Background(), "user-1", "lesson-1", dto.ReportLessonProgressRequest{Progress: &raw})
	require.NoError(t, err)

	resp, err := svc.SubmitAssessment(context.Background(), "user-1", "lesson-1", dto.SubmitAssessmentRequest{
		AssessmentID: "assessment-1",
		Responses:    []dto.QuestionResponseInput{{QuestionID: "q1", Answer: "b", Correct: false}},
		Score:        40,
	})
	require.NoError(t, err)
	require.False(t, resp.Passed)
	require.Equal(t, string(models.ProgressFailed), resp.LessonStatus)

	stored, err := lessons.GetByUserAndLesson(context.Background(), "user-1", "lesson-1")
	require.NoError(t, err)
	require.Equal(t, models.ProgressFailed, stored.Status)
}

func TestSubmitAssessmentAttemptNumbersIncrease(t *testing.T) {
	svc, _, _, _, _, _ := newProgressFixture()

	raw := 10.0
	_, err := svc.ReportLessonProgress(context.Background(), "user-1", "lesson-1", dto.ReportLessonProgressRequest{Progress: &raw})
	require.NoError(t, err)

	first, err := svc.SubmitAssessment(context.Background(), "user-1", "lesson-1", dto.SubmitAssessmentRequest{
		AssessmentID: "assessment-1",
		Responses:    []dto.QuestionResponseInput{{QuestionID: "q1", Correct: false}},
		Score:        40,
	})
	require.NoError(t, err)
	require.Equal(t, 1, first.AttemptNumber)

	second, err := svc.SubmitAssessment(context.Background(), "user-1", "lesson-1", dto.SubmitAssessmentRequest{
		AssessmentID: "assessment-1",
		Responses:    []dto.QuestionResponseInput{{QuestionID: "q1", Correct: true}},
		Score:        90,
	})
	require.NoError(t, err)
	require.Equal(t, 2, second.AttemptNumber)
	require.True(t, second.Passed)
}
