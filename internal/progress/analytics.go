package progress

import (
	"math"
	"time"

	"github.com/c50bossio/6fb-workbook-api/internal/models"
)

// Period bounds an analytics query. Both ends are inclusive.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Risk levels for the engagement classification. The thresholds are a
// coarse heuristic over active days in the queried period, not a model.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Analytics aggregates learning behaviour over a period.
type Analytics struct {
	Period                  Period       `json:"period"`
	ActiveDays              int          `json:"active_days"`
	TotalMinutes            int          `json:"total_minutes"`
	SessionCount            int          `json:"session_count"`
	AvgMinutesPerSession    float64      `json:"avg_minutes_per_session"`
	LessonsCompleted        int          `json:"lessons_completed"`
	ModulesCompleted        int          `json:"modules_completed"`
	ModulesInProgress       int          `json:"modules_in_progress"`
	AverageLessonCompletion float64      `json:"average_lesson_completion"`
	MostActiveHour          int          `json:"most_active_hour"`
	MostActiveWeekday       time.Weekday `json:"most_active_weekday"`
	Velocity                float64      `json:"velocity"`
	Risk                    string       `json:"risk"`
}

// BuildAnalytics aggregates activity records within the period (inclusive,
// by UTC date) together with the user's progress snapshots.
func BuildAnalytics(moduleProgress []models.ModuleProgress, lessonProgress []models.LessonProgress, activities []models.ActivityRecord, p Period) Analytics {
	a := Analytics{Period: p}

	days := make(map[time.Time]struct{})
	sessions := make(map[string]struct{})
	hourCounts := make(map[int]int)
	weekdayCounts := make(map[time.Weekday]int)

	startDay := utcDate(p.Start)
	endDay := utcDate(p.End)

	for _, rec := range activities {
		day := utcDate(rec.OccurredAt)
		if day.Before(startDay) || day.After(endDay) {
			continue
		}

		days[day] = struct{}{}
		hourCounts[rec.OccurredAt.UTC().Hour()]++
		weekdayCounts[rec.OccurredAt.UTC().Weekday()]++

		if rec.DurationMinutes != nil {
			a.TotalMinutes += *rec.DurationMinutes
		}
		if rec.SessionID != "" {
			sessions[rec.SessionID] = struct{}{}
		}

		switch rec.Type {
		case models.ActivityLessonComplete:
			a.LessonsCompleted++
		case models.ActivityModuleComplete:
			a.ModulesCompleted++
		}
	}

	a.ActiveDays = len(days)
	a.SessionCount = len(sessions)
	if a.SessionCount > 0 {
		a.AvgMinutesPerSession = math.Round(float64(a.TotalMinutes)/float64(a.SessionCount)*100) / 100
	}

	a.MostActiveHour = histogramMode(hourCounts)
	a.MostActiveWeekday = weekdayMode(weekdayCounts)

	for _, mp := range moduleProgress {
		if mp.Status == models.ProgressInProgress {
			a.ModulesInProgress++
		}
	}
	if len(lessonProgress) > 0 {
		var total float64
		for _, lp := range lessonProgress {
			total += lp.CompletionRate
		}
		a.AverageLessonCompletion = math.Round(total/float64(len(lessonProgress))*100) / 100
	}

	a.Velocity = math.Round(float64(a.LessonsCompleted)/math.Max(1, float64(a.ActiveDays)/7)*100) / 100

	switch {
	case a.ActiveDays < 2:
		a.Risk = RiskHigh
	case a.ActiveDays < 5:
		a.Risk = RiskMedium
	default:
		a.Risk = RiskLow
	}

	return a
}

// histogramMode returns the smallest bucket holding the maximum count, so
// results are deterministic when counts tie.
func histogramMode(counts map[int]int) int {
	best, bestCount := 0, -1
	for bucket := 0; bucket < 24; bucket++ {
		if count, ok := counts[bucket]; ok && count > bestCount {
			best, bestCount = bucket, count
		}
	}
	if bestCount <= 0 {
		return 0
	}
	return best
}

func weekdayMode(counts map[time.Weekday]int) time.Weekday {
	best, bestCount := time.Sunday, -1
	for d := time.Sunday; d <= time.Saturday; d++ {
		if count, ok := counts[d]; ok && count > bestCount {
			best, bestCount = d, count
		}
	}
	if bestCount <= 0 {
		return time.Sunday
	}
	return best
}
