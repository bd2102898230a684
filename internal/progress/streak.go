package progress

import (
	"sort"
	"time"

	"github.com/c50bossio/6fb-workbook-api/internal/models"
)

// Streak summarises consecutive-day completion activity.
type Streak struct {
	Current    int        `json:"current"`
	Longest    int        `json:"longest"`
	LastActive *time.Time `json:"last_active"`
}

// LearningStreak derives the user's streak from completion activities.
// Days are UTC calendar dates. The current streak only counts if the most
// recent completion happened today or yesterday relative to asOf; the
// longest streak is tracked over the full history regardless.
func LearningStreak(activities []models.ActivityRecord, asOf time.Time) Streak {
	seen := make(map[time.Time]struct{})
	for _, a := range activities {
		if !a.Type.IsCompletion() {
			continue
		}
		seen[utcDate(a.OccurredAt)] = struct{}{}
	}
	if len(seen) == 0 {
		return Streak{}
	}

	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })

	longest := 1
	run := 1
	for i := 1; i < len(dates); i++ {
		if dates[i-1].Sub(dates[i]) == 24*time.Hour {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}

	latest := dates[0]
	streak := Streak{Longest: longest, LastActive: &latest}

	today := utcDate(asOf)
	if latest != today && latest != today.AddDate(0, 0, -1) {
		return streak
	}

	current := 1
	for i := 1; i < len(dates); i++ {
		if dates[i-1].Sub(dates[i]) != 24*time.Hour {
			break
		}
		current++
	}
	streak.Current = current
	return streak
}

func utcDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
