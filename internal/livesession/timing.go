package livesession

import (
	"fmt"
	"time"
)

// Session duration bounds.
const (
	MinSessionDuration = 5 * time.Minute
	MaxSessionDuration = 8 * time.Hour
)

// TimingResult reports every violated scheduling rule, not just the first.
type TimingResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateSessionTiming checks a proposed scheduling window: the start must
// be strictly in the future, the end strictly after the start, and the
// duration within [5 minutes, 8 hours]. Duration rules are only evaluated
// when the window is well-formed.
func ValidateSessionTiming(start, end, now time.Time) TimingResult {
	var violations []string

	if !start.After(now) {
		violations = append(violations, "session must start in the future")
	}

	if !end.After(start) {
		violations = append(violations, "session must end after it starts")
	} else {
		duration := end.Sub(start)
		if duration < MinSessionDuration {
			violations = append(violations, fmt.Sprintf("session must run for at least %d minutes", int(MinSessionDuration.Minutes())))
		}
		if duration > MaxSessionDuration {
			violations = append(violations, fmt.Sprintf("session must not run longer than %d hours", int(MaxSessionDuration.Hours())))
		}
	}

	return TimingResult{Valid: len(violations) == 0, Errors: violations}
}
