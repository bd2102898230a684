package progress

import (
	"errors"
	"fmt"
)

// ErrAttemptsExhausted rejects an attempt beyond the configured cap.
var ErrAttemptsExhausted = errors.New("assessment attempt limit reached")

// AttemptOutcome is the engine's verdict on a submitted assessment attempt.
// Passed is always score >= passing score; the two can never disagree.
type AttemptOutcome struct {
	Score        float64 `json:"score"`
	PassingScore float64 `json:"passing_score"`
	Passed       bool    `json:"passed"`
}

// EvaluateAttempt grades an attempt. A passingScore of zero or below falls
// back to DefaultPassingScore. attemptNumber is 1-based and must not exceed
// maxAttempts when a cap is set.
func EvaluateAttempt(score, passingScore float64, attemptNumber int, maxAttempts *int) (AttemptOutcome, error) {
	if attemptNumber < 1 {
		return AttemptOutcome{}, fmt.Errorf("attempt number must be at least 1, got %d", attemptNumber)
	}
	if maxAttempts != nil && attemptNumber > *maxAttempts {
		return AttemptOutcome{}, fmt.Errorf("attempt %d of %d: %w", attemptNumber, *maxAttempts, ErrAttemptsExhausted)
	}

	if passingScore <= 0 {
		passingScore = DefaultPassingScore
	}

	return AttemptOutcome{
		Score:        score,
		PassingScore: passingScore,
		Passed:       score >= passingScore,
	}, nil
}
